package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optima-ops/revops-cli/internal/attribution"
	"github.com/optima-ops/revops-cli/internal/config"
	"github.com/optima-ops/revops-cli/internal/pipeline"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Web-form lead intake",
}

var leadsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Create an Odoo lead from the newest pending form submission",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.JobLeads); err != nil {
			return err
		}

		mapper, err := newMapper(attribution.Webform)
		if err != nil {
			return err
		}
		sheet, err := openSheets(ctx, cfg.Sheets.SpreadsheetID)
		if err != nil {
			return err
		}
		svc, err := newCRM(ctx)
		if err != nil {
			return err
		}

		res, err := pipeline.NewLeadImport(sheet, svc, mapper, pipeline.LeadImportConfig{
			QueueWorksheet: cfg.Leads.QueueWorksheet,
			FormWorksheet:  cfg.Leads.FormWorksheet,
			SalespersonID:  cfg.Leads.SalespersonID,
		}).Run(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res == nil {
			fmt.Fprintln(out, "no pending entries")
			return nil
		}
		fmt.Fprintf(out, "row %d (%s): %s", res.Entry.Row, res.Entry.Name, res.Status)
		if res.LeadID > 0 {
			fmt.Fprintf(out, ", lead %d", res.LeadID)
			if !res.Created {
				fmt.Fprint(out, " (existing)")
			}
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	leadsCmd.AddCommand(leadsImportCmd)
	rootCmd.AddCommand(leadsCmd)
}
