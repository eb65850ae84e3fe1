package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/internal/config"
	"github.com/optima-ops/revops-cli/internal/pipeline"
)

var odooCmd = &cobra.Command{
	Use:   "odoo",
	Short: "Odoo exports and scheduled actions",
}

// -- odoo opportunities --

var odooOpportunitiesCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "Write recently created opportunities to a worksheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.JobOpportunities); err != nil {
			return err
		}

		days := cfg.Opportunities.Days
		if d, _ := cmd.Flags().GetInt("days"); d > 0 {
			days = d
		}
		svc, err := newCRM(ctx)
		if err != nil {
			return err
		}
		sheet, err := openSheets(ctx, cfg.Sheets.SpreadsheetID)
		if err != nil {
			return err
		}

		res, err := pipeline.NewExporter(sheet).Opportunities(ctx, svc, cfg.Opportunities.Worksheet, days)
		if err != nil {
			return err
		}
		formatExport(cmd.OutOrStdout(), res)
		return nil
	},
}

// -- odoo cron run --

var odooCronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Odoo scheduled actions",
}

var odooCronRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scheduled action now",
	Long:  "Triggers an ir.cron record immediately, the same as its Run Manually button.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.JobCron); err != nil {
			return err
		}

		id := cfg.Odoo.CronID
		if v, _ := cmd.Flags().GetInt64("id"); v > 0 {
			id = v
		}
		svc, err := newCRM(ctx)
		if err != nil {
			return err
		}
		if err := svc.TriggerCron(ctx, id); err != nil {
			return err
		}
		zap.L().Info("odoo: scheduled action triggered", zap.Int64("cron_id", id))
		fmt.Fprintf(cmd.OutOrStdout(), "scheduled action %d triggered\n", id)
		return nil
	},
}

func init() {
	odooOpportunitiesCmd.Flags().Int("days", 0, "days of opportunities to export (default from config)")
	odooCronRunCmd.Flags().Int64("id", 0, "ir.cron record id (default from config)")

	odooCronCmd.AddCommand(odooCronRunCmd)
	odooCmd.AddCommand(odooOpportunitiesCmd, odooCronCmd)
	rootCmd.AddCommand(odooCmd)
}
