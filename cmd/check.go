package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/optima-ops/revops-cli/internal/config"
	"github.com/optima-ops/revops-cli/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify Odoo and Google Sheets connectivity",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.JobCheck); err != nil {
			return err
		}

		sheet, err := openSheets(ctx, cfg.ProductSpreadsheet())
		if err != nil {
			return err
		}

		res, err := pipeline.NewCheck(odooClient(), sheet, cfg.Sheets.CheckWorksheet, cfg.Sheets.CheckProbeCell).Run(ctx)
		formatCheck(cmd.OutOrStdout(), res)
		return err
	},
}

func formatCheck(w io.Writer, r pipeline.CheckResult) {
	if r.UID > 0 {
		fmt.Fprintf(w, "odoo:        ok (uid %d)\n", r.UID)
	}
	if r.Title != "" {
		fmt.Fprintf(w, "spreadsheet: %s\n", r.Title)
		fmt.Fprintf(w, "worksheets:  %s\n", strings.Join(r.Worksheets, ", "))
	}
	if r.Written != "" {
		fmt.Fprintf(w, "B1:          %s\n", r.Probe)
		fmt.Fprintf(w, "wrote:       %s\n", r.Written)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
