package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/internal/attribution"
	"github.com/optima-ops/revops-cli/internal/config"
	"github.com/optima-ops/revops-cli/internal/pipeline"
)

var callrailCmd = &cobra.Command{
	Use:   "callrail",
	Short: "CallRail attribution sync and exports",
}

// -- callrail sync --

var callrailSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write call attribution onto matching Odoo leads",
	Long: "Fetches recent CallRail calls, maps source, medium and campaign to Odoo UTM records, " +
		"and writes them onto every crm.lead whose phone matches the caller.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.JobCallSync); err != nil {
			return err
		}

		mapper, err := newMapper(attribution.CallRail)
		if err != nil {
			return err
		}
		svc, err := newCRM(ctx)
		if err != nil {
			return err
		}

		window := time.Duration(cfg.CallRail.SyncWindowHours) * time.Hour
		if h, _ := cmd.Flags().GetInt("window-hours"); h > 0 {
			window = time.Duration(h) * time.Hour
		}
		orders, _ := cmd.Flags().GetBool("sales-orders")

		sum := pipeline.NewCallSync(newCallRail(), svc, mapper,
			pipeline.WithWindow(window),
			pipeline.WithSaleOrders(orders),
		).Run(ctx)

		formatSummary(cmd.OutOrStdout(), sum)
		return nil
	},
}

func formatSummary(w io.Writer, s pipeline.Summary) {
	fmt.Fprintf(w, "calls:          %d\n", s.Calls)
	fmt.Fprintf(w, "unmatched:      %d\n", s.UnmatchedCalls)
	fmt.Fprintf(w, "matched leads:  %d\n", s.MatchedLeads)
	fmt.Fprintf(w, "updated leads:  %d\n", s.UpdatedLeads)
	fmt.Fprintf(w, "updated orders: %d\n", s.UpdatedOrders)
	fmt.Fprintf(w, "failures:       %d\n", s.Failures)
}

// -- callrail export --

var callrailExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write recent CallRail calls to a worksheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.JobCallExport); err != nil {
			return err
		}

		days := cfg.CallRail.ExportDays
		if d, _ := cmd.Flags().GetInt("days"); d > 0 {
			days = d
		}
		sheet, err := openSheets(ctx, cfg.Sheets.SpreadsheetID)
		if err != nil {
			return err
		}

		res, err := pipeline.NewExporter(sheet).CallRail(ctx, newCallRail(), cfg.CallRail.ExportWorksheet, days)
		if err != nil {
			return err
		}
		zap.L().Info("callrail export complete", zap.Int("calls", res.Rows))
		formatExport(cmd.OutOrStdout(), res)
		return nil
	},
}

func formatExport(w io.Writer, r pipeline.ExportResult) {
	if r.Skipped {
		fmt.Fprintf(w, "%s: no data, worksheet left unchanged\n", r.Worksheet)
		return
	}
	fmt.Fprintf(w, "%s: %d rows written\n", r.Worksheet, r.Rows)
}

func init() {
	callrailSyncCmd.Flags().Bool("sales-orders", false, "also write UTM fields to the sale orders of each matched lead's partner")
	callrailSyncCmd.Flags().Int("window-hours", 0, "call window in hours (default from config)")
	callrailExportCmd.Flags().Int("days", 0, "days of calls to export (default from config)")

	callrailCmd.AddCommand(callrailSyncCmd, callrailExportCmd)
	rootCmd.AddCommand(callrailCmd)
}
