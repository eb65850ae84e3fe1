package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/optima-ops/revops-cli/internal/config"
	"github.com/optima-ops/revops-cli/internal/pipeline"
	"github.com/optima-ops/revops-cli/pkg/analytics"
)

var gaCmd = &cobra.Command{
	Use:   "ga",
	Short: "Google Analytics 4 reports",
}

type gaReport func(e *pipeline.Exporter, ctx context.Context, ga analytics.Client, worksheet string, days int) (pipeline.ExportResult, error)

// gaReportCmd builds one GA4 report subcommand writing to a worksheet.
func gaReportCmd(use, short, worksheet string, run gaReport) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := validate(config.JobGA); err != nil {
				return err
			}

			days := cfg.Analytics.Days
			if d, _ := cmd.Flags().GetInt("days"); d > 0 {
				days = d
			}
			ws, _ := cmd.Flags().GetString("worksheet")

			ga, err := openAnalytics(ctx, cfg.Analytics.PropertyID)
			if err != nil {
				return err
			}
			sheet, err := openSheets(ctx, cfg.Sheets.SpreadsheetID)
			if err != nil {
				return err
			}

			res, err := run(pipeline.NewExporter(sheet), ctx, ga, ws, days)
			if err != nil {
				return err
			}
			formatExport(cmd.OutOrStdout(), res)
			return nil
		},
	}
	c.Flags().Int("days", 0, "days to report (default from config)")
	c.Flags().String("worksheet", worksheet, "target worksheet")
	return c
}

var (
	gaDashboardCmd = gaReportCmd("dashboard", "Daily traffic overview with day-over-day changes", "30-Day View",
		(*pipeline.Exporter).Dashboard)
	gaAdsCmd = gaReportCmd("ads", "Paid campaign cost, clicks, revenue and conversions", "ga_ads",
		(*pipeline.Exporter).Ads)
	gaUsersCmd = gaReportCmd("users", "Total users by first-user source and medium", "ga_users",
		(*pipeline.Exporter).Users)
)

func init() {
	gaCmd.AddCommand(gaDashboardCmd, gaAdsCmd, gaUsersCmd)
	rootCmd.AddCommand(gaCmd)
}
