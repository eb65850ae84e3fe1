package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optima-ops/revops-cli/internal/config"
	"github.com/optima-ops/revops-cli/internal/pipeline"
)

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "Product vendor pricelists",
}

var vendorsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "List the vendor records of a template's variants",
	Long: "Reads variant ids from the source worksheet, fetches their product.supplierinfo records " +
		"with external ids, and writes an import-ready table to the target worksheet.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.JobVendors); err != nil {
			return err
		}

		sheet, err := openSheets(ctx, cfg.ProductSpreadsheet())
		if err != nil {
			return err
		}
		svc, err := newCRM(ctx)
		if err != nil {
			return err
		}

		n, err := pipeline.NewVendorFetch(sheet, svc, cfg.Vendors.SourceWorksheet, cfg.Vendors.TargetWorksheet).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d supplier rows written\n", cfg.Vendors.TargetWorksheet, n)
		return nil
	},
}

func init() {
	vendorsCmd.AddCommand(vendorsFetchCmd)
	rootCmd.AddCommand(vendorsCmd)
}
