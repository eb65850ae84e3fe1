//go:build !integration

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/optima-ops/revops-cli/internal/assistant"
	"github.com/optima-ops/revops-cli/internal/config"
	"github.com/optima-ops/revops-cli/internal/odootest"
	"github.com/optima-ops/revops-cli/pkg/analytics"
	"github.com/optima-ops/revops-cli/pkg/sheets"
	"github.com/optima-ops/revops-cli/pkg/sheets/sheetstest"
)

// testConfig returns a config with every required setting filled in.
func testConfig(odooURL string) *config.Config {
	return &config.Config{
		Odoo: config.OdooConfig{URL: odooURL, DB: odootest.DB, Login: odootest.Login, Password: odootest.Password, CronID: 62},
		CallRail: config.CallRailConfig{
			APIKey: "cr-key", AccountID: "ACC1", SyncWindowHours: 240,
			ExportDays: 30, ExportWorksheet: "30-day-callrail",
		},
		Google:        config.GoogleConfig{ServiceAccountFile: "service_account.json"},
		Sheets:        config.SheetsConfig{SpreadsheetID: "sheet-1", CheckWorksheet: "start", CheckProbeCell: "D4"},
		Analytics:     config.AnalyticsConfig{PropertyID: "123", Days: 30},
		Opportunities: config.OpportunitiesConfig{Days: 30, Worksheet: "odoo_sales"},
		Vendors:       config.VendorsConfig{SourceWorksheet: "start", TargetWorksheet: "vendor fetch"},
		Leads:         config.LeadsConfig{QueueWorksheet: "processing_queue", FormWorksheet: "Form responses", SalespersonID: 28},
		Assistant: config.AssistantConfig{
			Provider: "openai", Model: "gpt-3.5-turbo", MaxTokens: 150,
			InstructionsWorksheet: "instructions", DataWorksheet: "data",
		},
		OpenAI:    config.OpenAIConfig{Key: "sk-test"},
		Anthropic: config.AnthropicConfig{Key: "sk-ant", Model: "claude-haiku-4-5"},
		Log:       config.LogConfig{Level: "info", Format: "json"},
	}
}

// setup installs c and swaps the Google clients for fakes until the test
// ends.
func setup(t *testing.T, c *config.Config, sheet *sheetstest.Fake, ga analytics.Client) {
	t.Helper()
	prevCfg, prevSheets, prevGA, prevLLM := cfg, openSheets, openAnalytics, newCompleter
	t.Cleanup(func() {
		cfg, openSheets, openAnalytics, newCompleter = prevCfg, prevSheets, prevGA, prevLLM
	})

	cfg = c
	openSheets = func(context.Context, string) (sheets.Client, error) {
		require.NotNil(t, sheet, "unexpected spreadsheet access")
		return sheet, nil
	}
	openAnalytics = func(context.Context, string) (analytics.Client, error) {
		require.NotNil(t, ga, "unexpected analytics access")
		return ga, nil
	}
}

func stubCompleter(t *testing.T, answer string) {
	t.Helper()
	newCompleter = func() (assistant.Completer, error) {
		return assistant.CompleterFunc(func(context.Context, assistant.Prompt) (string, error) {
			return answer, nil
		}), nil
	}
}

// run executes a command's RunE with a background context and returns
// what it printed.
func run(t *testing.T, c *cobra.Command) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	c.SetOut(&buf)
	c.SetContext(context.Background())
	t.Cleanup(func() { c.SetOut(nil) })
	err := c.RunE(c, nil)
	return buf.String(), err
}

func newOdooServer(t *testing.T) *odootest.Server {
	t.Helper()
	srv := odootest.New()
	t.Cleanup(srv.Close)
	return srv
}
