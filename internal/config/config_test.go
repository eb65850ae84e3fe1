package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml or .env is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30, cfg.Odoo.TimeoutSecs)
	assert.Equal(t, int64(62), cfg.Odoo.CronID)
	assert.Equal(t, "https://api.callrail.com/v3", cfg.CallRail.BaseURL)
	assert.Equal(t, 240, cfg.CallRail.SyncWindowHours)
	assert.Equal(t, 30, cfg.CallRail.ExportDays)
	assert.Equal(t, "30-day-callrail", cfg.CallRail.ExportWorksheet)
	assert.Equal(t, "service_account.json", cfg.Google.ServiceAccountFile)
	assert.Equal(t, 30, cfg.Analytics.Days)
	assert.Equal(t, "odoo_sales", cfg.Opportunities.Worksheet)
	assert.Equal(t, "start", cfg.Vendors.SourceWorksheet)
	assert.Equal(t, "vendor fetch", cfg.Vendors.TargetWorksheet)
	assert.Equal(t, "processing_queue", cfg.Leads.QueueWorksheet)
	assert.Equal(t, "Form responses", cfg.Leads.FormWorksheet)
	assert.Equal(t, int64(28), cfg.Leads.SalespersonID)
	assert.Equal(t, "openai", cfg.Assistant.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Assistant.Model)
	assert.Equal(t, 150, cfg.Assistant.MaxTokens)
	assert.Equal(t, "data", cfg.Assistant.DataWorksheet)
	assert.Empty(t, cfg.Odoo.URL)
	assert.Empty(t, cfg.Attribution.TablesFile)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
odoo:
  url: https://erp.example.com
  cron_id: 7
log:
  level: debug
  format: console
callrail:
  export_days: 14
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://erp.example.com", cfg.Odoo.URL)
	assert.Equal(t, int64(7), cfg.Odoo.CronID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 14, cfg.CallRail.ExportDays)
	// Defaults still apply for unset values
	assert.Equal(t, 240, cfg.CallRail.SyncWindowHours)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
odoo:
  db: from-file
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ODOO_DB", "from-env")
	t.Setenv("REVOPS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Odoo.DB)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadOriginalEnvNames(t *testing.T) {
	chdirTemp(t)

	t.Setenv("ODOO_URL", "https://erp.example.com")
	t.Setenv("ODOO_LOGIN", "bot@example.com")
	t.Setenv("CALLRAIL_API_KEY", "cr-key")
	t.Setenv("CALLRAIL_ACCOUNT_ID", "ACC1")
	t.Setenv("SPREADSHEET_ID", "sheet-1")
	t.Setenv("PRODUCT_SPREADSHEET_ID", "sheet-2")
	t.Setenv("GA_PROPERTY_ID", "123456")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/secrets/sa.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://erp.example.com", cfg.Odoo.URL)
	assert.Equal(t, "bot@example.com", cfg.Odoo.Login)
	assert.Equal(t, "cr-key", cfg.CallRail.APIKey)
	assert.Equal(t, "ACC1", cfg.CallRail.AccountID)
	assert.Equal(t, "sheet-1", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "sheet-2", cfg.Sheets.ProductSpreadsheetID)
	assert.Equal(t, "123456", cfg.Analytics.PropertyID)
	assert.Equal(t, "sk-test", cfg.OpenAI.Key)
	assert.Equal(t, "/secrets/sa.json", cfg.Google.ServiceAccountFile)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CALLRAIL_ACCOUNT_ID=FROM_DOTENV\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("CALLRAIL_ACCOUNT_ID") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "FROM_DOTENV", cfg.CallRail.AccountID)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("odoo: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "ODOO_PASSWORD", EnvName("odoo.password"))
	assert.Equal(t, "GA_PROPERTY_ID", EnvName("analytics.property_id"))
	assert.Equal(t, "REVOPS_LOG_LEVEL", EnvName("log.level"))
	assert.Equal(t, "REVOPS_CALLRAIL_SYNC_WINDOW_HOURS", EnvName("callrail.sync_window_hours"))
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
