package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Odoo          OdooConfig          `yaml:"odoo" mapstructure:"odoo"`
	CallRail      CallRailConfig      `yaml:"callrail" mapstructure:"callrail"`
	Google        GoogleConfig        `yaml:"google" mapstructure:"google"`
	Sheets        SheetsConfig        `yaml:"sheets" mapstructure:"sheets"`
	Analytics     AnalyticsConfig     `yaml:"analytics" mapstructure:"analytics"`
	Opportunities OpportunitiesConfig `yaml:"opportunities" mapstructure:"opportunities"`
	Vendors       VendorsConfig       `yaml:"vendors" mapstructure:"vendors"`
	Leads         LeadsConfig         `yaml:"leads" mapstructure:"leads"`
	Assistant     AssistantConfig     `yaml:"assistant" mapstructure:"assistant"`
	OpenAI        OpenAIConfig        `yaml:"openai" mapstructure:"openai"`
	Anthropic     AnthropicConfig     `yaml:"anthropic" mapstructure:"anthropic"`
	Attribution   AttributionConfig   `yaml:"attribution" mapstructure:"attribution"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// OdooConfig configures the Odoo JSON-RPC session.
type OdooConfig struct {
	URL         string  `yaml:"url" mapstructure:"url"`
	DB          string  `yaml:"db" mapstructure:"db"`
	Login       string  `yaml:"login" mapstructure:"login"`
	Password    string  `yaml:"password" mapstructure:"password"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CronID      int64   `yaml:"cron_id" mapstructure:"cron_id"`
}

// CallRailConfig configures the CallRail API and the call jobs.
type CallRailConfig struct {
	APIKey          string  `yaml:"api_key" mapstructure:"api_key"`
	AccountID       string  `yaml:"account_id" mapstructure:"account_id"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit       float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	SyncWindowHours int     `yaml:"sync_window_hours" mapstructure:"sync_window_hours"`
	ExportDays      int     `yaml:"export_days" mapstructure:"export_days"`
	ExportWorksheet string  `yaml:"export_worksheet" mapstructure:"export_worksheet"`
}

// GoogleConfig locates the service-account key used for Sheets and GA4.
type GoogleConfig struct {
	ServiceAccountFile string `yaml:"service_account_file" mapstructure:"service_account_file"`
}

// SheetsConfig names the target spreadsheets.
type SheetsConfig struct {
	SpreadsheetID        string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	ProductSpreadsheetID string `yaml:"product_spreadsheet_id" mapstructure:"product_spreadsheet_id"`
	CheckWorksheet       string `yaml:"check_worksheet" mapstructure:"check_worksheet"`
	CheckProbeCell       string `yaml:"check_probe_cell" mapstructure:"check_probe_cell"`
}

// AnalyticsConfig configures the GA4 reports.
type AnalyticsConfig struct {
	PropertyID string `yaml:"property_id" mapstructure:"property_id"`
	Days       int    `yaml:"days" mapstructure:"days"`
}

// OpportunitiesConfig configures the Odoo opportunities export.
type OpportunitiesConfig struct {
	Days      int    `yaml:"days" mapstructure:"days"`
	Worksheet string `yaml:"worksheet" mapstructure:"worksheet"`
}

// VendorsConfig configures the vendor fetch job.
type VendorsConfig struct {
	SourceWorksheet string `yaml:"source_worksheet" mapstructure:"source_worksheet"`
	TargetWorksheet string `yaml:"target_worksheet" mapstructure:"target_worksheet"`
}

// LeadsConfig configures the web-form lead import.
type LeadsConfig struct {
	QueueWorksheet string `yaml:"queue_worksheet" mapstructure:"queue_worksheet"`
	FormWorksheet  string `yaml:"form_worksheet" mapstructure:"form_worksheet"`
	SalespersonID  int64  `yaml:"salesperson_id" mapstructure:"salesperson_id"`
}

// AssistantConfig configures the chat-completion health check.
type AssistantConfig struct {
	Provider              string `yaml:"provider" mapstructure:"provider"`
	Model                 string `yaml:"model" mapstructure:"model"`
	MaxTokens             int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	InstructionsWorksheet string `yaml:"instructions_worksheet" mapstructure:"instructions_worksheet"`
	DataWorksheet         string `yaml:"data_worksheet" mapstructure:"data_worksheet"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AttributionConfig overrides the built-in source/medium tables.
type AttributionConfig struct {
	TablesFile string `yaml:"tables_file" mapstructure:"tables_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envAliases binds config keys to the unprefixed variable names the CI
// secrets already use. REVOPS_<KEY> still works for every key.
var envAliases = map[string]string{
	"odoo.url":                      "ODOO_URL",
	"odoo.db":                       "ODOO_DB",
	"odoo.login":                    "ODOO_LOGIN",
	"odoo.password":                 "ODOO_PASSWORD",
	"callrail.api_key":              "CALLRAIL_API_KEY",
	"callrail.account_id":           "CALLRAIL_ACCOUNT_ID",
	"sheets.spreadsheet_id":         "SPREADSHEET_ID",
	"sheets.product_spreadsheet_id": "PRODUCT_SPREADSHEET_ID",
	"analytics.property_id":         "GA_PROPERTY_ID",
	"openai.key":                    "OPENAI_API_KEY",
	"anthropic.key":                 "ANTHROPIC_API_KEY",
	"google.service_account_file":   "GOOGLE_SERVICE_ACCOUNT_FILE",
}

// EnvName returns the environment variable a key is read from.
func EnvName(key string) string {
	if name, ok := envAliases[key]; ok {
		return name
	}
	return "REVOPS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !eris.As(err, &pathErr) {
			return nil, eris.Wrap(err, "config: load .env")
		}
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REVOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", env)
		}
	}

	// Defaults
	v.SetDefault("odoo.url", "")
	v.SetDefault("odoo.db", "")
	v.SetDefault("odoo.login", "")
	v.SetDefault("odoo.password", "")
	v.SetDefault("odoo.rate_limit", 0)
	v.SetDefault("odoo.timeout_secs", 30)
	v.SetDefault("odoo.cron_id", 62)
	v.SetDefault("callrail.api_key", "")
	v.SetDefault("callrail.account_id", "")
	v.SetDefault("callrail.base_url", "https://api.callrail.com/v3")
	v.SetDefault("callrail.rate_limit", 0)
	v.SetDefault("callrail.sync_window_hours", 240)
	v.SetDefault("callrail.export_days", 30)
	v.SetDefault("callrail.export_worksheet", "30-day-callrail")
	v.SetDefault("google.service_account_file", "service_account.json")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.product_spreadsheet_id", "")
	v.SetDefault("sheets.check_worksheet", "start")
	v.SetDefault("sheets.check_probe_cell", "D4")
	v.SetDefault("analytics.property_id", "")
	v.SetDefault("analytics.days", 30)
	v.SetDefault("opportunities.days", 30)
	v.SetDefault("opportunities.worksheet", "odoo_sales")
	v.SetDefault("vendors.source_worksheet", "start")
	v.SetDefault("vendors.target_worksheet", "vendor fetch")
	v.SetDefault("leads.queue_worksheet", "processing_queue")
	v.SetDefault("leads.form_worksheet", "Form responses")
	v.SetDefault("leads.salesperson_id", 28)
	v.SetDefault("assistant.provider", "openai")
	v.SetDefault("assistant.model", "gpt-3.5-turbo")
	v.SetDefault("assistant.max_tokens", 150)
	v.SetDefault("assistant.instructions_worksheet", "instructions")
	v.SetDefault("assistant.data_worksheet", "data")
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("attribution.tables_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
