package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Job names a subcommand for required-setting checks.
type Job string

// Jobs with required settings.
const (
	JobCallSync      Job = "callrail sync"
	JobCallExport    Job = "callrail export"
	JobGA            Job = "ga"
	JobOpportunities Job = "odoo opportunities"
	JobCron          Job = "odoo cron"
	JobVendors       Job = "vendors fetch"
	JobLeads         Job = "leads import"
	JobAssistant     Job = "assistant check"
	JobCheck         Job = "check"
)

// ProductSpreadsheet is the spreadsheet holding product templates, which
// falls back to the main spreadsheet.
func (c *Config) ProductSpreadsheet() string {
	if c.Sheets.ProductSpreadsheetID != "" {
		return c.Sheets.ProductSpreadsheetID
	}
	return c.Sheets.SpreadsheetID
}

type requirement struct {
	key   string
	value func(*Config) string
}

var (
	odooRequired = []requirement{
		{"odoo.url", func(c *Config) string { return c.Odoo.URL }},
		{"odoo.db", func(c *Config) string { return c.Odoo.DB }},
		{"odoo.login", func(c *Config) string { return c.Odoo.Login }},
		{"odoo.password", func(c *Config) string { return c.Odoo.Password }},
	}
	callRailRequired = []requirement{
		{"callrail.api_key", func(c *Config) string { return c.CallRail.APIKey }},
		{"callrail.account_id", func(c *Config) string { return c.CallRail.AccountID }},
	}
	sheetsRequired = []requirement{
		{"sheets.spreadsheet_id", func(c *Config) string { return c.Sheets.SpreadsheetID }},
		{"google.service_account_file", func(c *Config) string { return c.Google.ServiceAccountFile }},
	}
	productSheetsRequired = []requirement{
		{"sheets.product_spreadsheet_id", func(c *Config) string { return c.ProductSpreadsheet() }},
		{"google.service_account_file", func(c *Config) string { return c.Google.ServiceAccountFile }},
	}
	gaRequired = []requirement{
		{"analytics.property_id", func(c *Config) string { return c.Analytics.PropertyID }},
	}
)

func join(groups ...[]requirement) []requirement {
	var out []requirement
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func (c *Config) required(job Job) ([]requirement, error) {
	switch job {
	case JobCallSync:
		return join(odooRequired, callRailRequired), nil
	case JobCallExport:
		return join(callRailRequired, sheetsRequired), nil
	case JobGA:
		return join(gaRequired, sheetsRequired), nil
	case JobOpportunities, JobLeads:
		return join(odooRequired, sheetsRequired), nil
	case JobCron:
		return odooRequired, nil
	case JobVendors, JobCheck:
		return join(odooRequired, productSheetsRequired), nil
	case JobAssistant:
		key := requirement{"openai.key", func(c *Config) string { return c.OpenAI.Key }}
		if strings.EqualFold(c.Assistant.Provider, "anthropic") {
			key = requirement{"anthropic.key", func(c *Config) string { return c.Anthropic.Key }}
		}
		return join([]requirement{key}, sheetsRequired), nil
	}
	return nil, eris.Errorf("config: unknown job %q", job)
}

// Validate reports every missing required setting for job at once.
func (c *Config) Validate(job Job) error {
	reqs, err := c.required(job)
	if err != nil {
		return err
	}
	var missing []string
	for _, r := range reqs {
		if strings.TrimSpace(r.value(c)) == "" {
			missing = append(missing, EnvName(r.key))
		}
	}
	if job == JobAssistant {
		switch strings.ToLower(c.Assistant.Provider) {
		case "openai", "anthropic":
		default:
			return eris.Errorf("config: unknown assistant provider %q (openai or anthropic)", c.Assistant.Provider)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("config: %s requires %s", job, strings.Join(missing, ", "))
	}
	return nil
}
