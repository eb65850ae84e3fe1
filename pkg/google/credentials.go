// Package google loads service-account credentials for the Google Sheets
// and Analytics Data APIs.
package google

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	goauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// OAuth scopes used by the jobs.
const (
	ScopeSpreadsheets      = "https://www.googleapis.com/auth/spreadsheets"
	ScopeAnalyticsReadOnly = "https://www.googleapis.com/auth/analytics.readonly"
)

// ServiceAccount holds a parsed service-account key.
type ServiceAccount struct {
	Email string
	json  []byte
}

// LoadServiceAccount reads and validates a service-account key file.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "google: read service account %s", path)
	}
	return ParseServiceAccount(data)
}

// ParseServiceAccount validates a service-account key.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	conf, err := goauth.JWTConfigFromJSON(data)
	if err != nil {
		return nil, eris.Wrap(err, "google: parse service account")
	}
	return &ServiceAccount{Email: conf.Email, json: data}, nil
}

// ClientOption returns an authenticated API option for the given scopes.
func (s *ServiceAccount) ClientOption(ctx context.Context, scopes ...string) (option.ClientOption, error) {
	conf, err := goauth.JWTConfigFromJSON(s.json, scopes...)
	if err != nil {
		return nil, eris.Wrap(err, "google: build jwt config")
	}
	return option.WithTokenSource(conf.TokenSource(ctx)), nil
}
