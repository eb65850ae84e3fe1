package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/optima-ops/revops-cli/internal/attribution"
	"github.com/optima-ops/revops-cli/internal/config"
	"github.com/optima-ops/revops-cli/internal/crm"
	"github.com/optima-ops/revops-cli/pkg/analytics"
	"github.com/optima-ops/revops-cli/pkg/callrail"
	"github.com/optima-ops/revops-cli/pkg/google"
	"github.com/optima-ops/revops-cli/pkg/odoo"
	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// Remote client constructors. Tests replace the Google ones with fakes.
var (
	openSheets = func(ctx context.Context, spreadsheetID string) (sheets.Client, error) {
		opt, err := googleOption(ctx, google.ScopeSpreadsheets)
		if err != nil {
			return nil, err
		}
		return sheets.New(ctx, spreadsheetID, opt)
	}
	openAnalytics = func(ctx context.Context, propertyID string) (analytics.Client, error) {
		opt, err := googleOption(ctx, google.ScopeAnalyticsReadOnly)
		if err != nil {
			return nil, err
		}
		return analytics.New(ctx, propertyID, opt)
	}
)

// validate checks the settings a job needs before any client is built.
func validate(job config.Job) error {
	if err := cfg.Validate(job); err != nil {
		return err
	}
	zap.L().Debug("config validated", zap.String("job", string(job)))
	return nil
}

func googleOption(ctx context.Context, scopes ...string) (option.ClientOption, error) {
	sa, err := google.LoadServiceAccount(cfg.Google.ServiceAccountFile)
	if err != nil {
		return nil, err
	}
	return sa.ClientOption(ctx, scopes...)
}

func odooClient() odoo.Client {
	opts := []odoo.Option{odoo.WithRateLimit(cfg.Odoo.RateLimit)}
	if cfg.Odoo.TimeoutSecs > 0 {
		opts = append(opts, odoo.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Odoo.TimeoutSecs) * time.Second,
		}))
	}
	return odoo.NewClient(cfg.Odoo.URL, odoo.Credentials{
		DB:       cfg.Odoo.DB,
		Login:    cfg.Odoo.Login,
		Password: cfg.Odoo.Password,
	}, opts...)
}

// newOdoo builds an Odoo client and authenticates it.
func newOdoo(ctx context.Context) (odoo.Client, error) {
	client := odooClient()
	uid, err := client.Authenticate(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "odoo authenticate")
	}
	zap.L().Info("odoo: authenticated", zap.String("db", cfg.Odoo.DB), zap.Int64("uid", uid))
	return client, nil
}

func newCRM(ctx context.Context) (*crm.Service, error) {
	client, err := newOdoo(ctx)
	if err != nil {
		return nil, err
	}
	return crm.New(client), nil
}

func newCallRail() callrail.Client {
	opts := []callrail.Option{callrail.WithRateLimit(cfg.CallRail.RateLimit)}
	if cfg.CallRail.BaseURL != "" {
		opts = append(opts, callrail.WithBaseURL(cfg.CallRail.BaseURL))
	}
	return callrail.NewClient(cfg.CallRail.APIKey, cfg.CallRail.AccountID, opts...)
}

// newMapper returns one attribution table set, from the configured tables
// file when set.
func newMapper(name string) (*attribution.Mapper, error) {
	set := attribution.Default()
	if cfg.Attribution.TablesFile != "" {
		loaded, err := attribution.Load(cfg.Attribution.TablesFile)
		if err != nil {
			return nil, err
		}
		set = loaded
	}
	return set.Get(name)
}
