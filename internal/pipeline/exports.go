package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/internal/crm"
	"github.com/optima-ops/revops-cli/internal/report"
	"github.com/optima-ops/revops-cli/pkg/analytics"
	"github.com/optima-ops/revops-cli/pkg/callrail"
	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// ExportResult reports one worksheet export.
type ExportResult struct {
	Worksheet string
	Rows      int
	Skipped   bool
}

func (r ExportResult) fields() []zap.Field {
	return []zap.Field{
		zap.String("worksheet", r.Worksheet),
		zap.Int("rows", r.Rows),
		zap.Bool("skipped", r.Skipped),
	}
}

// Exporter writes report worksheets from CallRail, GA4 and Odoo.
type Exporter struct {
	sheet sheets.Client
	now   func() time.Time
}

// NewExporter creates an exporter writing to sheet.
func NewExporter(sheet sheets.Client) *Exporter {
	return &Exporter{sheet: sheet, now: time.Now}
}

// CallRail writes the calls of the last days to worksheet.
func (e *Exporter) CallRail(ctx context.Context, calls callrail.Client, worksheet string, days int) (ExportResult, error) {
	res := ExportResult{Worksheet: worksheet}
	end := e.now().UTC()
	list, err := calls.ListCalls(ctx, callrail.CallQuery{
		Start:   end.AddDate(0, 0, -days),
		End:     end,
		Fields:  callrail.ExportFields,
		PerPage: 100,
	})
	if err != nil {
		return res, eris.Wrap(err, "export: list calls")
	}
	if len(list) == 0 {
		res.Skipped = true
		zap.L().Info("export: no calls in window", res.fields()...)
		return res, nil
	}

	res.Rows = len(list)
	if err := report.Publish(ctx, e.sheet, report.CallExport(worksheet, days, list, e.now())); err != nil {
		return res, err
	}
	zap.L().Info("export: callrail worksheet updated", res.fields()...)
	return res, nil
}

// Dashboard writes the daily GA4 traffic overview.
func (e *Exporter) Dashboard(ctx context.Context, ga analytics.Client, worksheet string, days int) (ExportResult, error) {
	w := report.DashboardWindow(e.now(), days)
	return e.analytics(ctx, ga, report.DashboardRequest(w), worksheet, func(rep *analytics.Report) (report.Sheet, error) {
		return report.Dashboard(worksheet, w, days, rep)
	})
}

// Ads writes GA4 paid campaign performance.
func (e *Exporter) Ads(ctx context.Context, ga analytics.Client, worksheet string, days int) (ExportResult, error) {
	w := report.TrailingWindow(e.now(), days)
	return e.analytics(ctx, ga, report.AdsRequest(w), worksheet, func(rep *analytics.Report) (report.Sheet, error) {
		return report.Ads(worksheet, rep)
	})
}

// Users writes GA4 total users by first-user source and medium.
func (e *Exporter) Users(ctx context.Context, ga analytics.Client, worksheet string, days int) (ExportResult, error) {
	w := report.TrailingWindow(e.now(), days)
	return e.analytics(ctx, ga, report.UsersRequest(w), worksheet, func(rep *analytics.Report) (report.Sheet, error) {
		return report.Users(worksheet, w, days, rep)
	})
}

func (e *Exporter) analytics(
	ctx context.Context,
	ga analytics.Client,
	req analytics.ReportRequest,
	worksheet string,
	build func(*analytics.Report) (report.Sheet, error),
) (ExportResult, error) {
	res := ExportResult{Worksheet: worksheet}
	rep, err := ga.RunReport(ctx, req)
	if err != nil {
		return res, eris.Wrap(err, "export: run report")
	}
	res.Rows = len(rep.Rows)

	sheet, err := build(rep)
	if eris.Is(err, report.ErrNoData) {
		res.Skipped = true
		zap.L().Info("export: report returned no data", res.fields()...)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	if err := report.Publish(ctx, e.sheet, sheet); err != nil {
		return res, err
	}
	zap.L().Info("export: analytics worksheet updated", res.fields()...)
	return res, nil
}

// Opportunities writes the opportunities created in the last days.
func (e *Exporter) Opportunities(ctx context.Context, svc *crm.Service, worksheet string, days int) (ExportResult, error) {
	res := ExportResult{Worksheet: worksheet}
	end := e.now()
	opps, err := svc.Opportunities(ctx, end.AddDate(0, 0, -days), end)
	if err != nil {
		return res, err
	}
	res.Rows = len(opps)

	sheet, err := report.Opportunities(worksheet, opps)
	if eris.Is(err, report.ErrNoData) {
		res.Skipped = true
		zap.L().Info("export: no opportunities in window", res.fields()...)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	if err := report.Publish(ctx, e.sheet, sheet); err != nil {
		return res, err
	}
	zap.L().Info("export: opportunities worksheet updated", res.fields()...)
	return res, nil
}
