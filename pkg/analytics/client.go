// Package analytics wraps the Google Analytics Data API (GA4) report
// endpoint.
package analytics

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// DateLayout is the layout of report date ranges.
const DateLayout = "2006-01-02"

// Client defines the report operation used by the jobs.
type Client interface {
	RunReport(ctx context.Context, req ReportRequest) (*Report, error)
}

// ReportRequest describes one single-range report.
type ReportRequest struct {
	StartDate  string
	EndDate    string
	Metrics    []string
	Dimensions []string
	OrderBys   []OrderBy
	Filter     *StringFilter
}

// OrderBy sorts by a dimension or a metric. Exactly one of Dimension and
// Metric is set.
type OrderBy struct {
	Dimension string
	Metric    string
	Desc      bool
}

// StringFilter restricts rows to a dimension value.
type StringFilter struct {
	Field     string
	Value     string
	MatchType string
}

// Report holds string-valued rows keyed by the response headers.
type Report struct {
	DimensionHeaders []string
	MetricHeaders    []string
	Rows             []Row
}

// Row is one report row in header order.
type Row struct {
	Dimensions []string
	Metrics    []string
}

// Metric returns the value of the named metric in row, or "".
func (r *Report) Metric(row Row, name string) string {
	for i, h := range r.MetricHeaders {
		if h == name && i < len(row.Metrics) {
			return row.Metrics[i]
		}
	}
	return ""
}

// Dimension returns the value of the named dimension in row, or "".
func (r *Report) Dimension(row Row, name string) string {
	for i, h := range r.DimensionHeaders {
		if h == name && i < len(row.Dimensions) {
			return row.Dimensions[i]
		}
	}
	return ""
}

type apiClient struct {
	svc      *analyticsdata.Service
	property string
}

// New creates a client for one GA4 property id.
func New(ctx context.Context, propertyID string, opts ...option.ClientOption) (Client, error) {
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "analytics: create service")
	}
	property := propertyID
	if !strings.HasPrefix(property, "properties/") {
		property = "properties/" + property
	}
	return &apiClient{svc: svc, property: property}, nil
}

func (c *apiClient) RunReport(ctx context.Context, req ReportRequest) (*Report, error) {
	resp, err := c.svc.Properties.RunReport(c.property, toAPI(req)).Context(ctx).Do()
	if err != nil {
		return nil, eris.Wrapf(err, "analytics: run report on %s", c.property)
	}
	return fromAPI(resp), nil
}

func toAPI(req ReportRequest) *analyticsdata.RunReportRequest {
	out := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: req.StartDate, EndDate: req.EndDate}},
	}
	for _, m := range req.Metrics {
		out.Metrics = append(out.Metrics, &analyticsdata.Metric{Name: m})
	}
	for _, d := range req.Dimensions {
		out.Dimensions = append(out.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, o := range req.OrderBys {
		ob := &analyticsdata.OrderBy{Desc: o.Desc}
		if o.Metric != "" {
			ob.Metric = &analyticsdata.MetricOrderBy{MetricName: o.Metric}
		} else {
			ob.Dimension = &analyticsdata.DimensionOrderBy{DimensionName: o.Dimension}
		}
		out.OrderBys = append(out.OrderBys, ob)
	}
	if f := req.Filter; f != nil {
		match := f.MatchType
		if match == "" {
			match = "EXACT"
		}
		out.DimensionFilter = &analyticsdata.FilterExpression{
			Filter: &analyticsdata.Filter{
				FieldName:    f.Field,
				StringFilter: &analyticsdata.StringFilter{MatchType: match, Value: f.Value},
			},
		}
	}
	return out
}

func fromAPI(resp *analyticsdata.RunReportResponse) *Report {
	r := &Report{}
	for _, h := range resp.DimensionHeaders {
		r.DimensionHeaders = append(r.DimensionHeaders, h.Name)
	}
	for _, h := range resp.MetricHeaders {
		r.MetricHeaders = append(r.MetricHeaders, h.Name)
	}
	for _, row := range resp.Rows {
		var out Row
		for _, v := range row.DimensionValues {
			out.Dimensions = append(out.Dimensions, v.Value)
		}
		for _, v := range row.MetricValues {
			out.Metrics = append(out.Metrics, v.Value)
		}
		r.Rows = append(r.Rows, out)
	}
	return r
}
