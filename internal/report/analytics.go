package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/optima-ops/revops-cli/pkg/analytics"
	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// ErrNoData is returned when a report has no rows to lay out.
var ErrNoData = eris.New("report: no data")

const gaDate = "20060102"

// Window is an inclusive report date range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) start() string { return w.Start.Format(analytics.DateLayout) }
func (w Window) end() string   { return w.End.Format(analytics.DateLayout) }

// DashboardWindow covers the days full days ending yesterday.
func DashboardWindow(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now.AddDate(0, 0, -1)}
}

// TrailingWindow covers the last days days including today.
func TrailingWindow(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

type metricKind int

const (
	kindCount metricKind = iota
	kindRate
	kindDuration
	kindCurrency
)

type dashboardMetric struct {
	label string
	name  string
	kind  metricKind
}

var dashboardMetrics = []dashboardMetric{
	{"Sessions", "sessions", kindCount},
	{"Users", "activeUsers", kindCount},
	{"Page Views", "screenPageViews", kindCount},
	{"Engagement Rate", "engagementRate", kindRate},
	{"Bounce Rate", "bounceRate", kindRate},
	{"Avg. Session Duration", "averageSessionDuration", kindDuration},
	{"Conversions", "conversions", kindCount},
	{"Revenue", "totalRevenue", kindCurrency},
}

// DashboardRequest asks for the daily dashboard metrics.
func DashboardRequest(w Window) analytics.ReportRequest {
	names := make([]string, len(dashboardMetrics))
	for i, m := range dashboardMetrics {
		names[i] = m.name
	}
	return analytics.ReportRequest{
		StartDate:  w.start(),
		EndDate:    w.end(),
		Metrics:    names,
		Dimensions: []string{"date"},
		OrderBys:   []analytics.OrderBy{{Dimension: "date"}},
	}
}

// point is one day of a metric: the cell shown and the value changes are
// computed from, at the displayed precision.
type point struct {
	cell  any
	value float64
}

func parseMetric(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func newPoint(kind metricKind, raw float64) point {
	switch kind {
	case kindRate:
		pct := raw * 100
		return point{cell: fmt.Sprintf("%.2f%%", pct), value: round2(pct)}
	case kindDuration:
		secs := int(raw)
		return point{cell: Duration(secs), value: float64(secs)}
	case kindCurrency:
		return point{cell: fmt.Sprintf("$%.2f", raw), value: round2(raw)}
	default:
		n := int(raw)
		return point{cell: n, value: float64(n)}
	}
}

// Duration renders seconds as M:SS.
func Duration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func summarize(kind metricKind, pts []point) any {
	var sum float64
	for _, p := range pts {
		sum += p.value
	}
	switch kind {
	case kindRate:
		return fmt.Sprintf("%.2f%%", sum/float64(len(pts)))
	case kindDuration:
		return Duration(int(sum) / len(pts))
	case kindCurrency:
		return fmt.Sprintf("$%.2f", sum)
	default:
		return int(sum)
	}
}

// Change renders the percentage change from prev to cur with a direction
// arrow.
func Change(prev, cur float64) string {
	if prev == 0 {
		if cur > 0 {
			return "∞"
		}
		return "0.00%"
	}
	pct := (cur - prev) / prev * 100
	switch {
	case pct > 0:
		return fmt.Sprintf("↑%.2f%%", pct)
	case pct < 0:
		return fmt.Sprintf("↓%.2f%%", -pct)
	default:
		return "0.00%"
	}
}

// Dashboard lays out one row per metric across the window's days, with
// totals, first-to-last change, day-over-day changes and a chart block.
func Dashboard(title string, w Window, days int, rep *analytics.Report) (Sheet, error) {
	if rep == nil || len(rep.Rows) == 0 {
		return Sheet{}, ErrNoData
	}

	var dates []string
	series := make([][]point, len(dashboardMetrics))
	for _, r := range rep.Rows {
		d, err := time.Parse(gaDate, rep.Dimension(r, "date"))
		if err != nil {
			return Sheet{}, eris.Wrapf(err, "report: parse date %q", rep.Dimension(r, "date"))
		}
		dates = append(dates, d.Format("01/02/2006"))
		for i, m := range dashboardMetrics {
			series[i] = append(series[i], newPoint(m.kind, parseMetric(rep.Metric(r, m.name))))
		}
	}

	header := []any{"Metric"}
	for _, d := range dates {
		header = append(header, d)
	}
	header = append(header, "Total/Avg", "Change")

	values := [][]any{
		{fmt.Sprintf("Last %d Days (%s to %s)", days, w.start(), w.end())},
		{},
		header,
	}
	for i, m := range dashboardMetrics {
		pts := series[i]
		r := []any{m.label}
		for _, p := range pts {
			r = append(r, p.cell)
		}
		r = append(r, summarize(m.kind, pts), Change(pts[0].value, pts[len(pts)-1].value))
		values = append(values, r)
	}

	values = append(values, []any{}, []any{"Daily Changes"})
	for i, m := range dashboardMetrics {
		pts := series[i]
		r := []any{m.label + " Daily Change", ""}
		for j := 1; j < len(pts); j++ {
			r = append(r, Change(pts[j-1].value, pts[j].value))
		}
		values = append(values, r)
	}

	values = append(values, []any{}, []any{}, []any{}, []any{"Chart Data (for reference)"}, []any{})
	chartStart := len(values) + 1
	dateRow := []any{"Date"}
	for _, d := range dates {
		dateRow = append(dateRow, d)
	}
	values = append(values, dateRow)
	for i := 0; i < 3; i++ {
		r := []any{dashboardMetrics[i].label}
		for _, p := range series[i] {
			r = append(r, p.cell)
		}
		values = append(values, r)
	}

	n := len(dashboardMetrics)
	firstMetric, lastMetric := 4, 3+n
	dailyLabel := lastMetric + 2
	firstDaily, lastDaily := dailyLabel+1, dailyLabel+n
	totalCol := sheets.ColumnLetter(len(dates) + 2)
	changeCol := sheets.ColumnLetter(len(dates) + 3)
	span := func(row int) string { return fmt.Sprintf("A%d:%s%d", row, changeCol, row) }

	return Sheet{
		Title:  title,
		Rows:   50,
		Cols:   35,
		Blocks: []Block{{Range: "A1", Values: values}},
		Format: []sheets.Op{
			sheets.Format(span(1), sheets.CellFormat{Bold: true, FontSize: 12, Background: sheets.RGB(0.9, 0.9, 0.9), Align: "CENTER"}),
			sheets.Format(span(3), sheets.CellFormat{Bold: true, Background: sheets.RGB(0.8, 0.8, 0.9), Align: "CENTER"}),
			sheets.Format(fmt.Sprintf("A%d:A%d", firstMetric, lastMetric), sheets.CellFormat{Bold: true}),
			sheets.Format(fmt.Sprintf("%s%d:%s%d", totalCol, firstMetric, totalCol, lastMetric),
				sheets.CellFormat{Bold: true, Background: sheets.RGB(0.95, 0.95, 0.8)}),
			sheets.Format(fmt.Sprintf("%s%d:%s%d", changeCol, firstMetric, changeCol, lastMetric),
				sheets.CellFormat{Bold: true, Background: sheets.RGB(0.95, 0.8, 0.8)}),
			sheets.Format(fmt.Sprintf("A%d", dailyLabel), sheets.CellFormat{Bold: true, Background: sheets.RGB(0.9, 0.9, 0.9)}),
			sheets.Format(fmt.Sprintf("A%d:A%d", firstDaily, lastDaily), sheets.CellFormat{Bold: true, Italic: true}),
			sheets.Format(fmt.Sprintf("A%d", chartStart-2), sheets.CellFormat{Bold: true, Background: sheets.RGB(0.9, 0.9, 0.9)}),
			sheets.Format(fmt.Sprintf("A%d", chartStart), sheets.CellFormat{Bold: true}),
			sheets.TextContainsColor(fmt.Sprintf("B%d:%s%d", firstDaily, changeCol, lastDaily), "↑", sheets.RGB(0, 0.6, 0)),
			sheets.TextContainsColor(fmt.Sprintf("B%d:%s%d", firstDaily, changeCol, lastDaily), "↓", sheets.RGB(0.8, 0, 0)),
			sheets.Borders(fmt.Sprintf("A1:%s%d", changeCol, len(values))),
		},
	}, nil
}

// AdsColumns are the paid-search report headers.
var AdsColumns = []string{
	"Ads cost", "Date", "Session Google Ads campaign", "Ads clicks",
	"Purchase revenue", "Key event count for purchase",
}

// AdsRequest asks for paid-search cost and outcomes per day and campaign.
func AdsRequest(w Window) analytics.ReportRequest {
	return analytics.ReportRequest{
		StartDate:  w.start(),
		EndDate:    w.end(),
		Metrics:    []string{"advertiserAdCost", "advertiserAdClicks", "totalRevenue", "conversions"},
		Dimensions: []string{"date", "sessionCampaignName"},
		OrderBys:   []analytics.OrderBy{{Metric: "advertiserAdCost", Desc: true}},
		Filter:     &analytics.StringFilter{Field: "sessionMedium", Value: "cpc", MatchType: "EXACT"},
	}
}

type adsRow struct {
	cost        float64
	date        string
	campaign    string
	clicks      int
	revenue     float64
	conversions int
}

// Ads lays out paid-search rows, most expensive first.
func Ads(title string, rep *analytics.Report) (Sheet, error) {
	if rep == nil || len(rep.Rows) == 0 {
		return Sheet{}, ErrNoData
	}
	rows := make([]adsRow, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		d, err := time.Parse(gaDate, rep.Dimension(r, "date"))
		if err != nil {
			return Sheet{}, eris.Wrapf(err, "report: parse date %q", rep.Dimension(r, "date"))
		}
		rows = append(rows, adsRow{
			cost:        parseMetric(rep.Metric(r, "advertiserAdCost")),
			date:        d.Format(analytics.DateLayout),
			campaign:    rep.Dimension(r, "sessionCampaignName"),
			clicks:      int(parseMetric(rep.Metric(r, "advertiserAdClicks"))),
			revenue:     parseMetric(rep.Metric(r, "totalRevenue")),
			conversions: int(parseMetric(rep.Metric(r, "conversions"))),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].cost > rows[j].cost })

	values := [][]any{row(AdsColumns...)}
	for _, r := range rows {
		values = append(values, []any{r.cost, r.date, r.campaign, r.clicks, r.revenue, r.conversions})
	}
	return Sheet{
		Title:  title,
		Rows:   1000,
		Cols:   10,
		Blocks: []Block{{Range: "A1", Values: values}},
	}, nil
}

// UsersColumns are the acquisition report headers.
var UsersColumns = []string{"Date", "Users", "First User Source", "First User Medium"}

// UsersRequest asks for new-user acquisition by day, source and medium.
func UsersRequest(w Window) analytics.ReportRequest {
	return analytics.ReportRequest{
		StartDate:  w.start(),
		EndDate:    w.end(),
		Metrics:    []string{"totalUsers"},
		Dimensions: []string{"date", "firstUserSource", "firstUserMedium"},
		OrderBys: []analytics.OrderBy{
			{Dimension: "date"},
			{Metric: "totalUsers", Desc: true},
		},
	}
}

type usersRow struct {
	date   string
	users  int
	source string
	medium string
}

// Users lays out daily users per first-touch source and medium. Rows with
// no users are dropped.
func Users(title string, w Window, days int, rep *analytics.Report) (Sheet, error) {
	if rep == nil || len(rep.Rows) == 0 {
		return Sheet{}, ErrNoData
	}
	var rows []usersRow
	total := 0
	for _, r := range rep.Rows {
		n := int(parseMetric(rep.Metric(r, "totalUsers")))
		if n <= 0 {
			continue
		}
		d, err := time.Parse(gaDate, rep.Dimension(r, "date"))
		if err != nil {
			return Sheet{}, eris.Wrapf(err, "report: parse date %q", rep.Dimension(r, "date"))
		}
		rows = append(rows, usersRow{
			date:   d.Format(analytics.DateLayout),
			users:  n,
			source: rep.Dimension(r, "firstUserSource"),
			medium: rep.Dimension(r, "firstUserMedium"),
		})
		total += n
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].date != rows[j].date {
			return rows[i].date < rows[j].date
		}
		return rows[i].users > rows[j].users
	})

	p := message.NewPrinter(language.English)
	values := [][]any{
		{fmt.Sprintf("GA4 User Data: %s to %s (Last %d days)", w.start(), w.end(), days)},
		{p.Sprintf("Total Users: %d", total)},
		{},
		row(UsersColumns...),
	}
	for _, r := range rows {
		values = append(values, []any{r.date, r.users, r.source, r.medium})
	}

	last := len(values)
	return Sheet{
		Title:  title,
		Rows:   1000,
		Cols:   10,
		Blocks: []Block{{Range: "A1", Values: values}},
		Format: []sheets.Op{
			sheets.Format("A1:D1", sheets.CellFormat{Bold: true, FontSize: 12, Background: sheets.RGB(0.9, 0.9, 0.9), Align: "CENTER"}),
			sheets.Format("A2:D2", sheets.CellFormat{Bold: true, Background: sheets.RGB(0.95, 0.95, 0.95), Align: "CENTER"}),
			sheets.Format("A4:D4", sheets.CellFormat{Bold: true, Background: sheets.RGB(0.8, 0.8, 0.9), Align: "CENTER"}),
			sheets.Format(fmt.Sprintf("A5:A%d", max(last, 5)), sheets.CellFormat{Number: &sheets.NumberFormat{Type: "DATE", Pattern: "yyyy-mm-dd"}}),
			sheets.Format(fmt.Sprintf("B5:B%d", max(last, 5)), sheets.CellFormat{Number: &sheets.NumberFormat{Type: "NUMBER", Pattern: "#,##0"}}),
			sheets.Borders(fmt.Sprintf("A1:D%d", last)),
		},
	}, nil
}
