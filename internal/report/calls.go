package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/optima-ops/revops-cli/pkg/callrail"
	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// CallColumns are the export headers, in the order of CallRail's own CSV
// export.
var CallColumns = []string{
	"Call Status", "Number Name", "Tracking Number", "Source", "Start Time",
	"Duration (seconds)", "Name", "Phone Number", "Email", "First-Time Caller",
	"City", "State", "Country", "Agent Name", "Agent Number", "Device Type",
	"Keywords", "Referrer", "Medium", "Landing Page", "Campaign", "Value",
	"Recording Url", "Note",
}

// CallTimeLayout renders call start times.
const CallTimeLayout = "2006-01-02 15:04:05"

// CallRow flattens one call into export columns.
func CallRow(c callrail.Call) []string {
	status := "Missed Call"
	if c.Answered {
		status = "Answered Call"
	}
	first := "FALSE"
	if c.FirstCall {
		first = "TRUE"
	}
	var recording string
	if c.Recording != "" {
		recording = fmt.Sprintf("https://app.callrail.com/calls/%s/recording/redirect", c.ID)
	}

	r := []string{
		status,
		"Number Pool",
		c.TrackingPhoneNumber,
		c.Source,
		callStartTime(c.StartTime),
		strconv.Itoa(c.Duration),
		c.CustomerName,
		c.CustomerPhoneNumber,
		"",
		first,
		c.CustomerCity,
		c.CustomerState,
		c.CustomerCountry,
		c.AgentEmail,
		c.AgentEmail,
		c.DeviceType,
		c.Keywords,
		c.ReferrerDomain,
		c.Medium,
		c.LandingPageURL,
		c.Campaign,
		c.Value.String(),
		recording,
		c.Note,
	}
	for i := range r {
		r[i] = clean(r[i])
	}
	return r
}

// callStartTime renders an ISO 8601 start time, keeping unparseable input.
func callStartTime(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format(CallTimeLayout)
}

// CallExport lays out calls under a four-row info block.
func CallExport(title string, days int, calls []callrail.Call, now time.Time) Sheet {
	values := [][]any{
		row(fmt.Sprintf("CallRail Data - Last %d Days", days)),
		row("Generated: " + now.Format(CallTimeLayout)),
		row(fmt.Sprintf("Total Calls: %d", len(calls))),
		{},
		row(CallColumns...),
	}
	for _, c := range calls {
		values = append(values, row(CallRow(c)...))
	}

	const header = 5
	last := len(values)
	lastCol := sheets.ColumnLetter(len(CallColumns))
	return Sheet{
		Title:  title,
		Rows:   5000,
		Cols:   26,
		Blocks: []Block{{Range: "A1", Values: values}},
		Format: []sheets.Op{
			sheets.Format("A1:A3", sheets.CellFormat{Bold: true, FontSize: 12, Background: sheets.RGB(0.9, 0.9, 0.9)}),
			sheets.Format(fmt.Sprintf("A%d:%s%d", header, lastCol, header), sheets.CellFormat{
				Bold:       true,
				Background: sheets.RGB(0.8, 0.8, 0.9),
				Align:      "CENTER",
			}),
			sheets.Borders(fmt.Sprintf("A%d:%s%d", header, lastCol, last)),
			sheets.FreezeRows(header),
		},
	}
}
