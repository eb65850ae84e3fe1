package report

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/optima-ops/revops-cli/pkg/callrail"
)

func sampleCall() callrail.Call {
	return callrail.Call{
		ID:                  "CAL123",
		Answered:            true,
		TrackingPhoneNumber: "+18005550100",
		Source:              "Google Ads",
		StartTime:           "2025-03-04T09:15:30-05:00",
		Duration:            125,
		CustomerName:        "Jane Doe",
		CustomerPhoneNumber: "+15551234567",
		CustomerCity:        "Austin",
		CustomerState:       "TX",
		CustomerCountry:     "US",
		DeviceType:          "mobile",
		Keywords:            "dry erase",
		ReferrerDomain:      "google.com",
		Medium:              "cpc",
		LandingPageURL:      "https://example.com/?gclid=1",
		Campaign:            "Spring",
		Value:               "19.5",
		Recording:           "https://api.callrail.com/recording/1",
		AgentEmail:          "rep@example.com",
		FirstCall:           true,
		Note:                "called back\nleft voicemail\r",
	}
}

func TestCallRow(t *testing.T) {
	want := []string{
		"Answered Call", "Number Pool", "+18005550100", "Google Ads", "2025-03-04 09:15:30",
		"125", "Jane Doe", "+15551234567", "", "TRUE",
		"Austin", "TX", "US", "rep@example.com", "rep@example.com", "mobile",
		"dry erase", "google.com", "cpc", "https://example.com/?gclid=1", "Spring", "19.5",
		"https://app.callrail.com/calls/CAL123/recording/redirect", "called back left voicemail ",
	}
	got := CallRow(sampleCall())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CallRow mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, got, len(CallColumns))
}

func TestCallRow_MissedWithoutRecording(t *testing.T) {
	got := CallRow(callrail.Call{ID: "X", StartTime: "not a time"})

	assert.Equal(t, "Missed Call", got[0])
	assert.Equal(t, "not a time", got[4])
	assert.Equal(t, "0", got[5])
	assert.Equal(t, "FALSE", got[9])
	assert.Equal(t, "", got[22])
}

func TestCallExport(t *testing.T) {
	now := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	s := CallExport("30-day-callrail", 30, []callrail.Call{sampleCall(), {ID: "B"}}, now)

	assert.Equal(t, "30-day-callrail", s.Title)
	assert.Equal(t, int64(5000), s.Rows)
	assert.Equal(t, int64(26), s.Cols)
	assert.Len(t, s.Format, 4)

	values := s.Blocks[0].Values
	assert.Len(t, values, 7)
	assert.Equal(t, []any{"CallRail Data - Last 30 Days"}, values[0])
	assert.Equal(t, []any{"Generated: 2025-03-05 08:00:00"}, values[1])
	assert.Equal(t, []any{"Total Calls: 2"}, values[2])
	assert.Empty(t, values[3])
	assert.Equal(t, "Call Status", values[4][0])
	assert.Equal(t, "Note", values[4][23])
	assert.Equal(t, "Answered Call", values[5][0])
}
