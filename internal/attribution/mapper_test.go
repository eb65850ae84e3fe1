package attribution

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callrailMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := Default().Get(CallRail)
	require.NoError(t, err)
	return m
}

func TestDefault_Sets(t *testing.T) {
	set := Default()
	require.Contains(t, set, CallRail)
	require.Contains(t, set, Webform)

	assert.Equal(t, "Test", set[CallRail].DefaultCampaign())
	assert.Equal(t, "Website Form Submission", set[Webform].DefaultCampaign())
	assert.Equal(t, 5, set[CallRail].Sources().Len())
	assert.Equal(t, 18, set[CallRail].Mediums().Len())
}

func TestDefault_KeepsOrder(t *testing.T) {
	entries := callrailMapper(t).Mediums().Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "2024 MWB Opti-Rite", entries[0].Name)
	assert.Equal(t, "Website", entries[len(entries)-1].Name)
}

func TestMapper_Source(t *testing.T) {
	m := callrailMapper(t)

	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"Google Ads", 308, true},
		{"Bing Ads", 371, true},
		{"Facebook", 4, true},
		{"LinkedIn Ad", 6, true},
		{"google ads", 0, false},
		{"Yelp", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := m.Source(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapper_Medium_ExactAndFold(t *testing.T) {
	m := callrailMapper(t)

	id, match := m.Medium("cpc")
	assert.Equal(t, int64(66), id)
	assert.Equal(t, MatchExact, match)

	id, match = m.Medium("CPC")
	assert.Equal(t, int64(66), id)
	assert.Equal(t, MatchFold, match)

	id, match = m.Medium("form fill")
	assert.Equal(t, int64(63), id)
	assert.Equal(t, MatchFold, match)

	_, match = m.Medium("carrier pigeon")
	assert.Equal(t, MatchNone, match)
}

func TestTable_FoldTakesFirstInOrder(t *testing.T) {
	tbl := NewTable([]Entry{
		{Name: "Paid", ID: 1},
		{Name: "PAID", ID: 2},
	})

	id, match := tbl.Lookup("PAID")
	assert.Equal(t, int64(2), id)
	assert.Equal(t, MatchExact, match)

	id, match = tbl.Lookup("paid")
	assert.Equal(t, int64(1), id)
	assert.Equal(t, MatchFold, match)
}

func TestTable_DuplicateExactKeepsFirst(t *testing.T) {
	tbl := NewTable([]Entry{{Name: "a", ID: 1}, {Name: "a", ID: 2}})
	id, ok := tbl.Exact("a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestMapper_Map(t *testing.T) {
	m := callrailMapper(t)

	a := m.Map("Google Ads", "cpc", "")
	require.NotNil(t, a.SourceID)
	require.NotNil(t, a.MediumID)
	assert.Equal(t, int64(308), *a.SourceID)
	assert.Equal(t, int64(66), *a.MediumID)
	assert.Equal(t, "Test", a.CampaignName)
	assert.Equal(t, MatchExact, a.SourceMatch)
	assert.Equal(t, MatchExact, a.MediumMatch)

	a = m.Map("Yelp", "", "  Spring Promo ")
	assert.Nil(t, a.SourceID)
	assert.Nil(t, a.MediumID)
	assert.Equal(t, "Spring Promo", a.CampaignName)
	assert.Equal(t, map[string]any{"source_id": false, "medium_id": false}, a.Values())
}

func TestMapper_Webform_LowersInput(t *testing.T) {
	m, err := Default().Get(Webform)
	require.NoError(t, err)

	a := m.Map("  Google ", "Paid_Social", "")
	require.NotNil(t, a.SourceID)
	require.NotNil(t, a.MediumID)
	assert.Equal(t, int64(308), *a.SourceID)
	assert.Equal(t, int64(7), *a.MediumID)
	assert.Equal(t, MatchExact, a.MediumMatch)
	assert.Equal(t, "Website Form Submission", a.CampaignName)
}

func TestSet_GetUnknown(t *testing.T) {
	_, err := Default().Get("billboards")
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	doc := "callrail:\n  default_campaign: Calls\n  sources:\n    - {name: Yelp, id: 9}\n  mediums: []\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	m, err := set.Get(CallRail)
	require.NoError(t, err)

	id, ok := m.Source("Yelp")
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
	assert.Equal(t, "Calls", m.DefaultCampaign())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("{}"))
	assert.Error(t, err)

	_, err = Parse([]byte("callrail:\n  sources:\n    - {id: 3}\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("callrail: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_EmptyPathUsesEmbedded(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.Len(t, set, 2)
}
