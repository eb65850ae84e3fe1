// Package attribution maps marketing channel labels from CallRail calls and
// website form submissions onto Odoo utm.source / utm.medium ids.
package attribution

import (
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Table set names.
const (
	CallRail = "callrail"
	Webform  = "webform"
)

// Attribution is the Odoo-side reference set written to a lead or order.
// A nil id clears the field on write.
type Attribution struct {
	SourceID     *int64
	MediumID     *int64
	CampaignName string

	SourceMatch Match
	MediumMatch Match
}

// Values returns the source/medium part of a write payload. The campaign is
// resolved separately against utm.campaign.
func (a Attribution) Values() map[string]any {
	return map[string]any{
		"source_id": nullable(a.SourceID),
		"medium_id": nullable(a.MediumID),
	}
}

func nullable(id *int64) any {
	if id == nil {
		return false
	}
	return *id
}

// Mapper resolves labels through one table set.
type Mapper struct {
	name            string
	defaultCampaign string
	lowerInput      bool
	sources         *Table
	mediums         *Table
}

type setDoc struct {
	DefaultCampaign string  `yaml:"default_campaign"`
	LowerInput      bool    `yaml:"lower_input"`
	Sources         []Entry `yaml:"sources"`
	Mediums         []Entry `yaml:"mediums"`
}

// Name returns the table set name.
func (m *Mapper) Name() string { return m.name }

// DefaultCampaign is the campaign used when a record carries none.
func (m *Mapper) DefaultCampaign() string { return m.defaultCampaign }

// Sources returns the source table.
func (m *Mapper) Sources() *Table { return m.sources }

// Mediums returns the medium table.
func (m *Mapper) Mediums() *Table { return m.mediums }

func (m *Mapper) prepare(s string) string {
	if m.lowerInput {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return s
}

// Source looks a source label up by exact key.
func (m *Mapper) Source(name string) (int64, bool) {
	return m.sources.Exact(m.prepare(name))
}

// Medium looks a medium label up, falling back to a case-insensitive scan.
func (m *Mapper) Medium(name string) (int64, Match) {
	return m.mediums.Lookup(m.prepare(name))
}

// Map resolves all three attribution fields for one record.
func (m *Mapper) Map(source, medium, campaign string) Attribution {
	a := Attribution{CampaignName: strings.TrimSpace(campaign)}
	if a.CampaignName == "" {
		a.CampaignName = m.defaultCampaign
	}

	if id, ok := m.Source(source); ok {
		a.SourceID = &id
		a.SourceMatch = MatchExact
	} else if source != "" {
		zap.L().Debug("attribution: unmapped source",
			zap.String("set", m.name),
			zap.String("source", source),
		)
	}

	if id, match := m.Medium(medium); match != MatchNone {
		a.MediumID = &id
		a.MediumMatch = match
	} else if medium != "" {
		zap.L().Debug("attribution: unmapped medium",
			zap.String("set", m.name),
			zap.String("medium", medium),
		)
	}
	return a
}

// Set holds every mapper loaded from one tables document.
type Set map[string]*Mapper

// Get returns the named mapper.
func (s Set) Get(name string) (*Mapper, error) {
	m, ok := s[name]
	if !ok {
		return nil, eris.Errorf("attribution: unknown table set %q", name)
	}
	return m, nil
}

// Default parses the embedded tables.
func Default() Set {
	set, err := Parse(defaultTables)
	if err != nil {
		panic(err)
	}
	return set
}

// Load parses tables from path, or the embedded tables when path is empty.
func Load(path string) (Set, error) {
	if path == "" {
		return Parse(defaultTables)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "attribution: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, eris.Wrapf(err, "attribution: read %s", path)
	}
	return Parse(data)
}

// Parse decodes a tables document. Entry order within each list is kept.
func Parse(data []byte) (Set, error) {
	var doc map[string]setDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "attribution: parse tables")
	}
	if len(doc) == 0 {
		return nil, eris.New("attribution: no table sets defined")
	}

	set := make(Set, len(doc))
	for name, d := range doc {
		for _, e := range append(append([]Entry{}, d.Sources...), d.Mediums...) {
			if e.Name == "" {
				return nil, eris.Errorf("attribution: set %q has an entry without a name", name)
			}
		}
		set[name] = &Mapper{
			name:            name,
			defaultCampaign: d.DefaultCampaign,
			lowerInput:      d.LowerInput,
			sources:         NewTable(d.Sources),
			mediums:         NewTable(d.Mediums),
		}
	}
	return set, nil
}
