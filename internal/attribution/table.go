package attribution

import "strings"

// Match reports which lookup path resolved a label.
type Match int

const (
	// MatchNone means the label is not in the table.
	MatchNone Match = iota
	// MatchExact means the label matched a key byte for byte.
	MatchExact
	// MatchFold means the label matched a key case-insensitively.
	MatchFold
)

func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchFold:
		return "fold"
	default:
		return "none"
	}
}

// Entry is one label→id row of a mapping table.
type Entry struct {
	Name string `yaml:"name"`
	ID   int64  `yaml:"id"`
}

// Table is an immutable, ordered label→id mapping.
type Table struct {
	entries []Entry
	index   map[string]int64
}

// NewTable builds a table from entries in the given order. When a label
// appears twice the first occurrence wins.
func NewTable(entries []Entry) *Table {
	t := &Table{
		entries: make([]Entry, len(entries)),
		index:   make(map[string]int64, len(entries)),
	}
	copy(t.entries, entries)
	for _, e := range entries {
		if _, dup := t.index[e.Name]; !dup {
			t.index[e.Name] = e.ID
		}
	}
	return t
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in table order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Exact looks a label up without any case folding.
func (t *Table) Exact(name string) (int64, bool) {
	id, ok := t.index[name]
	return id, ok
}

// Lookup tries an exact match first, then scans the entries in order and
// returns the first case-insensitive hit.
//
// If two keys differ only by case the fold path is order-dependent; the
// table order is kept as written rather than picking a tie-break.
func (t *Table) Lookup(name string) (int64, Match) {
	if id, ok := t.index[name]; ok {
		return id, MatchExact
	}
	for _, e := range t.entries {
		if strings.EqualFold(e.Name, name) {
			return e.ID, MatchFold
		}
	}
	return 0, MatchNone
}
