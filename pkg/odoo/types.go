package odoo

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// Domain is an Odoo search domain in prefix notation.
type Domain []any

// Cond builds one (field, operator, value) domain term.
func Cond(field, op string, value any) []any {
	return []any{field, op, value}
}

// Many2One decodes a relational field, which Odoo sends as [id, "name"]
// or false when unset.
type Many2One struct {
	ID   int64
	Name string
}

// Valid reports whether the relation is set.
func (m Many2One) Valid() bool { return m.ID != 0 }

// String returns the display name.
func (m Many2One) String() string { return m.Name }

// UnmarshalJSON implements json.Unmarshaler.
func (m *Many2One) UnmarshalJSON(b []byte) error {
	*m = Many2One{}
	if isFalsy(b) {
		return nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return eris.Wrap(err, "odoo: decode many2one")
	}
	if len(pair) == 0 {
		return nil
	}
	if err := json.Unmarshal(pair[0], &m.ID); err != nil {
		return eris.Wrap(err, "odoo: decode many2one id")
	}
	if len(pair) > 1 {
		var name Text
		if err := json.Unmarshal(pair[1], &name); err != nil {
			return eris.Wrap(err, "odoo: decode many2one name")
		}
		m.Name = string(name)
	}
	return nil
}

// MarshalJSON writes the relation back in Odoo's shape.
func (m Many2One) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return []byte("false"), nil
	}
	return json.Marshal([]any{m.ID, m.Name})
}

// Text decodes a scalar field where Odoo sends false for empty. Numbers are
// kept in their JSON form.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case isFalsy(b):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return eris.Wrap(err, "odoo: decode text")
		}
		*t = Text(s)
	case bytes.Equal(b, []byte("true")):
		*t = "true"
	default:
		if _, err := strconv.ParseFloat(string(b), 64); err != nil {
			return eris.Errorf("odoo: decode text: unexpected value %s", string(b))
		}
		*t = Text(b)
	}
	return nil
}

// String returns the text value.
func (t Text) String() string { return string(t) }
