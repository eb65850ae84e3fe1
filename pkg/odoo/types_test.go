package odoo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMany2One_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Many2One
	}{
		{"pair", `[5, "Google Ads"]`, Many2One{ID: 5, Name: "Google Ads"}},
		{"false", `false`, Many2One{}},
		{"null", `null`, Many2One{}},
		{"id only", `[5]`, Many2One{ID: 5}},
		{"false name", `[5, false]`, Many2One{ID: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Many2One
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad Many2One
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &bad))
}

func TestMany2One_Marshal(t *testing.T) {
	b, err := json.Marshal(Many2One{})
	require.NoError(t, err)
	assert.Equal(t, "false", string(b))

	b, err = json.Marshal(Many2One{ID: 3, Name: "USD"})
	require.NoError(t, err)
	assert.JSONEq(t, `[3, "USD"]`, string(b))
}

func TestText_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Text
	}{
		{`"hello"`, "hello"},
		{`false`, ""},
		{`null`, ""},
		{`12.5`, "12.5"},
		{`true`, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad Text
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &bad))
}
