package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"formatted with country code", "+1 (555) 123-4567", "5551234567"},
		{"dashed with country code", "1-555-123-4567", "5551234567"},
		{"plain ten digits", "5551234567", "5551234567"},
		{"dotted", "555.123.4567", "5551234567"},
		{"extra leading digits keeps last ten", "44 20 7946 0958", "2079460958"},
		{"short number passes through", "123-4567", "1234567"},
		{"empty", "", ""},
		{"letters only", "call me", ""},
		{"eleven digits not starting with one", "25551234567", "5551234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"+1 (555) 123-4567",
		"5551234567",
		"123",
		"",
		"1 800 FLOWERS 12345",
		"001-555-123-4567",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_DropsExactlyOneCountryCode(t *testing.T) {
	assert.Equal(t, "5551234567", Normalize("15551234567"))
	assert.Len(t, Normalize("15551234567"), Digits)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("(555) 123-4567", "+1 555 123 4567"))
	assert.False(t, Equal("(555) 123-4567", "(555) 123-4568"))
	assert.False(t, Equal("", ""))
}
