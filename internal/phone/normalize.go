// Package phone normalizes US phone numbers for record matching.
package phone

import "strings"

// Digits is the length of a normalized US number.
const Digits = 10

// Normalize strips every non-digit, drops a leading US country code "1" when
// more than ten digits remain, and returns the last ten digits. Inputs that
// are shorter than ten digits are returned as-is rather than rejected.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) > Digits && d[0] == '1' {
		d = d[1:]
	}
	if len(d) > Digits {
		d = d[len(d)-Digits:]
	}
	return d
}

// Equal reports whether two raw phone strings normalize to the same value.
// Two empty strings are never equal.
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}
