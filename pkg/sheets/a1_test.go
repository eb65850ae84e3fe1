package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{1: "A", 2: "B", 24: "X", 26: "Z", 27: "AA", 31: "AE", 52: "AZ", 703: "AAA", 0: ""}
	for n, want := range tests {
		assert.Equal(t, want, ColumnLetter(n), "column %d", n)
	}
}

func TestColumnNumber(t *testing.T) {
	for _, n := range []int{1, 5, 26, 27, 33, 702, 703} {
		got, err := ColumnNumber(ColumnLetter(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	got, err := ColumnNumber("ae")
	require.NoError(t, err)
	assert.Equal(t, 31, got)

	_, err = ColumnNumber("")
	assert.Error(t, err)
	_, err = ColumnNumber("A1")
	assert.Error(t, err)
}

func TestParseCell(t *testing.T) {
	row, col, err := ParseCell("B4")
	require.NoError(t, err)
	assert.Equal(t, 4, row)
	assert.Equal(t, 2, col)

	row, col, err = ParseCell("AE50")
	require.NoError(t, err)
	assert.Equal(t, 50, row)
	assert.Equal(t, 31, col)

	assert.Equal(t, "U7", Cell(7, 21))

	for _, bad := range []string{"", "B", "4", "B0", "B-1", "4B"} {
		_, _, err := ParseCell(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRange(t *testing.T) {
	got, err := ParseRange("A5:X5")
	require.NoError(t, err)
	assert.Equal(t, GridRange{StartRow: 4, EndRow: 5, StartCol: 0, EndCol: 24}, got)

	got, err = ParseRange("B1")
	require.NoError(t, err)
	assert.Equal(t, GridRange{StartRow: 0, EndRow: 1, StartCol: 1, EndCol: 2}, got)

	_, err = ParseRange("X5:A1")
	assert.Error(t, err)
	_, err = ParseRange("A1:")
	assert.Error(t, err)
}

func TestRef(t *testing.T) {
	assert.Equal(t, "'vendor fetch'!A1:B3", Ref("vendor fetch", "A1:B3"))
	assert.Equal(t, "'Bob''s'!A1", Ref("Bob's", "A1"))
	assert.Equal(t, "'data'", Ref("data", ""))
}
