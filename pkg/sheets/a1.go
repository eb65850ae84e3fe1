package sheets

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// GridRange is a zero-based, end-exclusive cell rectangle. A negative end
// means unbounded.
type GridRange struct {
	StartRow int64
	EndRow   int64
	StartCol int64
	EndCol   int64
}

// ColumnLetter converts a 1-based column number to its letter form
// (1 → A, 27 → AA).
func ColumnLetter(n int) string {
	if n <= 0 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// ColumnNumber converts a column letter to its 1-based number.
func ColumnNumber(letters string) (int, error) {
	if letters == "" {
		return 0, eris.New("sheets: empty column")
	}
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return 0, eris.Errorf("sheets: bad column %q", letters)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n, nil
}

// Cell formats a 1-based row and column as A1 notation.
func Cell(row, col int) string {
	return ColumnLetter(col) + strconv.Itoa(row)
}

// ParseCell parses an A1 cell reference into its 1-based row and column.
func ParseCell(ref string) (row, col int, err error) {
	ref = strings.TrimSpace(ref)
	i := 0
	for i < len(ref) && (ref[i] >= 'A' && ref[i] <= 'Z' || ref[i] >= 'a' && ref[i] <= 'z') {
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, eris.Errorf("sheets: bad cell %q", ref)
	}
	col, err = ColumnNumber(ref[:i])
	if err != nil {
		return 0, 0, err
	}
	row, err = strconv.Atoi(ref[i:])
	if err != nil || row <= 0 {
		return 0, 0, eris.Errorf("sheets: bad cell %q", ref)
	}
	return row, col, nil
}

// ParseRange parses "B4" or "A5:X5" into a grid range.
func ParseRange(a1 string) (GridRange, error) {
	start, end, isRange := strings.Cut(a1, ":")
	r1, c1, err := ParseCell(start)
	if err != nil {
		return GridRange{}, err
	}
	r2, c2 := r1, c1
	if isRange {
		if r2, c2, err = ParseCell(end); err != nil {
			return GridRange{}, err
		}
	}
	if r2 < r1 || c2 < c1 {
		return GridRange{}, eris.Errorf("sheets: inverted range %q", a1)
	}
	return GridRange{
		StartRow: int64(r1 - 1),
		EndRow:   int64(r2),
		StartCol: int64(c1 - 1),
		EndCol:   int64(c2),
	}, nil
}

// Ref builds a sheet-qualified range such as 'vendor fetch'!A1:B3.
// An empty a1 addresses the whole worksheet.
func Ref(title, a1 string) string {
	q := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if a1 == "" {
		return q
	}
	return q + "!" + a1
}
