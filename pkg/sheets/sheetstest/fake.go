// Package sheetstest provides an in-memory sheets.Client for tests.
package sheetstest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// Fake stores each worksheet as a grid of strings. Ranges are resolved with
// the sheets A1 helpers; whole-column reads ("A:A") are supported for
// column A only.
type Fake struct {
	mu      sync.Mutex
	title   string
	order   []string
	grids   map[string][][]string
	sizes   map[string][2]int64
	Applied map[string]int
	Modes   []sheets.InputMode

	// FailApply makes Apply return an error.
	FailApply bool
}

// New creates a fake spreadsheet with the given title.
func New(title string) *Fake {
	return &Fake{
		title:   title,
		grids:   map[string][][]string{},
		sizes:   map[string][2]int64{},
		Applied: map[string]int{},
	}
}

// AddWorksheet creates a worksheet holding rows.
func (f *Fake) AddWorksheet(title string, rows [][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.grids[title]; !ok {
		f.order = append(f.order, title)
	}
	grid := make([][]string, len(rows))
	for i, r := range rows {
		grid[i] = append([]string(nil), r...)
	}
	f.grids[title] = grid
	f.sizes[title] = [2]int64{1000, 26}
}

// Grid returns a copy of a worksheet's cells with trailing empty rows kept.
func (f *Fake) Grid(title string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.grids[title]))
	for i, r := range f.grids[title] {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Size returns the grid size a worksheet was created with.
func (f *Fake) Size(title string) (rows, cols int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sizes[title]
	return s[0], s[1]
}

// At returns one cell by A1 reference, or "".
func (f *Fake) At(title, a1 string) string {
	row, col, err := sheets.ParseCell(a1)
	if err != nil {
		return ""
	}
	grid := f.Grid(title)
	if row-1 >= len(grid) || col-1 >= len(grid[row-1]) {
		return ""
	}
	return grid[row-1][col-1]
}

func (f *Fake) Title(context.Context) (string, error) { return f.title, nil }

func (f *Fake) Worksheets(context.Context) ([]sheets.Worksheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sheets.Worksheet, 0, len(f.order))
	for i, t := range f.order {
		out = append(out, sheets.Worksheet{ID: int64(i), Title: t, Rows: f.sizes[t][0], Cols: f.sizes[t][1]})
	}
	return out, nil
}

func (f *Fake) Worksheet(ctx context.Context, title string) (sheets.Worksheet, error) {
	all, _ := f.Worksheets(ctx)
	for _, ws := range all {
		if ws.Title == title {
			return ws, nil
		}
	}
	return sheets.Worksheet{}, eris.Wrap(sheets.ErrWorksheetNotFound, title)
}

func (f *Fake) EnsureWorksheet(ctx context.Context, title string, rows, cols int64) (sheets.Worksheet, error) {
	if ws, err := f.Worksheet(ctx, title); err == nil {
		return ws, nil
	}
	f.mu.Lock()
	f.order = append(f.order, title)
	f.grids[title] = nil
	f.sizes[title] = [2]int64{rows, cols}
	f.mu.Unlock()
	return f.Worksheet(ctx, title)
}

func (f *Fake) Clear(ctx context.Context, title string) error {
	if _, err := f.Worksheet(ctx, title); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grids[title] = nil
	return nil
}

func (f *Fake) Update(ctx context.Context, title, a1 string, values [][]any, mode sheets.InputMode) error {
	if _, err := f.Worksheet(ctx, title); err != nil {
		return err
	}
	if a1 == "" {
		a1 = "A1"
	}
	start := a1
	if i := strings.Index(a1, ":"); i >= 0 {
		start = a1[:i]
	}
	row, col, err := sheets.ParseCell(start)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Modes = append(f.Modes, mode)
	grid := f.grids[title]
	for i, vals := range values {
		r := row - 1 + i
		for len(grid) <= r {
			grid = append(grid, nil)
		}
		for j, v := range vals {
			c := col - 1 + j
			for len(grid[r]) <= c {
				grid[r] = append(grid[r], "")
			}
			grid[r][c] = fmt.Sprint(v)
		}
	}
	f.grids[title] = grid
	return nil
}

func (f *Fake) Read(ctx context.Context, title, a1 string) ([][]string, error) {
	if _, err := f.Worksheet(ctx, title); err != nil {
		return nil, err
	}
	grid := f.Grid(title)
	if a1 == "" {
		return trim(grid), nil
	}
	if a1 == "A:A" {
		out := make([][]string, 0, len(grid))
		for _, r := range grid {
			if len(r) > 0 {
				out = append(out, []string{r[0]})
			} else {
				out = append(out, []string{})
			}
		}
		return trim(out), nil
	}

	rng, err := sheets.ParseRange(a1)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for r := rng.StartRow; r < rng.EndRow && r < int64(len(grid)); r++ {
		var row []string
		for c := rng.StartCol; c < rng.EndCol && c < int64(len(grid[r])); c++ {
			row = append(row, grid[r][c])
		}
		out = append(out, row)
	}
	return trim(out), nil
}

func (f *Fake) Apply(ctx context.Context, title string, ops ...sheets.Op) error {
	if _, err := f.Worksheet(ctx, title); err != nil {
		return err
	}
	if f.FailApply {
		return eris.New("sheetstest: apply failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Applied[title] += len(ops)
	return nil
}

// trim drops trailing empty rows, as the API does.
func trim(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && empty(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func empty(r []string) bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}
