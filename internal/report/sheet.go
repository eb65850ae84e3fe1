// Package report builds the worksheet layouts the export jobs publish:
// cell blocks, worksheet size and formatting requests.
package report

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// Block is a rectangle of values written at Range.
type Block struct {
	Range  string
	Values [][]any
	Mode   sheets.InputMode
}

// Sheet is the full content of one worksheet.
type Sheet struct {
	Title  string
	Rows   int64
	Cols   int64
	Blocks []Block
	Format []sheets.Op
}

// Publish creates the worksheet if needed, clears it, writes every block
// and applies the formatting. Formatting failures are logged and ignored.
func Publish(ctx context.Context, c sheets.Client, s Sheet) error {
	if _, err := c.EnsureWorksheet(ctx, s.Title, s.Rows, s.Cols); err != nil {
		return eris.Wrapf(err, "report: ensure worksheet %q", s.Title)
	}
	if err := c.Clear(ctx, s.Title); err != nil {
		return eris.Wrapf(err, "report: clear worksheet %q", s.Title)
	}
	for _, b := range s.Blocks {
		mode := b.Mode
		if mode == "" {
			mode = sheets.Raw
		}
		if err := c.Update(ctx, s.Title, b.Range, b.Values, mode); err != nil {
			return eris.Wrapf(err, "report: write %s!%s", s.Title, b.Range)
		}
	}
	if len(s.Format) > 0 {
		if err := c.Apply(ctx, s.Title, s.Format...); err != nil {
			zap.L().Warn("report: formatting not applied",
				zap.String("worksheet", s.Title),
				zap.Error(err),
			)
		}
	}
	return nil
}

// clean makes a value safe for a single cell.
func clean(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

// row converts strings to a Block row.
func row(vals ...string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
