package sheets

import (
	"strings"

	sheetsapi "google.golang.org/api/sheets/v4"
)

// Color is an RGB color with components in [0, 1].
type Color struct {
	Red, Green, Blue float64
}

// RGB builds a color.
func RGB(r, g, b float64) *Color {
	return &Color{Red: r, Green: g, Blue: b}
}

func (c *Color) api() *sheetsapi.Color {
	if c == nil {
		return nil
	}
	return &sheetsapi.Color{Red: c.Red, Green: c.Green, Blue: c.Blue}
}

// NumberFormat is a number format type (NUMBER, DATE, CURRENCY...) with
// an optional pattern.
type NumberFormat struct {
	Type    string
	Pattern string
}

// CellFormat is the subset of cell formatting the jobs apply. Unset fields
// are left untouched on the sheet.
type CellFormat struct {
	Bold       bool
	Italic     bool
	FontSize   int64
	Background *Color
	Align      string
	Number     *NumberFormat
}

// Op is one formatting request for a worksheet.
type Op interface {
	request(sheetID int64) (*sheetsapi.Request, error)
}

type opFunc func(sheetID int64) (*sheetsapi.Request, error)

func (f opFunc) request(sheetID int64) (*sheetsapi.Request, error) { return f(sheetID) }

func gridRange(sheetID int64, a1 string) (*sheetsapi.GridRange, error) {
	r, err := ParseRange(a1)
	if err != nil {
		return nil, err
	}
	return &sheetsapi.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    r.StartRow,
		EndRowIndex:      r.EndRow,
		StartColumnIndex: r.StartCol,
		EndColumnIndex:   r.EndCol,
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}, nil
}

// Format applies f to every cell of a1.
func Format(a1 string, f CellFormat) Op {
	return opFunc(func(sheetID int64) (*sheetsapi.Request, error) {
		rng, err := gridRange(sheetID, a1)
		if err != nil {
			return nil, err
		}
		cf := &sheetsapi.CellFormat{}
		var fields []string
		if f.Bold || f.Italic || f.FontSize > 0 {
			cf.TextFormat = &sheetsapi.TextFormat{Bold: f.Bold, Italic: f.Italic, FontSize: f.FontSize}
			fields = append(fields, "textFormat")
		}
		if f.Background != nil {
			cf.BackgroundColor = f.Background.api()
			fields = append(fields, "backgroundColor")
		}
		if f.Align != "" {
			cf.HorizontalAlignment = f.Align
			fields = append(fields, "horizontalAlignment")
		}
		if f.Number != nil {
			cf.NumberFormat = &sheetsapi.NumberFormat{Type: f.Number.Type, Pattern: f.Number.Pattern}
			fields = append(fields, "numberFormat")
		}
		return &sheetsapi.Request{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range:  rng,
				Cell:   &sheetsapi.CellData{UserEnteredFormat: cf},
				Fields: "userEnteredFormat(" + strings.Join(fields, ",") + ")",
			},
		}, nil
	})
}

// Borders draws solid borders around and between every cell of a1.
func Borders(a1 string) Op {
	return opFunc(func(sheetID int64) (*sheetsapi.Request, error) {
		rng, err := gridRange(sheetID, a1)
		if err != nil {
			return nil, err
		}
		solid := func() *sheetsapi.Border { return &sheetsapi.Border{Style: "SOLID"} }
		return &sheetsapi.Request{
			UpdateBorders: &sheetsapi.UpdateBordersRequest{
				Range:           rng,
				Top:             solid(),
				Bottom:          solid(),
				Left:            solid(),
				Right:           solid(),
				InnerHorizontal: solid(),
				InnerVertical:   solid(),
			},
		}, nil
	})
}

// FreezeRows pins the first n rows.
func FreezeRows(n int64) Op {
	return opFunc(func(sheetID int64) (*sheetsapi.Request, error) {
		return &sheetsapi.Request{
			UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
				Properties: &sheetsapi.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheetsapi.GridProperties{
						FrozenRowCount:  n,
						ForceSendFields: []string{"FrozenRowCount"},
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		}, nil
	})
}

// TextContainsColor colors the text of cells in a1 that contain text.
func TextContainsColor(a1, text string, c *Color) Op {
	return opFunc(func(sheetID int64) (*sheetsapi.Request, error) {
		rng, err := gridRange(sheetID, a1)
		if err != nil {
			return nil, err
		}
		return &sheetsapi.Request{
			AddConditionalFormatRule: &sheetsapi.AddConditionalFormatRuleRequest{
				Rule: &sheetsapi.ConditionalFormatRule{
					Ranges: []*sheetsapi.GridRange{rng},
					BooleanRule: &sheetsapi.BooleanRule{
						Condition: &sheetsapi.BooleanCondition{
							Type:   "TEXT_CONTAINS",
							Values: []*sheetsapi.ConditionValue{{UserEnteredValue: text}},
						},
						Format: &sheetsapi.CellFormat{
							TextFormat: &sheetsapi.TextFormat{ForegroundColor: c.api()},
						},
					},
				},
			},
		}, nil
	})
}
