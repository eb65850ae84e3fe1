// Package sheets wraps the Google Sheets v4 API for one spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ErrWorksheetNotFound is returned when no worksheet has the requested title.
var ErrWorksheetNotFound = eris.New("sheets: worksheet not found")

// InputMode controls how written values are interpreted.
type InputMode string

const (
	// Raw stores values as-is.
	Raw InputMode = "RAW"
	// UserEntered parses values as if typed into the UI, so formulas run.
	UserEntered InputMode = "USER_ENTERED"
)

// Worksheet describes one tab of the spreadsheet.
type Worksheet struct {
	ID    int64
	Title string
	Rows  int64
	Cols  int64
}

// Client defines the spreadsheet operations used by the jobs.
type Client interface {
	Title(ctx context.Context) (string, error)
	Worksheets(ctx context.Context) ([]Worksheet, error)
	Worksheet(ctx context.Context, title string) (Worksheet, error)
	EnsureWorksheet(ctx context.Context, title string, rows, cols int64) (Worksheet, error)
	Clear(ctx context.Context, title string) error
	Update(ctx context.Context, title, a1 string, values [][]any, mode InputMode) error
	Read(ctx context.Context, title, a1 string) ([][]string, error)
	Apply(ctx context.Context, title string, ops ...Op) error
}

type apiClient struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// New creates a client for the spreadsheet with the given id.
func New(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (Client, error) {
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: create service")
	}
	return &apiClient{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *apiClient) get(ctx context.Context) (*sheetsapi.Spreadsheet, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("properties.title", "sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return nil, eris.Wrapf(err, "sheets: open spreadsheet %s", c.spreadsheetID)
	}
	return ss, nil
}

func (c *apiClient) Title(ctx context.Context) (string, error) {
	ss, err := c.get(ctx)
	if err != nil {
		return "", err
	}
	if ss.Properties == nil {
		return "", nil
	}
	return ss.Properties.Title, nil
}

func (c *apiClient) Worksheets(ctx context.Context) ([]Worksheet, error) {
	ss, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Worksheet, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			out = append(out, toWorksheet(s.Properties))
		}
	}
	return out, nil
}

func (c *apiClient) Worksheet(ctx context.Context, title string) (Worksheet, error) {
	all, err := c.Worksheets(ctx)
	if err != nil {
		return Worksheet{}, err
	}
	for _, ws := range all {
		if ws.Title == title {
			return ws, nil
		}
	}
	return Worksheet{}, eris.Wrap(ErrWorksheetNotFound, title)
}

// EnsureWorksheet returns the named worksheet, adding it with the given
// grid size when it does not exist.
func (c *apiClient) EnsureWorksheet(ctx context.Context, title string, rows, cols int64) (Worksheet, error) {
	ws, err := c.Worksheet(ctx, title)
	if err == nil {
		return ws, nil
	}
	if !eris.Is(err, ErrWorksheetNotFound) {
		return Worksheet{}, err
	}

	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title: title,
					GridProperties: &sheetsapi.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return Worksheet{}, eris.Wrapf(err, "sheets: add worksheet %q", title)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return Worksheet{}, eris.Errorf("sheets: add worksheet %q: empty reply", title)
	}
	return toWorksheet(resp.Replies[0].AddSheet.Properties), nil
}

func (c *apiClient) Clear(ctx context.Context, title string) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, Ref(title, ""), &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return eris.Wrapf(err, "sheets: clear %q", title)
	}
	return nil
}

func (c *apiClient) Update(ctx context.Context, title, a1 string, values [][]any, mode InputMode) error {
	if mode == "" {
		mode = Raw
	}
	ref := Ref(title, a1)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, &sheetsapi.ValueRange{
		Range:  ref,
		Values: values,
	}).ValueInputOption(string(mode)).Context(ctx).Do()
	if err != nil {
		return eris.Wrapf(err, "sheets: update %s", ref)
	}
	return nil
}

func (c *apiClient) Read(ctx context.Context, title, a1 string) ([][]string, error) {
	ref := Ref(title, a1)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, ref).Context(ctx).Do()
	if err != nil {
		if missingRange(err) {
			return nil, eris.Wrap(ErrWorksheetNotFound, title)
		}
		return nil, eris.Wrapf(err, "sheets: read %s", ref)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out, nil
}

// missingRange reports whether the API rejected a range because its
// worksheet does not exist.
func missingRange(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range")
}

// Apply sends formatting operations for one worksheet in a single batch.
func (c *apiClient) Apply(ctx context.Context, title string, ops ...Op) error {
	if len(ops) == 0 {
		return nil
	}
	ws, err := c.Worksheet(ctx, title)
	if err != nil {
		return err
	}
	reqs := make([]*sheetsapi.Request, 0, len(ops))
	for _, op := range ops {
		req, err := op.request(ws.ID)
		if err != nil {
			return err
		}
		reqs = append(reqs, req)
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return eris.Wrapf(err, "sheets: format %q", title)
	}
	return nil
}

func toWorksheet(p *sheetsapi.SheetProperties) Worksheet {
	ws := Worksheet{ID: p.SheetId, Title: p.Title}
	if p.GridProperties != nil {
		ws.Rows = p.GridProperties.RowCount
		ws.Cols = p.GridProperties.ColumnCount
	}
	return ws
}

// ReadCell reads one cell, returning "" when it is empty.
func ReadCell(ctx context.Context, c Client, title, a1 string) (string, error) {
	rows, err := c.Read(ctx, title, a1)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return "", nil
	}
	return rows[0][0], nil
}

// NextEmptyRow returns the 1-based row after the last non-empty cell in
// column A.
func NextEmptyRow(ctx context.Context, c Client, title string) (int, error) {
	rows, err := c.Read(ctx, title, "A:A")
	if err != nil {
		return 0, err
	}
	last := 0
	for i, r := range rows {
		if len(r) > 0 && strings.TrimSpace(r[0]) != "" {
			last = i + 1
		}
	}
	return last + 1, nil
}
