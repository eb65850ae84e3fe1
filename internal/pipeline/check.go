package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/pkg/odoo"
	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// CheckResult is what the connectivity check saw.
type CheckResult struct {
	UID        int64
	Title      string
	Worksheets []string
	Probe      string
	Written    string
}

// Check authenticates to Odoo, then reads and writes one worksheet.
type Check struct {
	odoo      odoo.Client
	sheet     sheets.Client
	worksheet string
	probeCell string
	now       func() time.Time
}

// NewCheck creates a connectivity check against worksheet. The timestamp
// is written to probeCell.
func NewCheck(client odoo.Client, sheet sheets.Client, worksheet, probeCell string) *Check {
	return &Check{odoo: client, sheet: sheet, worksheet: worksheet, probeCell: probeCell, now: time.Now}
}

// Run returns the first failure; the Odoo step runs before the sheet step.
func (c *Check) Run(ctx context.Context) (CheckResult, error) {
	var res CheckResult
	uid, err := c.odoo.Authenticate(ctx)
	if err != nil {
		return res, eris.Wrap(err, "check: odoo")
	}
	res.UID = uid
	zap.L().Info("check: odoo authenticated", zap.Int64("uid", uid))

	if res.Title, err = c.sheet.Title(ctx); err != nil {
		return res, eris.Wrap(err, "check: open spreadsheet")
	}
	all, err := c.sheet.Worksheets(ctx)
	if err != nil {
		return res, eris.Wrap(err, "check: list worksheets")
	}
	for _, ws := range all {
		res.Worksheets = append(res.Worksheets, ws.Title)
	}

	if res.Probe, err = sheets.ReadCell(ctx, c.sheet, c.worksheet, "B1"); err != nil {
		return res, eris.Wrapf(err, "check: read %s!B1", c.worksheet)
	}
	res.Written = "Test connection successful at " + c.now().Format("2006-01-02 15:04:05")
	if err := c.sheet.Update(ctx, c.worksheet, c.probeCell, [][]any{{res.Written}}, sheets.Raw); err != nil {
		return res, eris.Wrapf(err, "check: write %s!%s", c.worksheet, c.probeCell)
	}
	zap.L().Info("check: spreadsheet reachable",
		zap.String("title", res.Title),
		zap.Strings("worksheets", res.Worksheets),
		zap.String("b1", res.Probe),
	)
	return res, nil
}
