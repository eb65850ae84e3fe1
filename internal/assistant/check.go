package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// DataHeaders head the data worksheet.
var DataHeaders = []any{"Timestamp", "Instructions Used", "Question Asked", "Response"}

const timestampLayout = "2006-01-02 15:04:05"

// Config names the worksheets and the model.
type Config struct {
	InstructionsWorksheet string
	DataWorksheet         string
	Model                 string
	MaxTokens             int
}

// Result is one logged exchange.
type Result struct {
	Row          int
	Instructions string
	Question     string
	Response     string
}

// Check asks the model how it is and logs the exchange to the data
// worksheet.
type Check struct {
	sheet sheets.Client
	llm   Completer
	cfg   Config
	now   func() time.Time
}

// NewCheck creates a health check.
func NewCheck(sheet sheets.Client, llm Completer, cfg Config) *Check {
	return &Check{sheet: sheet, llm: llm, cfg: cfg, now: time.Now}
}

// Question builds the prompt from optional instructions.
func Question(instructions string) string {
	if instructions == "" {
		return "How are you?"
	}
	return instructions + ". How are you?"
}

// Instructions reads A1 of the instructions worksheet. A missing worksheet
// or empty cell means no instructions.
func (c *Check) Instructions(ctx context.Context) string {
	v, err := sheets.ReadCell(ctx, c.sheet, c.cfg.InstructionsWorksheet, "A1")
	if err != nil {
		zap.L().Warn("assistant: instructions unavailable", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(v)
}

// Run asks once and appends the exchange. A completion failure is still
// logged to the worksheet, then returned.
func (c *Check) Run(ctx context.Context) (Result, error) {
	res := Result{Instructions: c.Instructions(ctx)}
	res.Question = Question(res.Instructions)

	answer, askErr := c.llm.Complete(ctx, Prompt{Model: c.cfg.Model, MaxTokens: c.cfg.MaxTokens, Text: res.Question})
	if askErr != nil {
		askErr = eris.Wrap(askErr, "assistant: complete")
		res.Response = "Error asking model: " + askErr.Error()
		res.Question = "Error"
	} else {
		res.Response = answer
	}
	zap.L().Info("assistant: model answered",
		zap.String("model", c.cfg.Model),
		zap.String("question", res.Question),
		zap.Bool("failed", askErr != nil),
	)

	row, err := c.append(ctx, res)
	if err != nil {
		return res, err
	}
	res.Row = row
	return res, askErr
}

func (c *Check) append(ctx context.Context, res Result) (int, error) {
	ws := c.cfg.DataWorksheet
	if _, err := c.sheet.EnsureWorksheet(ctx, ws, 100, 10); err != nil {
		return 0, eris.Wrapf(err, "assistant: ensure %q", ws)
	}
	next, err := sheets.NextEmptyRow(ctx, c.sheet, ws)
	if err != nil {
		return 0, eris.Wrapf(err, "assistant: find next row in %q", ws)
	}
	if next == 1 {
		if err := c.sheet.Update(ctx, ws, "A1:D1", [][]any{DataHeaders}, sheets.Raw); err != nil {
			return 0, eris.Wrap(err, "assistant: write headers")
		}
		next = 2
	}

	instructions := res.Instructions
	if instructions == "" {
		instructions = "None"
	}
	values := []any{c.now().Format(timestampLayout), instructions, res.Question, res.Response}
	if err := c.sheet.Update(ctx, ws, sheets.Cell(next, 1)+":"+sheets.Cell(next, 4), [][]any{values}, sheets.Raw); err != nil {
		return 0, eris.Wrapf(err, "assistant: write row %d", next)
	}
	return next, nil
}
