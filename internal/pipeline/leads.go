package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/internal/attribution"
	"github.com/optima-ops/revops-cli/internal/crm"
	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// Queue row states.
const (
	StatusPending   = "PENDING"
	StatusProcessed = "PROCESSED"
	StatusFailed    = "FAILED"
	StatusError     = "ERROR"
)

// QueueEntry is one row of the processing queue worksheet.
type QueueEntry struct {
	Row       int
	Timestamp string
	Name      string
	Email     string
	Status    string
}

// Submission is one web-form response.
type Submission struct {
	Fields map[string]string
}

// Get returns a form field, or "".
func (s Submission) Get(header string) string { return strings.TrimSpace(s.Fields[header]) }

// FullName is the submitter's first and last name.
func (s Submission) FullName() string {
	return strings.TrimSpace(s.Get("Name - First Name") + " " + s.Get("Name - Last Name"))
}

// LeadImportConfig names the worksheets and the lead owner.
type LeadImportConfig struct {
	QueueWorksheet string
	FormWorksheet  string
	SalespersonID  int64
}

// LeadImportResult reports what happened to the processed queue entry.
type LeadImportResult struct {
	Entry   QueueEntry
	Status  string
	LeadID  int64
	Created bool
}

// LeadImport turns the newest pending web-form submission into a crm.lead.
type LeadImport struct {
	sheet  sheets.Client
	crm    *crm.Service
	mapper *attribution.Mapper
	cfg    LeadImportConfig
	now    func() time.Time
}

// NewLeadImport creates a lead import job.
func NewLeadImport(sheet sheets.Client, svc *crm.Service, mapper *attribution.Mapper, cfg LeadImportConfig) *LeadImport {
	return &LeadImport{sheet: sheet, crm: svc, mapper: mapper, cfg: cfg, now: time.Now}
}

// PendingEntries reads the queue rows still marked PENDING.
func (p *LeadImport) PendingEntries(ctx context.Context) ([]QueueEntry, error) {
	rows, err := p.sheet.Read(ctx, p.cfg.QueueWorksheet, "")
	if err != nil {
		return nil, eris.Wrap(err, "leads: read queue")
	}
	var out []QueueEntry
	for i, r := range rows {
		if i == 0 || len(r) < 4 || r[3] != StatusPending {
			continue
		}
		out = append(out, QueueEntry{Row: i + 1, Timestamp: r[0], Name: r[1], Email: r[2], Status: r[3]})
	}
	return out, nil
}

// FindSubmission returns the newest form response whose full name or
// email matches, or nil.
func (p *LeadImport) FindSubmission(ctx context.Context, name, email string) (*Submission, error) {
	rows, err := p.sheet.Read(ctx, p.cfg.FormWorksheet, "")
	if err != nil {
		return nil, eris.Wrap(err, "leads: read form responses")
	}
	if len(rows) < 2 {
		return nil, nil
	}
	headers := rows[0]
	for i := len(rows) - 1; i >= 1; i-- {
		r := rows[i]
		// The values API drops trailing empty cells, so short rows are still
		// complete submissions.
		sub := Submission{Fields: make(map[string]string, len(headers))}
		for j, h := range headers {
			if j < len(r) {
				sub.Fields[h] = r[j]
			}
		}
		rowEmail := cell(r, 4)
		if rowEmail == "" {
			continue
		}
		fullName := strings.TrimSpace(cell(r, 1) + " " + cell(r, 2))
		if fullName == name || rowEmail == email {
			return &sub, nil
		}
	}
	return nil, nil
}

func cell(r []string, i int) string {
	if i < len(r) {
		return strings.TrimSpace(r[i])
	}
	return ""
}

// Run processes the last pending queue entry only. It returns a nil result
// when nothing is pending.
func (p *LeadImport) Run(ctx context.Context) (*LeadImportResult, error) {
	pending, err := p.PendingEntries(ctx)
	if eris.Is(err, sheets.ErrWorksheetNotFound) {
		zap.L().Info("leads: no processing queue worksheet", zap.String("worksheet", p.cfg.QueueWorksheet))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		zap.L().Info("leads: no pending entries")
		return nil, nil
	}
	entry := pending[len(pending)-1]
	log := zap.L().With(zap.Int("queue_row", entry.Row), zap.String("name", entry.Name))
	log.Info("leads: processing entry", zap.Int("pending", len(pending)))

	res := &LeadImportResult{Entry: entry}
	sub, err := p.FindSubmission(ctx, entry.Name, entry.Email)
	if err != nil {
		log.Warn("leads: form lookup failed", zap.Error(err))
	}
	switch {
	case sub == nil:
		log.Warn("leads: no matching form response")
		res.Status = StatusError
	default:
		res.LeadID, res.Created, err = p.importSubmission(ctx, *sub, log)
		if err != nil {
			log.Warn("leads: lead import failed", zap.Error(err))
			res.Status = StatusFailed
		} else {
			res.Status = StatusProcessed
		}
	}

	if err := p.mark(ctx, entry.Row, res.Status); err != nil {
		return res, err
	}
	log.Info("leads: entry done",
		zap.String("status", res.Status),
		zap.Int64("lead_id", res.LeadID),
		zap.Bool("created", res.Created),
	)
	return res, nil
}

func (p *LeadImport) importSubmission(ctx context.Context, sub Submission, log *zap.Logger) (int64, bool, error) {
	email := sub.Get("Email Address")
	existing, err := p.crm.FindLeadByEmail(ctx, email)
	if err != nil {
		log.Warn("leads: existing lead lookup failed", zap.Error(err))
	}
	if existing != nil {
		log.Info("leads: lead already exists", zap.Int64("lead_id", existing.ID))
		return existing.ID, false, nil
	}

	attr := p.mapper.Map(sub.Get("campaign_source"), sub.Get("campaign_medium"), sub.Get("campaign_campaign"))
	values := LeadValues(sub, attr, p.cfg.SalespersonID)

	if id, err := p.crm.ResolveCampaign(ctx, attr.CampaignName); err != nil {
		log.Warn("leads: campaign resolution failed", zap.Error(err))
	} else {
		values["campaign_id"] = id
	}

	id, err := p.crm.CreateLead(ctx, values)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// LeadValues builds the crm.lead create payload for a submission. Unmapped
// attribution fields are left out.
func LeadValues(sub Submission, attr attribution.Attribution, salespersonID int64) map[string]any {
	contact := sub.FullName()
	name := contact
	if company := sub.Get("Your Company"); company != "" {
		name += " - " + company
	}

	values := map[string]any{
		"name":         name,
		"contact_name": contact,
		"email_from":   sub.Get("Email Address"),
		"phone":        sub.Get("Phone Number"),
		"partner_name": sub.Get("Your Company"),
		"type":         "lead",
		"description":  Description(sub),
		"referred":     "Website Form",
		"user_id":      salespersonID,
	}
	if attr.SourceID != nil {
		values["source_id"] = *attr.SourceID
	}
	if attr.MediumID != nil {
		values["medium_id"] = *attr.MediumID
	}
	if page := sub.Get("campaign_landing_page"); page != "" {
		values["website"] = page
	}
	return values
}

var descriptionSections = []struct {
	title  string
	fields [][2]string
}{
	{"Form Submission Details", [][2]string{
		{"Industry", "Industry"},
		{"Whiteboard Type", "Whiteboard Type"},
		{"Size", "Approximate Size"},
		{"Quantity", "Quantity"},
		{"Description", "Description"},
		{"Submission Date", "Submission Date"},
		{"Submission ID", "Submission ID"},
	}},
	{"Campaign Data", [][2]string{
		{"Source", "campaign_source"},
		{"Medium", "campaign_medium"},
		{"Campaign", "campaign_campaign"},
		{"Term", "campaign_term"},
		{"Content", "campaign_content"},
		{"Landing Page", "campaign_landing_page"},
		{"GCLID", "campaign_gclid"},
		{"Match Type", "campaign_matchtype"},
		{"Network", "campaign_network"},
		{"Device", "campaign_device"},
	}},
}

// Description renders the form answers and campaign data as the lead's
// internal note.
func Description(sub Submission) string {
	var b strings.Builder
	for i, sec := range descriptionSections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sec.title + ":")
		for _, f := range sec.fields {
			v := sub.Get(f[1])
			if v == "" {
				v = "Not specified"
			}
			fmt.Fprintf(&b, "\n%s: %s", f[0], v)
		}
	}
	return b.String()
}

// mark sets a queue row's status and stamps the time it was handled.
func (p *LeadImport) mark(ctx context.Context, row int, status string) error {
	ws := p.cfg.QueueWorksheet
	if err := p.sheet.Update(ctx, ws, sheets.Cell(row, 4), [][]any{{status}}, sheets.Raw); err != nil {
		return eris.Wrapf(err, "leads: mark row %d %s", row, status)
	}
	if err := p.sheet.Update(ctx, ws, sheets.Cell(row, 1), [][]any{{p.now().Format(time.RFC3339)}}, sheets.Raw); err != nil {
		return eris.Wrapf(err, "leads: stamp row %d", row)
	}
	return nil
}
