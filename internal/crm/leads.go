package crm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/optima-ops/revops-cli/internal/phone"
	"github.com/optima-ops/revops-cli/pkg/odoo"
)

// Lead is the subset of crm.lead the jobs read.
type Lead struct {
	ID        int64         `json:"id"`
	Name      odoo.Text     `json:"name"`
	Phone     odoo.Text     `json:"phone"`
	EmailFrom odoo.Text     `json:"email_from"`
	PartnerID odoo.Many2One `json:"partner_id"`
}

var leadFields = []string{"id", "name", "phone", "partner_id"}

// FindLeadsByPhone returns every lead whose normalized phone equals
// normalized. It reads all leads with a phone and compares client-side, so
// cost grows with the lead table. An empty input matches nothing.
func (s *Service) FindLeadsByPhone(ctx context.Context, normalized string) ([]Lead, error) {
	if normalized == "" {
		return []Lead{}, nil
	}

	var all []Lead
	err := s.client.SearchRead(ctx, ModelLead,
		odoo.Domain{odoo.Cond("phone", "!=", false)},
		odoo.SearchReadOptions{Fields: leadFields},
		&all)
	if err != nil {
		return nil, eris.Wrap(err, "crm: search leads by phone")
	}

	matched := []Lead{}
	for _, l := range all {
		if phone.Normalize(l.Phone.String()) == normalized {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

// FindLeadByEmail returns the first lead whose email_from equals email, or
// nil when there is none.
func (s *Service) FindLeadByEmail(ctx context.Context, email string) (*Lead, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}

	var found []Lead
	err := s.client.SearchRead(ctx, ModelLead,
		odoo.Domain{odoo.Cond("email_from", "=", email)},
		odoo.SearchReadOptions{Fields: []string{"id", "name", "email_from"}, Limit: 1},
		&found)
	if err != nil {
		return nil, eris.Wrapf(err, "crm: search lead by email %q", email)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// CreateLead creates a crm.lead and returns its id.
func (s *Service) CreateLead(ctx context.Context, values map[string]any) (int64, error) {
	id, err := s.client.Create(ctx, ModelLead, values)
	if err != nil {
		return 0, eris.Wrap(err, "crm: create lead")
	}
	return id, nil
}

// LeadPartner returns the partner linked to a lead, or 0 when unset.
func (s *Service) LeadPartner(ctx context.Context, leadID int64) (int64, error) {
	var recs []Lead
	if err := s.client.Read(ctx, ModelLead, []int64{leadID}, []string{"partner_id"}, &recs); err != nil {
		return 0, eris.Wrapf(err, "crm: read lead %d", leadID)
	}
	if len(recs) == 0 {
		return 0, nil
	}
	return recs[0].PartnerID.ID, nil
}
