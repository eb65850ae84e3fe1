package crm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/optima-ops/revops-cli/pkg/odoo"
)

// SaleOrder is the subset of sale.order used for UTM propagation.
type SaleOrder struct {
	ID        int64         `json:"id"`
	Name      odoo.Text     `json:"name"`
	PartnerID odoo.Many2One `json:"partner_id"`
}

// SaleOrdersForPartner returns every sale order of a partner.
func (s *Service) SaleOrdersForPartner(ctx context.Context, partnerID int64) ([]SaleOrder, error) {
	var orders []SaleOrder
	err := s.client.SearchRead(ctx, ModelSaleOrder,
		odoo.Domain{odoo.Cond("partner_id", "=", partnerID)},
		odoo.SearchReadOptions{Fields: []string{"id", "name", "partner_id"}},
		&orders)
	if err != nil {
		return nil, eris.Wrapf(err, "crm: search sale orders for partner %d", partnerID)
	}
	return orders, nil
}

// Opportunity is one crm.lead of type opportunity.
type Opportunity struct {
	ID              int64         `json:"id"`
	CreateDate      odoo.Text     `json:"create_date"`
	Name            odoo.Text     `json:"name"`
	Stage           odoo.Many2One `json:"stage_id"`
	Source          odoo.Many2One `json:"source_id"`
	Campaign        odoo.Many2One `json:"campaign_id"`
	Pricelist       odoo.Many2One `json:"pricelist_id"`
	Website         odoo.Many2One `json:"website_id"`
	ExpectedRevenue float64       `json:"expected_revenue"`
	User            odoo.Many2One `json:"user_id"`
}

var opportunityFields = []string{
	"id", "create_date", "name", "stage_id", "source_id", "campaign_id",
	"pricelist_id", "website_id", "expected_revenue", "user_id",
}

// odooDateTime is the server's datetime layout.
const odooDateTime = "2006-01-02 15:04:05"

// Opportunities returns opportunities created between the start of from's
// day and the end of to's day, newest first.
func (s *Service) Opportunities(ctx context.Context, from, to time.Time) ([]Opportunity, error) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, to.Location())

	var opps []Opportunity
	err := s.client.SearchRead(ctx, ModelLead,
		odoo.Domain{
			odoo.Cond("type", "=", "opportunity"),
			odoo.Cond("create_date", ">=", start.Format(odooDateTime)),
			odoo.Cond("create_date", "<=", end.Format(odooDateTime)),
		},
		odoo.SearchReadOptions{Fields: opportunityFields, Order: "create_date desc"},
		&opps)
	if err != nil {
		return nil, eris.Wrap(err, "crm: search opportunities")
	}
	return opps, nil
}
