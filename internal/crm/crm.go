// Package crm implements the Odoo record operations shared by the jobs:
// campaign resolution, lead matching and record writes.
package crm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/pkg/odoo"
)

// Odoo model names.
const (
	ModelCampaign     = "utm.campaign"
	ModelLead         = "crm.lead"
	ModelSaleOrder    = "sale.order"
	ModelSupplierInfo = "product.supplierinfo"
	ModelModelData    = "ir.model.data"
	ModelUoM          = "uom.uom"
	ModelPartner      = "res.partner"
	ModelCron         = "ir.cron"
)

// Service runs CRM operations against one authenticated Odoo session.
type Service struct {
	client odoo.Client
}

// New creates a Service. The client must already be authenticated.
func New(client odoo.Client) *Service {
	return &Service{client: client}
}

type campaignRecord struct {
	ID   int64     `json:"id"`
	Name odoo.Text `json:"name"`
}

// ResolveCampaign returns the id of the utm.campaign named name, creating it
// when no record matches. Two concurrent runs can both miss the search and
// create duplicates.
func (s *Service) ResolveCampaign(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, eris.New("crm: campaign name is empty")
	}

	var found []campaignRecord
	err := s.client.SearchRead(ctx, ModelCampaign,
		odoo.Domain{odoo.Cond("name", "=", name)},
		odoo.SearchReadOptions{Fields: []string{"id", "name"}, Limit: 1},
		&found)
	if err != nil {
		return 0, eris.Wrapf(err, "crm: search campaign %q", name)
	}
	if len(found) > 0 {
		return found[0].ID, nil
	}

	id, err := s.client.Create(ctx, ModelCampaign, map[string]any{"name": name})
	if err != nil {
		return 0, eris.Wrapf(err, "crm: create campaign %q", name)
	}
	zap.L().Info("crm: created campaign",
		zap.String("campaign", name),
		zap.Int64("campaign_id", id),
	)
	return id, nil
}

// WriteRecord updates one record with values.
func (s *Service) WriteRecord(ctx context.Context, model string, id int64, values map[string]any) error {
	if err := s.client.Write(ctx, model, []int64{id}, values); err != nil {
		return eris.Wrapf(err, "crm: write %s %d", model, id)
	}
	return nil
}

// TriggerCron runs a scheduled action immediately, like the "Run Manually"
// button on the ir.cron form.
func (s *Service) TriggerCron(ctx context.Context, id int64) error {
	if err := s.client.CallKW(ctx, ModelCron, "method_direct_trigger", []any{[]int64{id}}, nil, nil); err != nil {
		return eris.Wrapf(err, "crm: trigger cron %d", id)
	}
	return nil
}
