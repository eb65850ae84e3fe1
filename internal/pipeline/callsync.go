// Package pipeline holds the batch jobs: call attribution sync, lead import,
// vendor fetch, report exports and the connectivity check.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/internal/attribution"
	"github.com/optima-ops/revops-cli/internal/crm"
	"github.com/optima-ops/revops-cli/internal/phone"
	"github.com/optima-ops/revops-cli/pkg/callrail"
)

// DefaultSyncWindow is how far back a call sync looks.
const DefaultSyncWindow = 240 * time.Hour

// Summary counts what one call sync run did.
type Summary struct {
	Calls          int
	UnmatchedCalls int
	MatchedLeads   int
	UpdatedLeads   int
	UpdatedOrders  int
	Failures       int
}

// Fields returns the summary as log fields.
func (s Summary) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("calls", s.Calls),
		zap.Int("unmatched_calls", s.UnmatchedCalls),
		zap.Int("matched_leads", s.MatchedLeads),
		zap.Int("updated_leads", s.UpdatedLeads),
		zap.Int("updated_orders", s.UpdatedOrders),
		zap.Int("failures", s.Failures),
	}
}

// CallSyncOption configures a CallSync.
type CallSyncOption func(*CallSync)

// WithWindow sets how far back calls are fetched.
func WithWindow(d time.Duration) CallSyncOption {
	return func(p *CallSync) { p.window = d }
}

// WithSaleOrders also copies the attribution onto the sale orders of each
// updated lead's partner.
func WithSaleOrders(enabled bool) CallSyncOption {
	return func(p *CallSync) { p.saleOrders = enabled }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CallSyncOption {
	return func(p *CallSync) { p.now = now }
}

// CallSync copies marketing attribution from recent CallRail calls onto
// the Odoo leads with the caller's phone number.
type CallSync struct {
	calls      callrail.Client
	crm        *crm.Service
	mapper     *attribution.Mapper
	window     time.Duration
	saleOrders bool
	now        func() time.Time
}

// NewCallSync creates a call sync driver.
func NewCallSync(calls callrail.Client, svc *crm.Service, mapper *attribution.Mapper, opts ...CallSyncOption) *CallSync {
	p := &CallSync{
		calls:  calls,
		crm:    svc,
		mapper: mapper,
		window: DefaultSyncWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every call in the window. Per-record failures are logged
// and counted; they never stop the run. A failed call fetch degrades to an
// empty run.
func (p *CallSync) Run(ctx context.Context) Summary {
	var sum Summary

	end := p.now().UTC()
	start := end.Add(-p.window)
	calls, err := p.calls.ListCalls(ctx, callrail.CallQuery{
		Start:  start,
		End:    end,
		Fields: callrail.SyncFields,
	})
	if err != nil {
		zap.L().Warn("callsync: fetch calls failed", zap.Error(err))
		sum.Failures++
		return sum
	}
	zap.L().Info("callsync: fetched calls",
		zap.Int("calls", len(calls)),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	for _, c := range calls {
		if ctx.Err() != nil {
			zap.L().Warn("callsync: stopped", zap.Error(ctx.Err()))
			break
		}
		sum.Calls++
		p.syncCall(ctx, c, &sum)
	}

	zap.L().Info("callsync: done", sum.Fields()...)
	return sum
}

func (p *CallSync) syncCall(ctx context.Context, c callrail.Call, sum *Summary) {
	number := phone.Normalize(c.CustomerPhoneNumber)
	attr := p.mapper.Map(c.Source, c.Medium, c.Campaign)
	log := zap.L().With(
		zap.String("call_id", c.ID),
		zap.String("phone", number),
		zap.String("campaign", attr.CampaignName),
	)

	values := p.leadValues(ctx, c, attr, log)

	leads, err := p.crm.FindLeadsByPhone(ctx, number)
	if err != nil {
		log.Warn("callsync: lead lookup failed", zap.Error(err))
		sum.Failures++
		leads = nil
	}
	if len(leads) == 0 {
		log.Debug("callsync: no leads with this phone")
		sum.UnmatchedCalls++
		return
	}
	sum.MatchedLeads += len(leads)

	for _, lead := range leads {
		if err := p.crm.WriteRecord(ctx, crm.ModelLead, lead.ID, values); err != nil {
			log.Warn("callsync: lead update failed", zap.Int64("lead_id", lead.ID), zap.Error(err))
			sum.Failures++
			continue
		}
		sum.UpdatedLeads++
		log.Info("callsync: lead updated", zap.Int64("lead_id", lead.ID), zap.String("lead", lead.Name.String()))

		if p.saleOrders {
			p.syncOrders(ctx, lead.ID, values, log, sum)
		}
	}
}

// leadValues builds the lead write payload. A campaign that cannot be
// resolved is cleared rather than failing the call.
func (p *CallSync) leadValues(ctx context.Context, c callrail.Call, attr attribution.Attribution, log *zap.Logger) map[string]any {
	values := attr.Values()

	values["campaign_id"] = false
	if id, err := p.crm.ResolveCampaign(ctx, attr.CampaignName); err != nil {
		log.Warn("callsync: campaign resolution failed", zap.Error(err))
	} else {
		values["campaign_id"] = id
	}

	values["website"] = false
	if site := c.Website(); site != "" {
		values["website"] = site
	}
	values["referred"] = "CallRail"
	return values
}

func (p *CallSync) syncOrders(ctx context.Context, leadID int64, values map[string]any, log *zap.Logger, sum *Summary) {
	partnerID, err := p.crm.LeadPartner(ctx, leadID)
	if err != nil {
		log.Warn("callsync: partner lookup failed", zap.Int64("lead_id", leadID), zap.Error(err))
		sum.Failures++
		return
	}
	if partnerID == 0 {
		return
	}
	orders, err := p.crm.SaleOrdersForPartner(ctx, partnerID)
	if err != nil {
		log.Warn("callsync: sale order lookup failed", zap.Int64("partner_id", partnerID), zap.Error(err))
		sum.Failures++
		return
	}

	utm := map[string]any{
		"source_id":   values["source_id"],
		"campaign_id": values["campaign_id"],
		"medium_id":   values["medium_id"],
	}
	for _, o := range orders {
		if err := p.crm.WriteRecord(ctx, crm.ModelSaleOrder, o.ID, utm); err != nil {
			log.Warn("callsync: sale order update failed", zap.Int64("order_id", o.ID), zap.Error(err))
			sum.Failures++
			continue
		}
		sum.UpdatedOrders++
		log.Info("callsync: sale order updated", zap.Int64("order_id", o.ID), zap.String("order", o.Name.String()))
	}
}
