package report

import (
	"github.com/optima-ops/revops-cli/internal/crm"
)

// OpportunityColumns are the sales export headers.
var OpportunityColumns = []string{
	"Date", "Opp ID", "Name", "Stage", "Source", "Campaign",
	"Pricelist", "Website", "Amount", "User",
}

// Opportunities lays out one row per opportunity with relations shown by
// display name.
func Opportunities(title string, opps []crm.Opportunity) (Sheet, error) {
	if len(opps) == 0 {
		return Sheet{}, ErrNoData
	}
	values := [][]any{row(OpportunityColumns...)}
	for _, o := range opps {
		values = append(values, []any{
			o.CreateDate.String(),
			o.ID,
			o.Name.String(),
			o.Stage.String(),
			o.Source.String(),
			o.Campaign.String(),
			o.Pricelist.String(),
			o.Website.String(),
			o.ExpectedRevenue,
			o.User.String(),
		})
	}
	return Sheet{
		Title:  title,
		Rows:   1000,
		Cols:   13,
		Blocks: []Block{{Range: "A1", Values: values}},
	}, nil
}
