package pipeline

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/optima-ops/revops-cli/internal/crm"
	"github.com/optima-ops/revops-cli/internal/report"
	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// VariantSheet is the product template worksheet the vendor job starts from.
type VariantSheet struct {
	TemplateName string
	TemplateID   string
	Variants     []report.Variant
}

// ParseVariantSheet reads the template name and id from B1/B2 and the
// variant table below the first row whose first cell is "ID". Rows whose
// ID is not a plain number are skipped.
func ParseVariantSheet(rows [][]string) (VariantSheet, error) {
	out := VariantSheet{
		TemplateName: strings.TrimSpace(cell(at(rows, 0), 1)),
		TemplateID:   strings.TrimSpace(cell(at(rows, 1), 1)),
	}

	header := -1
	for i, r := range rows {
		if len(r) > 0 && r[0] == "ID" {
			header = i
			break
		}
	}
	if header < 0 {
		return out, eris.New("vendors: no header row starting with ID")
	}

	cols := map[string]int{}
	for i, h := range rows[header] {
		if _, seen := cols[h]; !seen {
			cols[h] = i
		}
	}
	for _, name := range []string{"ID", "SKU", "Display Name"} {
		if _, ok := cols[name]; !ok {
			return out, eris.Errorf("vendors: header row has no %q column", name)
		}
	}
	xmlCol, hasXML := cols["XML ID"]

	for _, r := range rows[header+1:] {
		raw := cell(r, cols["ID"])
		if !digits(raw) {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		v := report.Variant{
			ID:          id,
			SKU:         cell(r, cols["SKU"]),
			DisplayName: cell(r, cols["Display Name"]),
		}
		if hasXML {
			v.XMLID = cell(r, xmlCol)
		}
		out.Variants = append(out.Variants, v)
	}
	return out, nil
}

func at(rows [][]string, i int) []string {
	if i < len(rows) {
		return rows[i]
	}
	return nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// VendorFetch lists the vendor pricelist lines of a template's variants.
type VendorFetch struct {
	sheet  sheets.Client
	crm    *crm.Service
	source string
	target string
	now    func() time.Time
}

// NewVendorFetch creates a vendor fetch job reading source and writing
// target.
func NewVendorFetch(sheet sheets.Client, svc *crm.Service, source, target string) *VendorFetch {
	return &VendorFetch{sheet: sheet, crm: svc, source: source, target: target, now: time.Now}
}

// Run reads the variants, fetches their supplier records with external ids
// and rewrites the target worksheet. It returns the number of supplier
// rows written, or 0 when the source lists no variants.
func (p *VendorFetch) Run(ctx context.Context) (int, error) {
	rows, err := p.sheet.Read(ctx, p.source, "")
	if err != nil {
		return 0, eris.Wrapf(err, "vendors: read %q", p.source)
	}
	vs, err := ParseVariantSheet(rows)
	if err != nil {
		return 0, err
	}
	log := zap.L().With(zap.String("template", vs.TemplateName), zap.String("template_id", vs.TemplateID))
	if len(vs.Variants) == 0 {
		log.Info("vendors: no variants found")
		return 0, nil
	}
	log.Info("vendors: variants loaded", zap.Int("variants", len(vs.Variants)))

	ids := make([]int64, 0, len(vs.Variants))
	for _, v := range vs.Variants {
		ids = append(ids, v.ID)
	}
	suppliers, err := p.crm.SupplierInfoForProducts(ctx, ids)
	if err != nil {
		return 0, err
	}

	var partnerIDs, supplierIDs []int64
	seen := map[int64]bool{}
	for _, s := range suppliers {
		supplierIDs = append(supplierIDs, s.ID)
		if s.Partner.Valid() && !seen[s.Partner.ID] {
			seen[s.Partner.ID] = true
			partnerIDs = append(partnerIDs, s.Partner.ID)
		}
	}

	data := report.VendorData{
		TemplateName: vs.TemplateName,
		TemplateID:   vs.TemplateID,
		Variants:     vs.Variants,
		Suppliers:    suppliers,
		FetchedAt:    p.now(),
	}
	if data.PartnerExt, err = p.crm.ExternalIDs(ctx, crm.ModelPartner, partnerIDs); err != nil {
		return 0, err
	}
	if data.SupplierExt, err = p.crm.ExternalIDs(ctx, crm.ModelSupplierInfo, supplierIDs); err != nil {
		return 0, err
	}
	if data.UoMs, err = p.crm.UnitsOfMeasure(ctx); err != nil {
		return 0, err
	}

	if err := report.Publish(ctx, p.sheet, report.Vendors(p.target, data)); err != nil {
		return 0, err
	}
	log.Info("vendors: worksheet updated",
		zap.String("worksheet", p.target),
		zap.Int("suppliers", len(suppliers)),
		zap.Int("vendors", len(partnerIDs)),
	)
	return len(suppliers), nil
}
