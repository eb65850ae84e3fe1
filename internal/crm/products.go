package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/optima-ops/revops-cli/pkg/odoo"
)

// SupplierInfo is one product.supplierinfo (vendor pricelist) record.
type SupplierInfo struct {
	ID          int64         `json:"id"`
	Sequence    int64         `json:"sequence"`
	Partner     odoo.Many2One `json:"partner_id"`
	Product     odoo.Many2One `json:"product_id"`
	ProductName odoo.Text     `json:"product_name"`
	ProductCode odoo.Text     `json:"product_code"`
	DateStart   odoo.Text     `json:"date_start"`
	DateEnd     odoo.Text     `json:"date_end"`
	MinQty      float64       `json:"min_qty"`
	UoM         odoo.Many2One `json:"product_uom"`
	Price       float64       `json:"price"`
	Delay       int64         `json:"delay"`
	Company     odoo.Many2One `json:"company_id"`
}

var supplierInfoFields = []string{
	"id", "sequence", "partner_id", "product_id", "product_name",
	"product_code", "date_start", "date_end", "min_qty",
	"product_uom", "price", "delay", "company_id",
}

// SupplierInfoForProducts returns the vendor records of the given product
// variants.
func (s *Service) SupplierInfoForProducts(ctx context.Context, productIDs []int64) ([]SupplierInfo, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var out []SupplierInfo
	err := s.client.SearchRead(ctx, ModelSupplierInfo,
		odoo.Domain{odoo.Cond("product_id", "in", productIDs)},
		odoo.SearchReadOptions{Fields: supplierInfoFields},
		&out)
	if err != nil {
		return nil, eris.Wrap(err, "crm: search supplier info")
	}
	return out, nil
}

type modelData struct {
	ResID  int64     `json:"res_id"`
	Module odoo.Text `json:"module"`
	Name   odoo.Text `json:"name"`
}

// ExternalIDs maps record ids of model to their "module.name" external id.
// Records without one are absent from the map.
func (s *Service) ExternalIDs(ctx context.Context, model string, ids []int64) (map[int64]string, error) {
	out := map[int64]string{}
	if len(ids) == 0 {
		return out, nil
	}
	var recs []modelData
	err := s.client.SearchRead(ctx, ModelModelData,
		odoo.Domain{odoo.Cond("model", "=", model), odoo.Cond("res_id", "in", ids)},
		odoo.SearchReadOptions{Fields: []string{"res_id", "module", "name", "complete_name"}},
		&recs)
	if err != nil {
		return nil, eris.Wrapf(err, "crm: external ids for %s", model)
	}
	for _, r := range recs {
		if r.ResID == 0 {
			continue
		}
		if _, seen := out[r.ResID]; !seen {
			out[r.ResID] = r.Module.String() + "." + r.Name.String()
		}
	}
	return out, nil
}

// ExportID is the external id Odoo assigns on export to a record that has
// none, e.g. __export__.res_partner_12.
func ExportID(model string, id int64) string {
	return fmt.Sprintf("__export__.%s_%d", strings.ReplaceAll(model, ".", "_"), id)
}

// UoM is a unit of measure with its external id.
type UoM struct {
	ID         int64
	Name       string
	ExternalID string
}

type uomRecord struct {
	ID   int64     `json:"id"`
	Name odoo.Text `json:"name"`
}

// UnitsOfMeasure returns every unit of measure keyed by id, with export ids
// filled in where no external id exists.
func (s *Service) UnitsOfMeasure(ctx context.Context) (map[int64]UoM, error) {
	var recs []uomRecord
	if err := s.client.SearchRead(ctx, ModelUoM, nil, odoo.SearchReadOptions{Fields: []string{"id", "name"}}, &recs); err != nil {
		return nil, eris.Wrap(err, "crm: search units of measure")
	}
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	ext, err := s.ExternalIDs(ctx, ModelUoM, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]UoM, len(recs))
	for _, r := range recs {
		x, ok := ext[r.ID]
		if !ok {
			x = ExportID(ModelUoM, r.ID)
		}
		out[r.ID] = UoM{ID: r.ID, Name: r.Name.String(), ExternalID: x}
	}
	return out, nil
}
