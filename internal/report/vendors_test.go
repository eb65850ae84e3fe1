package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optima-ops/revops-cli/internal/crm"
	"github.com/optima-ops/revops-cli/pkg/odoo"
	"github.com/optima-ops/revops-cli/pkg/sheets"
)

func vendorData() VendorData {
	return VendorData{
		TemplateName: "Mobile Whiteboard",
		TemplateID:   "77",
		Variants: []Variant{
			{ID: 501, SKU: "MWB-36", DisplayName: "Mobile Whiteboard 36in", XMLID: "product.mwb_36"},
			{ID: 502, SKU: "MWB-48", DisplayName: "Mobile Whiteboard 48in"},
		},
		Suppliers: []crm.SupplierInfo{
			{
				ID: 9, Sequence: 1,
				Partner: odoo.Many2One{ID: 12, Name: "Zeta Boards"},
				Product: odoo.Many2One{ID: 502, Name: "MWB-48"},
				MinQty:  1, Price: 80, Delay: 5,
				UoM:     odoo.Many2One{ID: 1, Name: "Units"},
			},
			{
				ID: 7, Sequence: 1,
				Partner:     odoo.Many2One{ID: 11, Name: "Acme Supply"},
				Product:     odoo.Many2One{ID: 502, Name: "MWB-48"},
				ProductName: "Board 48",
				ProductCode: "AC-48",
				DateStart:   "2025-01-01",
				MinQty:      10, Price: 72.5, Delay: 14,
				UoM:         odoo.Many2One{ID: 1, Name: "Units"},
				Company:     odoo.Many2One{ID: 1, Name: "Optima"},
			},
			{
				ID: 8, Sequence: 2,
				Partner: odoo.Many2One{ID: 11, Name: "Acme Supply"},
				Product: odoo.Many2One{ID: 501, Name: "MWB-36"},
				MinQty:  1, Price: 60, Delay: 14,
			},
		},
		PartnerExt:  map[int64]string{11: "base.acme"},
		SupplierExt: map[int64]string{7: "vendors.acme_48"},
		UoMs:        map[int64]crm.UoM{1: {ID: 1, Name: "Units", ExternalID: "uom.product_uom_unit"}},
		FetchedAt:   time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func TestVendorRows_SortAndFallbacks(t *testing.T) {
	rows := VendorRows(vendorData())
	require.Len(t, rows, 3)

	// Acme before Zeta, then product id ascending
	assert.Equal(t, int64(8), rows[0].Cells[0])
	assert.Equal(t, int64(7), rows[1].Cells[0])
	assert.Equal(t, int64(9), rows[2].Cells[0])

	acme48 := rows[1].Cells
	assert.Len(t, acme48, len(VendorColumns))
	assert.Equal(t, "vendors.acme_48", acme48[1])
	assert.Equal(t, "base.acme", acme48[5])
	assert.Equal(t, "", acme48[7])
	assert.Equal(t, "MWB-48", acme48[8])
	assert.Equal(t, "2025-01-01", acme48[11])
	assert.Equal(t, "uom.product_uom_unit", acme48[16])
	assert.Equal(t, int64(1), acme48[19])
	assert.Equal(t, csvImportHeader+"\n"+`502,"Mobile Whiteboard 48in",base.acme,"Board 48","AC-48",10,72.5,14,uom.product_uom_unit`, acme48[20])

	acme36 := rows[0].Cells
	assert.Equal(t, "__export__.product_supplierinfo_8", acme36[1])
	assert.Equal(t, "product.mwb_36", acme36[7])
	assert.Equal(t, "", acme36[14])
	assert.Equal(t, "", acme36[16])
	assert.Contains(t, acme36[20], "\nproduct.mwb_36,")

	zeta := rows[2].Cells
	assert.Equal(t, "__export__.res_partner_12", zeta[5])
	assert.Equal(t, "", zeta[19])
}

func TestVendors_Layout(t *testing.T) {
	s := Vendors("vendor fetch", vendorData())

	assert.Equal(t, int64(1000), s.Rows)
	assert.Equal(t, int64(26), s.Cols)
	require.Len(t, s.Blocks, 6)

	assert.Equal(t, "A1:B3", s.Blocks[0].Range)
	assert.Equal(t, []any{"Vendor Data Fetch Date:", "2025-02-03 04:05:06"}, s.Blocks[0].Values[2])
	assert.Equal(t, "A6:U6", s.Blocks[2].Range)
	assert.Equal(t, "A7:U9", s.Blocks[3].Range)

	count := s.Blocks[4]
	assert.Equal(t, "A4:B4", count.Range)
	assert.Equal(t, sheets.UserEntered, count.Mode)
	assert.Equal(t, "=COUNTA(UNIQUE(E7:E9))", count.Values[0][1])

	assert.Equal(t, "U10", s.Blocks[5].Range)
}

func TestVendors_NoSuppliers(t *testing.T) {
	d := vendorData()
	d.Suppliers = nil

	s := Vendors("vendor fetch", d)
	assert.Len(t, s.Blocks, 3)
}
