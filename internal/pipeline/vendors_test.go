package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optima-ops/revops-cli/internal/report"
	"github.com/optima-ops/revops-cli/pkg/sheets/sheetstest"
)

func variantRows() [][]string {
	return [][]string{
		{"Template:", "Magnetic Whiteboard"},
		{"Template ID:", "55"},
		{},
		{"Variants"},
		{"ID", "SKU", "Display Name", "XML ID"},
		{"101", "WB-46", "Whiteboard 4x6", "__import__.wb_46"},
		{"abc", "WB-X", "Not a variant"},
		{"102", "WB-48", "Whiteboard 4x8"},
		{"", "", ""},
	}
}

func TestParseVariantSheet(t *testing.T) {
	vs, err := ParseVariantSheet(variantRows())
	require.NoError(t, err)

	assert.Equal(t, "Magnetic Whiteboard", vs.TemplateName)
	assert.Equal(t, "55", vs.TemplateID)
	want := []report.Variant{
		{ID: 101, SKU: "WB-46", DisplayName: "Whiteboard 4x6", XMLID: "__import__.wb_46"},
		{ID: 102, SKU: "WB-48", DisplayName: "Whiteboard 4x8"},
	}
	if diff := cmp.Diff(want, vs.Variants); diff != "" {
		t.Errorf("variants mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVariantSheetErrors(t *testing.T) {
	_, err := ParseVariantSheet([][]string{{"Template:", "x"}})
	assert.Error(t, err)

	_, err = ParseVariantSheet([][]string{{"ID", "SKU"}})
	assert.Error(t, err)
}

func TestVendorFetch(t *testing.T) {
	svc, srv := newCRM(t)
	srv.Seed("product.supplierinfo",
		map[string]any{"id": 1, "sequence": 1, "partner_id": []any{7, "Zeta Boards"}, "product_id": []any{101, "Whiteboard 4x6"},
			"product_name": false, "product_code": "Z-1", "date_start": false, "date_end": false,
			"min_qty": 1, "product_uom": []any{1, "Units"}, "price": 99.5, "delay": 3, "company_id": []any{1, "Main"}},
		map[string]any{"id": 2, "sequence": 1, "partner_id": []any{8, "Acme Supply"}, "product_id": []any{102, "Whiteboard 4x8"},
			"product_name": "Board", "product_code": false, "date_start": "2025-01-01", "date_end": false,
			"min_qty": 5, "product_uom": []any{1, "Units"}, "price": 120, "delay": 7, "company_id": false},
		map[string]any{"id": 3, "partner_id": []any{9, "Other"}, "product_id": []any{999, "Unrelated"}},
	)
	srv.Seed("uom.uom", map[string]any{"id": 1, "name": "Units"})
	srv.Seed("ir.model.data",
		map[string]any{"model": "res.partner", "res_id": 7, "module": "base", "name": "zeta"},
		map[string]any{"model": "uom.uom", "res_id": 1, "module": "uom", "name": "product_uom_unit"},
	)

	sheet := sheetstest.New("Products")
	sheet.AddWorksheet("start", variantRows())
	job := NewVendorFetch(sheet, svc, "start", "vendor fetch")
	job.now = clock

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "Magnetic Whiteboard", sheet.At("vendor fetch", "B1"))
	assert.Equal(t, "Supplier Record ID", sheet.At("vendor fetch", "A6"))
	// sorted by vendor name: Acme before Zeta
	assert.Equal(t, "2", sheet.At("vendor fetch", "A7"))
	assert.Equal(t, "Acme Supply", sheet.At("vendor fetch", "E7"))
	assert.Equal(t, "__export__.res_partner_8", sheet.At("vendor fetch", "F7"))
	assert.Equal(t, "__export__.product_supplierinfo_2", sheet.At("vendor fetch", "B7"))
	assert.Equal(t, "Zeta Boards", sheet.At("vendor fetch", "E8"))
	assert.Equal(t, "base.zeta", sheet.At("vendor fetch", "F8"))
	assert.Equal(t, "__import__.wb_46", sheet.At("vendor fetch", "H8"))
	assert.Equal(t, "uom.product_uom_unit", sheet.At("vendor fetch", "Q8"))
	assert.Equal(t, "=COUNTA(UNIQUE(E7:E8))", sheet.At("vendor fetch", "B4"))
	assert.Equal(t, "", sheet.At("vendor fetch", "A9"))
}

func TestVendorFetchNoVariants(t *testing.T) {
	svc, srv := newCRM(t)
	sheet := sheetstest.New("Products")
	sheet.AddWorksheet("start", [][]string{{"Template:", "x"}, {"Template ID:", "1"}, {"ID", "SKU", "Display Name"}})

	n, err := NewVendorFetch(sheet, svc, "start", "vendor fetch").Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, srv.Calls())
	_, err = sheet.Worksheet(context.Background(), "vendor fetch")
	assert.Error(t, err)
}

func TestVendorFetchSupplierFailure(t *testing.T) {
	svc, srv := newCRM(t)
	srv.Fail("product.supplierinfo.search_read")
	sheet := sheetstest.New("Products")
	sheet.AddWorksheet("start", variantRows())

	_, err := NewVendorFetch(sheet, svc, "start", "vendor fetch").Run(context.Background())
	assert.Error(t, err)
}
