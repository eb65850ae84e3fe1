package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/optima-ops/revops-cli/internal/crm"
	"github.com/optima-ops/revops-cli/pkg/sheets"
)

// Variant is one product variant listed on the template worksheet.
type Variant struct {
	ID          int64
	SKU         string
	DisplayName string
	XMLID       string
}

// VendorData is everything the vendor worksheet is built from.
type VendorData struct {
	TemplateName string
	TemplateID   string
	Variants     []Variant
	Suppliers    []crm.SupplierInfo
	PartnerExt   map[int64]string
	SupplierExt  map[int64]string
	UoMs         map[int64]crm.UoM
	FetchedAt    time.Time
}

// VendorColumns are the supplier table headers.
var VendorColumns = []string{
	"Supplier Record ID", "Supplier Ext ID", "Sequence", "Vendor ID", "Vendor Name",
	"Vendor External ID", "Product ID", "Product XML ID", "Product SKU",
	"Vendor Product Name", "Vendor Product Code", "Start Date", "End Date",
	"Min Qty", "UoM ID", "UoM Name", "UoM External ID",
	"Price", "Lead Time (days)", "Company ID",
	"CSV Import Template",
}

// csvImportHeader is the header line of an Odoo product import carrying
// one vendor pricelist line.
const csvImportHeader = "id,display_name,supplier_name:partner_id/id,supplier_product_name," +
	"supplier_product_code,supplier_min_qty,supplier_price,supplier_delay,supplier_product_uom/id"

// VendorRow is one supplier table row before layout.
type VendorRow struct {
	Cells      []any
	vendorName string
	productID  int64
}

func idCell(id int64) any {
	if id == 0 {
		return ""
	}
	return id
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// VendorRows builds the supplier table sorted by vendor name, then product.
func VendorRows(d VendorData) []VendorRow {
	variants := make(map[int64]Variant, len(d.Variants))
	for _, v := range d.Variants {
		variants[v.ID] = v
	}

	rows := make([]VendorRow, 0, len(d.Suppliers))
	for _, s := range d.Suppliers {
		variant := variants[s.Product.ID]

		var partnerExt string
		if s.Partner.Valid() {
			partnerExt = d.PartnerExt[s.Partner.ID]
			if partnerExt == "" {
				partnerExt = crm.ExportID(crm.ModelPartner, s.Partner.ID)
			}
		}
		supplierExt := d.SupplierExt[s.ID]
		if supplierExt == "" {
			supplierExt = crm.ExportID(crm.ModelSupplierInfo, s.ID)
		}
		var uomExt string
		if s.UoM.Valid() {
			uomExt = d.UoMs[s.UoM.ID].ExternalID
		}

		product := variant.XMLID
		if product == "" {
			product = strconv.FormatInt(s.Product.ID, 10)
		}
		csv := csvImportHeader + "\n" + fmt.Sprintf(`%s,"%s",%s,"%s","%s",%s,%s,%d,%s`,
			product, variant.DisplayName, partnerExt,
			s.ProductName.String(), s.ProductCode.String(),
			formatFloat(s.MinQty), formatFloat(s.Price), s.Delay, uomExt)

		rows = append(rows, VendorRow{
			Cells: []any{
				s.ID,
				supplierExt,
				s.Sequence,
				idCell(s.Partner.ID),
				s.Partner.String(),
				partnerExt,
				idCell(s.Product.ID),
				variant.XMLID,
				variant.SKU,
				s.ProductName.String(),
				s.ProductCode.String(),
				s.DateStart.String(),
				s.DateEnd.String(),
				s.MinQty,
				idCell(s.UoM.ID),
				s.UoM.String(),
				uomExt,
				s.Price,
				s.Delay,
				idCell(s.Company.ID),
				csv,
			},
			vendorName: s.Partner.String(),
			productID:  s.Product.ID,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].vendorName != rows[j].vendorName {
			return rows[i].vendorName < rows[j].vendorName
		}
		return rows[i].productID < rows[j].productID
	})
	return rows
}

// Vendors lays out the template header, the supplier table, a distinct
// vendor count and a note under the import template column.
func Vendors(title string, d VendorData) Sheet {
	rows := VendorRows(d)
	lastCol := sheets.ColumnLetter(len(VendorColumns))

	blocks := []Block{
		{Range: "A1:B3", Values: [][]any{
			{"Template Name:", d.TemplateName},
			{"Template ID:", d.TemplateID},
			{"Vendor Data Fetch Date:", d.FetchedAt.Format(CallTimeLayout)},
		}},
		{Range: "A5", Values: [][]any{{"Vendor Information"}}},
		{Range: fmt.Sprintf("A6:%s6", lastCol), Values: [][]any{row(VendorColumns...)}},
	}
	if n := len(rows); n > 0 {
		table := make([][]any, n)
		for i, r := range rows {
			table[i] = r.Cells
		}
		end := 6 + n
		blocks = append(blocks,
			Block{Range: fmt.Sprintf("A7:%s%d", lastCol, end), Values: table},
			Block{
				Range:  "A4:B4",
				Values: [][]any{{"Vendor Count:", fmt.Sprintf("=COUNTA(UNIQUE(E7:E%d))", end)}},
				Mode:   sheets.UserEntered,
			},
			Block{
				Range:  fmt.Sprintf("%s%d", lastCol, end+1),
				Values: [][]any{{"Copy row above for CSV Upload Template for new similar products"}},
			},
		)
	}

	return Sheet{
		Title:  title,
		Rows:   1000,
		Cols:   26,
		Blocks: blocks,
		Format: []sheets.Op{
			sheets.Format(fmt.Sprintf("A6:%s6", lastCol), sheets.CellFormat{Bold: true}),
			sheets.Format("A5", sheets.CellFormat{Bold: true}),
		},
	}
}
