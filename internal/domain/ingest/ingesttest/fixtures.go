// Package ingesttest builds in-memory xlsx fixtures for the ingestion
// tests, mirroring the shape of the real report exports.
package ingesttest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook.
type Sheet struct {
	Name string
	Rows [][]any
}

// WorkbookBytes renders the sheets into an xlsx payload.
func WorkbookBytes(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			// Rename the default sheet instead of leaving it dangling.
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				t.Fatalf("new sheet %s: %v", sheet.Name, err)
			}
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				t.Fatalf("set row %d: %v", r, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// StoreRow is one data row of a store sales fixture.
type StoreRow struct {
	Code    string
	Name    string
	Units   any
	Revenue any
}

// StoreSalesBytes builds a StoreSalesReport workbook with a realistic
// two-line preamble before the header row.
func StoreSalesBytes(t testing.TB, rows ...StoreRow) []byte {
	t.Helper()

	grid := [][]any{
		{"ULTRA REPORT"},
		{"Generated", "2025-08-18T00:00:00Z"},
		{"Store Number", "Store Name", "Sales Units", "Net Sales"},
	}
	for _, r := range rows {
		grid = append(grid, []any{r.Code, r.Name, r.Units, r.Revenue})
	}
	return WorkbookBytes(t, Sheet{Name: "StoreSalesReport", Rows: grid})
}

// SkuRow is one data row of an allocator fixture.
type SkuRow struct {
	UPC     string
	Name    string
	Units   any
	Revenue any
}

// AllocatorBytes builds a sales/inventory performance workbook keyed on
// the "Last Closed Week" sheet.
func AllocatorBytes(t testing.TB, rows ...SkuRow) []byte {
	t.Helper()

	grid := [][]any{
		{"Some Header"},
		{},
		{"UPC", "ULTA Item Description", "Sales TY Units", "Sales TY $$"},
	}
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("SKU %s", r.UPC)
		}
		grid = append(grid, []any{r.UPC, name, r.Units, r.Revenue})
	}
	return WorkbookBytes(t, Sheet{Name: "Last Closed Week", Rows: grid})
}
