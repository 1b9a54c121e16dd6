package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/header"
	"github.com/pulseiq/pulseiq/internal/domain/ingest/workbook"
)

// StoreSalesSheet is the only sheet the retailer's store sales export puts
// data on. Other sheets in the same workbook are boilerplate.
const StoreSalesSheet = "StoreSalesReport"

var storeFooter = regexp.MustCompile(`(?i)^total\s*:`)

// ParseStoreSales reads per-store weekly totals from a store sales workbook.
// The data block ends at the first blank store number or the first store
// name starting with "Total:", whichever comes first.
func ParseStoreSales(wb *workbook.Workbook) (*StoreSalesResult, error) {
	if !wb.HasSheet(StoreSalesSheet) {
		return nil, fmt.Errorf("store sales workbook: missing sheet %q", StoreSalesSheet)
	}
	rows, err := wb.Rows(StoreSalesSheet)
	if err != nil {
		return nil, fmt.Errorf("store sales workbook: %w", err)
	}

	loc := header.Locate(rows, header.StoreTotals())
	if loc == nil {
		return nil, fmt.Errorf("store sales workbook: header row not found in sheet %q", StoreSalesSheet)
	}

	res := &StoreSalesResult{Sheet: StoreSalesSheet, HeaderRow: loc.Row}
	codeCol := loc.Col(header.FieldStoreNumber)
	nameCol := loc.Col(header.FieldStoreName)
	unitsCol := loc.Col(header.FieldUnits)
	revenueCol := loc.Col(header.FieldRevenue)

	for i := loc.Row + 1; i < len(rows); i++ {
		row := rows[i]
		code := cellAt(row, codeCol)
		name := cellAt(row, nameCol)
		if code == "" || storeFooter.MatchString(name) {
			break
		}
		if name == "" {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Sheet:   StoreSalesSheet,
				Row:     i + 1,
				Message: fmt.Sprintf("store %s has no name, row skipped", code),
			})
			continue
		}
		res.Stores = append(res.Stores, StoreTotal{
			StoreCode: strings.TrimSpace(code),
			StoreName: name,
			Units:     parseFloat(cellAt(row, unitsCol)),
			Revenue:   parseDecimal(cellAt(row, revenueCol)),
		})
	}

	return res, nil
}
