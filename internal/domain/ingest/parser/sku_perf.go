package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/header"
	"github.com/pulseiq/pulseiq/internal/domain/ingest/workbook"
)

// preferredPerfSheets is the order in which the sales performance export's
// sheets are tried. "Last Closed Week" carries the weekly numbers we want;
// the to-date sheets are fallbacks for exports where the weekly tab was
// renamed or dropped.
var preferredPerfSheets = []string{
	"Last Closed Week",
	"Period to Date",
	"Quarter to Date",
	"Year to Date",
}

var (
	validUPC  = regexp.MustCompile(`^\d{6,}$`)
	nonDigits = regexp.MustCompile(`\D`)
)

// ParseSkuPerf reads chain-wide SKU totals from a sales performance workbook.
// Sheets are tried in preference order and the first one that yields at
// least one SKU row wins; a sheet whose header matches but whose rows are
// all unusable does not shadow a later sheet with real data. When only the
// degraded header (UPC and description, no metric columns) can be found,
// the result is flagged Degraded and all metrics are zero, which downstream
// allocation turns into equal shares.
func ParseSkuPerf(wb *workbook.Workbook) (*SkuPerfResult, error) {
	candidates := candidateSheets(wb)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("sales performance workbook: no sheets")
	}

	var first *SkuPerfResult
	for _, sheet := range candidates {
		rows, err := wb.Rows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sales performance workbook: %w", err)
		}
		var res *SkuPerfResult
		if loc := header.Locate(rows, header.SkuAllocator()); loc != nil {
			res = collectSkus(sheet, rows, loc, false)
		} else if loc := header.Locate(rows, header.SkuAllocatorDegraded()); loc != nil {
			res = collectSkus(sheet, rows, loc, true)
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Sheet:   sheet,
				Message: "metric columns not found, SKU list parsed without units or revenue",
			})
		}
		if res == nil {
			continue
		}
		if len(res.Skus) > 0 {
			return res, nil
		}
		if first == nil {
			first = res
		}
	}

	// Last resort: no sheet yielded a row. Re-scan the most preferred sheet
	// against the loose candidate header lists before giving up on the file.
	rows, err := wb.Rows(candidates[0])
	if err != nil {
		return nil, fmt.Errorf("sales performance workbook: %w", err)
	}
	if loc := header.Locate(rows, header.SkuCandidates()); loc != nil {
		res := collectSkus(candidates[0], rows, loc, loc.Col(header.FieldUnits) < 0 && loc.Col(header.FieldRevenue) < 0)
		if len(res.Skus) > 0 || first == nil {
			return res, nil
		}
	}
	if first != nil {
		return first, nil
	}
	return nil, fmt.Errorf("sales performance workbook: header row not found in any sheet")
}

// candidateSheets orders the workbook's sheets by preference, keeping any
// sheet not on the preferred list at the end in workbook order.
func candidateSheets(wb *workbook.Workbook) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range preferredPerfSheets {
		if wb.HasSheet(name) {
			out = append(out, name)
			seen[name] = true
		}
	}
	for _, name := range wb.Sheets() {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}

func collectSkus(sheet string, rows [][]string, loc *header.Location, degraded bool) *SkuPerfResult {
	res := &SkuPerfResult{Sheet: sheet, HeaderRow: loc.Row, Degraded: degraded}
	upcCol := loc.Col(header.FieldUPC)
	nameCol := loc.Col(header.FieldName)
	unitsCol := loc.Col(header.FieldUnits)
	revenueCol := loc.Col(header.FieldRevenue)

	index := make(map[string]int)
	for i := loc.Row + 1; i < len(rows); i++ {
		row := rows[i]
		upcRaw := cellAt(row, upcCol)
		name := cellAt(row, nameCol)
		if strings.Contains(strings.ToLower(upcRaw), "overall result") ||
			strings.Contains(strings.ToLower(name), "overall result") {
			continue
		}
		// UPC cells may carry check-digit dashes or other formatting.
		upc := nonDigits.ReplaceAllString(upcRaw, "")
		if !validUPC.MatchString(upc) {
			if upcRaw != "" || name != "" {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Sheet:   sheet,
					Row:     i + 1,
					Message: fmt.Sprintf("invalid UPC %q, row skipped", upcRaw),
				})
			}
			continue
		}

		units := parseFloat(cellAt(row, unitsCol))
		revenue := parseDecimal(cellAt(row, revenueCol))
		if j, ok := index[upc]; ok {
			// The to-date sheets repeat SKUs across category blocks.
			res.Skus[j].Units += units
			res.Skus[j].Revenue = res.Skus[j].Revenue.Add(revenue)
			continue
		}
		index[upc] = len(res.Skus)
		res.Skus = append(res.Skus, SkuTotal{
			UPC:     upc,
			Name:    name,
			Units:   units,
			Revenue: revenue,
		})
	}

	return res
}
