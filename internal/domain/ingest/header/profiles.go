package header

import "regexp"

var (
	reStoreNumber = regexp.MustCompile(`store\s*number`)
	reStoreName   = regexp.MustCompile(`store\s*name`)
	reStoreUnits  = regexp.MustCompile(`total\s*units|sales\s*units`)
	reStoreSales  = regexp.MustCompile(`net\s*sales|sales\s*\$`)

	reSkuName  = regexp.MustCompile(`ulta\s*item.*description`)
	reSkuUnits = regexp.MustCompile(`sales\s*ty.*units|total\s*sales.*units|\bunits\b`)
	reSkuSales = regexp.MustCompile(`sales\s*ty.*\$\$?|total\s*sales.*\$\$?|net\s*sales`)
)

// StoreTotals matches the header of a store sales report: one row per
// store with code, name and at least one of units/revenue. These files
// carry short preambles, so 60 rows is plenty.
func StoreTotals() Profile {
	return Profile{
		Name:     "store-totals",
		ScanRows: 60,
		Rules: []FieldRule{
			{Field: FieldStoreNumber, Matchers: []Matcher{{Regex: reStoreNumber}}},
			{Field: FieldStoreName, Matchers: []Matcher{{Regex: reStoreName}}},
			{Field: FieldUnits, Matchers: []Matcher{{Regex: reStoreUnits}}},
			{Field: FieldRevenue, Matchers: []Matcher{{Regex: reStoreSales}}},
		},
		Require: []Field{FieldStoreNumber, FieldStoreName},
		AnyOf:   []Field{FieldUnits, FieldRevenue},
	}
}

// SkuAllocator matches the header of a sales/inventory performance
// export: a literal "UPC" cell plus at least one metric column. These
// workbooks front-load long pivot-table preambles, hence the deep scan
// window.
func SkuAllocator() Profile {
	return Profile{
		Name:     "sku-allocator",
		ScanRows: 220,
		Rules: []FieldRule{
			{Field: FieldUPC, Matchers: []Matcher{{Exact: "upc"}}},
			{Field: FieldName, Matchers: []Matcher{{Regex: reSkuName}}},
			{Field: FieldUnits, Matchers: []Matcher{{Regex: reSkuUnits}}},
			{Field: FieldRevenue, Matchers: []Matcher{{Regex: reSkuSales}}},
		},
		Require: []Field{FieldUPC},
		AnyOf:   []Field{FieldUnits, FieldRevenue},
	}
}

// SkuAllocatorDegraded is the last-resort pass for allocator sheets: a
// row holding UPC and an item-description column still anchors the data
// region even when no metric column was recognized. Callers should expect
// zero units/revenue from sheets located this way.
func SkuAllocatorDegraded() Profile {
	return Profile{
		Name:     "sku-allocator-degraded",
		ScanRows: 300,
		Rules: []FieldRule{
			{Field: FieldUPC, Matchers: []Matcher{{Exact: "upc"}}},
			{Field: FieldName, Matchers: []Matcher{{Regex: reSkuName}}},
		},
		Require: []Field{FieldUPC, FieldName},
	}
}

// SkuCandidates is the looser vocabulary used for older/alternate
// allocator formats: explicit column-name candidates in preference order
// instead of regex patterns, with a fuzzy fallback for the description
// column.
func SkuCandidates() Profile {
	return Profile{
		Name:     "sku-candidates",
		ScanRows: 50,
		Rules: []FieldRule{
			{Field: FieldUPC, Matchers: []Matcher{
				{Exact: "upc"}, {Exact: "upc code"}, {Exact: "item upc"},
			}},
			{Field: FieldUnits, Matchers: []Matcher{
				{Exact: "units sold"}, {Exact: "units"}, {Exact: "sales units"},
			}},
			{Field: FieldRevenue, Matchers: []Matcher{
				{Exact: "net sales $"}, {Exact: "retail $"}, {Exact: "net sales"},
				{Exact: "sales $"}, {Exact: "sales"},
			}},
			{Field: FieldName, Matchers: []Matcher{
				{Exact: "description"}, {Exact: "item description"}, {Exact: "product name"},
				{Fuzzy: "item description"},
			}},
		},
		Require: []Field{FieldUPC},
		AnyOf:   []Field{FieldUnits, FieldRevenue},
	}
}
