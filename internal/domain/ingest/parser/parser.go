// Package parser extracts store totals and SKU performance rows from the
// retailer's weekly export workbooks. The exports are built for humans:
// preamble rows, merged banner cells and footer totals all move around from
// week to week, so both parsers locate their header with the heuristics in
// the header package and tolerate noise around the data block.
package parser

import (
	"github.com/shopspring/decimal"
)

// Diagnostic records a non-fatal observation made while parsing, such as a
// skipped row or a degraded header match. Diagnostics are surfaced to the
// caller so an operator can audit what the parser decided to ignore.
type Diagnostic struct {
	Sheet   string `json:"sheet,omitempty"`
	Row     int    `json:"row,omitempty"`
	Message string `json:"message"`
}

// StoreTotal is one store's weekly top line taken from the store sales report.
type StoreTotal struct {
	StoreCode string
	StoreName string
	Units     float64
	Revenue   decimal.Decimal
}

// SkuTotal is one SKU's chain-wide weekly total taken from the sales
// performance report.
type SkuTotal struct {
	UPC     string
	Name    string
	Units   float64
	Revenue decimal.Decimal
}

// StoreSalesResult is the outcome of parsing a store sales workbook.
type StoreSalesResult struct {
	Stores      []StoreTotal
	Sheet       string
	HeaderRow   int
	Diagnostics []Diagnostic
}

// SkuPerfResult is the outcome of parsing a sales performance workbook.
type SkuPerfResult struct {
	Skus        []SkuTotal
	Sheet       string
	HeaderRow   int
	Degraded    bool
	Diagnostics []Diagnostic
}
