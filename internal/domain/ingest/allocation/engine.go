// Package allocation spreads each store's weekly totals across SKUs in
// proportion to each SKU's share of the chain-wide aggregates. The retailer
// only reports SKU sales at chain level, so the per-store SKU figures the
// dashboard shows are estimates produced here.
package allocation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/parser"
)

// PseudoUPC labels the synthetic catch-all SKU used when a week has store
// totals but no usable SKU breakdown.
const PseudoUPC = "ALL"

// PseudoSkuName is the display name paired with PseudoUPC.
const PseudoSkuName = "All SKUs"

// Allocated is one store and SKU's share of the week. Units are rounded to
// whole items; revenue stays exact.
type Allocated struct {
	StoreCode string
	StoreName string
	UPC       string
	SkuName   string
	Units     int
	Revenue   decimal.Decimal
}

// Allocate cross-joins every store with every SKU and assigns each pair the
// SKU's share of that store's own units and revenue. Each metric's share is
// the SKU's fraction of the chain aggregate for that metric; when an
// aggregate is zero the metric falls back to an equal split across SKUs, so
// a degraded SKU list still divides every store's totals.
//
// When skus is empty the whole week is allocated to a single pseudo SKU per
// store, carrying that store's own totals.
func Allocate(stores []parser.StoreTotal, skus []parser.SkuTotal) []Allocated {
	if len(stores) == 0 {
		return nil
	}
	if len(skus) == 0 {
		out := make([]Allocated, 0, len(stores))
		for _, st := range stores {
			out = append(out, Allocated{
				StoreCode: st.StoreCode,
				StoreName: st.StoreName,
				UPC:       PseudoUPC,
				SkuName:   PseudoSkuName,
				Units:     int(math.Round(st.Units)),
				Revenue:   st.Revenue,
			})
		}
		return out
	}

	var totalUnits float64
	totalRevenue := decimal.Zero
	for _, sku := range skus {
		totalUnits += sku.Units
		totalRevenue = totalRevenue.Add(sku.Revenue)
	}

	n := decimal.NewFromInt(int64(len(skus)))
	equal := decimal.NewFromInt(1).Div(n)

	unitShares := make([]float64, len(skus))
	revenueShares := make([]decimal.Decimal, len(skus))
	for i, sku := range skus {
		unitShares[i] = 1 / float64(len(skus))
		if totalUnits != 0 {
			unitShares[i] = sku.Units / totalUnits
		}
		revenueShares[i] = equal
		if !totalRevenue.IsZero() {
			revenueShares[i] = sku.Revenue.Div(totalRevenue)
		}
	}

	out := make([]Allocated, 0, len(stores)*len(skus))
	for _, st := range stores {
		for i, sku := range skus {
			out = append(out, Allocated{
				StoreCode: st.StoreCode,
				StoreName: st.StoreName,
				UPC:       sku.UPC,
				SkuName:   sku.Name,
				Units:     int(math.Round(st.Units * unitShares[i])),
				Revenue:   st.Revenue.Mul(revenueShares[i]),
			})
		}
	}
	return out
}
