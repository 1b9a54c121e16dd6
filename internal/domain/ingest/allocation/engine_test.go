package allocation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/allocation"
	"github.com/pulseiq/pulseiq/internal/domain/ingest/parser"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAllocate(t *testing.T) {
	t.Run("splits each store by SKU share of the chain aggregates", func(t *testing.T) {
		stores := []parser.StoreTotal{
			{StoreCode: "0001", StoreName: "Downtown", Units: 100, Revenue: dec("1000")},
			{StoreCode: "0002", StoreName: "Riverside", Units: 50, Revenue: dec("500")},
		}
		skus := []parser.SkuTotal{
			{UPC: "111111222222", Name: "Lip Gloss", Units: 60, Revenue: dec("600")},
			{UPC: "000111222333", Name: "Mascara", Units: 40, Revenue: dec("400")},
		}

		got := allocation.Allocate(stores, skus)
		require.Len(t, got, 4)

		// Lip Gloss carries 60% of chain units and revenue, Mascara 40%.
		assert.Equal(t, 60, got[0].Units)
		assert.True(t, got[0].Revenue.Equal(dec("600")), got[0].Revenue.String())
		assert.Equal(t, 40, got[1].Units)
		assert.True(t, got[1].Revenue.Equal(dec("400")), got[1].Revenue.String())

		assert.Equal(t, "0002", got[2].StoreCode)
		assert.Equal(t, 30, got[2].Units)
		assert.True(t, got[2].Revenue.Equal(dec("300")))
		assert.Equal(t, 20, got[3].Units)
		assert.True(t, got[3].Revenue.Equal(dec("200")))

		// Each store's allocated revenue sums back to that store's total.
		storeSum := map[string]decimal.Decimal{}
		for _, a := range got {
			storeSum[a.StoreCode] = storeSum[a.StoreCode].Add(a.Revenue)
		}
		assert.True(t, storeSum["0001"].Equal(dec("1000")), storeSum["0001"].String())
		assert.True(t, storeSum["0002"].Equal(dec("500")), storeSum["0002"].String())
	})

	t.Run("unit and revenue shares diverge when SKUs skew", func(t *testing.T) {
		stores := []parser.StoreTotal{
			{StoreCode: "101", StoreName: "A", Units: 10, Revenue: dec("100")},
		}
		skus := []parser.SkuTotal{
			{UPC: "123456789012", Name: "X", Units: 10, Revenue: dec("0")},
			{UPC: "123456789013", Name: "Y", Units: 0, Revenue: dec("50")},
		}

		got := allocation.Allocate(stores, skus)
		require.Len(t, got, 2)
		assert.Equal(t, 10, got[0].Units)
		assert.True(t, got[0].Revenue.IsZero())
		assert.Equal(t, 0, got[1].Units)
		assert.True(t, got[1].Revenue.Equal(dec("100")))
	})

	t.Run("zero SKU aggregates fall back to equal shares per metric", func(t *testing.T) {
		stores := []parser.StoreTotal{
			{StoreCode: "101", StoreName: "A", Units: 8, Revenue: dec("100")},
		}
		skus := []parser.SkuTotal{
			{UPC: "123456789012", Name: "W"},
			{UPC: "123456789013", Name: "X"},
			{UPC: "123456789014", Name: "Y"},
			{UPC: "123456789015", Name: "Z"},
		}

		got := allocation.Allocate(stores, skus)
		require.Len(t, got, 4)
		sum := decimal.Zero
		for _, a := range got {
			assert.Equal(t, 2, a.Units)
			sum = sum.Add(a.Revenue)
		}
		assert.True(t, sum.Equal(dec("100")), sum.String())
	})

	t.Run("no SKU data collapses to one pseudo SKU per store", func(t *testing.T) {
		stores := []parser.StoreTotal{
			{StoreCode: "101", StoreName: "A", Units: 12.4, Revenue: dec("99.95")},
		}

		got := allocation.Allocate(stores, nil)
		require.Len(t, got, 1)
		assert.Equal(t, allocation.PseudoUPC, got[0].UPC)
		assert.Equal(t, allocation.PseudoSkuName, got[0].SkuName)
		assert.Equal(t, 12, got[0].Units)
		assert.True(t, got[0].Revenue.Equal(dec("99.95")))
	})

	t.Run("no stores yields nothing", func(t *testing.T) {
		assert.Nil(t, allocation.Allocate(nil, []parser.SkuTotal{{UPC: "123456789012"}}))
	})
}
