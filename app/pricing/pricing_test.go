package pricing

import (
	"testing"

	"github.com/shashiranjanraj/tiffin/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestQuoteBelowThresholdPaysDelivery(t *testing.T) {
	q := DefaultPolicy().Quote([]Line{{MenuItemID: 1, Quantity: 2, UnitPrice: dec("120")}})

	assertDec(t, "240", q.Subtotal)
	assertDec(t, "50", q.DeliveryFee)
	assertDec(t, "12", q.Tax)
	assertDec(t, "302", q.Total)
	require.Len(t, q.Lines, 1)
	assertDec(t, "240", q.Lines[0].Total)
}

func TestQuoteAtOrAboveThresholdShipsFree(t *testing.T) {
	q := DefaultPolicy().Quote([]Line{
		{MenuItemID: 1, Quantity: 3, UnitPrice: dec("150")},
		{MenuItemID: 2, Quantity: 1, UnitPrice: dec("150")},
	})
	assertDec(t, "600", q.Subtotal)
	assertDec(t, "0", q.DeliveryFee)
	assertDec(t, "30", q.Tax)
	assertDec(t, "630", q.Total)

	edge := DefaultPolicy().Quote([]Line{{MenuItemID: 1, Quantity: 1, UnitPrice: dec("500")}})
	assertDec(t, "0", edge.DeliveryFee)
}

func TestQuoteIsExactForFractionalPrices(t *testing.T) {
	q := DefaultPolicy().Quote([]Line{
		{MenuItemID: 1, Quantity: 3, UnitPrice: dec("0.10")},
		{MenuItemID: 2, Quantity: 7, UnitPrice: dec("19.99")},
	})
	assertDec(t, "140.23", q.Subtotal)
	assertDec(t, "7.0115", q.Tax)
	assertDec(t, "197.2415", q.Total)

	// total is always the sum of its parts
	assert.True(t, q.Subtotal.Add(q.DeliveryFee).Add(q.Tax).Equal(q.Total))
}

func TestQuoteEmptyCart(t *testing.T) {
	q := DefaultPolicy().Quote(nil)
	assertDec(t, "0", q.Subtotal)
	assertDec(t, "50", q.DeliveryFee)
}

func TestFromConfig(t *testing.T) {
	config.Set("FREE_DELIVERY_THRESHOLD", "300")
	config.Set("DELIVERY_FEE", "25.5")
	config.Set("TAX_RATE", "0.18")
	t.Cleanup(func() {
		config.Set("FREE_DELIVERY_THRESHOLD", "500")
		config.Set("DELIVERY_FEE", "50")
		config.Set("TAX_RATE", "0.05")
	})

	p, err := FromConfig()
	require.NoError(t, err)
	assertDec(t, "300", p.FreeDeliveryThreshold)
	assertDec(t, "25.5", p.DeliveryFee)
	assertDec(t, "0.18", p.TaxRate)

	config.Set("TAX_RATE", "five percent")
	_, err = FromConfig()
	assert.ErrorContains(t, err, "TAX_RATE")
}
