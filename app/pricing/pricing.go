// Package pricing computes order totals in exact decimal arithmetic.
package pricing

import (
	"fmt"

	"github.com/shashiranjanraj/tiffin/config"
	"github.com/shopspring/decimal"
)

// Policy holds the deployment's delivery and tax constants.
type Policy struct {
	// Orders whose subtotal reaches this amount ship free.
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		FreeDeliveryThreshold: decimal.NewFromInt(500),
		DeliveryFee:           decimal.NewFromInt(50),
		TaxRate:               decimal.RequireFromString("0.05"),
	}
}

// FromConfig reads FREE_DELIVERY_THRESHOLD, DELIVERY_FEE and TAX_RATE.
func FromConfig() (Policy, error) {
	threshold, err := decimal.NewFromString(config.FreeDeliveryThreshold())
	if err != nil {
		return Policy{}, fmt.Errorf("pricing: FREE_DELIVERY_THRESHOLD: %w", err)
	}
	fee, err := decimal.NewFromString(config.DeliveryFee())
	if err != nil {
		return Policy{}, fmt.Errorf("pricing: DELIVERY_FEE: %w", err)
	}
	rate, err := decimal.NewFromString(config.TaxRate())
	if err != nil {
		return Policy{}, fmt.Errorf("pricing: TAX_RATE: %w", err)
	}
	if threshold.IsNegative() || fee.IsNegative() || rate.IsNegative() {
		return Policy{}, fmt.Errorf("pricing: policy values must not be negative")
	}
	return Policy{FreeDeliveryThreshold: threshold, DeliveryFee: fee, TaxRate: rate}, nil
}

type Line struct {
	MenuItemID uint
	Quantity   int
	UnitPrice  decimal.Decimal
}

type PricedLine struct {
	Line
	Total decimal.Decimal
}

type Quote struct {
	Lines       []PricedLine
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// Quote prices lines. Quantities are expected to be positive.
func (p Policy) Quote(lines []Line) Quote {
	q := Quote{Lines: make([]PricedLine, 0, len(lines)), Subtotal: decimal.Zero}
	for _, l := range lines {
		total := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		q.Lines = append(q.Lines, PricedLine{Line: l, Total: total})
		q.Subtotal = q.Subtotal.Add(total)
	}

	q.DeliveryFee = p.DeliveryFee
	if q.Subtotal.GreaterThanOrEqual(p.FreeDeliveryThreshold) {
		q.DeliveryFee = decimal.Zero
	}
	q.Tax = q.Subtotal.Mul(p.TaxRate)
	q.Total = q.Subtotal.Add(q.DeliveryFee).Add(q.Tax)
	return q
}
