// Package pricing holds the price override applied where product prices
// leave the catalog: listings, cart totals and gateway line items.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
)

// Policy maps a stored list price to the price a shopper is charged.
type Policy func(list decimal.Decimal) decimal.Decimal

// Zero charges nothing for every product.
func Zero(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// List charges the stored price.
func List(list decimal.Decimal) decimal.Decimal {
	return list
}

// FromName resolves a configured policy name.
func FromName(name string) (Policy, error) {
	parsed, err := enums.ParsePricingPolicy(name)
	if err != nil {
		return nil, err
	}
	switch parsed {
	case enums.PricingPolicyZero:
		return Zero, nil
	case enums.PricingPolicyList:
		return List, nil
	}
	return nil, fmt.Errorf("unhandled pricing policy %q", parsed)
}

// ToMinorUnits converts a decimal amount into integer cents, rounding half
// away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
