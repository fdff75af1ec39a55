package enums

import (
	"fmt"
	"strings"
)

// PricingPolicy names the price override applied to catalog reads.
type PricingPolicy string

const (
	// PricingPolicyZero forces every price to zero.
	PricingPolicyZero PricingPolicy = "zero"
	// PricingPolicyList uses the stored product price.
	PricingPolicyList PricingPolicy = "list"
)

// String implements fmt.Stringer.
func (p PricingPolicy) String() string {
	return string(p)
}

// ParsePricingPolicy converts raw input into a PricingPolicy.
func ParsePricingPolicy(value string) (PricingPolicy, error) {
	switch PricingPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case PricingPolicyZero:
		return PricingPolicyZero, nil
	case PricingPolicyList:
		return PricingPolicyList, nil
	}
	return "", fmt.Errorf("invalid pricing policy %q", value)
}
