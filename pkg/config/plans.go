package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Plan is a product sold at a fixed gateway price, outside the cart.
type Plan struct {
	ID          string `json:"id"`
	PriceID     string `json:"price_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Mode        string `json:"mode"`
}

// Recurring reports whether buying the plan starts a subscription.
func (p Plan) Recurring() bool {
	return p.Mode == PlanModeSubscription
}

// PlanList is read from SHOPHUB_STRIPE_PLANS as a JSON array.
type PlanList []Plan

// Decode implements envconfig.Decoder. Mode defaults to payment.
func (l *PlanList) Decode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		*l = nil
		return nil
	}
	var plans []Plan
	if err := json.Unmarshal([]byte(value), &plans); err != nil {
		return fmt.Errorf("%s must be a json array: %w", EnvStripePlans, err)
	}
	seen := make(map[string]struct{}, len(plans))
	for i := range plans {
		plan := &plans[i]
		plan.PriceID = strings.TrimSpace(plan.PriceID)
		if plan.PriceID == "" {
			return fmt.Errorf("%s[%d]: price_id is required", EnvStripePlans, i)
		}
		if _, dup := seen[plan.PriceID]; dup {
			return fmt.Errorf("%s[%d]: duplicate price_id %q", EnvStripePlans, i, plan.PriceID)
		}
		seen[plan.PriceID] = struct{}{}

		plan.Mode = strings.ToLower(strings.TrimSpace(plan.Mode))
		switch plan.Mode {
		case "":
			plan.Mode = PlanModePayment
		case PlanModePayment, PlanModeSubscription:
		default:
			return fmt.Errorf("%s[%d]: mode must be %q or %q", EnvStripePlans, i, PlanModePayment, PlanModeSubscription)
		}
		if strings.TrimSpace(plan.Name) == "" {
			plan.Name = plan.PriceID
		}
	}
	*l = plans
	return nil
}

// ByPriceID finds the plan sold at priceID.
func (l PlanList) ByPriceID(priceID string) (Plan, bool) {
	for _, plan := range l {
		if plan.PriceID == priceID {
			return plan, true
		}
	}
	return Plan{}, false
}
