package subscriptions

import (
	"time"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
)

// PurchaseRequest buys one unit of a configured price.
type PurchaseRequest struct {
	PriceID string `json:"price_id" validate:"required,max=255"`
}

// PlanDTO is a purchasable plan.
type PlanDTO struct {
	ID          string `json:"id,omitempty"`
	PriceID     string `json:"price_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
}

// StatusDTO is the user's subscription as shown on the account page.
type StatusDTO struct {
	Status             enums.SubscriptionStatus `json:"subscription_status"`
	Active             bool                     `json:"active"`
	PriceID            string                   `json:"price_id,omitempty"`
	PlanName           string                   `json:"plan_name,omitempty"`
	CurrentPeriodStart *time.Time               `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time               `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool                     `json:"cancel_at_period_end"`
	PaymentMethodBrand string                   `json:"payment_method_brand,omitempty"`
	PaymentMethodLast4 string                   `json:"payment_method_last4,omitempty"`
}

func toPlanDTO(plan config.Plan) PlanDTO {
	return PlanDTO{
		ID:          plan.ID,
		PriceID:     plan.PriceID,
		Name:        plan.Name,
		Description: plan.Description,
		Mode:        plan.Mode,
	}
}
