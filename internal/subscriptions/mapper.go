package subscriptions

import (
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
)

// IsActiveStatus reports whether the status still entitles the user to the plan.
func IsActiveStatus(status enums.SubscriptionStatus) bool {
	switch status {
	case enums.SubscriptionStatusActive, enums.SubscriptionStatusTrialing, enums.SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}

// ApplyCheckoutSession copies the subscription a checkout session produced
// onto target. A session that has not completed only bumps SyncedAt.
func ApplyCheckoutSession(target *models.Subscription, session *stripe.CheckoutSession, now time.Time) error {
	if target == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "target subscription is nil")
	}
	synced := now.UTC()
	target.SyncedAt = &synced
	if session == nil || session.Subscription == nil {
		return nil
	}

	sub := session.Subscription
	status, err := enums.ParseSubscriptionStatus(string(sub.Status))
	if err != nil || status == enums.SubscriptionStatusNotStarted {
		return pkgerrors.New(pkgerrors.CodeDependency, "invalid stripe subscription status").
			WithDetails(map[string]string{"status": string(sub.Status)})
	}
	target.Status = status
	target.StripeSubscriptionID = trimmedPtr(sub.ID)
	target.CancelAtPeriodEnd = sub.CancelAtPeriodEnd

	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0] != nil {
		item := sub.Items.Data[0]
		target.CurrentPeriodStart = toTimePtr(item.CurrentPeriodStart)
		target.CurrentPeriodEnd = toTimePtr(item.CurrentPeriodEnd)
		if item.Price != nil && item.Price.ID != "" {
			target.PriceID = item.Price.ID
		}
	}
	if pm := sub.DefaultPaymentMethod; pm != nil && pm.Card != nil {
		target.PaymentMethodBrand = trimmedPtr(string(pm.Card.Brand))
		target.PaymentMethodLast4 = trimmedPtr(pm.Card.Last4)
	}
	return nil
}

// ToStatusDTO resolves the plan name from the configured catalog.
func ToStatusDTO(sub *models.Subscription, plans config.PlanList) *StatusDTO {
	if sub == nil {
		return &StatusDTO{Status: enums.SubscriptionStatusNotStarted}
	}
	dto := &StatusDTO{
		Status:             sub.Status,
		Active:             IsActiveStatus(sub.Status),
		PriceID:            sub.PriceID,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		PaymentMethodBrand: deref(sub.PaymentMethodBrand),
		PaymentMethodLast4: deref(sub.PaymentMethodLast4),
	}
	if plan, ok := plans.ByPriceID(sub.PriceID); ok {
		dto.PlanName = plan.Name
	}
	return dto
}

func toTimePtr(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

func trimmedPtr(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
