package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
)

// Subscription is the last known state of a user's recurring plan. One row
// per user; a new subscription checkout replaces the pending session.
type Subscription struct {
	ID                   uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID               uuid.UUID                `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	PriceID              string                   `gorm:"column:price_id;not null"`
	CheckoutSessionID    *string                  `gorm:"column:checkout_session_id"`
	StripeSubscriptionID *string                  `gorm:"column:stripe_subscription_id"`
	Status               enums.SubscriptionStatus `gorm:"column:status;not null;default:'not_started'"`
	CurrentPeriodStart   *time.Time               `gorm:"column:current_period_start"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end"`
	CancelAtPeriodEnd    bool                     `gorm:"column:cancel_at_period_end;not null;default:false"`
	PaymentMethodBrand   *string                  `gorm:"column:payment_method_brand"`
	PaymentMethodLast4   *string                  `gorm:"column:payment_method_last4"`
	SyncedAt             *time.Time               `gorm:"column:synced_at"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
