package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
)

// Order is written by the payment webhook pipeline. This service only reads it.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	TotalAmount       decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status            enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	PaymentIntentID   *string           `gorm:"column:payment_intent_id"`
	CheckoutSessionID *string           `gorm:"column:checkout_session_id;uniqueIndex"`
	Items             []OrderItem       `gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// OrderItem is a line of an order with the price paid at checkout.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Product   Product         `gorm:"foreignKey:ProductID;references:ID"`
}
