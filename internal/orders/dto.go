package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/catalog"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
)

// OrderDTO is an order with its lines, as shown on the confirmation and
// history pages.
type OrderDTO struct {
	ID                uuid.UUID         `json:"id"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	Status            enums.OrderStatus `json:"status"`
	PaymentIntentID   *string           `json:"payment_intent_id,omitempty"`
	CheckoutSessionID *string           `json:"checkout_session_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	Items             []OrderItemDTO    `json:"order_items"`
}

// OrderItemDTO keeps the price paid. Product carries the current catalog view.
type OrderItemDTO struct {
	ID       uuid.UUID          `json:"id"`
	Quantity int                `json:"quantity"`
	Price    decimal.Decimal    `json:"price"`
	Product  catalog.ProductDTO `json:"product"`
}

// HistoryPage is one page of a user's orders.
type HistoryPage struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel maps an order row with preloaded items.
func FromModel(order models.Order, policy pricing.Policy) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:       item.ID,
			Quantity: item.Quantity,
			Price:    item.Price,
			Product:  catalog.FromModel(item.Product, policy),
		})
	}
	return OrderDTO{
		ID:                order.ID,
		TotalAmount:       order.TotalAmount,
		Status:            order.Status,
		PaymentIntentID:   order.PaymentIntentID,
		CheckoutSessionID: order.CheckoutSessionID,
		CreatedAt:         order.CreatedAt,
		Items:             items,
	}
}
