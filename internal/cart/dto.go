package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/catalog"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
)

// AddItemRequest is the add-to-cart payload.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
}

// UpdateItemRequest changes a line's quantity. Zero or less removes the line;
// a missing quantity is rejected.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// Item is one cart line with its product at the policy price.
type Item struct {
	ID        uuid.UUID          `json:"id"`
	ProductID uuid.UUID          `json:"product_id"`
	Quantity  int                `json:"quantity"`
	Product   catalog.ProductDTO `json:"product"`
}

// LineTotal is quantity times the product price.
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// View is the cart as returned to clients.
type View struct {
	Items      []Item          `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Loading    bool            `json:"loading"`
}

func itemFromModel(m models.CartItem, policy pricing.Policy) Item {
	return Item{
		ID:        m.ID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		Product:   catalog.FromModel(m.Product, policy),
	}
}

// TotalItems sums line quantities.
func TotalItems(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums line totals.
func TotalPrice(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
