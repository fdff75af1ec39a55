package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
)

// ProductDTO is a product as shoppers see it. Price has the pricing policy
// applied.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Listing is the full catalog plus the categories present in it.
type Listing struct {
	Products   []ProductDTO `json:"products"`
	Categories []string     `json:"categories"`
}

// FromModel maps a stored product through the pricing policy.
func FromModel(p models.Product, policy pricing.Policy) ProductDTO {
	price := p.Price
	if policy != nil {
		price = policy(p.Price)
	}
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}
