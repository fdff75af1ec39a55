package cart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
)

// ItemRepository defines the persistence surface required by the cart store.
type ItemRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	FindItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error)
	FindByUserProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteForUserBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// cacheStore is satisfied by pkg/redis.Client.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}
