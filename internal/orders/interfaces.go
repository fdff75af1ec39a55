package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pagination"
)

// OrderReader is the read-only view of orders this service needs.
type OrderReader interface {
	FindBySessionID(ctx context.Context, userID uuid.UUID, checkoutSessionID string) (*models.Order, error)
	FindLatestForUser(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error)
}

type cartClearer interface {
	ClearBefore(ctx context.Context, sess *auth.Session, cutoff time.Time) error
}

// confirmationMarks records which checkout sessions already settled a cart.
// pkg/redis.Client satisfies it.
type confirmationMarks interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ConfirmationKey(userID, checkoutSessionID string) string
}
