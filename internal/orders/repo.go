package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/repo"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pagination"
)

// Repository reads orders written by the payment pipeline. It never writes.
type Repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) withItems(ctx context.Context) *gorm.DB {
	return r.DB(ctx).Preload("Items.Product")
}

// FindBySessionID returns the user's order created for a checkout session.
func (r *Repository) FindBySessionID(ctx context.Context, userID uuid.UUID, checkoutSessionID string) (*models.Order, error) {
	var order models.Order
	if err := r.withItems(ctx).
		Where("user_id = ? AND checkout_session_id = ?", userID, checkoutSessionID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindLatestForUser returns the user's most recent order.
func (r *Repository) FindLatestForUser(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := repo.NewestFirst(r.withItems(ctx).Where("user_id = ?", userID), nil).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForUser returns up to limit orders, newest first, starting after cursor.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	query := repo.NewestFirst(r.withItems(ctx).Where("user_id = ?", userID), cursor)
	var orders []models.Order
	if err := query.Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
