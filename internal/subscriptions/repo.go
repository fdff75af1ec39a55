package subscriptions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/repo"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
)

// pendingColumns are reset when a new subscription checkout starts.
var pendingColumns = []string{
	"price_id",
	"checkout_session_id",
	"stripe_subscription_id",
	"status",
	"current_period_start",
	"current_period_end",
	"cancel_at_period_end",
	"payment_method_brand",
	"payment_method_last4",
	"synced_at",
	"updated_at",
}

// Repository keeps one subscription row per user.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByUser returns the user's row or gorm.ErrRecordNotFound.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.DB(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// StartPending records a new subscription checkout. An existing row for the
// user is overwritten in place and keeps its id.
func (r *Repository) StartPending(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(pendingColumns),
	}).Create(sub).Error
}

// Save writes every column of an existing row.
func (r *Repository) Save(ctx context.Context, sub *models.Subscription) error {
	return r.DB(ctx).Save(sub).Error
}
