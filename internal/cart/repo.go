package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/repo"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
)

// Repository persists cart lines in cart_items.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListByUser returns the user's lines with their products, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindItem loads one line owned by the user.
func (r *Repository) FindItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB(ctx).
		Preload("Product").
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByUserProduct loads the line for (user, product).
func (r *Repository) FindByUserProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new line.
func (r *Repository) Create(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.DB(ctx).Omit("Product").Create(item).Error
}

// UpdateQuantity sets the quantity of a line owned by the user.
func (r *Repository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	res := r.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a line. Missing lines are not an error.
func (r *Repository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	return r.DB(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{}).Error
}

// DeleteAllForUser empties the user's cart.
func (r *Repository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.DB(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

// DeleteForUserBefore removes the user's lines created at or before cutoff.
func (r *Repository) DeleteForUserBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) error {
	return r.DB(ctx).
		Where("user_id = ? AND created_at <= ?", userID, cutoff).
		Delete(&models.CartItem{}).Error
}
