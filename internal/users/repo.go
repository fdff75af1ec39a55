package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/repo"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
)

// Repository persists shopper accounts.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the account. A duplicate email surfaces as the driver's
// unique violation.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail matches case-insensitively; emails are stored lowercased but
// rows imported from the storefront's old auth provider may not be.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.touch(ctx, id, map[string]any{"last_login_at": at})
}

// UpdatePasswordHash swaps in a hash computed with current parameters.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.touch(ctx, id, map[string]any{"password_hash": hash, "updated_at": time.Now().UTC()})
}

func (r *Repository) touch(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	res := r.DB(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumns(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
