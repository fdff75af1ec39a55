package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pagination"
)

// Base binds a repository to its connection.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx when one is given.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// NewestFirst orders rows by (created_at, id) descending and, when cursor is
// set, resumes strictly after the row it marks.
func NewestFirst(query *gorm.DB, cursor *pagination.Cursor) *gorm.DB {
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	return query.Order("created_at DESC, id DESC")
}
