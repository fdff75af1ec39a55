package middleware

import (
	"context"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
)

// UserIDFromContext returns the authenticated user id, or "" for anonymous
// requests.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if sess, ok := auth.SessionFromContext(ctx); ok {
		return sess.UserID.String()
	}
	return ""
}
