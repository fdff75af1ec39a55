package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
)

// SignInRequiredMessage is shown whenever an operation needs a session.
const SignInRequiredMessage = "please sign in to continue"

// Session is the authenticated identity a request acts as. Cart and checkout
// operations are parameterized by it and refuse to run without one.
type Session struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"-"`
	// AccessID is the token jti and the key of the refresh record.
	AccessID  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the access token behind the session has lapsed.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type sessionCtxKey struct{}

// WithSession stores the session on the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext returns the session attached by the auth middleware.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return s, ok && s != nil
}

// RequireSession validates a session for use by cart and checkout.
func RequireSession(s *Session, now time.Time) error {
	if s == nil || s.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, SignInRequiredMessage)
	}
	if s.Expired(now) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired, please sign in again")
	}
	return nil
}
