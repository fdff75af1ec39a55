package middleware

import (
	"context"
	"net/http"

	"github.com/sathwikmerugu45/E-Commerce-Website/api/responses"
	"github.com/sathwikmerugu45/E-Commerce-Website/api/validators"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
)

type sessionResolver interface {
	Resolve(ctx context.Context, accessToken string) (*auth.Session, error)
}

// Auth validates the bearer token, loads the session behind it and seeds the
// request context with it.
func Auth(resolver sessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.ParseBearerToken(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			sess, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := auth.WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithUserID(ctx, sess.UserID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
