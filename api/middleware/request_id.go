package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/types"
)

const (
	requestIDHeader   = "X-Request-Id"
	maxRequestIDBytes = 64
)

// RequestID propagates the caller's request id, or mints one. The id is
// stored on the context for error envelopes and tags the request logger.
// Ids with characters outside printable ASCII are replaced.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if !validRequestID(reqID) {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := types.ContextWithRequestID(r.Context(), reqID)
			ctx = logg.WithRequestID(ctx, reqID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDBytes {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
