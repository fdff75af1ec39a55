package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
)

// CORS applies the storefront's allowed-origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	}).Handler
}
