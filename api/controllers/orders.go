package controllers

import (
	"net/http"
	"strings"

	"github.com/sathwikmerugu45/E-Commerce-Website/api/responses"
	"github.com/sathwikmerugu45/E-Commerce-Website/api/validators"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/orders"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pagination"
)

// OrderConfirmation resolves the order for the post-payment landing page.
// Without ?session_id the user's latest order is shown.
func OrderConfirmation(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("orders service"))
			return
		}
		sess, err := sessionFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := validators.SanitizeString(r.URL.Query().Get("session_id"), 255)
		ctx := r.Context()
		if logg != nil && sessionID != "" {
			ctx = logg.WithCheckoutSessionID(ctx, sessionID)
		}

		order, err := svc.Confirm(ctx, sess, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("orders service"))
			return
		}
		sess, err := sessionFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.History(r.Context(), sess, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
