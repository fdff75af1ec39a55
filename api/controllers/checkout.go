package controllers

import (
	"net/http"

	"github.com/sathwikmerugu45/E-Commerce-Website/api/responses"
	"github.com/sathwikmerugu45/E-Commerce-Website/api/validators"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/checkout"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/types"
)

type checkoutRequest struct {
	Shipping types.ShippingInfo `json:"shipping"`
}

// CheckoutSubmit creates a hosted checkout session and returns its redirect
// URL. The body is decoded loosely so that shipping problems surface with the
// checkout service's field details.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("checkout service"))
			return
		}
		sess, err := sessionFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, checkout.SignInMessage))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSON(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SubmitCheckout(r.Context(), sess, body.Shipping)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutPaymentIntent creates a payment intent for an embedded card form.
func CheckoutPaymentIntent(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("checkout service"))
			return
		}
		sess, err := sessionFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, checkout.SignInMessage))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSON(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreatePaymentIntent(r.Context(), sess, body.Shipping)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
