package controllers

import (
	"context"
	"net/http"

	"github.com/sathwikmerugu45/E-Commerce-Website/api/responses"
	"github.com/sathwikmerugu45/E-Commerce-Website/api/validators"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/cart"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
)

type cartRegistry interface {
	Get(ctx context.Context, sess *auth.Session) (*cart.Store, error)
}

// cartStore resolves the signed-in user's store. Handlers answer with the
// cart view after every mutation.
func cartStore(r *http.Request, carts cartRegistry) (*cart.Store, error) {
	if carts == nil {
		return nil, unavailable("cart")
	}
	sess, err := sessionFrom(r)
	if err != nil {
		return nil, err
	}
	return carts.Get(r.Context(), sess)
}

func CartGet(carts cartRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.View())
	}
}

func CartAddItem(carts cartRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cart.AddItemRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.AddToCart(r.Context(), body.ProductID, body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, store.View())
	}
}

// CartUpdateItem sets a line's quantity; zero or less removes it.
func CartUpdateItem(carts cartRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cart.UpdateItemRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.UpdateQuantity(r.Context(), itemID, *body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.View())
	}
}

func CartRemoveItem(carts cartRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.RemoveFromCart(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.View())
	}
}
