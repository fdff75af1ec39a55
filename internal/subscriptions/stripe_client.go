package subscriptions

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/sathwikmerugu45/E-Commerce-Website/pkg/stripe"
)

// Source reads back a plan checkout session from the payment provider.
type Source interface {
	CheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
}

type checkoutSessionReader interface {
	GetCheckoutSession(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeSource struct {
	api checkoutSessionReader
}

// NewStripeSource returns nil without a client so the service falls back to
// stored state.
func NewStripeSource(api *pkgstripe.Client) Source {
	if api == nil {
		return nil
	}
	return newStripeSource(api)
}

func newStripeSource(api checkoutSessionReader) *stripeSource {
	return &stripeSource{api: api}
}

func (s *stripeSource) CheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")
	params.AddExpand("subscription.default_payment_method")
	return s.api.GetCheckoutSession(id, params)
}
