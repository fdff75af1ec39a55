// Package gateway talks to the hosted payment provider. Two drivers exist:
// the Stripe SDK and an HTTPS function endpoint that fronts Stripe.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	pkgstripe "github.com/sathwikmerugu45/E-Commerce-Website/pkg/stripe"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/types"
)

// Gateway creates payment sessions. bearer is the shopper's access token;
// drivers that call an authenticated endpoint forward it.
type Gateway interface {
	Driver() string
	CreateCheckoutSession(ctx context.Context, bearer string, req CheckoutRequest) (*CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, bearer string, req PaymentIntentRequest) (*PaymentIntent, error)
	CreatePriceCheckout(ctx context.Context, bearer string, req PriceCheckoutRequest) (*CheckoutSession, error)
}

// LineItem is one priced row on the hosted checkout page.
type LineItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Quantity    int64  `json:"quantity"`
	Currency    string `json:"currency"`
	// UnitAmount is in minor units (cents).
	UnitAmount int64 `json:"unit_amount"`
}

// CheckoutRequest asks for a hosted checkout session.
type CheckoutRequest struct {
	LineItems     []LineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// PriceCheckoutRequest asks for a hosted checkout of one preconfigured
// gateway price. Mode is config.PlanModePayment or config.PlanModeSubscription.
type PriceCheckoutRequest struct {
	PriceID       string
	Mode          string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSession is the gateway's answer: the client redirects to URL.
type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// PaymentIntentItem summarizes one cart line for the intent metadata.
type PaymentIntentItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PaymentIntentRequest asks for an embedded-form payment intent.
type PaymentIntentRequest struct {
	// Amount is in minor units (cents).
	Amount        int64
	Currency      string
	CustomerEmail string
	UserID        string
	Items         []PaymentIntentItem
	Shipping      types.ShippingInfo
}

// PaymentIntent carries what the client needs to confirm the payment.
type PaymentIntent struct {
	ID           string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
}

// New selects the driver named in cfg. stripeClient is required by the
// stripe driver only.
func New(cfg config.GatewayConfig, stripeClient *pkgstripe.Client, httpClient *http.Client) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.GatewayDriverStripe:
		if stripeClient == nil {
			return nil, fmt.Errorf("stripe client required for %s gateway", config.GatewayDriverStripe)
		}
		return NewStripeGateway(stripeClient), nil
	case config.GatewayDriverFunction:
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Timeout}
		}
		return NewFunctionGateway(cfg.FunctionURL, httpClient)
	default:
		return nil, fmt.Errorf("unsupported gateway driver %q", cfg.Driver)
	}
}

func rejected(message, fallback string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = fallback
	}
	return pkgerrors.New(pkgerrors.CodeGateway, message)
}

func unreachable(err error, op string) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment service unavailable, please try again").
		WithDetails(map[string]string{"operation": op})
}
