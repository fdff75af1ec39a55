package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
)

const (
	metadataItems    = "items"
	metadataShipping = "shipping"
	metadataUserID   = "user_id"
)

// stripeBackend is the slice of the Stripe API the gateway uses; the
// production implementation is *pkg/stripe.Client.
type stripeBackend interface {
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway creates sessions directly with the Stripe API.
type StripeGateway struct {
	backend stripeBackend
}

// NewStripeGateway wraps the provided backend.
func NewStripeGateway(backend stripeBackend) *StripeGateway {
	return &StripeGateway{backend: backend}
}

func (g *StripeGateway) Driver() string {
	return config.GatewayDriverStripe
}

// CreateCheckoutSession ignores bearer; the server key authenticates.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, _ string, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems:  make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems)),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for _, item := range req.LineItems {
		params.LineItems = append(params.LineItems, stripeLineItem(item))
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := g.backend.NewCheckoutSession(params)
	if err != nil {
		return nil, mapStripeError(err, "Failed to create checkout session", "create_checkout_session")
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// CreatePriceCheckout sells one unit of a stored price. The user id from
// metadata becomes the client reference so completed sessions can be matched.
func (g *StripeGateway) CreatePriceCheckout(ctx context.Context, _ string, req PriceCheckoutRequest) (*CheckoutSession, error) {
	mode := stripe.CheckoutSessionModePayment
	if req.Mode == config.PlanModeSubscription {
		mode = stripe.CheckoutSessionModeSubscription
	}
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(mode)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.PriceID),
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if userID := req.Metadata[metadataUserID]; userID != "" {
		params.ClientReferenceID = stripe.String(userID)
	}
	if mode == stripe.CheckoutSessionModeSubscription {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{}
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
		if params.SubscriptionData != nil {
			params.SubscriptionData.AddMetadata(key, value)
		}
	}

	session, err := g.backend.NewCheckoutSession(params)
	if err != nil {
		return nil, mapStripeError(err, "Failed to create checkout session", "create_price_checkout")
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, _ string, req PaymentIntentRequest) (*PaymentIntent, error) {
	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("encode payment intent items: %w", err)
	}
	shipping, err := req.Shipping.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode payment intent shipping: %w", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata(metadataItems, string(items))
	params.AddMetadata(metadataShipping, shipping)
	if req.UserID != "" {
		params.AddMetadata(metadataUserID, req.UserID)
	}

	intent, err := g.backend.NewPaymentIntent(params)
	if err != nil {
		return nil, mapStripeError(err, "Failed to create payment intent", "create_payment_intent")
	}
	return &PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func stripeLineItem(item LineItem) *stripe.CheckoutSessionLineItemParams {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(item.Name),
	}
	// Stripe rejects empty strings for optional product fields.
	if item.Description != "" {
		product.Description = stripe.String(item.Description)
	}
	if item.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{item.ImageURL})
	}
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(item.Quantity),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(item.Currency),
			UnitAmount:  stripe.Int64(item.UnitAmount),
			ProductData: product,
		},
	}
}

// mapStripeError keeps the processor's message for API errors and treats
// everything else as the gateway being unreachable.
func mapStripeError(err error, fallback, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return rejected(stripeErr.Msg, fallback)
	}
	return unreachable(err, op)
}
