// Package checkout turns a shopper's cart into a hosted payment session.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/cart"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/events"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/gateway"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/metrics"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/types"
)

const (
	SignInMessage    = "please sign in to complete your order"
	EmptyCartMessage = "your cart is empty"

	kindSession = "session"
	kindIntent  = "payment_intent"

	opCheckoutSession = "create_checkout_session"
	opPaymentIntent   = "create_payment_intent"
)

type cartReader interface {
	Snapshot(ctx context.Context, sess *auth.Session) ([]cart.Item, error)
}

// Service executes checkout orchestration.
type Service interface {
	SubmitCheckout(ctx context.Context, sess *auth.Session, shipping types.ShippingInfo) (*gateway.CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, sess *auth.Session, shipping types.ShippingInfo) (*gateway.PaymentIntent, error)
}

// ServiceParams wires the orchestrator. Guard, Events and Metrics are optional.
type ServiceParams struct {
	Carts    cartReader
	Gateway  gateway.Gateway
	Guard    Guard
	Events   events.Publisher
	Checkout config.CheckoutConfig
	Logger   *logger.Logger
	Metrics  *metrics.Storefront
}

type service struct {
	carts    cartReader
	gateway  gateway.Gateway
	guard    Guard
	events   events.Publisher
	cfg      config.CheckoutConfig
	logg     *logger.Logger
	metrics  *metrics.Storefront
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds the checkout orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, errors.New("cart reader required")
	}
	if params.Gateway == nil {
		return nil, errors.New("payment gateway required")
	}
	if strings.TrimSpace(params.Checkout.BaseURL) == "" {
		return nil, errors.New("checkout base url required")
	}
	guard := params.Guard
	if guard == nil {
		guard = NewMemoryGuard()
	}
	publisher := params.Events
	if publisher == nil {
		publisher = events.Noop{}
	}
	cfg := params.Checkout
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &service{
		carts:    params.Carts,
		gateway:  params.Gateway,
		guard:    guard,
		events:   publisher,
		cfg:      cfg,
		logg:     params.Logger,
		metrics:  params.Metrics,
		validate: validator.New(),
		now:      time.Now,
	}, nil
}

func (s *service) SubmitCheckout(ctx context.Context, sess *auth.Session, shipping types.ShippingInfo) (result *gateway.CheckoutSession, err error) {
	defer func() { s.metrics.IncCheckout(kindSession, err) }()

	items, release, err := s.begin(ctx, sess, shipping)
	if err != nil {
		return nil, err
	}
	defer release()

	metadata, err := buildMetadata(sess, shipping, items)
	if err != nil {
		return nil, err
	}
	req := gateway.CheckoutRequest{
		LineItems:     s.lineItems(items),
		CustomerEmail: sess.Email,
		SuccessURL:    s.cfg.SuccessURL(),
		CancelURL:     s.cfg.CancelURL(),
		Metadata:      metadata,
	}

	started := s.now()
	result, err = s.gateway.CreateCheckoutSession(ctx, sess.AccessToken, req)
	s.metrics.ObserveGateway(s.gateway.Driver(), opCheckoutSession, s.now().Sub(started))
	if err != nil {
		s.logFailure(ctx, "checkout.session_failed", err)
		return nil, err
	}
	if result == nil || result.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "payment gateway returned no redirect url")
	}

	ctx = s.withFields(ctx, map[string]any{"checkout_session_id": result.ID, "items": len(items)})
	s.info(ctx, "checkout.session_created")
	s.publish(ctx, sess, events.TypeCheckoutSessionCreated, result.ID, items)
	return result, nil
}

func (s *service) CreatePaymentIntent(ctx context.Context, sess *auth.Session, shipping types.ShippingInfo) (result *gateway.PaymentIntent, err error) {
	defer func() { s.metrics.IncCheckout(kindIntent, err) }()

	items, release, err := s.begin(ctx, sess, shipping)
	if err != nil {
		return nil, err
	}
	defer release()

	intentItems := make([]gateway.PaymentIntentItem, 0, len(items))
	for _, item := range items {
		intentItems = append(intentItems, gateway.PaymentIntentItem{
			ID:       item.ProductID.String(),
			Name:     item.Product.Name,
			Quantity: item.Quantity,
			Price:    item.Product.Price,
		})
	}
	req := gateway.PaymentIntentRequest{
		Amount:        pricing.ToMinorUnits(cart.TotalPrice(items)),
		Currency:      s.cfg.Currency,
		CustomerEmail: sess.Email,
		UserID:        sess.UserID.String(),
		Items:         intentItems,
		Shipping:      shipping,
	}

	started := s.now()
	result, err = s.gateway.CreatePaymentIntent(ctx, sess.AccessToken, req)
	s.metrics.ObserveGateway(s.gateway.Driver(), opPaymentIntent, s.now().Sub(started))
	if err != nil {
		s.logFailure(ctx, "checkout.payment_intent_failed", err)
		return nil, err
	}
	if result == nil || result.ClientSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "payment gateway returned no client secret")
	}

	ctx = s.withFields(ctx, map[string]any{"payment_intent_id": result.ID, "items": len(items)})
	s.info(ctx, "checkout.payment_intent_created")
	s.publish(ctx, sess, events.TypePaymentIntentCreated, result.ID, items)
	return result, nil
}

// begin checks the preconditions shared by both flows and takes the user's
// guard. On success the caller owns release.
func (s *service) begin(ctx context.Context, sess *auth.Session, shipping types.ShippingInfo) ([]cart.Item, func(), error) {
	if err := auth.RequireSession(sess, s.now()); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, SignInMessage)
	}
	release, err := s.guard.Acquire(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.carts.Snapshot(ctx, sess)
	if err != nil {
		release()
		return nil, nil, err
	}
	if len(items) == 0 {
		release()
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, EmptyCartMessage)
	}
	if err := s.validateShipping(shipping); err != nil {
		release()
		return nil, nil, err
	}
	return items, release, nil
}

func (s *service) validateShipping(shipping types.ShippingInfo) error {
	err := s.validate.Struct(shipping)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping information")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[shippingField(fe.Field())] = fe.Tag()
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping information").WithDetails(details)
}

func (s *service) lineItems(items []cart.Item) []gateway.LineItem {
	out := make([]gateway.LineItem, 0, len(items))
	for _, item := range items {
		description := strings.TrimSpace(item.Product.Description)
		if description == "" {
			description = fmt.Sprintf("Quantity: %d", item.Quantity)
		}
		out = append(out, gateway.LineItem{
			Name:        item.Product.Name,
			Description: description,
			ImageURL:    item.Product.ImageURL,
			Quantity:    int64(item.Quantity),
			Currency:    s.cfg.Currency,
			UnitAmount:  pricing.ToMinorUnits(item.Product.Price),
		})
	}
	return out
}

type metadataItem struct {
	ProductID string      `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
}

func buildMetadata(sess *auth.Session, shipping types.ShippingInfo, items []cart.Item) (map[string]string, error) {
	shippingJSON, err := shipping.JSON()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode shipping info")
	}
	lines := make([]metadataItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, metadataItem{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     json.Number(item.Product.Price.String()),
		})
	}
	cartJSON, err := json.Marshal(lines)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart items")
	}
	return map[string]string{
		"user_id":       sess.UserID.String(),
		"shipping_info": shippingJSON,
		"cart_items":    string(cartJSON),
	}, nil
}

func (s *service) publish(ctx context.Context, sess *auth.Session, eventType, gatewayID string, items []cart.Item) {
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(item.LineTotal())
		count += item.Quantity
	}
	err := s.events.Publish(ctx, eventType, sess.UserID, events.CheckoutStarted{
		GatewayID:  gatewayID,
		Driver:     s.gateway.Driver(),
		ItemCount:  count,
		TotalMinor: pricing.ToMinorUnits(total),
		Currency:   s.cfg.Currency,
	})
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.event_publish_failed")
	}
}

func (s *service) withFields(ctx context.Context, fields map[string]any) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithFields(ctx, fields)
}

func (s *service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *service) logFailure(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(ctx, msg, err)
	}
}

// shippingField maps a struct field back to its JSON name.
func shippingField(name string) string {
	switch name {
	case "PostalCode":
		return "postalCode"
	default:
		return strings.ToLower(name)
	}
}
