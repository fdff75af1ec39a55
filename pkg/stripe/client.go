package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"

	maxNetworkRetries = 2
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client talks to Stripe with its own key and backend; nothing is stored in
// stripe-go's package globals, so tests can run several side by side.
type Client struct {
	environment string
	sessions    *checkoutsession.Client
	intents     *paymentintent.Client
}

func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if !keyMatchesEnv(env, apiKey) {
		return nil, fmt.Errorf("stripe environment %q requires a %s secret key (sk_%s/rk_%s)", env, env, env, env)
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(maxNetworkRetries),
	})

	logg.Info(logg.WithField(ctx, "stripe_env", env), "stripe.client.ready")

	return &Client{
		environment: env,
		sessions:    &checkoutsession.Client{B: backend, Key: apiKey},
		intents:     &paymentintent.Client{B: backend, Key: apiKey},
	}, nil
}

func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// Live reports whether real cards are charged.
func (c *Client) Live() bool {
	return c.Environment() == liveEnv
}

// NewCheckoutSession creates a hosted checkout page.
func (c *Client) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.sessions.New(params)
}

// GetCheckoutSession reads a session back, usually with its subscription
// expanded.
func (c *Client) GetCheckoutSession(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.sessions.Get(id, params)
}

// NewPaymentIntent creates an intent for the embedded card form.
func (c *Client) NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.intents.New(params)
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	if env != testEnv && env != liveEnv {
		return "", errInvalidStripeEnv
	}
	return env, nil
}

// keyMatchesEnv accepts secret (sk_) and restricted (rk_) keys for env.
func keyMatchesEnv(env, key string) bool {
	return strings.HasPrefix(key, "sk_"+env+"_") || strings.HasPrefix(key, "rk_"+env+"_")
}
