package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sathwikmerugu45/E-Commerce-Website/api/controllers"
	"github.com/sathwikmerugu45/E-Commerce-Website/api/middleware"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/cart"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/catalog"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/checkout"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/orders"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/subscriptions"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/redis"
)

// redisStore is the slice of pkg/redis.Client the HTTP layer needs.
type redisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type catalogReader interface {
	List(ctx context.Context) (*catalog.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error)
}

type cartRegistry interface {
	Get(ctx context.Context, sess *auth.Session) (*cart.Store, error)
}

// Dependencies is everything the router hands to middleware and controllers.
// Metrics may be nil, in which case /metrics is not mounted.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         redisStore
	Auth          auth.Service
	Catalog       catalogReader
	Carts         cartRegistry
	Checkout      checkout.Service
	Orders        orders.Service
	Subscriptions subscriptions.Service
	Metrics       prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Catalog, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.Catalog, logg))
		})
		r.Get("/plans", controllers.PlansList(deps.Subscriptions, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Auth, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Get("/session", controllers.SessionCurrent(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Carts, logg))
				r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.Carts, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Carts, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", controllers.CheckoutSubmit(deps.Checkout, logg))
				r.Post("/payment-intent", controllers.CheckoutPaymentIntent(deps.Checkout, logg))
				r.Post("/product", controllers.CheckoutProduct(deps.Subscriptions, logg))
			})

			r.Get("/subscription", controllers.SubscriptionCurrent(deps.Subscriptions, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersHistory(deps.Orders, logg))
				r.Get("/confirmation", controllers.OrderConfirmation(deps.Orders, logg))
			})
		})
	})

	return r
}
