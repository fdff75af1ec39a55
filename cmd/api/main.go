package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sathwikmerugu45/E-Commerce-Website/api/routes"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/cart"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/catalog"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/checkout"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/events"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/gateway"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/orders"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/subscriptions"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/users"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/auth/session"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/instance"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/metrics"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/migrate"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
	pkgpubsub "github.com/sathwikmerugu45/E-Commerce-Website/pkg/pubsub"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/redis"
	pkgstripe "github.com/sathwikmerugu45/E-Commerce-Website/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: cfg.Service.Name,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var resources closers
	defer func() {
		if err := resources.Close(); err != nil {
			logg.Error(context.Background(), "error releasing resources", err)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal(ctx, logg, &resources, "failed to bootstrap database", err)
	}
	resources.add("database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg.App, logg, dbClient); err != nil {
		fatal(ctx, logg, &resources, "failed to run dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fatal(ctx, logg, &resources, "failed to bootstrap redis", err)
	}
	resources.add("redis", redisClient.Close)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(registry)

	policy, err := pricing.FromName(cfg.Pricing.Policy)
	if err != nil {
		fatal(ctx, logg, &resources, "invalid pricing policy", err)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	readerParams := catalog.ReaderParams{
		Repo:     catalogRepo,
		Policy:   policy,
		CacheTTL: cfg.Cache.CatalogTTL,
		Logger:   logg,
		Metrics:  storefrontMetrics,
	}
	registryParams := cart.RegistryParams{
		Repo:     cart.NewRepository(dbClient.DB()),
		Products: catalogRepo,
		Policy:   policy,
		CacheTTL: cfg.Cache.CartTTL,
		Logger:   logg,
		Metrics:  storefrontMetrics,
	}
	if cfg.Cache.Enabled {
		readerParams.Cache = redisClient
		registryParams.Cache = redisClient
	}

	catalogReader, err := catalog.NewReader(readerParams)
	if err != nil {
		fatal(ctx, logg, &resources, "failed to create catalog reader", err)
	}

	carts, err := cart.NewRegistry(registryParams)
	if err != nil {
		fatal(ctx, logg, &resources, "failed to create cart registry", err)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		fatal(ctx, logg, &resources, "failed to create session manager", err)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		SignOutHooks:   []auth.SignOutHook{carts.Drop},
	})
	if err != nil {
		fatal(ctx, logg, &resources, "failed to create auth service", err)
	}

	var stripeClient *pkgstripe.Client
	if cfg.Gateway.Driver == config.GatewayDriverStripe {
		stripeClient, err = pkgstripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			fatal(ctx, logg, &resources, "failed to bootstrap stripe", err)
		}
	}
	paymentGateway, err := gateway.New(cfg.Gateway, stripeClient, nil)
	if err != nil {
		fatal(ctx, logg, &resources, "failed to create payment gateway", err)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.PubSub.Enabled() {
		pubsubClient, err := pkgpubsub.NewClient(ctx, cfg.PubSub, logg)
		if err != nil {
			fatal(ctx, logg, &resources, "failed to bootstrap pubsub", err)
		}
		resources.add("pubsub", pubsubClient.Close)
		pub, err := events.NewPubSubPublisher(pubsubClient.CheckoutPublisher(), logg)
		if err != nil {
			fatal(ctx, logg, &resources, "failed to create event publisher", err)
		}
		publisher = pub
	}

	checkoutGuard := checkout.NewRedisGuard(redisClient, cfg.Checkout.LockTTL)
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:    carts,
		Gateway:  paymentGateway,
		Guard:    checkoutGuard,
		Events:   publisher,
		Checkout: cfg.Checkout,
		Logger:   logg,
		Metrics:  storefrontMetrics,
	})
	if err != nil {
		fatal(ctx, logg, &resources, "failed to create checkout service", err)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:   orders.NewRepository(dbClient.DB()),
		Carts:  carts,
		Marks:  redisClient,
		Policy: policy,
		Logger: logg,
	})
	if err != nil {
		fatal(ctx, logg, &resources, "failed to create orders service", err)
	}

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:     subscriptions.NewRepository(dbClient.DB()),
		Gateway:  paymentGateway,
		Source:   subscriptions.NewStripeSource(stripeClient),
		Guard:    checkoutGuard,
		Events:   publisher,
		Plans:    cfg.Stripe.Plans,
		Checkout: cfg.Checkout,
		Logger:   logg,
		Metrics:  storefrontMetrics,
	})
	if err != nil {
		fatal(ctx, logg, &resources, "failed to create subscriptions service", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"gateway":  cfg.Gateway.Driver,
		"pricing":  cfg.Pricing.Policy,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Auth:          authService,
			Catalog:       catalogReader,
			Carts:         carts,
			Checkout:      checkoutService,
			Orders:        ordersService,
			Subscriptions: subscriptionsService,
			Metrics:       registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(ctx, logg, &resources, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}
