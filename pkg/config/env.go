package config

const (
	EnvPrefix = "SHOPHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	GatewayDriverStripe   = "stripe"
	GatewayDriverFunction = "function"

	PlanModePayment      = "payment"
	PlanModeSubscription = "subscription"

	// CheckoutSessionPlaceholder is substituted by the payment gateway on redirect.
	CheckoutSessionPlaceholder = "{CHECKOUT_SESSION_ID}"
)

const (
	EnvAppEnv                 = "SHOPHUB_APP_ENV"
	EnvPort                   = "SHOPHUB_APP_PORT"
	EnvLogLevel               = "SHOPHUB_LOG_LEVEL"
	EnvLogFormat              = "SHOPHUB_LOG_FORMAT"
	EnvDBDSN                  = "SHOPHUB_DB_DSN"
	EnvDBHost                 = "SHOPHUB_DB_HOST"
	EnvDBUser                 = "SHOPHUB_DB_USER"
	EnvDBName                 = "SHOPHUB_DB_NAME"
	EnvDBPassword             = "SHOPHUB_DB_PASSWORD"
	EnvRedisURL               = "SHOPHUB_REDIS_URL"
	EnvJWTSecret              = "SHOPHUB_JWT_SECRET"
	EnvJWTIssuer              = "SHOPHUB_JWT_ISSUER"
	EnvJWTExpMins             = "SHOPHUB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SHOPHUB_REFRESH_TOKEN_TTL_MINUTES"
	EnvPricingPolicy          = "SHOPHUB_PRICING_POLICY"
	EnvCheckoutBaseURL        = "SHOPHUB_CHECKOUT_BASE_URL"
	EnvGatewayDriver          = "SHOPHUB_GATEWAY_DRIVER"
	EnvGatewayFunctionURL     = "SHOPHUB_GATEWAY_FUNCTION_URL"
	EnvStripeAPIKey           = "SHOPHUB_STRIPE_API_KEY"
	EnvStripePlans            = "SHOPHUB_STRIPE_PLANS"
	EnvGCPProjectID           = "SHOPHUB_GCP_PROJECT_ID"
)

var partialDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
