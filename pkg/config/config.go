package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Pricing       PricingConfig
	Checkout      CheckoutConfig
	Gateway       GatewayConfig
	Stripe        StripeConfig
	Cache         CacheConfig
	PubSub        PubSubConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Gateway.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPHUB_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SHOPHUB_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SHOPHUB_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SHOPHUB_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Name string `envconfig:"SHOPHUB_SERVICE_NAME" default:"shophub-api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPHUB_DB_DSN"`
	Driver string `envconfig:"SHOPHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SHOPHUB_DB_HOST"`
	Port     int    `envconfig:"SHOPHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"SHOPHUB_DB_USER"`
	Password string `envconfig:"SHOPHUB_DB_PASSWORD"`
	Name     string `envconfig:"SHOPHUB_DB_NAME"`
	SSLMode  string `envconfig:"SHOPHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQuery is the latency above which statements are logged at warn.
	SlowQuery time.Duration `envconfig:"SHOPHUB_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPHUB_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOPHUB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOPHUB_JWT_ISSUER" default:"shophub"`
	ExpirationMinutes      int    `envconfig:"SHOPHUB_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOPHUB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPHUB_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// PricingConfig selects the price override applied to catalog reads.
// "zero" forces every price to 0, "list" uses the stored price.
type PricingConfig struct {
	Policy string `envconfig:"SHOPHUB_PRICING_POLICY" default:"zero"`
}

type CheckoutConfig struct {
	BaseURL  string        `envconfig:"SHOPHUB_CHECKOUT_BASE_URL" required:"true"`
	Currency string        `envconfig:"SHOPHUB_CHECKOUT_CURRENCY" default:"usd"`
	LockTTL  time.Duration `envconfig:"SHOPHUB_CHECKOUT_LOCK_TTL" default:"30s"`
}

// SuccessURL is the gateway return target. The gateway fills the placeholder.
func (c CheckoutConfig) SuccessURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/success?session_id=" + CheckoutSessionPlaceholder
}

func (c CheckoutConfig) CancelURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/checkout"
}

// HomeURL is where an abandoned plan purchase returns to.
func (c CheckoutConfig) HomeURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/"
}

type GatewayConfig struct {
	Driver      string        `envconfig:"SHOPHUB_GATEWAY_DRIVER" default:"stripe"`
	FunctionURL string        `envconfig:"SHOPHUB_GATEWAY_FUNCTION_URL"`
	Timeout     time.Duration `envconfig:"SHOPHUB_GATEWAY_TIMEOUT" default:"15s"`
}

func (g GatewayConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(g.Driver)) {
	case GatewayDriverStripe:
		return nil
	case GatewayDriverFunction:
		if strings.TrimSpace(g.FunctionURL) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvGatewayFunctionURL, EnvGatewayDriver, GatewayDriverFunction)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvGatewayDriver, g.Driver)
	}
}

type StripeConfig struct {
	APIKey string   `envconfig:"SHOPHUB_STRIPE_API_KEY"`
	Env    string   `envconfig:"SHOPHUB_STRIPE_ENV" default:"test"`
	Plans  PlanList `envconfig:"SHOPHUB_STRIPE_PLANS"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CacheConfig struct {
	Enabled    bool          `envconfig:"SHOPHUB_CACHE_ENABLED" default:"true"`
	CatalogTTL time.Duration `envconfig:"SHOPHUB_CACHE_CATALOG_TTL" default:"5m"`
	CartTTL    time.Duration `envconfig:"SHOPHUB_CACHE_CART_TTL" default:"10m"`
}

// PubSubConfig is optional. Events are dropped when ProjectID is empty.
type PubSubConfig struct {
	ProjectID       string `envconfig:"SHOPHUB_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"SHOPHUB_GCP_CREDENTIALS_JSON"`
	CredentialsFile string `envconfig:"SHOPHUB_GCP_CREDENTIALS_FILE"`
	CheckoutTopic   string `envconfig:"SHOPHUB_PUBSUB_CHECKOUT_TOPIC" default:"shophub-checkout-events"`
}

func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ProjectID) != ""
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string      `envconfig:"SHOPHUB_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	MaxAge         time.Duration `envconfig:"SHOPHUB_CORS_MAX_AGE" default:"5m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range partialDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
