package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
)

const (
	keyNamespace    = "shophub"
	rateLimitPrefix = "rate_limit"
	sessionPrefix   = "session"
	cartPrefix      = "cart"
	catalogPrefix   = "catalog"
	lockPrefix      = "lock"
	idemPrefix      = "idem"
	confirmPrefix   = "confirm"
)

var ErrNotInitialized = errors.New("redis client not initialized")

// releaseScript deletes a lock only when it still holds the caller's token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// windowScript counts one hit and starts the window on the first, in a
// single round trip so a crash between INCR and PEXPIRE cannot leave an
// immortal counter.
const windowScript = `local n = redis.call("incr", KEYS[1])
if n == 1 then
	redis.call("pexpire", KEYS[1], ARGV[1])
end
return n`

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
	Eval(context.Context, string, []string, ...any) *redis.Cmd
}

// Client is the storefront's view of Redis: sessions, cart and catalog
// caches, checkout locks, rate limits and idempotency records.
type Client struct {
	store cmdable
	raw   *redis.Client
}

type Pinger interface {
	Ping(context.Context) error
}

// Locker exposes the token-guarded lock primitives.
type Locker interface {
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	ReleaseIfMatch(ctx context.Context, key, token string) (bool, error)
}

// IdempotencyStore exposes what is needed to replay mutating requests.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// IsMiss reports a lookup of an absent key.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

// New connects and pings before returning.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"redis_db":  opts.DB,
		"pool_size": opts.PoolSize,
	}), "redis.connected")
	return &Client{store: raw, raw: raw}, nil
}

// optionsFromConfig prefers SHOPHUB_REDIS_URL; explicit pool and timeout
// settings fill whatever the URL left unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	default:
		return nil, errors.New("redis url or address is required")
	}

	opts.DB = firstNonZero(opts.DB, cfg.DB)
	opts.PoolSize = firstNonZero(opts.PoolSize, cfg.PoolSize)
	opts.MinIdleConns = firstNonZero(opts.MinIdleConns, cfg.MinIdleConns)
	opts.DialTimeout = firstNonZero(opts.DialTimeout, cfg.DialTimeout)
	opts.ReadTimeout = firstNonZero(opts.ReadTimeout, cfg.ReadTimeout)
	opts.WriteTimeout = firstNonZero(opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func firstNonZero[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.store == nil {
		return ErrNotInitialized
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns the value at key; use IsMiss to tell absence from failure.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", ErrNotInitialized
	}
	return c.store.Get(ctx, key).Result()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.store == nil {
		return false, ErrNotInitialized
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.store == nil {
		return ErrNotInitialized
	}
	return c.store.Del(ctx, keys...).Err()
}

// FixedWindowAllow counts a hit against scope and reports whether it is
// within limit for the current window.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if c.store == nil {
		return false, 0, ErrNotInitialized
	}
	if window <= 0 {
		return false, 0, fmt.Errorf("rate limit window must be positive")
	}
	count, err := c.store.Eval(ctx, windowScript, []string{c.RateLimitKey(scope)}, window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

// ReleaseIfMatch deletes key only if its value is still token.
func (c *Client) ReleaseIfMatch(ctx context.Context, key, token string) (bool, error) {
	if c.store == nil {
		return false, ErrNotInitialized
	}
	deleted, err := c.store.Eval(ctx, releaseScript, []string{key}, token).Int64()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return ErrNotInitialized
	}
	return c.store.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey(rateLimitPrefix, scope)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey(sessionPrefix, "access", accessID)
}

func (c *Client) CartKey(userID string) string {
	return buildKey(cartPrefix, userID)
}

func (c *Client) CatalogKey(name string) string {
	return buildKey(catalogPrefix, name)
}

func (c *Client) LockKey(scope, id string) string {
	return buildKey(lockPrefix, scope, id)
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(idemPrefix, scope, id)
}

// ConfirmationKey marks a checkout session whose cart was already settled.
func (c *Client) ConfirmationKey(userID, checkoutSessionID string) string {
	return buildKey(confirmPrefix, userID, checkoutSessionID)
}

// buildKey joins non-empty parts under the shophub namespace.
func buildKey(parts ...string) string {
	key := keyNamespace
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			key += ":" + part
		}
	}
	return key
}
