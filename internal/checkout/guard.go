package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/redis"
)

const (
	lockScope      = "checkout"
	defaultLockTTL = 30 * time.Second
)

// InProgressMessage is returned to a second submission while one is running.
const InProgressMessage = "a checkout is already in progress for this account"

// Guard admits one checkout per user at a time. The returned release must be
// called exactly once, whatever the outcome.
type Guard interface {
	Acquire(ctx context.Context, userID uuid.UUID) (release func(), err error)
}

type lockStore interface {
	redis.Locker
	LockKey(scope, id string) string
}

// RedisGuard holds a token-guarded SET NX lock per user. The TTL bounds how
// long a crashed instance can block the user.
type RedisGuard struct {
	store lockStore
	ttl   time.Duration
}

// NewRedisGuard builds a guard over a redis client.
func NewRedisGuard(store lockStore, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisGuard{store: store, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := g.store.LockKey(lockScope, userID.String())
	token := uuid.NewString()
	ok, err := g.store.SetNX(ctx, key, token, g.ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout lock unavailable")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, InProgressMessage)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			_, _ = g.store.ReleaseIfMatch(context.WithoutCancel(ctx), key, token)
		})
	}, nil
}

// MemoryGuard is the single-instance fallback when redis is not configured.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[uuid.UUID]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, userID uuid.UUID) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[userID]; busy {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, InProgressMessage)
	}
	g.held[userID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, userID)
			g.mu.Unlock()
		})
	}, nil
}
