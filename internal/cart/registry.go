package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/metrics"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
)

const (
	defaultIdleTTL    = 30 * time.Minute
	defaultSweepEvery = time.Minute
)

// RegistryParams bundles the dependencies shared by every cart. Cache is
// optional.
type RegistryParams struct {
	Repo     ItemRepository
	Products productLoader
	Policy   pricing.Policy
	Cache    cacheStore
	CacheTTL time.Duration
	IdleTTL  time.Duration
	Logger   *logger.Logger
	Metrics  *metrics.Storefront
}

// Registry owns the live carts. A cart is created on a user's first
// authenticated access and torn down on sign-out or after sitting idle.
type Registry struct {
	deps    *storeDeps
	idleTTL time.Duration

	mu        sync.Mutex
	stores    map[uuid.UUID]*Store
	lastSweep time.Time
}

// NewRegistry builds an empty registry.
func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Repo == nil {
		return nil, errors.New("cart repository required")
	}
	if params.Products == nil {
		return nil, errors.New("product loader required")
	}
	policy := params.Policy
	if policy == nil {
		policy = pricing.Zero
	}
	idle := params.IdleTTL
	if idle <= 0 {
		idle = defaultIdleTTL
	}
	deps := &storeDeps{
		repo:     params.Repo,
		products: params.Products,
		policy:   policy,
		cache:    params.Cache,
		cacheTTL: params.CacheTTL,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
	return &Registry{
		deps:    deps,
		idleTTL: idle,
		stores:  make(map[uuid.UUID]*Store),
	}, nil
}

// Get returns the session's cart with its lines reloaded. A cart that already
// lives here is re-read through the cache so writes from other instances show.
func (r *Registry) Get(ctx context.Context, sess *auth.Session) (*Store, error) {
	store, created, err := r.lookup(sess)
	if err != nil {
		return nil, err
	}
	if err := store.Refresh(ctx); err != nil {
		r.forget(sess.UserID, store, created)
		return nil, err
	}
	return store, nil
}

// Clear empties the session's cart.
func (r *Registry) Clear(ctx context.Context, sess *auth.Session) error {
	store, _, err := r.lookup(sess)
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}

// ClearBefore removes the lines added at or before cutoff and keeps the rest.
func (r *Registry) ClearBefore(ctx context.Context, sess *auth.Session, cutoff time.Time) error {
	store, _, err := r.lookup(sess)
	if err != nil {
		return err
	}
	return store.ClearBefore(ctx, cutoff)
}

// Snapshot reloads the session's cart from the database and returns its
// lines. Checkout reads through it so a stale in-memory list is never charged.
func (r *Registry) Snapshot(ctx context.Context, sess *auth.Session) ([]Item, error) {
	store, created, err := r.lookup(sess)
	if err != nil {
		return nil, err
	}
	if err := store.resync(ctx); err != nil {
		r.forget(sess.UserID, store, created)
		return nil, err
	}
	return store.Items(), nil
}

func (r *Registry) lookup(sess *auth.Session) (*Store, bool, error) {
	if err := auth.RequireSession(sess, r.deps.now()); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	if store, ok := r.stores[sess.UserID]; ok {
		store.bind(sess)
		return store, false, nil
	}
	store := newStore(sess, r.deps)
	r.stores[sess.UserID] = store
	return store, true, nil
}

// forget drops a store that never loaded.
func (r *Registry) forget(userID uuid.UUID, store *Store, created bool) {
	if !created {
		return
	}
	r.mu.Lock()
	if r.stores[userID] == store {
		delete(r.stores, userID)
	}
	r.mu.Unlock()
}

// Drop tears down the user's cart. It matches auth.SignOutHook.
func (r *Registry) Drop(ctx context.Context, userID uuid.UUID) {
	r.mu.Lock()
	store, ok := r.stores[userID]
	delete(r.stores, userID)
	r.mu.Unlock()
	if ok {
		store.invalidate(ctx)
	}
}

// Len reports the number of live carts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

func (r *Registry) sweepLocked() {
	now := r.deps.now()
	if now.Sub(r.lastSweep) < defaultSweepEvery {
		return
	}
	r.lastSweep = now
	for userID, store := range r.stores {
		if store.Loading() {
			continue
		}
		if now.Sub(store.idleSince()) > r.idleTTL {
			delete(r.stores, userID)
		}
	}
}
