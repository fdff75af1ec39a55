package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/metrics"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
	pkgredis "github.com/sathwikmerugu45/E-Commerce-Website/pkg/redis"
)

const (
	opAdd    = "add"
	opUpdate = "update_quantity"
	opRemove = "remove"
	opClear  = "clear"
)

// storeDeps is shared by every Store a Registry creates.
type storeDeps struct {
	repo     ItemRepository
	products productLoader
	policy   pricing.Policy
	cache    cacheStore
	cacheTTL time.Duration
	logg     *logger.Logger
	metrics  *metrics.Storefront
	now      func() time.Time
}

// Store is one user's cart, kept in sync with cart_items. Mutations on a
// Store run one at a time in arrival order and each ends with a refresh, so
// Items always reflects the last completed write.
type Store struct {
	userID uuid.UUID
	deps   *storeDeps

	// mutate serializes writes and refreshes.
	mutate sync.Mutex

	state    sync.RWMutex
	items    []Item
	session  *auth.Session
	lastUsed time.Time

	inFlight atomic.Int32
}

func newStore(sess *auth.Session, deps *storeDeps) *Store {
	return &Store{
		userID:   sess.UserID,
		deps:     deps,
		session:  sess,
		lastUsed: deps.now(),
	}
}

// UserID returns the owner of the cart.
func (s *Store) UserID() uuid.UUID {
	return s.userID
}

// Items returns a copy of the current lines.
func (s *Store) Items() []Item {
	s.state.RLock()
	defer s.state.RUnlock()
	return append([]Item(nil), s.items...)
}

// TotalItems is the sum of quantities.
func (s *Store) TotalItems() int {
	return TotalItems(s.Items())
}

// TotalPrice is the sum of quantity times policy price.
func (s *Store) TotalPrice() decimal.Decimal {
	return TotalPrice(s.Items())
}

// Loading reports whether a fetch or mutation is in flight.
func (s *Store) Loading() bool {
	return s.inFlight.Load() > 0
}

// View snapshots the cart for a response.
func (s *Store) View() View {
	items := s.Items()
	return View{
		Items:      items,
		TotalItems: TotalItems(items),
		TotalPrice: TotalPrice(items),
		Loading:    s.Loading(),
	}
}

// Refresh reloads the lines from the cache or the database.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	s.begin()
	defer s.end()
	s.mutate.Lock()
	defer s.mutate.Unlock()
	return s.reload(ctx, true)
}

// resync reloads from the database, skipping the cache.
func (s *Store) resync(ctx context.Context) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	s.begin()
	defer s.end()
	s.mutate.Lock()
	defer s.mutate.Unlock()
	return s.reload(ctx, false)
}

// AddToCart adds quantity of a product. An existing line grows up to the
// product's stock; a new line starts at min(quantity, stock).
func (s *Store) AddToCart(ctx context.Context, productID uuid.UUID, quantity int) (err error) {
	defer func() { s.deps.metrics.IncCartMutation(opAdd, err) }()
	if err := s.requireSession(); err != nil {
		return err
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	s.begin()
	defer s.end()
	s.mutate.Lock()
	defer s.mutate.Unlock()

	product, err := s.deps.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load product")
	}
	if product.Stock <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}

	if err := s.addLine(ctx, product, quantity); err != nil {
		return err
	}
	return s.afterWrite(ctx)
}

func (s *Store) addLine(ctx context.Context, product *models.Product, quantity int) error {
	existing, err := s.deps.repo.FindByUserProduct(ctx, s.userID, product.ID)
	switch {
	case err == nil:
		return s.growLine(ctx, existing, product, quantity)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load cart item")
	}

	item := &models.CartItem{
		ID:        uuid.New(),
		UserID:    s.userID,
		ProductID: product.ID,
		Quantity:  min(quantity, product.Stock),
	}
	if err := s.deps.repo.Create(ctx, item); err != nil {
		if pkgerrors.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if !pkgerrors.IsUniqueViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to add item to cart")
		}
		// Another writer created the line first; fold into it.
		existing, findErr := s.deps.repo.FindByUserProduct(ctx, s.userID, product.ID)
		if findErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "failed to load cart item")
		}
		return s.growLine(ctx, existing, product, quantity)
	}
	return nil
}

func (s *Store) growLine(ctx context.Context, existing *models.CartItem, product *models.Product, quantity int) error {
	if existing.Quantity >= product.Stock {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("only %d of %s in stock and all are already in your cart", product.Stock, product.Name))
	}
	next := min(existing.Quantity+quantity, product.Stock)
	if err := s.deps.repo.UpdateQuantity(ctx, s.userID, existing.ID, next); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update cart item")
	}
	return nil
}

// UpdateQuantity sets a line's quantity, clamped to [1, stock]. Zero or a
// negative quantity removes the line; a sold-out product is rejected.
func (s *Store) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (err error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, itemID)
	}
	defer func() { s.deps.metrics.IncCartMutation(opUpdate, err) }()
	if err := s.requireSession(); err != nil {
		return err
	}

	s.begin()
	defer s.end()
	s.mutate.Lock()
	defer s.mutate.Unlock()

	item, err := s.deps.repo.FindItem(ctx, s.userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load cart item")
	}

	if item.Product.Stock <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}
	next := min(quantity, item.Product.Stock)
	if err := s.deps.repo.UpdateQuantity(ctx, s.userID, item.ID, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update cart item")
	}
	return s.afterWrite(ctx)
}

// RemoveFromCart deletes a line. Removing a missing line succeeds.
func (s *Store) RemoveFromCart(ctx context.Context, itemID uuid.UUID) (err error) {
	defer func() { s.deps.metrics.IncCartMutation(opRemove, err) }()
	if err := s.requireSession(); err != nil {
		return err
	}

	s.begin()
	defer s.end()
	s.mutate.Lock()
	defer s.mutate.Unlock()

	if err := s.deps.repo.Delete(ctx, s.userID, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to remove cart item")
	}
	return s.afterWrite(ctx)
}

// Clear deletes every line.
func (s *Store) Clear(ctx context.Context) (err error) {
	defer func() { s.deps.metrics.IncCartMutation(opClear, err) }()
	if err := s.requireSession(); err != nil {
		return err
	}

	s.begin()
	defer s.end()
	s.mutate.Lock()
	defer s.mutate.Unlock()

	if err := s.deps.repo.DeleteAllForUser(ctx, s.userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to clear cart")
	}
	return s.afterWrite(ctx)
}

// ClearBefore deletes the lines created at or before cutoff. Lines added
// later belong to a newer cart and stay.
func (s *Store) ClearBefore(ctx context.Context, cutoff time.Time) (err error) {
	defer func() { s.deps.metrics.IncCartMutation(opClear, err) }()
	if err := s.requireSession(); err != nil {
		return err
	}

	s.begin()
	defer s.end()
	s.mutate.Lock()
	defer s.mutate.Unlock()

	if err := s.deps.repo.DeleteForUserBefore(ctx, s.userID, cutoff); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to clear cart")
	}
	return s.afterWrite(ctx)
}

// afterWrite drops the cached copy and reloads from the database.
func (s *Store) afterWrite(ctx context.Context) error {
	s.invalidate(ctx)
	return s.reload(ctx, false)
}

// reload must be called with mutate held.
func (s *Store) reload(ctx context.Context, useCache bool) error {
	var (
		rows []models.CartItem
		ok   bool
	)
	if useCache {
		rows, ok = s.fromCache(ctx)
	}
	if !ok {
		var err error
		rows, err = s.deps.repo.ListByUser(ctx, s.userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load cart")
		}
		s.toCache(ctx, rows)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromModel(row, s.deps.policy))
	}

	s.state.Lock()
	s.items = items
	s.state.Unlock()
	return nil
}

func (s *Store) fromCache(ctx context.Context) ([]models.CartItem, bool) {
	if s.deps.cache == nil {
		return nil, false
	}
	payload, err := s.deps.cache.Get(ctx, s.deps.cache.CartKey(s.userID.String()))
	if err != nil {
		if !pkgredis.IsMiss(err) {
			s.warn(ctx, "cart.cache_get_failed", err)
		}
		s.deps.metrics.IncCacheLookup("cart", false)
		return nil, false
	}
	var rows []models.CartItem
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		s.warn(ctx, "cart.cache_decode_failed", err)
		s.deps.metrics.IncCacheLookup("cart", false)
		return nil, false
	}
	s.deps.metrics.IncCacheLookup("cart", true)
	return rows, true
}

func (s *Store) toCache(ctx context.Context, rows []models.CartItem) {
	if s.deps.cache == nil || s.deps.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		s.warn(ctx, "cart.cache_encode_failed", err)
		return
	}
	if err := s.deps.cache.Set(ctx, s.deps.cache.CartKey(s.userID.String()), payload, s.deps.cacheTTL); err != nil {
		s.warn(ctx, "cart.cache_set_failed", err)
	}
}

func (s *Store) invalidate(ctx context.Context) {
	if s.deps.cache == nil {
		return
	}
	if err := s.deps.cache.Del(ctx, s.deps.cache.CartKey(s.userID.String())); err != nil {
		s.warn(ctx, "cart.cache_invalidate_failed", err)
	}
}

func (s *Store) requireSession() error {
	s.state.RLock()
	sess := s.session
	s.state.RUnlock()
	return auth.RequireSession(sess, s.deps.now())
}

func (s *Store) bind(sess *auth.Session) {
	s.state.Lock()
	s.session = sess
	s.lastUsed = s.deps.now()
	s.state.Unlock()
}

func (s *Store) idleSince() time.Time {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.lastUsed
}

func (s *Store) begin() { s.inFlight.Add(1) }
func (s *Store) end()   { s.inFlight.Add(-1) }

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.deps.logg == nil {
		return
	}
	s.deps.logg.Warn(s.deps.logg.WithField(ctx, "error", err.Error()), msg)
}
