package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/metrics"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
	pkgredis "github.com/sathwikmerugu45/E-Commerce-Website/pkg/redis"
)

const listCacheName = "products"

type productRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// cacheStore is satisfied by pkg/redis.Client.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(name string) string
}

// Reader serves the product catalog with the pricing policy applied.
type Reader struct {
	repo    productRepository
	policy  pricing.Policy
	cache   cacheStore
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.Storefront
	sf      singleflight.Group
}

// ReaderParams bundles the dependencies of a Reader. Cache is optional.
type ReaderParams struct {
	Repo     productRepository
	Policy   pricing.Policy
	Cache    cacheStore
	CacheTTL time.Duration
	Logger   *logger.Logger
	Metrics  *metrics.Storefront
}

// NewReader builds a catalog reader.
func NewReader(params ReaderParams) (*Reader, error) {
	if params.Repo == nil {
		return nil, errors.New("product repository is required")
	}
	policy := params.Policy
	if policy == nil {
		policy = pricing.Zero
	}
	return &Reader{
		repo:    params.Repo,
		policy:  policy,
		cache:   params.Cache,
		ttl:     params.CacheTTL,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// List returns all products newest first and the sorted category set.
func (r *Reader) List(ctx context.Context) (*Listing, error) {
	raw, err := r.loadAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load products")
	}
	products := make([]ProductDTO, 0, len(raw))
	for _, p := range raw {
		products = append(products, FromModel(p, r.policy))
	}
	return &Listing{Products: products, Categories: Categories(products)}, nil
}

// Get returns one product.
func (r *Reader) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := r.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load product")
	}
	dto := FromModel(*product, r.policy)
	return &dto, nil
}

// loadAll reads the stored list through the cache. Concurrent misses share
// one database read.
func (r *Reader) loadAll(ctx context.Context) ([]models.Product, error) {
	v, err, _ := r.sf.Do(listCacheName, func() (any, error) {
		if cached, ok := r.fromCache(ctx); ok {
			return cached, nil
		}
		products, err := r.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		r.toCache(ctx, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

func (r *Reader) fromCache(ctx context.Context) ([]models.Product, bool) {
	if r.cache == nil {
		return nil, false
	}
	payload, err := r.cache.Get(ctx, r.cache.CatalogKey(listCacheName))
	if err != nil {
		if !pkgredis.IsMiss(err) {
			r.warn(ctx, "catalog.cache_get_failed", err)
		}
		r.metrics.IncCacheLookup("catalog", false)
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(payload), &products); err != nil {
		r.warn(ctx, "catalog.cache_decode_failed", err)
		r.metrics.IncCacheLookup("catalog", false)
		return nil, false
	}
	r.metrics.IncCacheLookup("catalog", true)
	return products, true
}

func (r *Reader) toCache(ctx context.Context, products []models.Product) {
	if r.cache == nil || r.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(products)
	if err != nil {
		r.warn(ctx, "catalog.cache_encode_failed", err)
		return
	}
	if err := r.cache.Set(ctx, r.cache.CatalogKey(listCacheName), payload, r.ttl); err != nil {
		r.warn(ctx, "catalog.cache_set_failed", err)
	}
}

func (r *Reader) warn(ctx context.Context, msg string, err error) {
	if r.logg == nil {
		return
	}
	r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), msg)
}
