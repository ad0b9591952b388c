package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/seafresh/backend/internal/domain"
)

const (
	availableProductsKey = "catalog:available"

	// DefaultLoadTimeout bounds a shared catalog load, which does not
	// inherit any single caller's cancellation
	DefaultLoadTimeout = 10 * time.Second
)

// CachedRepository serves the available-product list from a cache.
// Reads may be stale for up to ttl; concurrent misses share one load.
type CachedRepository struct {
	next   domain.CatalogRepository
	cache  domain.CacheRepository
	ttl         time.Duration
	loadTimeout time.Duration
	logger      *zap.Logger
	group       singleflight.Group
}

// NewCachedRepository decorates next with a read-through cache
func NewCachedRepository(next domain.CatalogRepository, cache domain.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachedRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRepository{
		next:        next,
		cache:       cache,
		ttl:         ttl,
		loadTimeout: DefaultLoadTimeout,
		logger:      logger.Named("catalog_cache"),
	}
}

// SetLoadTimeout overrides the bound on a shared load
func (r *CachedRepository) SetLoadTimeout(timeout time.Duration) {
	if timeout > 0 {
		r.loadTimeout = timeout
	}
}

// ListAvailableProducts implements domain.CatalogRepository.
// A caller whose ctx ends stops waiting; the shared load keeps running
// for the other callers.
func (r *CachedRepository) ListAvailableProducts(ctx context.Context) ([]domain.Product, error) {
	if products, ok := r.fromCache(ctx); ok {
		return products, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(availableProductsKey, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(loadCtx, r.loadTimeout)
		defer cancel()

		products, err := r.next.ListAvailableProducts(ctx)
		if err != nil {
			return nil, err
		}
		r.store(ctx, products)
		return products, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	shared := res.Val.([]domain.Product)
	out := make([]domain.Product, len(shared))
	copy(out, shared)
	return out, nil
}

// Invalidate drops the cached list
func (r *CachedRepository) Invalidate(ctx context.Context) error {
	return r.cache.Delete(ctx, availableProductsKey)
}

func (r *CachedRepository) fromCache(ctx context.Context) ([]domain.Product, bool) {
	raw, err := r.cache.Get(ctx, availableProductsKey)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			r.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		r.logger.Warn("catalog cache entry undecodable", zap.Error(err))
		return nil, false
	}
	return products, true
}

func (r *CachedRepository) store(ctx context.Context, products []domain.Product) {
	raw, err := json.Marshal(products)
	if err != nil {
		r.logger.Warn("catalog cache encode failed", zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, availableProductsKey, raw, r.ttl); err != nil {
		r.logger.Warn("catalog cache write failed", zap.Error(err))
	}
}
