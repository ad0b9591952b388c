package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seafresh/backend/internal/domain"
	"github.com/seafresh/backend/internal/infrastructure/cache"
)

type stubCatalog struct {
	products []domain.Product
	err      error
	calls    atomic.Int32
	delay    time.Duration
}

func (s *stubCatalog) ListAvailableProducts(ctx context.Context) ([]domain.Product, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("cache down")
}
func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache down")
}
func (failingCache) Delete(ctx context.Context, key string) error { return nil }

func TestCachedRepository_ServesFromCache(t *testing.T) {
	desc := "Atlantic"
	next := &stubCatalog{products: []domain.Product{
		{ID: 1, Name: "Fresh Salmon Fillet", Description: &desc, Price: 24.9, IsAvailable: true},
		{ID: 2, Name: "Tuna Steak", Price: 21.75, IsAvailable: true},
	}}
	mem := cache.NewMemoryCache(time.Minute)
	defer mem.Close()

	repo := NewCachedRepository(next, mem, time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := repo.ListAvailableProducts(ctx)
	require.NoError(t, err)
	second, err := repo.ListAvailableProducts(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, first, second)
	require.NotNil(t, second[0].Description)
	assert.Equal(t, "Atlantic", *second[0].Description)
	assert.Nil(t, second[1].Description)
}

func TestCachedRepository_Invalidate(t *testing.T) {
	next := &stubCatalog{products: []domain.Product{{ID: 1, Name: "Crab", IsAvailable: true}}}
	mem := cache.NewMemoryCache(time.Minute)
	defer mem.Close()

	repo := NewCachedRepository(next, mem, time.Minute, nil)
	ctx := context.Background()

	_, err := repo.ListAvailableProducts(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Invalidate(ctx))
	_, err = repo.ListAvailableProducts(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedRepository_PropagatesCatalogError(t *testing.T) {
	next := &stubCatalog{err: domain.ErrCatalogUnavailable}
	mem := cache.NewMemoryCache(time.Minute)
	defer mem.Close()

	repo := NewCachedRepository(next, mem, time.Minute, nil)

	_, err := repo.ListAvailableProducts(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)

	_, err = mem.Get(context.Background(), availableProductsKey)
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "errors must not be cached")
}

func TestCachedRepository_CacheFailureFallsThrough(t *testing.T) {
	next := &stubCatalog{products: []domain.Product{{ID: 7, Name: "Shrimp", IsAvailable: true}}}
	repo := NewCachedRepository(next, failingCache{}, time.Minute, nil)

	products, err := repo.ListAvailableProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCachedRepository_CoalescesConcurrentMisses(t *testing.T) {
	next := &stubCatalog{
		products: []domain.Product{{ID: 1, Name: "Salmon", IsAvailable: true}},
		delay:    50 * time.Millisecond,
	}
	mem := cache.NewMemoryCache(time.Minute)
	defer mem.Close()
	repo := NewCachedRepository(next, mem, time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := repo.ListAvailableProducts(context.Background())
			assert.NoError(t, err)
			assert.Len(t, products, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachedRepository_CancelledCallerDoesNotFailOthers(t *testing.T) {
	next := &stubCatalog{
		products: []domain.Product{{ID: 1, Name: "Salmon", IsAvailable: true}},
		delay:    100 * time.Millisecond,
	}
	mem := cache.NewMemoryCache(time.Minute)
	defer mem.Close()
	repo := NewCachedRepository(next, mem, time.Minute, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := repo.ListAvailableProducts(firstCtx)
		firstErr <- err
	}()

	// let the first caller start the shared load
	time.Sleep(10 * time.Millisecond)

	type result struct {
		products []domain.Product
		err      error
	}
	second := make(chan result, 1)
	go func() {
		products, err := repo.ListAvailableProducts(context.Background())
		second <- result{products, err}
	}()

	time.Sleep(10 * time.Millisecond)
	cancelFirst()

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Len(t, res.products, 1)
	case <-time.After(time.Second):
		t.Fatal("second caller did not complete")
	}
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachedRepository_LoadTimeout(t *testing.T) {
	next := &stubCatalog{
		products: []domain.Product{{ID: 1, Name: "Salmon", IsAvailable: true}},
		delay:    time.Second,
	}
	repo := NewCachedRepository(next, failingCache{}, time.Minute, nil)
	repo.SetLoadTimeout(20 * time.Millisecond)

	start := time.Now()
	_, err := repo.ListAvailableProducts(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
