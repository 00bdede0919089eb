package services

import (
	"context"
	"fmt"
	"time"

	"modelhubweb/models"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	log "github.com/sirupsen/logrus"
)

const DefaultModelsCacheTTL = 5 * time.Minute

// CachedModelService memoizes model listings by the full explore tuple.
// Detail and view calls always go upstream.
type CachedModelService struct {
	ModelServiceProvider
	cache *cache.LoadableCache[models.ModelsPage]
}

func NewCachedModelService(upstream ModelServiceProvider, ttl time.Duration) (*CachedModelService, error) {
	if ttl <= 0 {
		ttl = DefaultModelsCacheTTL
	}
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)

	loadFunction := func(ctx context.Context, key any) (models.ModelsPage, []store.Option, error) {
		raw, ok := key.(string)
		if !ok {
			return models.ModelsPage{}, nil, fmt.Errorf("invalid key type provided to models cache: expected string, got %T", key)
		}
		q, err := models.ParseModelsQueryKey(raw)
		if err != nil {
			return models.ModelsPage{}, nil, fmt.Errorf("invalid models cache key %q: %w", raw, err)
		}
		log.WithField("key", raw).Debug("models cache miss")
		page, err := upstream.ListModels(ctx, q)
		if err != nil {
			return models.ModelsPage{}, nil, err
		}
		return *page, []store.Option{store.WithExpiration(ttl)}, nil
	}

	return &CachedModelService{
		ModelServiceProvider: upstream,
		cache: cache.NewLoadable[models.ModelsPage](
			loadFunction,
			cache.New[models.ModelsPage](ristrettoStore),
		),
	}, nil
}

func (s *CachedModelService) ListModels(ctx context.Context, q models.ModelsQuery) (*models.ModelsPage, error) {
	page, err := s.cache.Get(ctx, q.CacheKey())
	if err != nil {
		return nil, err
	}
	return &page, nil
}
