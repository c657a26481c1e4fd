package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"diary-service/internal/cache"
	"diary-service/internal/domain"
	"diary-service/internal/store"
)

const catalogCacheKey = "catalog:movies"

// Catalog serves the read-only movie list through a read-through cache.
type Catalog struct {
	movies store.MovieStore
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCatalog creates a Catalog. A nil cache disables caching.
func NewCatalog(movies store.MovieStore, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Catalog {
	if c == nil {
		c = cache.Nop{}
	}
	return &Catalog{movies: movies, cache: c, ttl: ttl, logger: logger}
}

// ListAll returns every catalog movie sorted by title. Cache failures are
// logged and fall through to the store.
func (c *Catalog) ListAll(ctx context.Context) ([]domain.Movie, error) {
	if raw, err := c.cache.Get(ctx, catalogCacheKey); err == nil {
		var movies []domain.Movie
		err := json.Unmarshal(raw, &movies)
		if err == nil {
			c.logger.DebugContext(ctx, "Catalog served from cache", slog.Int("count", len(movies)))
			return movies, nil
		}
		c.logger.WarnContext(ctx, "Failed to decode cached catalog", slog.String("error", err.Error()))
	} else if !errors.Is(err, cache.ErrMiss) {
		c.logger.WarnContext(ctx, "Failed to read catalog cache", slog.String("error", err.Error()))
	}

	movies, err := c.movies.ListAll(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to list movies", slog.String("error", err.Error()))
		return nil, storageError("Failed to load movies", err)
	}
	if movies == nil {
		movies = []domain.Movie{}
	}

	if raw, err := json.Marshal(movies); err == nil {
		if err := c.cache.Set(ctx, catalogCacheKey, raw, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "Failed to populate catalog cache", slog.String("error", err.Error()))
		}
	}
	return movies, nil
}

// Movie returns one catalog movie.
func (c *Catalog) Movie(ctx context.Context, movieID int64) (*domain.Movie, error) {
	movie, err := c.movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			return nil, notFoundError("Movie not found")
		}
		return nil, storageError("Failed to load movie", err)
	}
	return movie, nil
}

// Invalidate drops the cached list so the next ListAll reads the store.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if err := c.cache.Delete(ctx, catalogCacheKey); err != nil {
		c.logger.WarnContext(ctx, "Failed to invalidate catalog cache", slog.String("error", err.Error()))
		return err
	}
	return nil
}
