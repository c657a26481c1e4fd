package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"diary-service/internal/domain"
)

// MovieStore gives read access to the catalog plus the upsert used by
// catalog imports.
type MovieStore interface {
	ListAll(ctx context.Context) ([]domain.Movie, error)
	GetByID(ctx context.Context, movieID int64) (*domain.Movie, error)
	Upsert(ctx context.Context, movie *domain.Movie) error
}

// MemoryMovieStore keeps the catalog in memory.
type MemoryMovieStore struct {
	mu     sync.RWMutex
	nextID int64
	movies map[int64]*domain.Movie
}

// NewMemoryMovieStore returns a store seeded with the given movies. Seed IDs
// are reassigned.
func NewMemoryMovieStore(seed ...domain.Movie) *MemoryMovieStore {
	m := &MemoryMovieStore{movies: make(map[int64]*domain.Movie)}
	for i := range seed {
		movie := seed[i]
		m.nextID++
		movie.ID = m.nextID
		m.movies[movie.ID] = &movie
	}
	return m
}

// ListAll returns the catalog sorted by title.
func (m *MemoryMovieStore) ListAll(ctx context.Context) ([]domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	movies := make([]domain.Movie, 0, len(m.movies))
	for _, movie := range m.movies {
		movies = append(movies, *movie)
	}
	sort.SliceStable(movies, func(i, j int) bool {
		ti, tj := strings.ToLower(movies[i].Title), strings.ToLower(movies[j].Title)
		if ti == tj {
			return movies[i].ID < movies[j].ID
		}
		return ti < tj
	})
	return movies, nil
}

func (m *MemoryMovieStore) GetByID(ctx context.Context, movieID int64) (*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if movie, ok := m.movies[movieID]; ok {
		movieCopy := *movie
		return &movieCopy, nil
	}
	return nil, ErrMovieNotFound
}

// Upsert matches movies on (title, year).
func (m *MemoryMovieStore) Upsert(ctx context.Context, movie *domain.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.movies {
		if existing.Title == movie.Title && existing.Year == movie.Year {
			movie.ID = id
			movieCopy := *movie
			m.movies[id] = &movieCopy
			return nil
		}
	}
	m.nextID++
	movie.ID = m.nextID
	movieCopy := *movie
	m.movies[movie.ID] = &movieCopy
	return nil
}
