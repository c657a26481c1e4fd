package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-service/internal/domain"
	"diary-service/internal/store"
)

func TestMemoryDiaryStoreConcurrentInsertKeepsOneEntry(t *testing.T) {
	s := store.NewMemoryDiaryStore()
	ctx := context.Background()

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Insert(ctx, domain.NewDiaryEntry(1, 42))
			if err == nil {
				created.Add(1)
				return
			}
			assert.ErrorIs(t, err, store.ErrDuplicateEntry)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	entries, err := s.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemoryDiaryStoreReturnsCopies(t *testing.T) {
	s := store.NewMemoryDiaryStore()
	ctx := context.Background()

	entry := domain.NewDiaryEntry(1, 2)
	require.NoError(t, s.Insert(ctx, entry))
	three := 3
	_, err := s.UpdateRating(ctx, entry.ID, &three)
	require.NoError(t, err)

	got, err := s.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	*got.Rating = 1
	got.Review = "mutated"

	again, err := s.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, *again.Rating)
	assert.Equal(t, "", again.Review)
}

func TestMemoryUserStoreUniqueness(t *testing.T) {
	s := store.NewMemoryUserStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &domain.User{Username: "ann", Email: "ann@example.com"}))
	assert.ErrorIs(t, s.Create(ctx, &domain.User{Username: "ann", Email: "x@example.com"}), store.ErrUserAlreadyExists)
	assert.ErrorIs(t, s.Create(ctx, &domain.User{Username: "x", Email: "ann@example.com"}), store.ErrUserAlreadyExists)
}

func TestMemoryMovieStoreSortsByTitle(t *testing.T) {
	s := store.NewMemoryMovieStore(
		domain.Movie{Title: "heat", Year: 1995},
		domain.Movie{Title: "Alien", Year: 1979},
		domain.Movie{Title: "Casablanca", Year: 1942},
	)
	movies, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 3)
	assert.Equal(t, "Alien", movies[0].Title)
	assert.Equal(t, "Casablanca", movies[1].Title)
	assert.Equal(t, "heat", movies[2].Title)
}
