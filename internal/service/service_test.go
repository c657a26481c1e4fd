package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"diary-service/internal/domain"
	"diary-service/internal/service"
	"diary-service/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type diaryFixture struct {
	svc     *service.DiaryService
	entries *store.MemoryDiaryStore
	userID  int64
	movies  []int64
}

// newDiaryFixture seeds one user and the movies Alien (1) and Heat (2).
func newDiaryFixture(t *testing.T) diaryFixture {
	t.Helper()
	users := store.NewMemoryUserStore()
	user := &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), user))

	movies := store.NewMemoryMovieStore(
		domain.Movie{Title: "Alien", Year: 1979},
		domain.Movie{Title: "Heat", Year: 1995},
	)
	entries := store.NewMemoryDiaryStore()
	return diaryFixture{
		svc:     service.NewDiaryService(entries, movies, users, discardLogger()),
		entries: entries,
		userID:  user.ID,
		movies:  []int64{1, 2},
	}
}

func intPtr(v int) *int { return &v }
