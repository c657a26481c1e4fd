package store_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-service/internal/domain"
	"diary-service/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "diary.db") + "?_foreign_keys=on"

	db, err := store.Open(ctx, store.DBOptions{Driver: store.DriverSQLite, URL: dsn, ConnectAttempts: 1}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, store.Migrate(ctx, db, store.DriverSQLite))
	return db
}

type sqlStores struct {
	users   *store.SQLUserStore
	movies  *store.SQLMovieStore
	entries *store.SQLDiaryStore
}

func newSQLStores(t *testing.T) sqlStores {
	t.Helper()
	db := newSQLiteDB(t)
	users, err := store.NewSQLUserStore(db, discardLogger())
	require.NoError(t, err)
	movies, err := store.NewSQLMovieStore(db, discardLogger())
	require.NoError(t, err)
	entries, err := store.NewSQLDiaryStore(db, discardLogger())
	require.NoError(t, err)
	return sqlStores{users: users, movies: movies, entries: entries}
}

func seedUserAndMovies(t *testing.T, s sqlStores, titles ...string) (int64, []int64) {
	t.Helper()
	ctx := context.Background()
	user := &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, s.users.Create(ctx, user))

	ids := make([]int64, 0, len(titles))
	for i, title := range titles {
		movie := &domain.Movie{Title: title, Year: 2000 + i, Genre: "Drama", Director: "Someone"}
		require.NoError(t, s.movies.Upsert(ctx, movie))
		ids = append(ids, movie.ID)
	}
	return user.ID, ids
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx, db, store.DriverSQLite))

	version, err := store.MigrationVersion(ctx, db, store.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestSQLUserStoreRejectsDuplicates(t *testing.T) {
	s := newSQLStores(t)
	ctx := context.Background()

	first := &domain.User{Username: "bob", Email: "bob@example.com", PasswordHash: "h"}
	require.NoError(t, s.users.Create(ctx, first))
	assert.NotZero(t, first.ID)

	sameName := &domain.User{Username: "bob", Email: "other@example.com", PasswordHash: "h"}
	assert.ErrorIs(t, s.users.Create(ctx, sameName), store.ErrUserAlreadyExists)

	sameEmail := &domain.User{Username: "robert", Email: "bob@example.com", PasswordHash: "h"}
	assert.ErrorIs(t, s.users.Create(ctx, sameEmail), store.ErrUserAlreadyExists)

	found, err := s.users.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "h", found.PasswordHash)

	_, err = s.users.GetByID(ctx, 999)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestSQLMovieStoreListsByTitleAndUpserts(t *testing.T) {
	s := newSQLStores(t)
	ctx := context.Background()

	for _, m := range []domain.Movie{
		{Title: "Vertigo", Year: 1958, Genre: "Thriller", Director: "Alfred Hitchcock"},
		{Title: "Alien", Year: 1979, Genre: "Sci-Fi", Director: "Ridley Scott"},
		{Title: "Heat", Year: 1995, Genre: "Crime", Director: "Michael Mann", Description: "LA heist"},
		{Title: "eXistenZ", Year: 1999, Genre: "Sci-Fi", Director: "David Cronenberg"},
	} {
		movie := m
		require.NoError(t, s.movies.Upsert(ctx, &movie))
	}

	refreshed := &domain.Movie{Title: "Alien", Year: 1979, Genre: "Horror", Director: "Ridley Scott"}
	require.NoError(t, s.movies.Upsert(ctx, refreshed))

	movies, err := s.movies.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 4)
	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		titles = append(titles, m.Title)
	}
	assert.Equal(t, []string{"Alien", "eXistenZ", "Heat", "Vertigo"}, titles)
	assert.Equal(t, "Horror", movies[0].Genre)
	assert.Equal(t, refreshed.ID, movies[0].ID)
	assert.Equal(t, "LA heist", movies[2].Description)

	memory := store.NewMemoryMovieStore(
		domain.Movie{Title: "Vertigo", Year: 1958},
		domain.Movie{Title: "eXistenZ", Year: 1999},
		domain.Movie{Title: "Heat", Year: 1995},
		domain.Movie{Title: "Alien", Year: 1979},
	)
	inMemory, err := memory.ListAll(ctx)
	require.NoError(t, err)
	memoryTitles := make([]string, 0, len(inMemory))
	for _, m := range inMemory {
		memoryTitles = append(memoryTitles, m.Title)
	}
	assert.Equal(t, titles, memoryTitles)

	_, err = s.movies.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, store.ErrMovieNotFound)
}

func TestSQLDiaryStoreInsertIfAbsent(t *testing.T) {
	s := newSQLStores(t)
	ctx := context.Background()
	userID, movieIDs := seedUserAndMovies(t, s, "Alien")

	entry := domain.NewDiaryEntry(userID, movieIDs[0])
	require.NoError(t, s.entries.Insert(ctx, entry))
	assert.NotZero(t, entry.ID)

	exists, err := s.entries.Exists(ctx, userID, movieIDs[0])
	require.NoError(t, err)
	assert.True(t, exists)

	again := domain.NewDiaryEntry(userID, movieIDs[0])
	assert.ErrorIs(t, s.entries.Insert(ctx, again), store.ErrDuplicateEntry)

	entries, err := s.entries.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusPlanned, entries[0].Status)
	assert.Nil(t, entries[0].Rating)
	assert.Equal(t, "", entries[0].Review)
}

func TestSQLDiaryStoreUpdates(t *testing.T) {
	s := newSQLStores(t)
	ctx := context.Background()
	userID, movieIDs := seedUserAndMovies(t, s, "Alien", "Heat")

	entry := domain.NewDiaryEntry(userID, movieIDs[1])
	require.NoError(t, s.entries.Insert(ctx, entry))

	ok, err := s.entries.UpdateStatus(ctx, entry.ID, domain.StatusWatched)
	require.NoError(t, err)
	assert.True(t, ok)

	four := 4
	ok, err = s.entries.UpdateRating(ctx, entry.ID, &four)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.entries.UpdateReview(ctx, entry.ID, "tense")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWatched, got.Status)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4, *got.Rating)
	assert.Equal(t, "tense", got.Review)

	ok, err = s.entries.UpdateRating(ctx, entry.ID, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = s.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating)

	for _, update := range []func() (bool, error){
		func() (bool, error) { return s.entries.UpdateStatus(ctx, 9999, domain.StatusWatching) },
		func() (bool, error) { return s.entries.UpdateRating(ctx, 9999, &four) },
		func() (bool, error) { return s.entries.UpdateReview(ctx, 9999, "x") },
	} {
		ok, err := update()
		require.NoError(t, err)
		assert.False(t, ok)
	}

	_, err = s.entries.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
}

func TestSQLDiaryStoreUnknownStatusCodeRendersAsPlanned(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	entries, err := store.NewSQLDiaryStore(db, discardLogger())
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO users (username, email, password_hash) VALUES ('u', 'u@example.com', 'h')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO movies (title, year) VALUES ('Odd', 2001)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO user_movies (user_id, movie_id, status_id) VALUES (1, 1, 7)`)
	require.NoError(t, err)

	list, err := entries.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusPlanned, list[0].Status)
}
