package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"diary-service/internal/domain"
)

// SQLDiaryStore implements DiaryStore on top of sqlx. Uniqueness of the
// (user_id, movie_id) pair is enforced by the uq_user_movie constraint.
type SQLDiaryStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLDiaryStore wraps an already connected database.
func NewSQLDiaryStore(db *sqlx.DB, logger *slog.Logger) (*SQLDiaryStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLDiaryStore{db: db, logger: logger}, nil
}

// diaryRow mirrors a user_movies row. status_id stays raw until it is mapped
// to a domain.Status.
type diaryRow struct {
	ID        int64         `db:"user_movie_id"`
	UserID    int64         `db:"user_id"`
	MovieID   int64         `db:"movie_id"`
	StatusID  int           `db:"status_id"`
	Rating    sql.NullInt64 `db:"rating"`
	Review    string        `db:"review"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

func (r diaryRow) toDomain() *domain.DiaryEntry {
	entry := &domain.DiaryEntry{
		ID:        r.ID,
		UserID:    r.UserID,
		MovieID:   r.MovieID,
		Status:    domain.StatusFromCode(r.StatusID),
		Review:    r.Review,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Rating.Valid {
		v := int(r.Rating.Int64)
		entry.Rating = &v
	}
	return entry
}

func nullRating(r *int) sql.NullInt64 {
	if r == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*r), Valid: true}
}

const diaryColumns = `user_movie_id, user_id, movie_id, status_id, rating, review, created_at, updated_at`

func (s *SQLDiaryStore) Exists(ctx context.Context, userID, movieID int64) (bool, error) {
	query := s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM user_movies WHERE user_id = ? AND movie_id = ?)`)
	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, userID, movieID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to check diary entry existence", slog.Int64("userID", userID), slog.Int64("movieID", movieID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to check diary entry: %w", err)
	}
	return exists, nil
}

// Insert is a single insert-if-absent statement: a concurrent duplicate
// either hits ON CONFLICT DO NOTHING (no row returned) or the unique
// constraint.
func (s *SQLDiaryStore) Insert(ctx context.Context, entry *domain.DiaryEntry) error {
	query := s.db.Rebind(`INSERT INTO user_movies (user_id, movie_id, status_id, rating, review, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT (user_id, movie_id) DO NOTHING
              RETURNING user_movie_id`)

	s.logger.DebugContext(ctx, "Executing Insert diary entry query", slog.Int64("userID", entry.UserID), slog.Int64("movieID", entry.MovieID))
	err := s.db.QueryRowxContext(ctx, query,
		entry.UserID, entry.MovieID, entry.Status.Code(), nullRating(entry.Rating), entry.Review,
		entry.CreatedAt, entry.UpdatedAt,
	).Scan(&entry.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			s.logger.WarnContext(ctx, "Movie is already in the user's diary (DB constraint)",
				slog.Int64("userID", entry.UserID), slog.Int64("movieID", entry.MovieID))
			return ErrDuplicateEntry
		}
		s.logger.ErrorContext(ctx, "Failed to insert diary entry in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to insert diary entry: %w", err)
	}
	s.logger.InfoContext(ctx, "Diary entry created in DB", slog.Int64("entryID", entry.ID))
	return nil
}

func (s *SQLDiaryStore) GetByID(ctx context.Context, entryID int64) (*domain.DiaryEntry, error) {
	query := s.db.Rebind(`SELECT ` + diaryColumns + ` FROM user_movies WHERE user_movie_id = ?`)
	var row diaryRow
	err := s.db.GetContext(ctx, &row, query, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get diary entry from DB", slog.Int64("entryID", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get diary entry: %w", err)
	}
	return row.toDomain(), nil
}

func (s *SQLDiaryStore) ListByUser(ctx context.Context, userID int64) ([]*domain.DiaryEntry, error) {
	query := s.db.Rebind(`SELECT ` + diaryColumns + ` FROM user_movies WHERE user_id = ? ORDER BY user_movie_id ASC`)
	var rows []diaryRow

	s.logger.DebugContext(ctx, "Executing ListByUser diary query", slog.Int64("userID", userID))
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list diary entries from DB", slog.Int64("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	entries := make([]*domain.DiaryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (s *SQLDiaryStore) UpdateStatus(ctx context.Context, entryID int64, status domain.Status) (bool, error) {
	return s.update(ctx, "status_id", status.Code(), entryID)
}

func (s *SQLDiaryStore) UpdateRating(ctx context.Context, entryID int64, rating *int) (bool, error) {
	return s.update(ctx, "rating", nullRating(rating), entryID)
}

func (s *SQLDiaryStore) UpdateReview(ctx context.Context, entryID int64, review string) (bool, error) {
	return s.update(ctx, "review", review, entryID)
}

// update sets one column. column is always a constant from this file.
func (s *SQLDiaryStore) update(ctx context.Context, column string, value any, entryID int64) (bool, error) {
	query := s.db.Rebind(`UPDATE user_movies SET ` + column + ` = ?, updated_at = ? WHERE user_movie_id = ?`)

	s.logger.DebugContext(ctx, "Executing diary entry update", slog.String("column", column), slog.Int64("entryID", entryID))
	result, err := s.db.ExecContext(ctx, query, value, time.Now().UTC(), entryID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update diary entry in DB", slog.String("column", column), slog.Int64("entryID", entryID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to update diary entry %s: %w", column, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get rows affected after update", slog.Int64("entryID", entryID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No diary entry found to update", slog.Int64("entryID", entryID))
		return false, nil
	}
	return true, nil
}
