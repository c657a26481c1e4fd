package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"diary-service/internal/domain"
)

// SQLMovieStore implements MovieStore on top of sqlx.
type SQLMovieStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLMovieStore wraps an already connected database.
func NewSQLMovieStore(db *sqlx.DB, logger *slog.Logger) (*SQLMovieStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLMovieStore{db: db, logger: logger}, nil
}

const movieColumns = `movie_id, title, year, genre, director, COALESCE(description, '') AS description`

// ListAll returns the whole catalog ordered by title, ignoring case.
func (s *SQLMovieStore) ListAll(ctx context.Context) ([]domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY LOWER(title) ASC, movie_id ASC`
	movies := []domain.Movie{}

	s.logger.DebugContext(ctx, "Executing ListAll movies query")
	if err := s.db.SelectContext(ctx, &movies, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

func (s *SQLMovieStore) GetByID(ctx context.Context, movieID int64) (*domain.Movie, error) {
	query := s.db.Rebind(`SELECT ` + movieColumns + ` FROM movies WHERE movie_id = ?`)
	var movie domain.Movie

	s.logger.DebugContext(ctx, "Executing GetMovieByID query", slog.Int64("movieID", movieID))
	err := s.db.GetContext(ctx, &movie, query, movieID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Movie not found by ID in DB", slog.Int64("movieID", movieID))
			return nil, ErrMovieNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get movie by ID from DB", slog.Int64("movieID", movieID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get movie by ID: %w", err)
	}
	return &movie, nil
}

// Upsert inserts a movie or refreshes the row with the same title and year.
func (s *SQLMovieStore) Upsert(ctx context.Context, movie *domain.Movie) error {
	query := s.db.Rebind(`INSERT INTO movies (title, year, genre, director, description)
              VALUES (?, ?, ?, ?, ?)
              ON CONFLICT (title, year) DO UPDATE
              SET genre = excluded.genre, director = excluded.director, description = excluded.description
              RETURNING movie_id`)

	var description sql.NullString
	if movie.Description != "" {
		description = sql.NullString{String: movie.Description, Valid: true}
	}

	err := s.db.QueryRowxContext(ctx, query, movie.Title, movie.Year, movie.Genre, movie.Director, description).Scan(&movie.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to upsert movie in DB", slog.String("title", movie.Title), slog.String("error", err.Error()))
		return fmt.Errorf("failed to upsert movie: %w", err)
	}
	s.logger.DebugContext(ctx, "Movie upserted in DB", slog.Int64("movieID", movie.ID), slog.String("title", movie.Title))
	return nil
}
