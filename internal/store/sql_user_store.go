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

// SQLUserStore implements UserStore on top of sqlx.
type SQLUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLUserStore wraps an already connected database.
func NewSQLUserStore(db *sqlx.DB, logger *slog.Logger) (*SQLUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLUserStore{db: db, logger: logger}, nil
}

// Create inserts a user and sets its ID. Username and email collisions are
// reported as ErrUserAlreadyExists.
func (s *SQLUserStore) Create(ctx context.Context, user *domain.User) error {
	query := s.db.Rebind(`INSERT INTO users (username, email, password_hash, created_at)
              VALUES (?, ?, ?, ?)
              RETURNING user_id`)

	user.CreatedAt = time.Now().UTC()

	s.logger.DebugContext(ctx, "Executing Create user query", slog.String("username", user.Username), slog.String("email", user.Email))
	err := s.db.QueryRowxContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.WarnContext(ctx, "User already exists (unique constraint violation in DB)",
				slog.String("email", user.Email),
				slog.String("username", user.Username),
				slog.String("constraint_name", constraintName(err)))
			return ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created successfully in DB", slog.Int64("userID", user.ID))
	return nil
}

func (s *SQLUserStore) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	query := s.db.Rebind(`SELECT user_id, username, email, password_hash, created_at
              FROM users WHERE user_id = ?`)
	return s.getOne(ctx, query, userID, slog.Int64("userID", userID))
}

func (s *SQLUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := s.db.Rebind(`SELECT user_id, username, email, password_hash, created_at
              FROM users WHERE username = ?`)
	return s.getOne(ctx, query, username, slog.String("username", username))
}

func (s *SQLUserStore) getOne(ctx context.Context, query string, arg any, attr slog.Attr) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "User not found in DB", attr)
			return nil, ErrUserNotFound
		}
		s.logger.LogAttrs(ctx, slog.LevelError, "Failed to get user from DB", attr, slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
