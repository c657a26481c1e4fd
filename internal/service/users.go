package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"diary-service/internal/domain"
	"diary-service/internal/store"
	"diary-service/pkg/auth"
)

// UserDirectory registers and authenticates users.
type UserDirectory struct {
	users  store.UserStore
	logger *slog.Logger
}

func NewUserDirectory(users store.UserStore, logger *slog.Logger) *UserDirectory {
	return &UserDirectory{users: users, logger: logger}
}

// Register stores a new user with a bcrypt credential. The returned user
// carries the new id and the submitted username and email.
func (d *UserDirectory) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, validationError("username, email and password are required")
	}

	credential, err := auth.NewCredential(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, validationError("password must be at most 72 bytes")
	}
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to hash password", slog.String("error", err.Error()))
		return nil, storageError("Error processing registration", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: credential,
		CreatedAt:    time.Now().UTC(),
	}
	if err := d.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			d.logger.WarnContext(ctx, "Registration collided with an existing user", slog.String("username", username))
			return nil, &Error{Kind: ErrConflict, Message: "User with this username or email already exists"}
		}
		d.logger.ErrorContext(ctx, "Failed to create user", slog.String("error", err.Error()))
		return nil, storageError("Failed to register user", err)
	}

	d.logger.InfoContext(ctx, "User registered", slog.Int64("userID", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Authenticate checks the credentials. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (d *UserDirectory) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	invalid := &Error{Kind: ErrInvalidCredentials, Message: "Invalid username or password"}

	user, err := d.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			d.logger.WarnContext(ctx, "Login attempt for unknown username", slog.String("username", username))
			return nil, invalid
		}
		d.logger.ErrorContext(ctx, "Failed to load user for login", slog.String("error", err.Error()))
		return nil, storageError("Login failed", err)
	}

	if !auth.VerifyCredential(user.PasswordHash, password) {
		d.logger.WarnContext(ctx, "Invalid password attempt", slog.Int64("userID", user.ID))
		return nil, invalid
	}
	return user, nil
}

// Lookup returns a user by id.
func (d *UserDirectory) Lookup(ctx context.Context, userID int64) (*domain.User, error) {
	if userID <= 0 {
		return nil, validationError("userId must be a positive integer")
	}
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, notFoundError("User not found")
		}
		return nil, storageError("Failed to load user", err)
	}
	return user, nil
}
