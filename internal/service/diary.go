package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"diary-service/internal/domain"
	"diary-service/internal/store"
)

// DiaryService owns the diary entry lifecycle: creation, status transitions,
// rating and review.
type DiaryService struct {
	entries store.DiaryStore
	movies  store.MovieStore
	users   store.UserStore
	logger  *slog.Logger
}

func NewDiaryService(entries store.DiaryStore, movies store.MovieStore, users store.UserStore, logger *slog.Logger) *DiaryService {
	return &DiaryService{
		entries: entries,
		movies:  movies,
		users:   users,
		logger:  logger,
	}
}

// AddToDiary creates a planned, unrated, unreviewed entry. It is the only way
// entries come into existence.
func (s *DiaryService) AddToDiary(ctx context.Context, userID, movieID int64) (int64, error) {
	if userID <= 0 || movieID <= 0 {
		return 0, validationError("userId and movieId must be positive integers")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return 0, notFoundError("User not found")
		}
		return 0, storageError("Failed to add movie to diary", err)
	}
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			return 0, notFoundError("Movie not found")
		}
		return 0, storageError("Failed to add movie to diary", err)
	}

	entry := domain.NewDiaryEntry(userID, movieID)
	if err := s.entries.Insert(ctx, entry); err != nil {
		if errors.Is(err, store.ErrDuplicateEntry) {
			s.logger.WarnContext(ctx, "Movie already in diary", slog.Int64("userID", userID), slog.Int64("movieID", movieID))
			return 0, ErrAlreadyInDiary
		}
		s.logger.ErrorContext(ctx, "Failed to insert diary entry", slog.String("error", err.Error()))
		return 0, storageError("Failed to add movie to diary", err)
	}

	s.logger.InfoContext(ctx, "Movie added to diary",
		slog.Int64("entryID", entry.ID), slog.Int64("userID", userID), slog.Int64("movieID", movieID))
	return entry.ID, nil
}

// Entry returns a single diary entry.
func (s *DiaryService) Entry(ctx context.Context, entryID int64) (*domain.DiaryEntry, error) {
	if entryID <= 0 {
		return nil, validationError("entry id must be a positive integer")
	}
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return nil, notFoundError("Diary entry not found")
		}
		return nil, storageError("Failed to load diary entry", err)
	}
	return entry, nil
}

// InDiary reports whether the user already tracks the movie.
func (s *DiaryService) InDiary(ctx context.Context, userID, movieID int64) (bool, error) {
	if userID <= 0 || movieID <= 0 {
		return false, validationError("userId and movieId must be positive integers")
	}
	exists, err := s.entries.Exists(ctx, userID, movieID)
	if err != nil {
		return false, storageError("Failed to check diary", err)
	}
	return exists, nil
}

// List returns all entries of a user ordered by entry id. An unknown user has
// an empty diary.
func (s *DiaryService) List(ctx context.Context, userID int64) ([]*domain.DiaryEntry, error) {
	if userID <= 0 {
		return nil, validationError("userId must be a positive integer")
	}
	entries, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError("Failed to load diary", err)
	}
	if entries == nil {
		entries = []*domain.DiaryEntry{}
	}
	return entries, nil
}

// Stats counts a user's entries per status.
func (s *DiaryService) Stats(ctx context.Context, userID int64) (domain.DiaryStats, error) {
	entries, err := s.List(ctx, userID)
	if err != nil {
		return domain.DiaryStats{}, err
	}
	return domain.CountByStatus(entries), nil
}

// SetStatus moves an entry to the status named by label. Any status may
// follow any other; rating and review are left alone.
func (s *DiaryService) SetStatus(ctx context.Context, entryID int64, label string) (domain.Status, error) {
	status, ok := domain.ParseStatus(label)
	if !ok {
		s.logger.WarnContext(ctx, "Rejected unknown status label", slog.Int64("entryID", entryID), slog.String("status", label))
		return 0, &Error{Kind: ErrInvalidStatus, Message: "Invalid status"}
	}
	if entryID <= 0 {
		return 0, validationError("entry id must be a positive integer")
	}

	updated, err := s.entries.UpdateStatus(ctx, entryID, status)
	if err != nil {
		return 0, storageError("Failed to update status", err)
	}
	if !updated {
		return 0, notFoundError("Diary entry not found")
	}
	s.logger.InfoContext(ctx, "Diary entry status updated", slog.Int64("entryID", entryID), slog.String("status", status.String()))
	return status, nil
}

// SetRating sets the rating, or clears it when rating is nil.
func (s *DiaryService) SetRating(ctx context.Context, entryID int64, rating *int) error {
	if rating != nil && !domain.ValidRating(*rating) {
		return validationError("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	if entryID <= 0 {
		return validationError("entry id must be a positive integer")
	}

	updated, err := s.entries.UpdateRating(ctx, entryID, rating)
	if err != nil {
		return storageError("Failed to update rating", err)
	}
	if !updated {
		return notFoundError("Diary entry not found")
	}
	return nil
}

// SetReview stores the trimmed review. An empty result deletes the review and
// deleted is true.
func (s *DiaryService) SetReview(ctx context.Context, entryID int64, text string) (deleted bool, err error) {
	review := strings.TrimSpace(text)
	if utf8.RuneCountInString(review) > domain.MaxReviewLength {
		return false, validationError("review must be at most %d characters", domain.MaxReviewLength)
	}
	if entryID <= 0 {
		return false, validationError("entry id must be a positive integer")
	}

	updated, err := s.entries.UpdateReview(ctx, entryID, review)
	if err != nil {
		return false, storageError("Failed to save review", err)
	}
	if !updated {
		return false, notFoundError("Diary entry not found")
	}
	return review == "", nil
}
