package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5

	// MaxReviewLength is the review size the frontend allows, in characters.
	MaxReviewLength = 2000
)

// DiaryEntry links one user to one catalog movie.
type DiaryEntry struct {
	ID        int64
	UserID    int64
	MovieID   int64
	Status    Status
	Rating    *int // nil until rated
	Review    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDiaryEntry returns an entry with the creation defaults: planned, unrated,
// no review.
func NewDiaryEntry(userID, movieID int64) *DiaryEntry {
	now := time.Now().UTC()
	return &DiaryEntry{
		UserID:    userID,
		MovieID:   movieID,
		Status:    StatusPlanned,
		Review:    "",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidRating reports whether r is inside the 1..5 star range.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// DiaryStats counts a user's entries per status.
type DiaryStats struct {
	Total    int `json:"total"`
	Planned  int `json:"planned"`
	Watching int `json:"watching"`
	Watched  int `json:"watched"`
}

// CountByStatus builds DiaryStats for a set of entries.
func CountByStatus(entries []*DiaryEntry) DiaryStats {
	stats := DiaryStats{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case StatusWatching:
			stats.Watching++
		case StatusWatched:
			stats.Watched++
		default:
			stats.Planned++
		}
	}
	return stats
}

// FilterByStatus returns the entries with the given status, preserving order.
func FilterByStatus(entries []*DiaryEntry, status Status) []*DiaryEntry {
	out := make([]*DiaryEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// AddToDiaryRequest is the body of POST /api/user/movies.
type AddToDiaryRequest struct {
	UserID  int64 `json:"userId" validate:"required,gt=0"`
	MovieID int64 `json:"movieId" validate:"required,gt=0"`
}

// SetStatusRequest is the body of PUT /api/user/movies/{id}.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetReviewRequest is the body of PUT /api/user/movies/{id}/review.
type SetReviewRequest struct {
	Review string `json:"review"`
}

// OptionalRating tells an explicit JSON null (clear the rating) apart from a
// missing field.
type OptionalRating struct {
	Set   bool
	Value *int
}

func (o *OptionalRating) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("rating must be an integer or null: %w", err)
	}
	o.Value = &v
	return nil
}

// SetRatingRequest is the body of PUT /api/user/movies/{id}/rate.
type SetRatingRequest struct {
	Rating OptionalRating `json:"rating"`
}
