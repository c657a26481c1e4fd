package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"diary-service/internal/domain"
	"diary-service/internal/service"
	"diary-service/pkg/auth"
)

// DiaryService is the part of service.DiaryService the HTTP layer uses.
type DiaryService interface {
	AddToDiary(ctx context.Context, userID, movieID int64) (int64, error)
	Entry(ctx context.Context, entryID int64) (*domain.DiaryEntry, error)
	List(ctx context.Context, userID int64) ([]*domain.DiaryEntry, error)
	Stats(ctx context.Context, userID int64) (domain.DiaryStats, error)
	SetStatus(ctx context.Context, entryID int64, label string) (domain.Status, error)
	SetRating(ctx context.Context, entryID int64, rating *int) error
	SetReview(ctx context.Context, entryID int64, text string) (bool, error)
}

// UserDirectory registers and authenticates users.
type UserDirectory interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// MovieCatalog lists the catalog.
type MovieCatalog interface {
	ListAll(ctx context.Context) ([]domain.Movie, error)
}

type HTTPHandler struct {
	diary        DiaryService
	users        UserDirectory
	catalog      MovieCatalog
	logger       *slog.Logger
	validator    *validator.Validate
	tokenManager auth.TokenManager
	requireAuth  bool
}

func NewHTTPHandler(d DiaryService, u UserDirectory, c MovieCatalog, l *slog.Logger, v *validator.Validate, tm auth.TokenManager, requireAuth bool) *HTTPHandler {
	return &HTTPHandler{
		diary:        d,
		users:        u,
		catalog:      c,
		logger:       l,
		validator:    v,
		tokenManager: tm,
		requireAuth:  requireAuth,
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type authResponse struct {
	Success bool            `json:"success"`
	User    domain.UserView `json:"user"`
	Token   string          `json:"token,omitempty"`
}

// entryView is the wire form of a diary entry. status_id and status carry the
// same value in both encodings.
type entryView struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	MovieID  int64  `json:"movie_id"`
	StatusID int    `json:"status_id"`
	Rating   *int   `json:"rating"`
	Status   string `json:"status"`
	Review   string `json:"review"`
}

func newEntryView(e *domain.DiaryEntry) entryView {
	return entryView{
		ID:       e.ID,
		UserID:   e.UserID,
		MovieID:  e.MovieID,
		StatusID: e.Status.Code(),
		Rating:   e.Rating,
		Status:   e.Status.String(),
		Review:   e.Review,
	}
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, errorResponse{Success: false, Error: message})
}

// respondServiceError maps a service error kind to its HTTP status.
func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidStatus):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, status, fallback)
		return
	}
	h.respondError(w, r, status, service.MessageOf(err, fallback))
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	ctx := r.Context()
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	if err := h.validator.StructCtx(ctx, dst); err != nil {
		h.logger.WarnContext(ctx, "Request validation failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP Register request received", slog.String("path", r.URL.Path))

	var req domain.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to register user")
		return
	}
	h.respondWithToken(w, r, user)
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP Login request received", slog.String("path", r.URL.Path))

	var req domain.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.respondServiceError(w, r, err, "Login failed")
		return
	}
	h.logger.InfoContext(ctx, "User logged in", slog.Int64("userID", user.ID))
	h.respondWithToken(w, r, user)
}

func (h *HTTPHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *domain.User) {
	token, err := h.tokenManager.Generate(user.ID, user.Username)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to generate JWT token", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to issue session token")
		return
	}
	h.respondJSON(w, r, http.StatusOK, authResponse{Success: true, User: user.View(), Token: token})
}

// ListMovies never fails: backend errors produce an empty list.
func (h *HTTPHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Catalog unavailable, returning empty list", slog.String("error", err.Error()))
		movies = []domain.Movie{}
	}
	h.respondJSON(w, r, http.StatusOK, movies)
}

func (h *HTTPHandler) AddToDiary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req domain.AddToDiaryRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.authorizeUser(w, r, req.UserID) {
		return
	}

	id, err := h.diary.AddToDiary(ctx, req.UserID, req.MovieID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to add movie to diary")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"message": "Movie added to diary",
		"id":      id,
	})
}

// ListDiary never fails: bad ids and backend errors produce an empty list.
// Optional ?status= narrows the result.
func (h *HTTPHandler) ListDiary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views := []entryView{}

	userID, ok := pathID(r, "userId")
	if !ok {
		h.logger.WarnContext(ctx, "Invalid userId in diary list path", slog.String("userId", mux.Vars(r)["userId"]))
		h.respondJSON(w, r, http.StatusOK, views)
		return
	}
	if !h.authorizeUser(w, r, userID) {
		return
	}

	entries, err := h.diary.List(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Diary unavailable, returning empty list", slog.Int64("userID", userID), slog.String("error", err.Error()))
		h.respondJSON(w, r, http.StatusOK, views)
		return
	}

	if label := r.URL.Query().Get("status"); label != "" {
		status, ok := domain.ParseStatus(label)
		if !ok {
			h.respondJSON(w, r, http.StatusOK, views)
			return
		}
		entries = domain.FilterByStatus(entries, status)
	}

	for _, e := range entries {
		views = append(views, newEntryView(e))
	}
	h.respondJSON(w, r, http.StatusOK, views)
}

func (h *HTTPHandler) DiaryStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		h.respondError(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}
	if !h.authorizeUser(w, r, userID) {
		return
	}
	stats, err := h.diary.Stats(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to load diary stats")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func (h *HTTPHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.entryFromPath(w, r)
	if !ok {
		return
	}
	var req domain.SetStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	status, err := h.diary.SetStatus(r.Context(), entryID, req.Status)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update status")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"success": true, "status": status.String()})
}

func (h *HTTPHandler) SetRating(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.entryFromPath(w, r)
	if !ok {
		return
	}
	var req domain.SetRatingRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Rating.Set {
		h.respondError(w, r, http.StatusBadRequest, "rating is required (use null to clear it)")
		return
	}

	if err := h.diary.SetRating(r.Context(), entryID, req.Rating.Value); err != nil {
		h.respondServiceError(w, r, err, "Failed to update rating")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (h *HTTPHandler) SetReview(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.entryFromPath(w, r)
	if !ok {
		return
	}
	var req domain.SetReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	deleted, err := h.diary.SetReview(r.Context(), entryID, req.Review)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to save review")
		return
	}
	message := "Review saved"
	if deleted {
		message = "Review deleted"
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"success": true, "message": message})
}

// entryFromPath parses {id} and, when auth is enforced, checks that the entry
// belongs to the caller.
func (h *HTTPHandler) entryFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	entryID, ok := pathID(r, "id")
	if !ok {
		h.respondError(w, r, http.StatusBadRequest, "Invalid entry id")
		return 0, false
	}
	if !h.requireAuth {
		return entryID, true
	}
	entry, err := h.diary.Entry(r.Context(), entryID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to load diary entry")
		return 0, false
	}
	if !h.authorizeUser(w, r, entry.UserID) {
		return 0, false
	}
	return entryID, true
}
