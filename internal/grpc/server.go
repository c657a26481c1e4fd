package grpc

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"diary-service/internal/domain"
	"diary-service/internal/lookup"
	"diary-service/internal/service"
)

// DiaryReader is the read side of the diary service.
type DiaryReader interface {
	List(ctx context.Context, userID int64) ([]*domain.DiaryEntry, error)
	Stats(ctx context.Context, userID int64) (domain.DiaryStats, error)
	InDiary(ctx context.Context, userID, movieID int64) (bool, error)
}

// UserReader resolves users by id.
type UserReader interface {
	Lookup(ctx context.Context, userID int64) (*domain.User, error)
}

// Server implements lookup.DiaryLookupServer.
type Server struct {
	diary  DiaryReader
	users  UserReader
	logger *slog.Logger
}

var _ lookup.DiaryLookupServer = (*Server)(nil)

func NewServer(diary DiaryReader, users UserReader, logger *slog.Logger) *Server {
	return &Server{diary: diary, users: users, logger: logger}
}

// toStatus converts a service error into a gRPC status error.
func (s *Server) toStatus(ctx context.Context, method string, err error) error {
	message := service.MessageOf(err, err.Error())
	switch {
	case errors.Is(err, service.ErrValidation):
		return status.Error(codes.InvalidArgument, message)
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, message)
	}
	s.logger.ErrorContext(ctx, "gRPC call failed", slog.String("method", method), slog.String("error", err.Error()))
	return status.Errorf(codes.Internal, "%s failed: %s", method, message)
}

func requireUserID(in *wrapperspb.Int64Value) (int64, error) {
	if in.GetValue() <= 0 {
		return 0, status.Errorf(codes.InvalidArgument, "user_id must be a positive integer")
	}
	return in.GetValue(), nil
}

func (s *Server) GetUser(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.logger.InfoContext(ctx, "gRPC GetUser called", slog.Int64("user_id", in.GetValue()))
	userID, err := requireUserID(in)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Lookup(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetUser", err)
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode user: %v", err)
	}
	return out, nil
}

func entryToMap(e *domain.DiaryEntry) map[string]interface{} {
	var rating interface{}
	if e.Rating != nil {
		rating = *e.Rating
	}
	return map[string]interface{}{
		"id":        e.ID,
		"user_id":   e.UserID,
		"movie_id":  e.MovieID,
		"status_id": e.Status.Code(),
		"status":    e.Status.String(),
		"rating":    rating,
		"review":    e.Review,
	}
}

func (s *Server) ListDiary(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	s.logger.InfoContext(ctx, "gRPC ListDiary called", slog.Int64("user_id", in.GetValue()))
	userID, err := requireUserID(in)
	if err != nil {
		return nil, err
	}

	entries, err := s.diary.List(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "ListDiary", err)
	}
	items := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		items = append(items, entryToMap(e))
	}
	out, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode diary: %v", err)
	}
	return out, nil
}

func (s *Server) GetStats(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
	userID, err := requireUserID(in)
	if err != nil {
		return nil, err
	}
	stats, err := s.diary.Stats(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetStats", err)
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"total":    stats.Total,
		"planned":  stats.Planned,
		"watching": stats.Watching,
		"watched":  stats.Watched,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode stats: %v", err)
	}
	return out, nil
}

func (s *Server) HasEntry(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	fields := in.GetFields()
	userVal, okUser := fields["user_id"]
	movieVal, okMovie := fields["movie_id"]
	if !okUser || !okMovie {
		return nil, status.Errorf(codes.InvalidArgument, "user_id and movie_id are required")
	}

	userID, okUser := wholeNumber(userVal)
	movieID, okMovie := wholeNumber(movieVal)
	if !okUser || !okMovie {
		s.logger.WarnContext(ctx, "gRPC HasEntry: ids are not whole numbers")
		return nil, status.Errorf(codes.InvalidArgument, "user_id and movie_id must be whole numbers")
	}

	exists, err := s.diary.InDiary(ctx, userID, movieID)
	if err != nil {
		return nil, s.toStatus(ctx, "HasEntry", err)
	}
	return wrapperspb.Bool(exists), nil
}

// wholeNumber reads an integral number value. Strings, fractions and values
// outside the int64 range are rejected.
func wholeNumber(v *structpb.Value) (int64, bool) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	f := n.NumberValue
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
