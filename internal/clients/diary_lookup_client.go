package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"diary-service/internal/domain"
	"diary-service/internal/lookup"
)

const callTimeout = 3 * time.Second

// DiaryLookupClient reads users and diaries from a running diary service.
type DiaryLookupClient struct {
	client lookup.DiaryLookupClient
	logger *slog.Logger
	conn   *grpc.ClientConn
}

// NewDiaryLookupClient connects to the lookup service at addr. The connection
// is established lazily on the first call.
func NewDiaryLookupClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*DiaryLookupClient, error) {
	logger.Info("Creating DiaryLookup gRPC client", slog.String("address", addr))

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		logger.Error("Failed to create DiaryLookup gRPC client", slog.String("address", addr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to diary lookup service at %s: %w", addr, err)
	}
	return &DiaryLookupClient{
		client: lookup.NewDiaryLookupClient(conn),
		logger: logger,
		conn:   conn,
	}, nil
}

func (c *DiaryLookupClient) logFailure(ctx context.Context, method string, userID int64, err error) {
	if st, ok := status.FromError(err); ok {
		c.logger.ErrorContext(ctx, "DiaryLookup gRPC call failed with status",
			slog.String("method", method),
			slog.Int64("user_id", userID),
			slog.String("code", st.Code().String()),
			slog.String("message", st.Message()))
		return
	}
	c.logger.ErrorContext(ctx, "DiaryLookup gRPC call failed",
		slog.String("method", method),
		slog.Int64("user_id", userID),
		slog.String("error", err.Error()))
}

func numberField(s *structpb.Struct, name string) int64 {
	return int64(s.GetFields()[name].GetNumberValue())
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func (c *DiaryLookupClient) GetUser(ctx context.Context, userID int64) (*domain.UserView, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := c.client.GetUser(callCtx, wrapperspb.Int64(userID))
	if err != nil {
		c.logFailure(ctx, "GetUser", userID, err)
		return nil, fmt.Errorf("grpc GetUser failed for userID %d: %w", userID, err)
	}
	return &domain.UserView{
		ID:       numberField(res, "id"),
		Username: stringField(res, "username"),
		Email:    stringField(res, "email"),
	}, nil
}

// ListDiary returns the user's entries in entry id order.
func (c *DiaryLookupClient) ListDiary(ctx context.Context, userID int64) ([]*domain.DiaryEntry, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := c.client.ListDiary(callCtx, wrapperspb.Int64(userID))
	if err != nil {
		c.logFailure(ctx, "ListDiary", userID, err)
		return nil, fmt.Errorf("grpc ListDiary failed for userID %d: %w", userID, err)
	}

	entries := make([]*domain.DiaryEntry, 0, len(res.GetValues()))
	for _, v := range res.GetValues() {
		item := v.GetStructValue()
		if item == nil {
			continue
		}
		entry := &domain.DiaryEntry{
			ID:      numberField(item, "id"),
			UserID:  numberField(item, "user_id"),
			MovieID: numberField(item, "movie_id"),
			Status:  domain.StatusFromCode(int(numberField(item, "status_id"))),
			Review:  stringField(item, "review"),
		}
		if rating, ok := item.GetFields()["rating"].GetKind().(*structpb.Value_NumberValue); ok {
			r := int(rating.NumberValue)
			entry.Rating = &r
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *DiaryLookupClient) GetStats(ctx context.Context, userID int64) (domain.DiaryStats, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := c.client.GetStats(callCtx, wrapperspb.Int64(userID))
	if err != nil {
		c.logFailure(ctx, "GetStats", userID, err)
		return domain.DiaryStats{}, fmt.Errorf("grpc GetStats failed for userID %d: %w", userID, err)
	}
	return domain.DiaryStats{
		Total:    int(numberField(res, "total")),
		Planned:  int(numberField(res, "planned")),
		Watching: int(numberField(res, "watching")),
		Watched:  int(numberField(res, "watched")),
	}, nil
}

func (c *DiaryLookupClient) HasEntry(ctx context.Context, userID, movieID int64) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]interface{}{"user_id": userID, "movie_id": movieID})
	if err != nil {
		return false, fmt.Errorf("failed to encode HasEntry request: %w", err)
	}
	res, err := c.client.HasEntry(callCtx, req)
	if err != nil {
		c.logFailure(ctx, "HasEntry", userID, err)
		return false, fmt.Errorf("grpc HasEntry failed for userID %d: %w", userID, err)
	}
	return res.GetValue(), nil
}

func (c *DiaryLookupClient) Close() error {
	if c.conn != nil {
		c.logger.Info("Closing gRPC connection to DiaryLookup")
		return c.conn.Close()
	}
	return nil
}
