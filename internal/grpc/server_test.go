package grpc_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"diary-service/internal/clients"
	"diary-service/internal/domain"
	diarygrpc "diary-service/internal/grpc"
	"diary-service/internal/lookup"
	"diary-service/internal/service"
	"diary-service/internal/store"
)

const bufSize = 1024 * 1024

type fixture struct {
	client *clients.DiaryLookupClient
	raw    lookup.DiaryLookupClient
	diary  *service.DiaryService
	userID int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := store.NewMemoryUserStore()
	movies := store.NewMemoryMovieStore(
		domain.Movie{Title: "Alien", Year: 1979},
		domain.Movie{Title: "Heat", Year: 1995},
	)
	entries := store.NewMemoryDiaryStore()
	directory := service.NewUserDirectory(users, logger)
	diary := service.NewDiaryService(entries, movies, users, logger)

	user, err := directory.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer()
	lookup.RegisterDiaryLookupServer(srv, diarygrpc.NewServer(diary, directory, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
	client, err := clients.NewDiaryLookupClient("passthrough:///bufnet", logger, dialer)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	conn, err := grpc.NewClient("passthrough:///bufnet", dialer, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return fixture{client: client, raw: lookup.NewDiaryLookupClient(conn), diary: diary, userID: user.ID}
}

func TestLookupGetUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.client.GetUser(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserView{ID: f.userID, Username: "alice", Email: "alice@example.com"}, *user)

	_, err = f.client.GetUser(ctx, 404)
	assert.Equal(t, codes.NotFound, status.Code(unwrapStatus(err)))

	_, err = f.client.GetUser(ctx, 0)
	assert.Equal(t, codes.InvalidArgument, status.Code(unwrapStatus(err)))
}

func TestLookupDiaryAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.diary.AddToDiary(ctx, f.userID, 1)
	require.NoError(t, err)
	_, err = f.diary.AddToDiary(ctx, f.userID, 2)
	require.NoError(t, err)
	_, err = f.diary.SetStatus(ctx, first, "watched")
	require.NoError(t, err)
	four := 4
	require.NoError(t, f.diary.SetRating(ctx, first, &four))
	_, err = f.diary.SetReview(ctx, first, "great")
	require.NoError(t, err)

	entries, err := f.client.ListDiary(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0].ID)
	assert.Equal(t, domain.StatusWatched, entries[0].Status)
	require.NotNil(t, entries[0].Rating)
	assert.Equal(t, 4, *entries[0].Rating)
	assert.Equal(t, "great", entries[0].Review)
	assert.Equal(t, domain.StatusPlanned, entries[1].Status)
	assert.Nil(t, entries[1].Rating)

	stats, err := f.client.GetStats(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, domain.DiaryStats{Total: 2, Planned: 1, Watched: 1}, stats)

	has, err := f.client.HasEntry(ctx, f.userID, 2)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = f.client.HasEntry(ctx, f.userID, 3)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = f.client.HasEntry(ctx, 0, 1)
	assert.Equal(t, codes.InvalidArgument, status.Code(unwrapStatus(err)))
}

func TestLookupHasEntryRejectsNonIntegralIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.diary.AddToDiary(ctx, f.userID, 1)
	require.NoError(t, err)

	for name, pair := range map[string]map[string]interface{}{
		"fractional user": {"user_id": 1.9, "movie_id": 1},
		"string movie":    {"user_id": 1, "movie_id": "1"},
		"missing movie":   {"user_id": 1},
	} {
		t.Run(name, func(t *testing.T) {
			req, err := structpb.NewStruct(pair)
			require.NoError(t, err)
			_, err = f.raw.HasEntry(ctx, req)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}

	req, err := structpb.NewStruct(map[string]interface{}{"user_id": float64(f.userID), "movie_id": 1.0})
	require.NoError(t, err)
	res, err := f.raw.HasEntry(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.GetValue())
}

// unwrapStatus digs the gRPC status error out of the client's wrapping.
func unwrapStatus(err error) error {
	for err != nil {
		if _, ok := status.FromError(err); ok {
			return err
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
	return err
}
