package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
	"github.com/dmitrijs2005/aichopaicho/internal/server/auth"
	servergrpc "github.com/dmitrijs2005/aichopaicho/internal/server/grpc"
	"github.com/dmitrijs2005/aichopaicho/internal/server/models"
	"github.com/dmitrijs2005/aichopaicho/internal/server/services"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const e2eSecret = "e2e-secret"

// stubUsers accepts any login and hands out real JWTs for user "u1".
type stubUsers struct {
	refreshed int
}

func (s *stubUsers) Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error) {
	return &models.User{ID: "u1", UserName: username}, nil
}
func (s *stubUsers) GetSalt(ctx context.Context, username string) ([]byte, error) {
	return []byte("salt"), nil
}
func (s *stubUsers) Login(ctx context.Context, username string, verifier []byte) (*services.TokenPair, error) {
	access, err := auth.GenerateToken("u1", []byte(e2eSecret), time.Hour)
	return &services.TokenPair{AccessToken: access, RefreshToken: "r1"}, err
}
func (s *stubUsers) RefreshToken(ctx context.Context, token string) (*services.TokenPair, error) {
	if token != "r1" {
		return nil, common.ErrorUnauthorized
	}
	s.refreshed++
	access, err := auth.GenerateToken("u1", []byte(e2eSecret), time.Hour)
	return &services.TokenPair{AccessToken: access, RefreshToken: "r1"}, err
}

func startServer(t *testing.T, users *stubUsers, tokens TokenStore) *GRPCClient {
	t.Helper()

	store := docstore.NewMemoryStore().WithClock(func() int64 { return 0 })
	ds := services.NewDocumentService(store, logging.NewNopLogger())
	srv := servergrpc.NewGRPCServer("", logging.NewNopLogger(), users, ds, e2eSecret)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	c, err := NewLedgerClient("passthrough:///bufnet", tokens,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		cancel()
		<-done
	})
	return c
}

func TestEndToEnd_LoginAndDocuments(t *testing.T) {
	tokens := &memTokens{}
	c := startServer(t, &stubUsers{}, tokens)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	p := docstore.Path{Owner: "u1", Collection: docstore.CollectionContacts, ID: "c1"}
	_, err := c.SetMerge(ctx, p, docstore.Document{"name": "Alice", "updatedAt": int64(200)})
	require.ErrorIs(t, err, ErrUnauthorized)

	tok, err := c.Login(ctx, "alice", []byte("v"))
	require.NoError(t, err)
	require.NoError(t, tokens.SetTokens(ctx, tok.Access, tok.Refresh))

	ack, err := c.SetMerge(ctx, p, docstore.Document{"name": "Alice", "deleted": false, "updatedAt": int64(200)})
	require.NoError(t, err)
	require.True(t, ack.Changed)
	require.Equal(t, int64(200), ack.UpdatedAt)

	got, err := c.Get(ctx, p)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.String("name", ""))
	require.Equal(t, int64(200), got.UpdatedAt())

	docs, err := c.Scan(ctx, "u1", docstore.CollectionContacts)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, err = c.Scan(ctx, "someone-else", docstore.CollectionContacts)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Get(ctx, docstore.Path{Owner: "u1", Collection: docstore.CollectionContacts, ID: "missing"})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestEndToEnd_ExpiredTokenIsRefreshed(t *testing.T) {
	expired, err := auth.GenerateToken("u1", []byte(e2eSecret), -time.Minute)
	require.NoError(t, err)

	users := &stubUsers{}
	tokens := &memTokens{access: expired, refresh: "r1"}
	c := startServer(t, users, tokens)

	docs, err := c.Scan(context.Background(), "u1", docstore.CollectionRecords)
	require.NoError(t, err)
	require.Empty(t, docs)
	require.Equal(t, 1, users.refreshed)

	access, _ := tokens.Tokens()
	require.NotEqual(t, expired, access)
}
