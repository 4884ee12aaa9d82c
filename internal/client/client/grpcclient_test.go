package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/proto/ledgerpb"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type memTokens struct {
	mu              sync.Mutex
	access, refresh string
	sets            int
}

func (m *memTokens) Tokens() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.refresh
}

func (m *memTokens) SetTokens(ctx context.Context, access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = access, refresh
	m.sets++
	return nil
}

type fakeLedger struct {
	ledgerpb.LedgerClient

	last    map[string]*structpb.Struct
	resp    *structpb.Struct
	err     error
	refresh *structpb.Struct
}

func (f *fakeLedger) record(name string, in *structpb.Struct) (*structpb.Struct, error) {
	if f.last == nil {
		f.last = map[string]*structpb.Struct{}
	}
	f.last[name] = in
	return f.resp, f.err
}

func (f *fakeLedger) Register(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.record("Register", in)
}
func (f *fakeLedger) GetSalt(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.record("GetSalt", in)
}
func (f *fakeLedger) Login(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.record("Login", in)
}
func (f *fakeLedger) RefreshToken(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	f.record("RefreshToken", in)
	return f.refresh, nil
}
func (f *fakeLedger) GetDocument(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.record("GetDocument", in)
}
func (f *fakeLedger) SetMergeDocument(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.record("SetMergeDocument", in)
}
func (f *fakeLedger) ScanCollection(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.record("ScanCollection", in)
}

type fakeHealth struct {
	healthpb.HealthClient
	resp *healthpb.HealthCheckResponse
	err  error
}

func (f *fakeHealth) Check(ctx context.Context, in *healthpb.HealthCheckRequest, _ ...grpc.CallOption) (*healthpb.HealthCheckResponse, error) {
	return f.resp, f.err
}

func mustMsg(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	m, err := ledgerpb.NewMessage(fields)
	require.NoError(t, err)
	return m
}

func tokenIn(t *testing.T, ctx context.Context) string {
	t.Helper()
	md, _ := metadata.FromOutgoingContext(ctx)
	toks := md.Get(common.AccessTokenHeaderName)
	if len(toks) == 0 {
		return ""
	}
	return toks[0]
}

func TestInterceptor_RefreshesTokenOnExpiredAndRetries(t *testing.T) {
	tokens := &memTokens{access: "A1", refresh: "R1"}
	f := &fakeLedger{refresh: mustMsg(t, map[string]any{ledgerpb.KeyAccessToken: "A2", ledgerpb.KeyRefreshToken: "R2"})}
	c := &GRPCClient{client: f, tokens: tokens}

	callCount := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		callCount++
		if callCount == 1 {
			require.Equal(t, "A1", tokenIn(t, ctx))
			return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		require.Equal(t, "A2", tokenIn(t, ctx))
		return nil
	}

	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.NoError(t, err)
	require.Equal(t, 2, callCount)

	access, refresh := tokens.Tokens()
	require.Equal(t, "A2", access)
	require.Equal(t, "R2", refresh)
	require.Equal(t, "R1", ledgerpb.String(f.last["RefreshToken"], ledgerpb.KeyRefreshToken))
}

func TestInterceptor_SkipsRefreshWhenAnotherCallerRotated(t *testing.T) {
	tokens := &memTokens{access: "A2", refresh: "R2"}
	f := &fakeLedger{}
	c := &GRPCClient{client: f, tokens: tokens}

	fresh, err := c.refresh(context.Background(), "A1")
	require.NoError(t, err)
	require.Equal(t, "A2", fresh)
	require.Nil(t, f.last["RefreshToken"])
	require.Zero(t, tokens.sets)
}

func TestInterceptor_NoRefreshIfNoRefreshToken(t *testing.T) {
	f := &fakeLedger{}
	c := &GRPCClient{client: f, tokens: &memTokens{access: "A1"}}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}

	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	require.Nil(t, f.last["RefreshToken"])
}

func TestInterceptor_NoTokenHeaderWhenSignedOut(t *testing.T) {
	c := &GRPCClient{tokens: &memTokens{}}
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		require.Equal(t, "", tokenIn(t, ctx))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_IgnoresOtherErrors(t *testing.T) {
	c := &GRPCClient{tokens: &memTokens{access: "X", refresh: "R"}}

	for _, e := range []error{
		status.Error(codes.Internal, "boom"),
		status.Error(codes.Unauthenticated, "some other reason"),
	} {
		invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return e
		}
		err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
		require.Equal(t, e, err)
	}
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.ErrorIs(t, c.mapError(status.Error(codes.NotFound, "x")), common.ErrorNotFound)
	require.ErrorIs(t, c.mapError(status.Error(codes.InvalidArgument, "x")), common.ErrInvalidArgument)
	require.ErrorIs(t, c.mapError(status.Error(codes.AlreadyExists, "x")), common.ErrAlreadyExists)
	require.ErrorContains(t, c.mapError(errors.New("plain")), "rpc error:")
	require.NoError(t, c.mapError(nil))
}

func TestPing(t *testing.T) {
	c := &GRPCClient{health: &fakeHealth{resp: &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}}}
	require.NoError(t, c.Ping(context.Background()))

	c.health = &fakeHealth{resp: &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)

	c.health = &fakeHealth{err: status.Error(codes.Unavailable, "down")}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestAccountCalls(t *testing.T) {
	f := &fakeLedger{resp: mustMsg(t, map[string]any{
		ledgerpb.KeySalt:         []byte{1, 2, 3},
		ledgerpb.KeyAccessToken:  "A",
		ledgerpb.KeyRefreshToken: "R",
	})}
	c := &GRPCClient{client: f}
	ctx := context.Background()

	salt, err := c.GetSalt(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, salt)
	require.Equal(t, "u", ledgerpb.String(f.last["GetSalt"], ledgerpb.KeyUsername))

	tok, err := c.Login(ctx, "u", []byte{9})
	require.NoError(t, err)
	require.Equal(t, Tokens{Access: "A", Refresh: "R"}, tok)
	v, err := ledgerpb.Bytes(f.last["Login"], ledgerpb.KeyVerifier)
	require.NoError(t, err)
	require.Equal(t, []byte{9}, v)

	require.NoError(t, c.Register(ctx, "u", []byte{1}, []byte{2}))
	s, err := ledgerpb.Bytes(f.last["Register"], ledgerpb.KeySalt)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, s)

	f.err = status.Error(codes.AlreadyExists, "dup")
	require.ErrorIs(t, c.Register(ctx, "u", []byte{1}, []byte{2}), common.ErrAlreadyExists)
}

func TestDocumentCalls(t *testing.T) {
	doc, err := docstore.ToStruct(docstore.Document{"id": "c1", "name": "Alice", "updatedAt": int64(200)})
	require.NoError(t, err)

	f := &fakeLedger{}
	c := &GRPCClient{client: f}
	ctx := context.Background()
	p := docstore.Path{Owner: "u1", Collection: docstore.CollectionContacts, ID: "c1"}

	f.resp = doc
	got, err := c.Get(ctx, p)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.String("name", ""))
	require.Equal(t, "u1", ledgerpb.String(f.last["GetDocument"], ledgerpb.KeyOwner))

	f.resp = mustMsg(t, map[string]any{ledgerpb.KeyUpdatedAt: int64(300), ledgerpb.KeyChanged: true})
	ack, err := c.SetMerge(ctx, p, docstore.Document{"name": "Alice", "updatedAt": int64(200)})
	require.NoError(t, err)
	require.Equal(t, docstore.Ack{Path: p, UpdatedAt: 300, Changed: true}, ack)
	sent := docstore.FromStruct(ledgerpb.Struct(f.last["SetMergeDocument"], ledgerpb.KeyFields))
	require.Equal(t, "Alice", sent.String("name", ""))

	f.resp = mustMsg(t, map[string]any{ledgerpb.KeyDocuments: []*structpb.Struct{doc, doc}})
	docs, err := c.Scan(ctx, "u1", docstore.CollectionContacts)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, docstore.CollectionContacts, ledgerpb.String(f.last["ScanCollection"], ledgerpb.KeyCollection))

	f.err = status.Error(codes.NotFound, "nope")
	_, err = c.Get(ctx, p)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
