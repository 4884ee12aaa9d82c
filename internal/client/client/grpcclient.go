package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/proto/ledgerpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      ledgerpb.LedgerClient
	health      healthpb.HealthClient
	tokens      TokenStore

	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, _ := s.tokens.Tokens()

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) || method == ledgerpb.Ledger_RefreshToken_FullMethodName {
		return err
	}

	fresh, rerr := s.refresh(ctx, access)
	if rerr != nil {
		if errors.Is(rerr, errNoRefreshToken) {
			return err
		}
		return rerr
	}

	return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
}

var errNoRefreshToken = errors.New("no refresh token")

// refresh rotates the tokens unless another caller already did so since
// used was read.
func (s *GRPCClient) refresh(ctx context.Context, used string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens.Tokens()
	if access != used {
		return access, nil
	}
	if refresh == "" {
		return "", errNoRefreshToken
	}

	req, err := ledgerpb.NewMessage(map[string]any{ledgerpb.KeyRefreshToken: refresh})
	if err != nil {
		return "", err
	}
	resp, err := s.client.RefreshToken(ctx, req)
	if err != nil {
		return "", s.mapError(err)
	}

	access = ledgerpb.String(resp, ledgerpb.KeyAccessToken)
	if err := s.tokens.SetTokens(ctx, access, ledgerpb.String(resp, ledgerpb.KeyRefreshToken)); err != nil {
		return "", fmt.Errorf("store refreshed tokens: %w", err)
	}
	return access, nil
}

// NewLedgerClient prepares a client for endpointURL. The connection is
// established lazily on the first call. Extra dial options are appended to
// the defaults.
func NewLedgerClient(endpointURL string, tokens TokenStore, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, tokens: tokens}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = ledgerpb.NewLedgerClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) call(ctx context.Context, fn func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error), fields map[string]any) (*structpb.Struct, error) {
	req, err := ledgerpb.NewMessage(fields)
	if err != nil {
		return nil, err
	}
	resp, err := fn(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Register(ctx context.Context, userName string, salt []byte, verifier []byte) error {
	_, err := s.call(ctx, s.client.Register, map[string]any{
		ledgerpb.KeyUsername: userName,
		ledgerpb.KeySalt:     salt,
		ledgerpb.KeyVerifier: verifier,
	})
	return err
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	resp, err := s.call(ctx, s.client.GetSalt, map[string]any{ledgerpb.KeyUsername: userName})
	if err != nil {
		return nil, err
	}
	return ledgerpb.Bytes(resp, ledgerpb.KeySalt)
}

// Login exchanges a verifier for a token pair. The caller decides where the
// tokens are kept.
func (s *GRPCClient) Login(ctx context.Context, userName string, verifier []byte) (Tokens, error) {
	resp, err := s.call(ctx, s.client.Login, map[string]any{
		ledgerpb.KeyUsername: userName,
		ledgerpb.KeyVerifier: verifier,
	})
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{
		Access:  ledgerpb.String(resp, ledgerpb.KeyAccessToken),
		Refresh: ledgerpb.String(resp, ledgerpb.KeyRefreshToken),
	}, nil
}

// Ping asks the server's health service whether the Ledger is serving.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ledgerpb.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Get(ctx context.Context, p docstore.Path) (docstore.Document, error) {
	resp, err := s.call(ctx, s.client.GetDocument, map[string]any{
		ledgerpb.KeyOwner:      p.Owner,
		ledgerpb.KeyCollection: p.Collection,
		ledgerpb.KeyID:         p.ID,
	})
	if err != nil {
		return nil, err
	}
	return docstore.FromStruct(resp), nil
}

func (s *GRPCClient) SetMerge(ctx context.Context, p docstore.Path, fields docstore.Document) (docstore.Ack, error) {
	st, err := docstore.ToStruct(fields)
	if err != nil {
		return docstore.Ack{}, fmt.Errorf("encode %s: %w", p, err)
	}
	resp, err := s.call(ctx, s.client.SetMergeDocument, map[string]any{
		ledgerpb.KeyOwner:      p.Owner,
		ledgerpb.KeyCollection: p.Collection,
		ledgerpb.KeyID:         p.ID,
		ledgerpb.KeyFields:     st,
	})
	if err != nil {
		return docstore.Ack{}, err
	}
	return docstore.Ack{
		Path:      p,
		UpdatedAt: ledgerpb.Int64(resp, ledgerpb.KeyUpdatedAt),
		Changed:   ledgerpb.Bool(resp, ledgerpb.KeyChanged),
	}, nil
}

func (s *GRPCClient) Scan(ctx context.Context, owner, collection string) ([]docstore.Document, error) {
	resp, err := s.call(ctx, s.client.ScanCollection, map[string]any{
		ledgerpb.KeyOwner:      owner,
		ledgerpb.KeyCollection: collection,
	})
	if err != nil {
		return nil, err
	}

	list := ledgerpb.Structs(resp, ledgerpb.KeyDocuments)
	docs := make([]docstore.Document, 0, len(list))
	for _, st := range list {
		docs = append(docs, docstore.FromStruct(st))
	}
	return docs, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrInvalidArgument, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
