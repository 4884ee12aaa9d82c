package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
	"github.com/dmitrijs2005/aichopaicho/internal/proto/ledgerpb"
	"github.com/dmitrijs2005/aichopaicho/internal/server/auth"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestServer() *GRPCServer {
	return NewGRPCServer("", logging.NewNopLogger(), &fakeUsers{}, &fakeDocuments{}, testSecret)
}

func incoming(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		common.AccessTokenHeaderName: token,
	}))
}

func TestInterceptor_PublicMethodWithoutToken(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: ledgerpb.Ledger_Login_FullMethodName}

	called := false
	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		called = true
		return "ok", nil
	})
	require.NoError(t, err)
	require.True(t, called)
	require.Equal(t, "ok", resp)
}

func TestInterceptor_ProtectedMethod(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: ledgerpb.Ledger_ScanCollection_FullMethodName}
	mustNotRun := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	expired, err := auth.GenerateToken("u1", []byte(testSecret), -time.Second)
	require.NoError(t, err)

	tests := []struct {
		name string
		ctx  context.Context
		msg  string
	}{
		{"missing token", context.Background(), "missing token"},
		{"garbage token", incoming("not-a-jwt"), common.ErrInvalidToken.Error()},
		{"expired token", incoming(expired), common.ErrTokenExpired.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.accessTokenInterceptor(tt.ctx, nil, info, mustNotRun)
			require.Equal(t, codes.Unauthenticated, status.Code(err))
			require.Equal(t, tt.msg, status.Convert(err).Message())
		})
	}
}

func TestInterceptor_ValidTokenSetsUserID(t *testing.T) {
	s := newTestServer()
	token, err := auth.GenerateToken("user-123", []byte(testSecret), time.Hour)
	require.NoError(t, err)

	info := &grpc.UnaryServerInfo{FullMethod: ledgerpb.Ledger_GetDocument_FullMethodName}
	var got string
	_, err = s.accessTokenInterceptor(incoming(token), nil, info, func(ctx context.Context, req any) (any, error) {
		got = userIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, "user-123", got)
}

func TestRecoveryInterceptor(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: "/x/y"}

	_, err := s.recoveryInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("kaboom")
	})
	require.Equal(t, codes.Internal, status.Code(err))
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: "/x/y"}

	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp)

	_, err = s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.PermissionDenied, "no")
	})
	require.Equal(t, codes.PermissionDenied, status.Code(err))
}
