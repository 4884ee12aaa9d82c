package client

import (
	"context"

	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
)

// Client is the remote API as the rest of the client sees it: account
// calls plus the per-owner document store.
type Client interface {
	docstore.Store

	Register(ctx context.Context, userName string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, userName string) ([]byte, error)
	Login(ctx context.Context, userName string, verifier []byte) (Tokens, error)
	Ping(ctx context.Context) error
	Close() error
}

var _ Client = (*GRPCClient)(nil)

// TokenStore holds the session tokens. The interceptor reads them before
// every call and writes rotated tokens back after a refresh.
type TokenStore interface {
	Tokens() (access, refresh string)
	SetTokens(ctx context.Context, access, refresh string) error
}

// Tokens is a freshly issued token pair.
type Tokens struct {
	Access  string
	Refresh string
}
