// Package metadata is the client's key/value table: who the current owner
// is, the session tokens and the signed-in username.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyOwnerID      = "owner_id"
	KeyUsername     = "username"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

type Repository interface {
	// Get returns nil, nil for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
}
