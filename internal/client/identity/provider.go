// Package identity answers "who is the current principal": the account a
// stored access token belongs to, and the owner id local rows are filed
// under.
package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aichopaicho/internal/dbx"
	"github.com/golang-jwt/jwt/v5"
)

// Provider reports the authenticated principal, if any.
type Provider interface {
	CurrentIdentityID() (string, bool)
}

// TokenProvider keeps the session tokens in the metadata table and derives
// the identity from the access token's subject. The signature is not
// checked here; the server verifies every call.
type TokenProvider struct {
	db dbx.DBTX

	mu       sync.RWMutex
	access   string
	refresh  string
	username string
}

func NewTokenProvider(db dbx.DBTX) *TokenProvider {
	return &TokenProvider{db: db}
}

func (p *TokenProvider) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(p.db)
}

// Load reads persisted tokens so a restart keeps the session.
func (p *TokenProvider) Load(ctx context.Context) error {
	r := p.repo()
	access, err := metadata.GetString(ctx, r, metadata.KeyAccessToken)
	if err != nil {
		return err
	}
	refresh, err := metadata.GetString(ctx, r, metadata.KeyRefreshToken)
	if err != nil {
		return err
	}
	username, err := metadata.GetString(ctx, r, metadata.KeyUsername)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.access, p.refresh, p.username = access, refresh, username
	p.mu.Unlock()
	return nil
}

// CurrentIdentityID returns the subject of the stored access token. An
// expired token still names the principal; the client refreshes it.
func (p *TokenProvider) CurrentIdentityID() (string, bool) {
	p.mu.RLock()
	access := p.access
	p.mu.RUnlock()

	if access == "" {
		return "", false
	}
	sub, err := SubjectOf(access)
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

// Username returns the name used at sign-in, or "".
func (p *TokenProvider) Username() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.username
}

func (p *TokenProvider) Tokens() (string, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.access, p.refresh
}

func (p *TokenProvider) SetTokens(ctx context.Context, access, refresh string) error {
	r := p.repo()
	if err := r.Set(ctx, metadata.KeyAccessToken, []byte(access)); err != nil {
		return err
	}
	if err := r.Set(ctx, metadata.KeyRefreshToken, []byte(refresh)); err != nil {
		return err
	}

	p.mu.Lock()
	p.access, p.refresh = access, refresh
	p.mu.Unlock()
	return nil
}

// SignIn stores a new session.
func (p *TokenProvider) SignIn(ctx context.Context, username, access, refresh string) error {
	if _, err := SubjectOf(access); err != nil {
		return err
	}
	if err := p.repo().Set(ctx, metadata.KeyUsername, []byte(username)); err != nil {
		return err
	}
	if err := p.SetTokens(ctx, access, refresh); err != nil {
		return err
	}

	p.mu.Lock()
	p.username = username
	p.mu.Unlock()
	return nil
}

// SignOut forgets the session.
func (p *TokenProvider) SignOut(ctx context.Context) error {
	r := p.repo()
	for _, k := range []string{metadata.KeyAccessToken, metadata.KeyRefreshToken, metadata.KeyUsername} {
		if err := r.Delete(ctx, k); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.access, p.refresh, p.username = "", "", ""
	p.mu.Unlock()
	return nil
}

// SubjectOf extracts the subject claim without verifying the signature.
func SubjectOf(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
