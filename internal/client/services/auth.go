// Package services contains the client's application services: the
// account flow (register, login, logout) and the ledger operations the
// REPL offers. Both keep the local store authoritative and treat the
// remote side as best effort.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/client/client"
	"github.com/dmitrijs2005/aichopaicho/internal/client/identity"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aichopaicho/internal/client/syncer"
	"github.com/dmitrijs2005/aichopaicho/internal/cryptox"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
)

// ErrOtherAccount is returned by Login when a different account is still
// signed in on this device.
var ErrOtherAccount = errors.New("another account is signed in, log out first")

// Session describes who is using the client right now.
type Session struct {
	Username   string
	IdentityID string
	OwnerID    string
	SignedIn   bool
}

// AuthService defines account operations for the CLI.
//
// Contract:
//   - Register: create a new account on the server.
//   - Login: authenticate, then move local-only data onto the account.
//   - Logout: purge the account's local data and start a fresh local user.
//   - Ping: check server liveness.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (syncer.Outcome, error)
	Logout(ctx context.Context) syncer.Outcome
	Session(ctx context.Context) (Session, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Syncer is the part of syncer.Service the account flow needs.
type Syncer interface {
	MigrateIdentity(ctx context.Context, oldID, newID string) syncer.Outcome
	ResetForSignOut(ctx context.Context) syncer.Outcome
	SyncNow(ctx context.Context) syncer.Outcome
}

type authService struct {
	client   client.Client
	db       *sql.DB
	provider *identity.TokenProvider
	sync     Syncer
	logger   logging.Logger
}

func NewAuthService(c client.Client, db *sql.DB, provider *identity.TokenProvider, sync Syncer, logger logging.Logger) AuthService {
	return &authService{client: c, db: db, provider: provider, sync: sync, logger: logger}
}

// Register generates a random salt, derives a key from the password and
// sends salt and verifier to the server. The password never leaves the
// device.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := cryptox.NewSalt()
	verifier := cryptox.MakeVerifier(cryptox.DeriveKey(password, salt))

	if err := a.client.Register(ctx, username, salt, verifier); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

// Login authenticates and stores the session. When local data belongs to a
// local-only user it is migrated onto the account; a full sync follows.
func (a *authService) Login(ctx context.Context, username string, password []byte) (syncer.Outcome, error) {
	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return syncer.Outcome{}, fmt.Errorf("get salt error: %w", err)
	}
	verifier := cryptox.MakeVerifier(cryptox.DeriveKey(password, salt))

	tokens, err := a.client.Login(ctx, username, verifier)
	if err != nil {
		return syncer.Outcome{}, fmt.Errorf("login error: %w", err)
	}
	durable, err := identity.SubjectOf(tokens.Access)
	if err != nil {
		return syncer.Outcome{}, fmt.Errorf("login error: %w", err)
	}

	if current, ok := a.provider.CurrentIdentityID(); ok && current != durable {
		return syncer.Outcome{}, ErrOtherAccount
	}

	owner, err := identity.Owner(ctx, a.db)
	if err != nil {
		return syncer.Outcome{}, err
	}

	if err := a.provider.SignIn(ctx, username, tokens.Access, tokens.Refresh); err != nil {
		return syncer.Outcome{}, fmt.Errorf("saving session: %w", err)
	}
	a.logger.Info(ctx, "signed in", "user", username, "identity", durable)

	switch owner {
	case durable:
	case "":
		if err := metadata.NewSQLiteRepository(a.db).Set(ctx, metadata.KeyOwnerID, []byte(durable)); err != nil {
			return syncer.Outcome{}, err
		}
	default:
		out := a.sync.MigrateIdentity(ctx, owner, durable)
		if out.Status == syncer.StatusFailure {
			return out, fmt.Errorf("moving local data to %s: %s", username, out.Message)
		}
	}

	return a.sync.SyncNow(ctx), nil
}

func (a *authService) Logout(ctx context.Context) syncer.Outcome {
	return a.sync.ResetForSignOut(ctx)
}

func (a *authService) Session(ctx context.Context) (Session, error) {
	owner, err := identity.Owner(ctx, a.db)
	if err != nil {
		return Session{}, err
	}
	id, ok := a.provider.CurrentIdentityID()
	return Session{
		Username:   a.provider.Username(),
		IdentityID: id,
		OwnerID:    owner,
		SignedIn:   ok,
	}, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
