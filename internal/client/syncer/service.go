package syncer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/client/identity"
	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
)

// Session is the identity provider plus the ability to end the session.
type Session interface {
	identity.Provider
	SignOut(ctx context.Context) error
}

// Service is what the UI calls. It resolves the current identity, runs
// the engine and folds every error, including panics, into an Outcome.
type Service struct {
	engine  *Engine
	db      *sql.DB
	session Session
	logger  logging.Logger
}

func NewService(engine *Engine, db *sql.DB, session Session, logger logging.Logger) *Service {
	return &Service{engine: engine, db: db, session: session, logger: logger}
}

func (s *Service) guard(ctx context.Context, what string, out *Outcome) {
	if r := recover(); r != nil {
		s.logger.Error(ctx, "sync panic", "op", what, "panic", r)
		*out = failure(what, fmt.Errorf("panic: %v", r), out.Counts)
	}
}

// outcome maps a finished call to an Outcome. Missing or mismatched
// identity is a skipped precondition, not a failure.
func outcome(what string, r Result, err error) Outcome {
	switch {
	case err == nil:
		return success(what, r)
	case errors.Is(err, common.ErrNoIdentity):
		return Outcome{Status: StatusSkipped, Message: what + " skipped: not signed in", Counts: r}
	case errors.Is(err, common.ErrIdentityMismatch):
		return Outcome{Status: StatusSkipped, Message: fmt.Sprintf("%s skipped: %v", what, err), Counts: r}
	default:
		return failure(what, err, r)
	}
}

func (s *Service) currentID() string {
	id, ok := s.session.CurrentIdentityID()
	if !ok {
		return ""
	}
	return id
}

func (s *Service) PushAll(ctx context.Context, kind models.Kind) (out Outcome) {
	what := "push " + string(kind)
	defer s.guard(ctx, what, &out)

	r, err := s.engine.Push(ctx, kind, s.currentID())
	return outcome(what, r, err)
}

func (s *Service) PushOne(ctx context.Context, kind models.Kind, id string) (out Outcome) {
	what := "push " + string(kind) + "/" + id
	defer s.guard(ctx, what, &out)

	r, err := s.engine.PushOne(ctx, kind, s.currentID(), id)
	return outcome(what, r, err)
}

func (s *Service) PullAndMergeAll(ctx context.Context) (out Outcome) {
	const what = "pull"
	defer s.guard(ctx, what, &out)

	r, err := s.engine.PullAll(ctx, s.currentID())
	return outcome(what, r, err)
}

// SyncNow pulls and then pushes every kind, so rows created offline reach
// the remote store and remote edits reach this device.
func (s *Service) SyncNow(ctx context.Context) (out Outcome) {
	const what = "sync"
	defer s.guard(ctx, what, &out)

	id := s.currentID()
	total, err := s.engine.PullAll(ctx, id)
	if err != nil {
		return outcome(what, total, err)
	}
	r, err := s.engine.PushAll(ctx, id)
	total.Add(r)
	return outcome(what, total, err)
}

func (s *Service) MigrateIdentity(ctx context.Context, oldID, newID string) (out Outcome) {
	const what = "migrate identity"
	defer s.guard(ctx, what, &out)

	r, err := s.engine.MigrateIdentity(ctx, oldID, newID)
	return outcome(what, r, err)
}

// ResetForSignOut purges the departing owner's rows, ends the session and
// starts over with a fresh local-only user.
func (s *Service) ResetForSignOut(ctx context.Context) (out Outcome) {
	const what = "sign out"
	defer s.guard(ctx, what, &out)

	owner, err := identity.Owner(ctx, s.db)
	if err != nil {
		return failure(what, err, Result{})
	}
	if owner != "" {
		if err := s.engine.ResetLocal(ctx, owner); err != nil {
			return failure(what, err, Result{})
		}
	}
	if err := s.session.SignOut(ctx); err != nil {
		return failure(what, err, Result{})
	}
	fresh, err := identity.NewLocalUser(ctx, s.db)
	if err != nil {
		return failure(what, err, Result{})
	}
	return Outcome{Status: StatusSuccess, Message: "signed out, new local user " + fresh}
}
