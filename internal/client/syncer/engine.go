// Package syncer reconciles the local entity store with the remote document
// store: push and pull passes per entity kind, last-writer-wins on
// updatedAt, and the move of local data onto a newly signed-in account.
package syncer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/contacts"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/records"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/users"
	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/dbx"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
	"golang.org/x/sync/errgroup"
)

const DefaultRemoteTimeout = 10 * time.Second

type Engine struct {
	db      *sql.DB
	remote  docstore.Store
	logger  logging.Logger
	timeout time.Duration
	now     func() int64
	locks   *keyedMutex
}

func NewEngine(db *sql.DB, remote docstore.Store, logger logging.Logger, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &Engine{
		db:      db,
		remote:  remote,
		logger:  logger,
		timeout: timeout,
		now:     models.NowMillis,
		locks:   newKeyedMutex(),
	}
}

// WithClock replaces the local timestamp source.
func (e *Engine) WithClock(now func() int64) *Engine {
	e.now = now
	return e
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}

// Push sends every local row of kind owned by identity, tombstones
// included. A row that fails is counted and logged; the pass goes on.
func (e *Engine) Push(ctx context.Context, kind models.Kind, identity string) (Result, error) {
	t, err := tableFor(kind)
	if err != nil {
		return Result{}, err
	}
	if identity == "" {
		return Result{}, common.ErrNoIdentity
	}

	unlock := e.locks.Lock(kind, identity)
	defer unlock()

	rows, err := t.rows(ctx, e.db, identity)
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", kind, err)
	}

	var res Result
	for _, row := range rows {
		if err := e.send(ctx, t, identity, row); err != nil {
			res.Failed++
			e.logger.Warn(ctx, "push failed", "kind", kind, "id", row.GetID(), "owner", identity, "error", err)
			continue
		}
		res.Pushed++
	}

	e.logger.Info(ctx, "push finished", "kind", kind, "owner", identity, "result", res.String())
	return res, nil
}

// PushOne sends a single row.
func (e *Engine) PushOne(ctx context.Context, kind models.Kind, identity, id string) (Result, error) {
	t, err := tableFor(kind)
	if err != nil {
		return Result{}, err
	}
	if identity == "" {
		return Result{}, common.ErrNoIdentity
	}

	unlock := e.locks.Lock(kind, identity)
	defer unlock()

	if err := e.pushOne(ctx, t, identity, id); err != nil {
		e.logger.Warn(ctx, "push failed", "kind", kind, "id", id, "owner", identity, "error", err)
		return Result{Failed: 1}, err
	}
	return Result{Pushed: 1}, nil
}

func (e *Engine) pushOne(ctx context.Context, t *table, identity, id string) error {
	row, err := t.get(ctx, e.db, id)
	if err != nil {
		return err
	}
	return e.send(ctx, t, identity, row)
}

func (e *Engine) send(ctx context.Context, t *table, identity string, row models.Syncable) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	p := docstore.Path{Owner: identity, Collection: t.collection, ID: row.GetID()}
	_, err := e.remote.SetMerge(ctx, p, t.encode(row))
	return err
}

// checkOwner makes sure identity is the account local rows are filed
// under. Pulling another account's data into this store would mix ledgers.
func (e *Engine) checkOwner(ctx context.Context, identity string) error {
	if identity == "" {
		return common.ErrNoIdentity
	}
	owner, err := metadata.GetString(ctx, metadata.NewSQLiteRepository(e.db), metadata.KeyOwnerID)
	if err != nil {
		return err
	}
	if owner != identity {
		return fmt.Errorf("%w: signed in as %s, local data belongs to %s", common.ErrIdentityMismatch, identity, owner)
	}
	return nil
}

// Pull merges the remote collection for kind into the local store, one
// document at a time in scan order.
func (e *Engine) Pull(ctx context.Context, kind models.Kind, identity string) (Result, error) {
	t, err := tableFor(kind)
	if err != nil {
		return Result{}, err
	}

	unlock := e.locks.Lock(kind, identity)
	defer unlock()

	// Checked under the lock: a reset or migration may have moved the
	// owner while this pass was waiting.
	if err := e.checkOwner(ctx, identity); err != nil {
		return Result{}, err
	}

	scanCtx, cancel := context.WithTimeout(ctx, e.timeout)
	docs, err := e.remote.Scan(scanCtx, identity, t.collection)
	cancel()
	if err != nil {
		return Result{}, fmt.Errorf("scan %s: %w", t.collection, err)
	}

	var res Result
	for _, doc := range docs {
		if err := e.merge(ctx, t, identity, doc, &res); err != nil {
			res.Failed++
			e.logger.Warn(ctx, "pull failed", "kind", kind, "id", doc.ID(), "owner", identity, "error", err)
		}
	}

	e.logger.Info(ctx, "pull finished", "kind", kind, "owner", identity, "result", res.String())
	return res, nil
}

func (e *Engine) merge(ctx context.Context, t *table, identity string, doc docstore.Document, res *Result) error {
	id := doc.ID()
	if id == "" {
		return fmt.Errorf("%w: document without id", common.ErrInvalidArgument)
	}
	incoming := t.decode(doc, identity, e.now())

	local, err := t.get(ctx, e.db, id)
	switch {
	case isNotFound(err):
		if err := t.upsert(ctx, e.db, incoming); err != nil {
			return err
		}
		res.Inserted++
	case err != nil:
		return err
	case incoming.GetUpdatedAt() > local.GetUpdatedAt():
		if err := t.upsert(ctx, e.db, incoming); err != nil {
			return err
		}
		res.Updated++
	case incoming.GetUpdatedAt() < local.GetUpdatedAt():
		if err := e.send(ctx, t, identity, local); err != nil {
			return err
		}
		res.Repushed++
	default:
		e.logger.Debug(ctx, "already in sync", "collection", t.collection, "id", id)
		res.Unchanged++
	}
	return nil
}

// PullAll pulls every kind concurrently. A kind that fails does not stop
// the others; the first error is returned alongside the combined counts.
func (e *Engine) PullAll(ctx context.Context, identity string) (Result, error) {
	results := make([]Result, len(models.AllKinds))

	var g errgroup.Group
	for i, kind := range models.AllKinds {
		g.Go(func() error {
			r, err := e.Pull(ctx, kind, identity)
			results[i] = r
			if err != nil {
				return fmt.Errorf("pull %s: %w", kind, err)
			}
			return nil
		})
	}
	err := g.Wait()

	var total Result
	for _, r := range results {
		total.Add(r)
	}
	return total, err
}

// PushAll pushes every kind in models.AllKinds order.
func (e *Engine) PushAll(ctx context.Context, identity string) (Result, error) {
	var total Result
	for _, kind := range models.AllKinds {
		r, err := e.Push(ctx, kind, identity)
		total.Add(r)
		if err != nil {
			return total, fmt.Errorf("push %s: %w", kind, err)
		}
	}
	return total, nil
}

// MigrateIdentity moves local data from a local-only user to a durable
// account: the new user row is created or merged, owner references are
// rewritten, the old user row is deleted and newID becomes the owner. The
// local steps share one transaction and hold every kind's lock for both
// identities; the push that follows runs after they are released. Running
// it again is harmless.
func (e *Engine) MigrateIdentity(ctx context.Context, oldID, newID string) (Result, error) {
	if oldID == "" || newID == "" {
		return Result{}, fmt.Errorf("%w: identity ids must not be empty", common.ErrInvalidArgument)
	}
	if oldID == newID {
		return Result{}, fmt.Errorf("%w: old and new identity are the same", common.ErrInvalidArgument)
	}

	profile, err := e.remoteProfile(ctx, newID)
	if err != nil {
		return Result{}, fmt.Errorf("migrate identity: %w", err)
	}

	unlock := e.locks.LockAll(oldID, newID)
	var moved int64
	err = dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ur := users.NewSQLiteRepository(tx)

		if err := e.mergeUser(ctx, ur, oldID, newID, profile); err != nil {
			return err
		}

		n, err := contacts.NewSQLiteRepository(tx).ReassignOwner(ctx, oldID, newID)
		if err != nil {
			return err
		}
		moved += n
		n, err = records.NewSQLiteRepository(tx).ReassignOwner(ctx, oldID, newID)
		if err != nil {
			return err
		}
		moved += n

		if err := ur.Delete(ctx, oldID); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Set(ctx, metadata.KeyOwnerID, []byte(newID))
	})
	unlock()
	if err != nil {
		return Result{}, fmt.Errorf("migrate identity: %w", err)
	}
	e.logger.Info(ctx, "identity migrated", "from", oldID, "to", newID, "rows", moved)

	return e.PushAll(ctx, newID)
}

// remoteProfile fetches the account's profile document. It returns nil
// when the account has none yet.
func (e *Engine) remoteProfile(ctx context.Context, identity string) (*models.User, error) {
	t, err := tableFor(models.KindUsers)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	doc, err := e.remote.Get(ctx, docstore.Path{Owner: identity, Collection: t.collection, ID: identity})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	u := t.decode(doc, identity, e.now()).(*models.User)
	u.ID = identity
	return u, nil
}

// mergeUser makes sure a live user row exists for newID. An existing remote
// profile wins over the local-only user's display fields.
func (e *Engine) mergeUser(ctx context.Context, ur *users.SQLiteRepository, oldID, newID string, profile *models.User) error {
	now := e.now()

	target, err := ur.GetByID(ctx, newID)
	switch {
	case isNotFound(err) && profile != nil:
		target = profile
	case isNotFound(err):
		target = &models.User{ID: newID, CreatedAt: now, UpdatedAt: now}
		if old, err := ur.GetByID(ctx, oldID); err == nil {
			target.Name, target.Email, target.PhotoURL = old.Name, old.Email, old.PhotoURL
		} else if !isNotFound(err) {
			return err
		}
	case err != nil:
		return err
	case profile != nil && profile.UpdatedAt > target.UpdatedAt:
		target = profile
	case !target.IsOffline && !target.IsDeleted:
		return nil
	}

	if target.IsOffline || target.IsDeleted {
		target.IsOffline = false
		target.IsDeleted = false
		target.UpdatedAt = max(now, target.UpdatedAt)
	}
	return ur.Upsert(ctx, target)
}

// ResetLocal deletes every row owned by identity. Shared categories stay.
// Passes for identity that are in flight finish first; later ones find the
// owner gone and skip.
func (e *Engine) ResetLocal(ctx context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("%w: identity must not be empty", common.ErrInvalidArgument)
	}

	unlock := e.locks.LockAll(identity)
	defer unlock()

	return dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		nr, err := records.NewSQLiteRepository(tx).PurgeByOwner(ctx, identity)
		if err != nil {
			return err
		}
		nc, err := contacts.NewSQLiteRepository(tx).PurgeByOwner(ctx, identity)
		if err != nil {
			return err
		}
		if err := users.NewSQLiteRepository(tx).Delete(ctx, identity); err != nil {
			return err
		}
		e.logger.Info(ctx, "local data purged", "owner", identity, "records", nr, "contacts", nc)
		return metadata.NewSQLiteRepository(tx).Delete(ctx, metadata.KeyOwnerID)
	})
}
