package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/dbx"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
)

// RepoFunc binds a Repository to a connection or transaction.
type RepoFunc func(db dbx.DBTX) Repository

// PostgresStore is the database-backed docstore.Store. SetMerge reads,
// merges and writes inside one transaction under a per-path lock.
type PostgresStore struct {
	db    *sql.DB
	repo  RepoFunc
	clock func() int64
}

func NewPostgresStore(db *sql.DB, repo RepoFunc) *PostgresStore {
	return &PostgresStore{
		db:    db,
		repo:  repo,
		clock: func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *PostgresStore) Get(ctx context.Context, p docstore.Path) (docstore.Document, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo(s.db).Get(ctx, p)
}

func (s *PostgresStore) SetMerge(ctx context.Context, p docstore.Path, fields docstore.Document) (docstore.Ack, error) {
	if err := p.Validate(); err != nil {
		return docstore.Ack{}, err
	}

	ack := docstore.Ack{Path: p}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Lock(ctx, p); err != nil {
			return err
		}

		stored, err := repo.Get(ctx, p)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		incoming := fields.Clone()
		incoming[docstore.FieldID] = p.ID

		merged, changed := docstore.Merge(stored, incoming, s.clock())
		ack.UpdatedAt = merged.UpdatedAt()
		ack.Changed = changed
		if !changed {
			return nil
		}
		return repo.Save(ctx, p, merged)
	})
	if err != nil {
		return docstore.Ack{}, err
	}
	return ack, nil
}

func (s *PostgresStore) Scan(ctx context.Context, owner, collection string) ([]docstore.Document, error) {
	if err := docstore.ValidateCollection(owner, collection); err != nil {
		return nil, err
	}
	return s.repo(s.db).Scan(ctx, owner, collection)
}
