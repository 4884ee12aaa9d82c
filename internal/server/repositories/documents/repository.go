// Package documents persists synced ledger documents on the server. The
// Postgres repository keeps one jsonb row per document; the stores in this
// package put docstore.Merge on top of a backend and satisfy docstore.Store.
package documents

import (
	"context"

	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
)

type Repository interface {
	// Lock serializes writers of one path until the surrounding transaction ends.
	Lock(ctx context.Context, p docstore.Path) error
	// Get returns common.ErrorNotFound for a missing document.
	Get(ctx context.Context, p docstore.Path) (docstore.Document, error)
	Save(ctx context.Context, p docstore.Path, doc docstore.Document) error
	Scan(ctx context.Context, owner, collection string) ([]docstore.Document, error)
}
