package docstore

import "context"

// Ack is returned by SetMerge.
type Ack struct {
	Path      Path
	UpdatedAt int64
	Changed   bool
}

// Store is a per-owner partitioned document store. Get returns
// common.ErrorNotFound when the document does not exist. Scan returns the
// documents of one collection ordered by id.
type Store interface {
	Get(ctx context.Context, p Path) (Document, error)
	SetMerge(ctx context.Context, p Path, fields Document) (Ack, error)
	Scan(ctx context.Context, owner, collection string) ([]Document, error)
}
