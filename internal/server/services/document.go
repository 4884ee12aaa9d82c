package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
)

// DocumentService exposes a docstore.Store to authenticated callers. A
// caller may only touch the partition named after its own user id.
type DocumentService struct {
	store  docstore.Store
	logger logging.Logger
}

func NewDocumentService(store docstore.Store, l logging.Logger) *DocumentService {
	return &DocumentService{store: store, logger: l.With("module", "documents")}
}

func authorize(userID, owner string) error {
	if userID == "" {
		return common.ErrorUnauthorized
	}
	if owner != userID {
		return fmt.Errorf("%w: partition %s", common.ErrForbidden, owner)
	}
	return nil
}

func (s *DocumentService) Get(ctx context.Context, userID string, p docstore.Path) (docstore.Document, error) {
	if err := authorize(userID, p.Owner); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, p)
}

// SetMerge drops client-supplied id keys; the path is authoritative.
func (s *DocumentService) SetMerge(ctx context.Context, userID string, p docstore.Path, fields docstore.Document) (docstore.Ack, error) {
	if err := authorize(userID, p.Owner); err != nil {
		return docstore.Ack{}, err
	}
	if len(fields) == 0 {
		return docstore.Ack{}, fmt.Errorf("%w: empty document", common.ErrInvalidArgument)
	}

	incoming := fields.Clone()
	delete(incoming, docstore.FieldID)

	ack, err := s.store.SetMerge(ctx, p, incoming)
	if err != nil {
		return docstore.Ack{}, err
	}
	s.logger.Debug(ctx, "document merged", "path", p.String(), "changed", ack.Changed, "updatedAt", ack.UpdatedAt)
	return ack, nil
}

func (s *DocumentService) Scan(ctx context.Context, userID, owner, collection string) ([]docstore.Document, error) {
	if err := authorize(userID, owner); err != nil {
		return nil, err
	}
	return s.store.Scan(ctx, owner, collection)
}
