package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string]map[string]map[string]Document // owner -> collection -> id
	clock func() int64
}

// NewMemoryStore creates an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:  make(map[string]map[string]map[string]Document),
		clock: func() int64 { return time.Now().UnixMilli() },
	}
}

// WithClock replaces the timestamp source used by SetMerge.
func (s *MemoryStore) WithClock(clock func() int64) *MemoryStore {
	s.clock = clock
	return s
}

func (s *MemoryStore) Get(ctx context.Context, p Path) (Document, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[p.Owner][p.Collection][p.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return doc.Clone(), nil
}

func (s *MemoryStore) SetMerge(ctx context.Context, p Path, fields Document) (Ack, error) {
	if err := p.Validate(); err != nil {
		return Ack{}, err
	}
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collection(p.Owner, p.Collection)
	incoming := fields.Clone()
	incoming[FieldID] = p.ID

	merged, changed := Merge(coll[p.ID], incoming, s.clock())
	coll[p.ID] = merged
	return Ack{Path: p, UpdatedAt: merged.UpdatedAt(), Changed: changed}, nil
}

func (s *MemoryStore) Scan(ctx context.Context, owner, collection string) ([]Document, error) {
	if err := ValidateCollection(owner, collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.docs[owner][collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, coll[id].Clone())
	}
	return out, nil
}

// Put stores a document verbatim, bypassing the merge rule. Tests use it to
// seed remote state with a chosen updatedAt.
func (s *MemoryStore) Put(p Path, doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := doc.Clone()
	d[FieldID] = p.ID
	s.collection(p.Owner, p.Collection)[p.ID] = d
}

func (s *MemoryStore) collection(owner, collection string) map[string]Document {
	byColl, ok := s.docs[owner]
	if !ok {
		byColl = make(map[string]map[string]Document)
		s.docs[owner] = byColl
	}
	coll, ok := byColl[collection]
	if !ok {
		coll = make(map[string]Document)
		byColl[collection] = coll
	}
	return coll
}
