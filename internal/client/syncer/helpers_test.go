package syncer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/contacts"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/records"
	"github.com/dmitrijs2005/aichopaicho/internal/client/storage/storagetest"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newRemote returns a store whose server clock never wins, so merged
// timestamps are exactly the larger of the two sides.
func newRemote() *docstore.MemoryStore {
	return docstore.NewMemoryStore().WithClock(func() int64 { return 0 })
}

type device struct {
	db     *sql.DB
	engine *Engine
}

func newDevice(t *testing.T, remote docstore.Store, owner string) *device {
	t.Helper()
	db := storagetest.Open(t)
	if owner != "" {
		require.NoError(t, metadata.NewSQLiteRepository(db).Set(context.Background(), metadata.KeyOwnerID, []byte(owner)))
	}
	e := NewEngine(db, remote, logging.NewNopLogger(), time.Second).WithClock(func() int64 { return 777 })
	return &device{db: db, engine: e}
}

func (d *device) putContact(t *testing.T, c models.Contact) {
	t.Helper()
	require.NoError(t, contacts.NewSQLiteRepository(d.db).Upsert(context.Background(), &c))
}

func (d *device) contact(t *testing.T, id string) *models.Contact {
	t.Helper()
	c, err := contacts.NewSQLiteRepository(d.db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (d *device) putRecord(t *testing.T, id, owner string, amount string, updatedAt int64) {
	t.Helper()
	r := &models.Record{
		ID:        id,
		OwnerID:   owner,
		ContactID: "c1",
		TypeID:    models.TypeLentID,
		Amount:    decimal.RequireFromString(amount),
		Date:      updatedAt,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	require.NoError(t, records.NewSQLiteRepository(d.db).Upsert(context.Background(), r))
}

func remoteDoc(t *testing.T, s docstore.Store, owner, collection, id string) docstore.Document {
	t.Helper()
	doc, err := s.Get(context.Background(), docstore.Path{Owner: owner, Collection: collection, ID: id})
	require.NoError(t, err)
	return doc
}
