// Package storagetest provides migrated in-memory databases for tests.
package storagetest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/aichopaicho/internal/client/storage"
	"github.com/stretchr/testify/require"
)

var seq atomic.Int64

// Open returns a migrated in-memory database. Each call yields a separate
// database, so one test can model several devices.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	db, err := storage.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
