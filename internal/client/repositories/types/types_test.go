package types

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_IsIdempotentAndKeepsExisting(t *testing.T) {
	r := NewSQLiteRepository(storagetest.Open(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Type{ID: models.TypeLentID, Name: "Given", CreatedAt: 5, UpdatedAt: 50}))
	require.NoError(t, r.Seed(ctx, 100))
	require.NoError(t, r.Seed(ctx, 200))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	lent, err := r.GetByID(ctx, models.TypeLentID)
	require.NoError(t, err)
	assert.Equal(t, "Given", lent.Name)

	borrowed, err := r.GetByID(ctx, models.TypeBorrowedID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), borrowed.CreatedAt)
}

func TestResolveType_Dangling(t *testing.T) {
	r := NewSQLiteRepository(storagetest.Open(t))
	ctx := context.Background()
	require.NoError(t, r.Seed(ctx, 1))

	got, err := r.ResolveType(ctx, models.TypeBorrowedID)
	require.NoError(t, err)
	assert.Equal(t, "Borrowed", got.Name)

	got, err = r.ResolveType(ctx, "gone")
	require.NoError(t, err)
	assert.Equal(t, models.UnknownType(), got)
}

func TestSoftDelete(t *testing.T) {
	r := NewSQLiteRepository(storagetest.Open(t))
	ctx := context.Background()
	require.NoError(t, r.Seed(ctx, 1))

	require.NoError(t, r.SoftDelete(ctx, models.TypeLentID, 9))

	live, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, live, 1)

	all, err := r.GetAllForSync(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
