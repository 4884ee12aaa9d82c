package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/storage/storagetest"
	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertGetDelete(t *testing.T) {
	r := NewSQLiteRepository(storagetest.Open(t))
	ctx := context.Background()

	u := &models.User{ID: "u1", Name: "Local", IsOffline: true, CreatedAt: 1, UpdatedAt: 1}
	require.NoError(t, r.Upsert(ctx, u))

	u.IsOffline = false
	u.Email = "a@b.c"
	u.UpdatedAt = 2
	require.NoError(t, r.Upsert(ctx, u))

	got, err := r.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, r.Delete(ctx, "u1"))
	require.NoError(t, r.Delete(ctx, "u1"))

	_, err = r.GetByID(ctx, "u1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
