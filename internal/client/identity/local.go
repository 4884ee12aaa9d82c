package identity

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/types"
	"github.com/dmitrijs2005/aichopaicho/internal/client/repositories/users"
	"github.com/dmitrijs2005/aichopaicho/internal/dbx"
	"github.com/google/uuid"
)

// Owner returns the id local rows are currently filed under, or "".
func Owner(ctx context.Context, db dbx.DBTX) (string, error) {
	return metadata.GetString(ctx, metadata.NewSQLiteRepository(db), metadata.KeyOwnerID)
}

// NewLocalUser creates a local-only user with a fresh id and makes it the
// owner of new rows.
func NewLocalUser(ctx context.Context, db *sql.DB) (string, error) {
	id := uuid.NewString()
	now := models.NowMillis()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u := &models.User{ID: id, Name: "Local user", IsOffline: true, CreatedAt: now, UpdatedAt: now}
		if err := users.NewSQLiteRepository(tx).Upsert(ctx, u); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Set(ctx, metadata.KeyOwnerID, []byte(id))
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Bootstrap prepares a fresh database on first start: default categories
// and a local-only owner. It returns the current owner id.
func Bootstrap(ctx context.Context, db *sql.DB) (string, error) {
	if err := types.NewSQLiteRepository(db).Seed(ctx, models.NowMillis()); err != nil {
		return "", err
	}

	owner, err := Owner(ctx, db)
	if err != nil {
		return "", err
	}
	if owner != "" {
		return owner, nil
	}
	return NewLocalUser(ctx, db)
}
