// Package contacts persists counterparties in the local SQLite store.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/dbx"
)

// Repository stores contacts keyed by their client-generated id.
// Listings skip tombstones; the ForSync variant includes them.
type Repository interface {
	Upsert(ctx context.Context, c *models.Contact) error
	SoftDelete(ctx context.Context, id string, updatedAt int64) error
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	GetAll(ctx context.Context, ownerID string) ([]*models.Contact, error)
	GetAllForSync(ctx context.Context, ownerID string) ([]*models.Contact, error)
	ReassignOwner(ctx context.Context, oldOwnerID, newOwnerID string) (int64, error)
	PurgeByOwner(ctx context.Context, ownerID string) (int64, error)
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT id, owner_id, name, phone, is_deleted, created_at, updated_at FROM contacts`

// Upsert inserts c or overwrites every field but created_at.
func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Contact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, owner_id, name, phone, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			name = excluded.name,
			phone = excluded.phone,
			is_deleted = excluded.is_deleted,
			updated_at = excluded.updated_at
	`, c.ID, c.OwnerID, c.Name, c.Phone, c.IsDeleted, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert contact %s: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, updatedAt int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contacts SET is_deleted = 1, updated_at = ? WHERE id = ?`, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", id, err)
	}
	return dbx.ExactlyOne(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	c, err := scan(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	return r.query(ctx, selectColumns+` WHERE owner_id = ? AND is_deleted = 0 ORDER BY name, id`, ownerID)
}

func (r *SQLiteRepository) GetAllForSync(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	return r.query(ctx, selectColumns+` WHERE owner_id = ? ORDER BY id`, ownerID)
}

// ReassignOwner rewrites the owner reference in place. Rows keep their ids.
func (r *SQLiteRepository) ReassignOwner(ctx context.Context, oldOwnerID, newOwnerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE contacts SET owner_id = ? WHERE owner_id = ?`, newOwnerID, oldOwnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign contacts: %w", err)
	}
	return res.RowsAffected()
}

// PurgeByOwner hard deletes every contact of ownerID, tombstones included.
func (r *SQLiteRepository) PurgeByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge contacts: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select contacts: %w", err)
	}
	defer rows.Close()

	var result []*models.Contact
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Contact, error) {
	c := &models.Contact{}
	err := s.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}
