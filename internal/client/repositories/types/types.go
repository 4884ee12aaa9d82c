// Package types persists record categories. Categories are shared by every
// account on the device, so they carry no owner.
package types

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/dbx"
)

type Repository interface {
	Upsert(ctx context.Context, t *models.Type) error
	SoftDelete(ctx context.Context, id string, updatedAt int64) error
	GetByID(ctx context.Context, id string) (*models.Type, error)
	GetAll(ctx context.Context) ([]*models.Type, error)
	GetAllForSync(ctx context.Context) ([]*models.Type, error)
	Seed(ctx context.Context, now int64) error
	ResolveType(ctx context.Context, id string) (*models.Type, error)
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT id, name, is_deleted, created_at, updated_at FROM types`

func (r *SQLiteRepository) Upsert(ctx context.Context, t *models.Type) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO types (id, name, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_deleted = excluded.is_deleted,
			updated_at = excluded.updated_at
	`, t.ID, t.Name, t.IsDeleted, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert type %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, updatedAt int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE types SET is_deleted = 1, updated_at = ? WHERE id = ?`, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to delete type %s: %w", id, err)
	}
	return dbx.ExactlyOne(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Type, error) {
	t := &models.Type{}
	err := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get type %s: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Type, error) {
	return r.query(ctx, selectColumns+` WHERE is_deleted = 0 ORDER BY name`)
}

func (r *SQLiteRepository) GetAllForSync(ctx context.Context) ([]*models.Type, error) {
	return r.query(ctx, selectColumns+` ORDER BY id`)
}

// Seed inserts the Lent and Borrowed categories unless they already exist.
// Existing rows, including ones pulled from the remote store, are left alone.
func (r *SQLiteRepository) Seed(ctx context.Context, now int64) error {
	defaults := []models.Type{
		{ID: models.TypeLentID, Name: "Lent"},
		{ID: models.TypeBorrowedID, Name: "Borrowed"},
	}
	for _, t := range defaults {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO types (id, name, is_deleted, created_at, updated_at)
			VALUES (?, ?, 0, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, t.ID, t.Name, now, now)
		if err != nil {
			return fmt.Errorf("failed to seed type %s: %w", t.ID, err)
		}
	}
	return nil
}

// ResolveType returns the category for id, or the Unknown category when
// the reference dangles.
func (r *SQLiteRepository) ResolveType(ctx context.Context, id string) (*models.Type, error) {
	t, err := r.GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return models.UnknownType(), nil
	}
	return t, err
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Type, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select types: %w", err)
	}
	defer rows.Close()

	var result []*models.Type
	for rows.Next() {
		t := &models.Type{}
		if err := rows.Scan(&t.ID, &t.Name, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
