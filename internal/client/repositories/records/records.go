// Package records persists lend/borrow records in the local SQLite store.
package records

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
	Upsert(ctx context.Context, r *models.Record) error
	SoftDelete(ctx context.Context, id string, updatedAt int64) error
	GetByID(ctx context.Context, id string) (*models.Record, error)
	GetAll(ctx context.Context, ownerID string) ([]*models.Record, error)
	GetAllForSync(ctx context.Context, ownerID string) ([]*models.Record, error)
	ReassignOwner(ctx context.Context, oldOwnerID, newOwnerID string) (int64, error)
	PurgeByOwner(ctx context.Context, ownerID string) (int64, error)
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT id, owner_id, contact_id, type_id, amount, date, is_complete, description,
	is_deleted, created_at, updated_at FROM records`

func (r *SQLiteRepository) Upsert(ctx context.Context, rec *models.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (id, owner_id, contact_id, type_id, amount, date, is_complete, description,
			is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			contact_id = excluded.contact_id,
			type_id = excluded.type_id,
			amount = excluded.amount,
			date = excluded.date,
			is_complete = excluded.is_complete,
			description = excluded.description,
			is_deleted = excluded.is_deleted,
			updated_at = excluded.updated_at
	`, rec.ID, rec.OwnerID, rec.ContactID, rec.TypeID, rec.Amount.String(), rec.Date, rec.IsComplete,
		rec.Description, rec.IsDeleted, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, updatedAt int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE records SET is_deleted = 1, updated_at = ? WHERE id = ?`, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return dbx.ExactlyOne(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Record, error) {
	rec, err := scan(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return rec, nil
}

// GetAll lists live records, newest first.
func (r *SQLiteRepository) GetAll(ctx context.Context, ownerID string) ([]*models.Record, error) {
	return r.query(ctx, selectColumns+` WHERE owner_id = ? AND is_deleted = 0 ORDER BY date DESC, id`, ownerID)
}

func (r *SQLiteRepository) GetAllForSync(ctx context.Context, ownerID string) ([]*models.Record, error) {
	return r.query(ctx, selectColumns+` WHERE owner_id = ? ORDER BY id`, ownerID)
}

func (r *SQLiteRepository) ReassignOwner(ctx context.Context, oldOwnerID, newOwnerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE records SET owner_id = ? WHERE owner_id = ?`, newOwnerID, oldOwnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign records: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) PurgeByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge records: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Record, error) {
	rec := &models.Record{}
	err := s.Scan(&rec.ID, &rec.OwnerID, &rec.ContactID, &rec.TypeID, &rec.Amount, &rec.Date, &rec.IsComplete,
		&rec.Description, &rec.IsDeleted, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
