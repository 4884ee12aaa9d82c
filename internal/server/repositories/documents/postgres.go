package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/dbx"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db     dbx.DBTX
	logger logging.Logger
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logging.NewNopLogger()}
}

// WithLogger sets where skipped documents are reported.
func (r *PostgresRepository) WithLogger(l logging.Logger) *PostgresRepository {
	r.logger = l
	return r
}

// Lock takes a transaction-scoped advisory lock on the path. Row locks are
// not enough here because the first write of a path has no row yet.
func (r *PostgresRepository) Lock(ctx context.Context, p docstore.Path) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, p.String()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, p docstore.Path) (docstore.Document, error) {
	query := `
		SELECT body FROM documents
		WHERE owner_id = $1 AND collection = $2 AND id = $3`

	var body []byte
	if err := r.db.QueryRowContext(ctx, query, p.Owner, p.Collection, p.ID).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return decode(body)
}

func (r *PostgresRepository) Save(ctx context.Context, p docstore.Path, doc docstore.Document) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (owner_id, collection, id, body, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)
		ON CONFLICT (owner_id, collection, id)
		DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

	res, err := r.db.ExecContext(ctx, query, p.Owner, p.Collection, p.ID, string(body), doc.UpdatedAt())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExactlyOne(res)
}

func (r *PostgresRepository) Scan(ctx context.Context, owner, collection string) ([]docstore.Document, error) {
	query := `
		SELECT id, body FROM documents
		WHERE owner_id = $1 AND collection = $2
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, owner, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []docstore.Document
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		doc, err := decode(body)
		if err != nil {
			r.logger.Warn(ctx, "skipping unreadable document", "owner", owner, "collection", collection, "id", id, "error", err)
			continue
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
