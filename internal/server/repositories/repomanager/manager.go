package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/aichopaicho/internal/dbx"
	"github.com/dmitrijs2005/aichopaicho/internal/server/repositories/documents"
	"github.com/dmitrijs2005/aichopaicho/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/aichopaicho/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Documents(db dbx.DBTX) documents.Repository
}
