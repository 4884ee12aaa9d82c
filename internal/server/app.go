// Package server wires the ledger server together: Postgres for accounts,
// a configurable document backend, and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
	"github.com/dmitrijs2005/aichopaicho/internal/server/config"
	"github.com/dmitrijs2005/aichopaicho/internal/server/repositories/documents"
	"github.com/dmitrijs2005/aichopaicho/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/aichopaicho/internal/server/services"

	gs "github.com/dmitrijs2005/aichopaicho/internal/server/grpc"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	userService     *services.UserService
	documentService *services.DocumentService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(slog.LevelInfo)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager(logger)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := newDocumentStore(ctx, c, db, rm, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info(ctx, "document backend selected", "backend", c.DocumentBackend)

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		userService:     services.NewUserService(db, rm, c),
		documentService: services.NewDocumentService(store, logger),
	}, nil
}

func newDocumentStore(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (docstore.Store, error) {
	switch c.DocumentBackend {
	case config.BackendPostgres, "":
		return documents.NewPostgresStore(db, rm.Documents), nil
	case config.BackendS3:
		client, err := documents.NewS3Client(ctx, documents.S3Settings{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return documents.NewS3Store(client, c.S3Bucket).WithLogger(logger), nil
	case config.BackendMemory:
		return docstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown document backend %q", c.DocumentBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or the server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.documentService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server stopped", "error", err)
		return err
	}
	return nil
}
