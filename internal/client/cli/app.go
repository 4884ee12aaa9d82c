package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/aichopaicho/internal/client/client"
	"github.com/dmitrijs2005/aichopaicho/internal/client/config"
	"github.com/dmitrijs2005/aichopaicho/internal/client/identity"
	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/services"
	"github.com/dmitrijs2005/aichopaicho/internal/client/storage"
	"github.com/dmitrijs2005/aichopaicho/internal/client/syncer"
	"github.com/dmitrijs2005/aichopaicho/internal/filex"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// syncTrigger is the part of syncer.Service the REPL calls directly.
type syncTrigger interface {
	SyncNow(ctx context.Context) syncer.Outcome
	PushAll(ctx context.Context, kind models.Kind) syncer.Outcome
	PullAndMergeAll(ctx context.Context) syncer.Outcome
}

type App struct {
	config *config.Config
	logger logging.Logger

	authService   services.AuthService
	ledgerService services.LedgerService
	sync          syncTrigger
	scheduler     *syncer.Scheduler

	reader  *bufio.Reader
	out     io.Writer
	closers []io.Closer
}

// NewApp opens the local database, prepares a first-run local user and
// wires the remote client, the sync engine and the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logPath, err := filex.EnsureParentDir(c.LogFile)
	if err != nil {
		return nil, err
	}
	dbPath, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	logger, logCloser := logging.NewFileLogger(logPath, slog.LevelInfo)

	db, err := storage.Open(ctx, dbPath)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	app, err := newApp(ctx, c, db, logger)
	if err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, err
	}
	app.closers = append(app.closers, db, logCloser)
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, logger logging.Logger) (*App, error) {
	if _, err := identity.Bootstrap(ctx, db); err != nil {
		return nil, fmt.Errorf("error preparing local user: %w", err)
	}

	provider := identity.NewTokenProvider(db)
	if err := provider.Load(ctx); err != nil {
		return nil, fmt.Errorf("error loading session: %w", err)
	}

	apiClient, err := client.NewLedgerClient(c.ServerEndpointAddr, provider)
	if err != nil {
		return nil, err
	}

	engine := syncer.NewEngine(db, apiClient, logger, c.RemoteTimeout)
	syncService := syncer.NewService(engine, db, provider, logger)

	return &App{
		config:        c,
		logger:        logger,
		authService:   services.NewAuthService(apiClient, db, provider, syncService, logger),
		ledgerService: services.NewLedgerService(db, syncService, logger),
		sync:          syncService,
		scheduler:     syncer.NewScheduler(syncService, apiClient, c.SyncInterval, logger),
		reader:        bufio.NewReader(os.Stdin),
		out:           os.Stdout,
	}, nil
}

// Run starts the background sync and blocks in the REPL until the user
// exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close(ctx)

	fmt.Fprintln(a.out, "Welcome to the ledger CLI (type 'help' for commands)")

	a.scheduler.Start(ctx)
	go a.printStatus(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
	a.scheduler.Stop()
}

// printStatus relays scheduler notifications to the terminal.
func (a *App) printStatus(ctx context.Context) {
	for {
		select {
		case msg := <-a.scheduler.Notify():
			fmt.Fprintln(a.out, "[sync]", msg)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.logger.Warn(ctx, "closing client", "error", err)
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// pauseSync keeps the scheduler out of the way while local data changes
// owner. The returned func resumes it.
func (a *App) pauseSync() func() {
	if a.scheduler == nil {
		return func() {}
	}
	return a.scheduler.Pause()
}

func (a *App) mode() Mode {
	if a.scheduler != nil && a.scheduler.Online() {
		return ModeOnline
	}
	return ModeOffline
}

func (a *App) session() services.Session {
	s, err := a.authService.Session(context.Background())
	if err != nil {
		a.logger.Warn(context.Background(), "reading session", "error", err)
	}
	return s
}

func (a *App) isLoggedIn() bool {
	return a.session().SignedIn
}

func (a *App) getStatus() string {
	s := a.session()
	name := "local"
	if s.SignedIn {
		name = s.Username
	}
	return fmt.Sprintf("(%s %s)", name, a.mode())
}
