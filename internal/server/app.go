// Package server initializes and runs the users service: storage, token
// issuing, the identity workflow, the gRPC endpoint and the metrics endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/auth"
	"github.com/dmitrijs2005/usersvc/internal/server/config"
	"github.com/dmitrijs2005/usersvc/internal/server/metrics"
	"github.com/dmitrijs2005/usersvc/internal/server/password"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
	"github.com/dmitrijs2005/usersvc/internal/server/services"
	"github.com/dmitrijs2005/usersvc/internal/timex"

	gs "github.com/dmitrijs2005/usersvc/internal/server/grpc"
)

// seams for tests
var (
	openDB               = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	identity *services.IdentityService
	verifier *auth.Verifier
	metrics  *metrics.Metrics
}

// NewApp builds every component from c. It fails when the signing secret is
// missing or the store cannot be opened and migrated.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel)
	clock := timex.SystemClock{}

	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		SecretKey: c.SecretKey,
		Issuer:    c.Issuer,
		Expiry:    c.AccessTokenValidityDuration,
	}, clock, nil)
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	verifier, err := auth.NewVerifier(c.SecretKey, c.Issuer, clock)
	if err != nil {
		return nil, fmt.Errorf("token verifier init error: %w", err)
	}

	repo, db, err := openStore(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	identity := services.NewIdentityService(repo, password.NewHasher(), password.NewPolicy(), issuer, clock, logger)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		identity: identity,
		verifier: verifier,
		metrics:  metrics.New(),
	}, nil
}

func openStore(ctx context.Context, c *config.Config, logger logging.Logger) (users.Repository, *sql.DB, error) {
	switch c.StorageKind {
	case config.StorageMemory:
		logger.Warn(ctx, "Using in-memory storage, users are lost on restart")
		return users.NewMemoryRepository(), nil, nil

	case config.StoragePostgres:
		db, err := openDB(c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		rm := newRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return rm.Users(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage kind %q", c.StorageKind)
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.identity, app.verifier, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	if err := app.metrics.Serve(ctx, app.config.MetricsAddr, app.logger); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}

	app.logger.Info(ctx, "App stopped")
}
