// Package server wires the userdir server together: logging, the PostgreSQL
// pool and migrations, the authentication core, the user service, and the
// HTTP and gRPC transports, which run until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/userdir/internal/buildinfo"
	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/server/auth"
	"github.com/dmitrijs2005/userdir/internal/server/config"
	"github.com/dmitrijs2005/userdir/internal/server/metrics"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userdir/internal/server/services"

	gs "github.com/dmitrijs2005/userdir/internal/server/grpc"
	hs "github.com/dmitrijs2005/userdir/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gate        *auth.Gate
	metrics     *metrics.Metrics
	userService *services.UserService
}

func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(c.DatabaseMaxConns)
	db.SetMaxIdleConns(c.DatabaseMaxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	rm := repomanager.NewPostgresRepositoryManager()

	hasher := auth.NewHasher(c.BcryptCost, c.HashWorkers)
	codec := auth.NewTokenCodec(c.SecretKey, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)

	us := services.NewUserService(db, rm, hasher, codec, logger.With("module", "user_service"))

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		gate:        auth.NewGate(codec),
		metrics:     metrics.New(),
		userService: us,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.gate, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := hs.NewRouter(hs.RouterConfig{
		Users:          app.userService,
		Gate:           app.gate,
		DB:             app.db,
		Metrics:        app.metrics,
		Logger:         app.logger,
		AllowedOrigins: app.config.CORSAllowedOrigins,
		Version:        buildinfo.Version(),
	})
	s := hs.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, router)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run applies migrations if configured, then serves both transports until
// ctx is cancelled, a shutdown signal arrives or either server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if app.config.RunMigrations {
		if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		app.logger.Info(ctx, "Migrations applied")
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
	return nil
}
