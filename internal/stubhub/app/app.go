package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/hubcheck/hubcheck/internal/stubhub/http"
	"github.com/hubcheck/hubcheck/internal/stubhub/service"
	"github.com/hubcheck/hubcheck/internal/stubhub/store"
	"github.com/hubcheck/hubcheck/internal/stubhub/store/drivers/sqlite"
	"github.com/hubcheck/hubcheck/pkg/cryptox"
	"github.com/hubcheck/hubcheck/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the stub hub with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db            store.Store
	signingSecret []byte

	tokenService *service.TokenService
	entryService *service.EntryService
	seedService  *service.SeedService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "stubhub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initSigningSecret(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.seed(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("stub hub starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down stub hub...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("stub hub stopped")
	return nil
}

// initSigningSecret loads the access token secret from config or generates
// an ephemeral one. With an ephemeral secret all outstanding tokens become
// invalid when the service restarts.
func (app *Application) initSigningSecret() error {
	if app.cfg.SigningSecret != "" {
		app.signingSecret = []byte(app.cfg.SigningSecret)
		return nil
	}

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return fmt.Errorf("failed to generate signing secret: %w", err)
	}
	app.signingSecret = []byte(secret)

	app.logger.Warn("no signing secret configured, generated an ephemeral one")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:      app.db,
		Secret:     app.signingSecret,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	app.entryService = &service.EntryService{Store: app.db}
	app.seedService = &service.SeedService{Store: app.db}
}

// seed provisions the fixed user and client the end-to-end suite
// authenticates with. Idempotent across restarts.
func (app *Application) seed() error {
	ctx := slogx.WithContext(context.Background(), app.logger)

	err := app.seedService.Seed(ctx, service.SeedData{
		Username:     app.cfg.SeedUsername,
		Password:     app.cfg.SeedPassword,
		ClientID:     app.cfg.SeedClientID,
		ClientSecret: app.cfg.SeedClientSecret,
		ClientScopes: app.cfg.SeedClientScopes,
	})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	// One-shot housekeeping; tokens left behind by a previous run are dead.
	if err := app.db.RefreshTokens().DeleteExpiredRefreshTokens(ctx); err != nil {
		app.logger.Warn("failed to purge expired refresh tokens", "error", err)
	}

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signingSecret,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.EntryService = app.entryService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
