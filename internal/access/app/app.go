package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/careshare/internal/access/http"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/redis"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite"
	"github.com/aussiebroadwan/careshare/pkg/cryptox"
	"github.com/aussiebroadwan/careshare/pkg/jwtx"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
	"go.opentelemetry.io/otel"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	meterName = "careshare-access"
)

// Application encapsulates the access service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db            store.Store
	redisCounters *redis.AttemptCounters // nil unless the guard runs on redis
	grants        *jwtx.KeyManager
	ownerVerifier jwtx.Verifier
	ownerKeys     *jwtx.RemoteKeySet // nil without an owner JWKS URL
	policy        service.LockoutPolicy
	metrics       *service.Metrics

	// Services
	eventLog            *service.EventLog
	guard               *service.Guard
	otpService          *service.OTPService
	accessCodeService   *service.AccessCodeService
	loginService        *service.LoginService
	directoryService    *service.DirectoryService
	housekeepingService *service.HousekeepingService

	// Background work bound to the application lifetime
	ctx    context.Context
	cancel context.CancelFunc

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "access-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.InternalToken == "" {
		return nil, errors.New("ACCESS_INTERNAL_TOKEN is required")
	}

	// Pepper for OTP and access code hashing
	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	policy, err := LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load lockout policy: %w", err)
	}
	app.policy = policy

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.ctx, app.cancel = context.WithCancel(context.Background())
	if err := app.initDependencies(); err != nil {
		app.cancel()
		_ = app.closeStores()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// initDependencies connects everything that needs the database in place.
func (app *Application) initDependencies() error {
	if err := app.initGuardBackend(app.ctx); err != nil {
		return err
	}

	grants, err := InitGrantKeys(app.cfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize grant keys: %w", err)
	}
	app.grants = grants
	app.ownerVerifier, app.ownerKeys = InitOwnerVerifier(app.ctx, app.cfg, app.logger)

	metrics, err := service.NewMetrics(otel.GetMeterProvider().Meter(meterName))
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	app.metrics = metrics
	return nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	if app.ownerKeys != nil {
		go app.ownerKeys.Run(app.ctx)
	}

	app.logger.Info("access service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"guard_backend", app.cfg.GuardBackend,
	)

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
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	app.logger.Info("shutting down access service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	app.cancel()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("access service stopped")
	return nil
}

// Handler exposes the configured router, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

func (app *Application) closeStores() error {
	var errs []error
	if app.redisCounters != nil {
		if err := app.redisCounters.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := app.cfg.DatabaseFile
	if dsn != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	}
	db, err := sqlite.NewStore(dsn)
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

// initGuardBackend connects the shared attempt counters when several
// replicas must agree on lockouts.
func (app *Application) initGuardBackend(ctx context.Context) error {
	switch app.cfg.GuardBackend {
	case "", "sqlite":
		return nil
	case "redis":
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		counters, err := redis.NewAttemptCounters(connectCtx, app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect guard backend: %w", err)
		}
		app.redisCounters = counters
		app.logger.Info("guard backend connected", "backend", "redis", "addr", app.cfg.RedisAddr)
		return nil
	default:
		return fmt.Errorf("unknown guard backend %q", app.cfg.GuardBackend)
	}
}

func (app *Application) attemptCounters() store.AttemptCounters {
	if app.redisCounters != nil {
		return app.redisCounters
	}
	return app.db.AttemptCounters()
}

func (app *Application) sender() service.Sender {
	if app.cfg.DeliveryWebhookURL == "" {
		app.logger.Warn("no delivery webhook configured - OTP messages are only logged")
		return service.LogSender{}
	}
	return &service.WebhookSender{
		URL:    app.cfg.DeliveryWebhookURL,
		Client: &http.Client{Timeout: app.cfg.DeliveryTimeout},
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.eventLog = &service.EventLog{Store: app.db}

	app.guard = &service.Guard{
		Counters: app.attemptCounters(),
		Policy:   app.policy,
		Events:   app.eventLog,
		Metrics:  app.metrics,
	}

	app.otpService = &service.OTPService{
		Store:           app.db,
		Guard:           app.guard,
		Sender:          app.sender(),
		Events:          app.eventLog,
		Metrics:         app.metrics,
		TTL:             app.cfg.OTPTTL,
		DeliveryTimeout: app.cfg.DeliveryTimeout,
	}

	app.accessCodeService = &service.AccessCodeService{
		Store:    app.db,
		Guard:    app.guard,
		Events:   app.eventLog,
		Metrics:  app.metrics,
		Grants:   app.grants,
		Issuer:   app.cfg.Issuer,
		GrantTTL: app.cfg.GrantTTL,
	}

	app.loginService = &service.LoginService{
		Guard: app.guard,
		Anomaly: &service.AnomalyDetector{
			Store:   app.db,
			Events:  app.eventLog,
			Metrics: app.metrics,
		},
	}

	app.directoryService = &service.DirectoryService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.attemptCounters(),
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	// A typed nil would make the readiness probe call Ping on nil.
	var guardBackend httpapi.Pinger
	if app.redisCounters != nil {
		guardBackend = app.redisCounters
	}

	router := httpapi.NewRouter(
		app.grants,
		app.ownerVerifier,
		app.cfg.InternalToken,
		BuildVersion,
		app.db,
		guardBackend,
		app.logger,
	)

	// Wire services to router
	router.OTPService = app.otpService
	router.AccessCodeService = app.accessCodeService
	router.Guard = app.guard
	router.LoginService = app.loginService
	router.DirectoryService = app.directoryService
	router.EventLog = app.eventLog
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
