package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"pos_terminal/internal/apiclient"
	"pos_terminal/internal/config"
	"pos_terminal/internal/handler"
	"pos_terminal/internal/store"
	"pos_terminal/internal/workspace"
)

type application struct {
	config       *config.Config
	logger       *log.Logger
	registry     *workspace.Registry
	server       *http.Server
	closers      []io.Closer
	shutdownChan chan struct{}
	sweeperDone  chan struct{}
}

func main() {
	logger := log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lshortfile)

	if err := run(logger); err != nil {
		logger.Fatalf("Startup failed: %v", err)
	}
}

// run owns every resource it opens, so the deferred close runs on startup
// failures as well as on shutdown.
func run(logger *log.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	shutdownTracing, err := setupTracing(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Printf("Error flushing traces: %v", err)
		}
	}()

	app := &application{
		config:       cfg,
		logger:       logger,
		shutdownChan: make(chan struct{}),
		sweeperDone:  make(chan struct{}),
	}
	defer app.close()

	kv, err := app.openSessionStore()
	if err != nil {
		return fmt.Errorf("failed to open %s session store: %w", cfg.SessionBackend, err)
	}

	var journal workspace.Journal
	if cfg.JournalEnabled {
		db, err := store.ConnectDB(cfg.DBDriver, cfg.DBDataSourceName)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		dbStore := store.NewDBStore(db)
		app.closers = append(app.closers, dbStore)

		if err := store.RunMigrations(db, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		journal = dbStore
		logger.Println("Transaction journal enabled.")
	}

	remote := apiclient.New(cfg.APIBaseURL, apiclient.NewHTTPClient(cfg.APITimeout), logger)
	app.registry = workspace.NewRegistry(workspace.Options{
		KV:        kv,
		KeyPrefix: cfg.SessionKeyPrefix,
		API:       remote,
		Journal:   journal,
		IdleTTL:   cfg.WorkspaceIdleTTL,
		Logger:    logger,
	})

	go app.runWorkspaceSweeper()

	router := handler.NewRouter(app.registry, logger)

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(router, cfg.ServiceName),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.APITimeout + 10*time.Second,
		ErrorLog:     logger,
	}

	return app.serve()
}

func (app *application) openSessionStore() (store.KV, error) {
	switch app.config.SessionBackend {
	case config.SessionBackendRedis:
		client, err := store.NewRedisClient(app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB)
		if err != nil {
			return nil, err
		}
		redisStore := store.NewRedisStore(client)
		app.closers = append(app.closers, redisStore)
		app.logger.Printf("Sessions persisted in Redis at %s", app.config.RedisAddr)
		return redisStore, nil
	case config.SessionBackendBadger:
		db, err := store.OpenBadger(app.config.BadgerDir)
		if err != nil {
			return nil, err
		}
		badgerStore := store.NewBadgerStore(db)
		app.closers = append(app.closers, badgerStore)
		app.logger.Printf("Sessions persisted in Badger at %s", app.config.BadgerDir)
		return badgerStore, nil
	default:
		app.logger.Println("Warning: sessions are kept in memory and will not survive a restart")
		return store.NewMemoryStore(), nil
	}
}

func (app *application) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Printf("Error closing resource: %v", err)
		}
	}
}

func (app *application) serve() error {
	app.logger.Printf("Starting server on %s", app.server.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case err := <-errChan:
		serveErr = fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		app.logger.Printf("Received signal %s. Shutting down server...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app.logger.Println("Signaling workspace sweeper to stop...")
	close(app.shutdownChan)
	select {
	case <-app.sweeperDone:
		app.logger.Println("Workspace sweeper stopped.")
	case <-time.After(10 * time.Second):
		app.logger.Println("Workspace sweeper did not stop in time.")
	}

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Printf("Graceful server shutdown failed: %v", err)
	} else {
		app.logger.Println("Server gracefully stopped.")
	}

	app.logger.Println("Application shut down complete.")
	return serveErr
}

func (app *application) runWorkspaceSweeper() {
	defer close(app.sweeperDone)

	ticker := time.NewTicker(app.config.SweepInterval)
	defer ticker.Stop()

	app.logger.Printf("Workspace sweeper started. Will run every %s, evicting after %s idle.",
		app.config.SweepInterval, app.config.WorkspaceIdleTTL)

	for {
		select {
		case now := <-ticker.C:
			if evicted := app.registry.Sweep(now); evicted > 0 {
				app.logger.Printf("Sweeper: evicted %d idle workspaces, %d remain.", evicted, app.registry.Len())
			}
		case <-app.shutdownChan:
			app.logger.Println("Sweeper: Received shutdown signal. Stopping...")
			return
		}
	}
}
