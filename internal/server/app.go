// Package server wires configuration, storage, services and the HTTP
// transport together and runs them until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/cryptoestate/internal/logging"
	"github.com/dmitrijs2005/cryptoestate/internal/server/config"
	"github.com/dmitrijs2005/cryptoestate/internal/server/httpapi"
	"github.com/dmitrijs2005/cryptoestate/internal/server/ratelimit"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cryptoestate/internal/server/services"
	"github.com/dmitrijs2005/cryptoestate/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	http    *httpapi.HTTPServer
	closers []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	files, err := storage.New(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	limiter, closeLimiter := ratelimit.NewFromConfig(c.RedisAddr, c.LoginAttemptLimit, c.LoginAttemptWindow)

	opts := httpapi.Options{
		Address:        c.HTTPAddr,
		AllowedOrigins: c.CORSAllowedOrigins,
		UploadBaseURL:  c.UploadBaseURL,
	}
	if local, ok := files.(*storage.LocalStorage); ok {
		opts.UploadDir = local.Root
	}

	srv := httpapi.NewHTTPServer(logger, httpapi.Services{
		Users:        services.NewUserService(db, rm, c, limiter),
		Listings:     services.NewListingService(db, rm, files),
		Transactions: services.NewTransactionService(db, rm),
		Profiles:     services.NewProfileService(db, rm),
	}, opts)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		http:    srv,
		closers: []func() error{closeLimiter, db.Close},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend, "throttling", app.config.RedisAddr != "")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	for _, closeFn := range app.closers {
		if err := closeFn(); err != nil {
			app.logger.Warn(context.Background(), "close error", "error", err)
		}
	}
	app.logger.Info(context.Background(), "Stopped")

	if err := logging.Sync(app.logger); err != nil {
		fmt.Fprintln(os.Stderr, "log sync error:", err)
	}
}
