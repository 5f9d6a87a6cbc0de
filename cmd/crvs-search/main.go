// Command crvs-search serves the event search, correction and document API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/opencrvs/crvs-search/internal/config"
	"github.com/opencrvs/crvs-search/internal/db"
	dbRedis "github.com/opencrvs/crvs-search/internal/db/redis"
	logpkg "github.com/opencrvs/crvs-search/internal/logger"
	"github.com/opencrvs/crvs-search/internal/metrics"
	documentrepo "github.com/opencrvs/crvs-search/internal/repository/document"
	"github.com/opencrvs/crvs-search/internal/repository/eventconfig"
	chiTransport "github.com/opencrvs/crvs-search/internal/transport/chi"
	correctionuc "github.com/opencrvs/crvs-search/internal/usecase/correction"
	documentuc "github.com/opencrvs/crvs-search/internal/usecase/document"
	healthuc "github.com/opencrvs/crvs-search/internal/usecase/health"
	searchuc "github.com/opencrvs/crvs-search/internal/usecase/search"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
	"github.com/opencrvs/crvs-search/internal/version"
)

func main() {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "crvs-search: load config:", err)
		os.Exit(1)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "crvs-search: create logger:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, env, cfg, logger)
	stop()
	if err != nil {
		logger.Error("crvs-search stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run wires the services and serves HTTP until ctx is cancelled.
func run(ctx context.Context, env string, cfg config.Config, logger *zap.Logger) error {
	logger.Info("Starting crvs-search",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("events_dir", cfg.Events.ConfigDir),
	)

	events, err := eventconfig.Load(cfg.Events.ConfigDir)
	if err != nil {
		return fmt.Errorf("load event configurations: %w", err)
	}
	logger.Info("Loaded event configurations", zap.Int("count", events.Count()))

	loc, err := cfg.Search.Location()
	if err != nil {
		return err
	}
	metrics.RegisterSearchMetrics()

	resolver := searchfield.New(searchfield.DefaultTable())
	searchSvc := searchuc.New(events, resolver, searchuc.NewBuilder(resolver, searchuc.WithLocation(loc))).
		WithMinFilledParams(cfg.Search.MinFilledParams)
	correctionSvc := correctionuc.New(events, correctionuc.NewEngine(nil))

	// Services get nil interfaces, never typed nil pointers, when storage is off.
	var (
		docSvc   *documentuc.Service
		dbPinger healthuc.DBPinger
	)
	if cfg.Database.Enabled() {
		store, err := openStore(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()
		logger.Info("Connected to document store", zap.Strings("addrs", cfg.Database.Addrs))

		docRepo := documentrepo.New(store, cfg.Events.KeyPrefix)
		docSvc = documentuc.New(docRepo, events)
		correctionSvc = correctionSvc.WithDocuments(docRepo)
		dbPinger = store
	} else {
		logger.Warn("Document storage disabled; document endpoints answer 501")
	}

	server := chiTransport.NewServer(searchSvc, correctionSvc, docSvc, healthuc.New(dbPinger, events), logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      newRouter(server, logger, cfg.Auth.Keys()),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// openStore connects the configured driver and waits until it answers.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			DB:        cfg.DB,
			ScanCount: cfg.ScanCount,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}
	timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("document store not ready: %w", err)
	}
	return store, nil
}
