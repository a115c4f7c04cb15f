package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	web "clubhouse/internal/adapters/http"
	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/adapters/storage/directory"
	eventStore "clubhouse/internal/adapters/storage/event"
	trainingStore "clubhouse/internal/adapters/storage/training"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/config"
	"clubhouse/internal/logging"
	"clubhouse/internal/metrics"
	"clubhouse/internal/observability"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		logger.Warn("sentry disabled", logging.Event("sentry_init_failed"), zap.Error(err))
	}
	defer flush()

	if err := run(cfg, logger); err != nil {
		observability.CaptureErr(err, map[string]string{"phase": "run"})
		logger.Error("server stopped", logging.Event("server_failed"), zap.Error(err))
		flush()
		lg.Closer()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, dsn := storage.SQLite, storage.SQLiteDSN(cfg.SQLitePath)
	if cfg.Store == config.StorePostgres {
		dialect, dsn = storage.Postgres, cfg.DatabaseURL
	}
	db, err := storage.Open(ctx, dialect, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.MigrateDB(ctx, db, dialect); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	timed := storage.NewTimedDB(db, logger, collector, cfg.SlowQuery)
	retry := storage.RetryPolicy{
		Attempts: cfg.EnrollRetry,
		Backoff:  storage.DefaultRetryPolicy.Backoff,
		OnRetry: func(attempt int, err error) {
			collector.RecordStoreRetry()
			logger.Debug("retrying transaction", logging.Event("store_retry"), zap.Int("attempt", attempt), zap.Error(err))
		},
	}
	dir := directory.NewSQLStore(timed, dialect)
	sessions := trainingStore.NewSQLStore(timed, dialect, retry)
	events := eventStore.NewSQLStore(timed, dialect, retry)

	if cfg.SeedCSVPath != "" {
		if err := seedDirectory(ctx, cfg.SeedCSVPath, dir, logger); err != nil {
			return err
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, int(cfg.RateLimit*2)+1, logger)
	defer limiter.Stop()

	handler := web.NewRouter(web.Deps{
		Directory:     dir,
		Sessions:      sessions,
		Events:        events,
		Logger:        logger,
		Metrics:       collector,
		Gatherer:      reg,
		ReportError:   observability.CaptureErr,
		Ping:          timed.PingContext,
		Location:      cfg.Location,
		Now:           time.Now,
		GenerateID:    uuid.NewString,
		CSRFKey:       cfg.CSRFKey,
		SecureCookies: cfg.IsProduction(),
		RateLimiter:   limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	schema, _ := storage.SchemaVersion(ctx, db, dialect)
	logger.Info("server starting",
		logging.Event("server_start"),
		zap.String("version", version),
		zap.String("addr", cfg.Addr),
		zap.String("env", cfg.Env),
		zap.String("store", cfg.Store),
		zap.String("tz", cfg.LocationName),
		zap.Int64("schema", schema),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", logging.Event("server_shutdown"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func seedDirectory(ctx context.Context, path string, dir *directory.SQLStore, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := orchestrators.ExecuteImportDirectory(ctx, orchestrators.ImportDirectoryInput{Reader: f}, orchestrators.ImportDirectoryDeps{
		Directory: dir,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	logger.Info("directory seeded",
		logging.Event("directory_seeded"),
		zap.String("path", path),
		zap.Int("rows", res.Total),
		zap.Int("people", res.People),
		zap.Int("teams", res.Teams),
		zap.Int("errors", len(res.Errors)),
		zap.Strings("warnings", res.Warnings),
	)
	return nil
}
