package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bryanwahyu/feedback-lens/internal/application"
	appanalysis "github.com/bryanwahyu/feedback-lens/internal/application/analysis"
	appuploads "github.com/bryanwahyu/feedback-lens/internal/application/uploads"
	"github.com/bryanwahyu/feedback-lens/internal/config"
	domai "github.com/bryanwahyu/feedback-lens/internal/domain/ai"
	"github.com/bryanwahyu/feedback-lens/internal/domain/uploads"
	"github.com/bryanwahyu/feedback-lens/internal/infra/ai/gemini"
	"github.com/bryanwahyu/feedback-lens/internal/infra/ai/openai"
	"github.com/bryanwahyu/feedback-lens/internal/infra/ai/survey"
	"github.com/bryanwahyu/feedback-lens/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/feedback-lens/internal/infra/db/mysql"
	"github.com/bryanwahyu/feedback-lens/internal/infra/db/postgres"
	"github.com/bryanwahyu/feedback-lens/internal/infra/httpserver"
	"github.com/bryanwahyu/feedback-lens/internal/infra/storage"
	"github.com/bryanwahyu/feedback-lens/internal/infra/tabular"
	"github.com/bryanwahyu/feedback-lens/internal/logging"
	"github.com/bryanwahyu/feedback-lens/internal/metrics"
	"github.com/bryanwahyu/feedback-lens/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.JSON)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("metrics register error: %w", err)
	}

	health := map[string]middleware.HealthChecker{}

	// llm
	llm, closeLLM, err := newLLMClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer closeLLM.Close()
	gateway := survey.NewGateway(llm)

	// upload registry
	repo, db, err := newUploadRepository(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		health["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// upload bytes
	blobs, err := newBlobStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if c, ok := blobs.(middleware.HealthChecker); ok {
		health["storage"] = c
	}

	decoder := tabular.Decoder{}
	clock := application.SystemClock{}

	uploadsSvc := &appuploads.Service{
		Repo:     repo,
		Blobs:    blobs,
		Decoder:  decoder,
		Clock:    clock,
		MaxBytes: cfg.Server.MaxUploadBytes,
		Logger:   logger,
	}

	classifier := appanalysis.NewClassifier(gateway, appanalysis.ClassifierConfig{
		BatchSize:   cfg.Analysis.BatchSize,
		Concurrency: cfg.Analysis.Concurrency,
		Retry:       appanalysis.RetryPolicy{MaxAttempts: cfg.Analysis.MaxAttempts, Delay: cfg.Analysis.RetryDelay},
		CallTimeout: cfg.LLM.CallTimeout,
	}, logger)
	clusterer := appanalysis.NewClusterer(gateway, appanalysis.ClustererConfig{
		InputCap:    cfg.Analysis.ClusterInputCap,
		CallTimeout: cfg.LLM.CallTimeout,
	}, logger)
	analysisSvc := &appanalysis.Service{
		Files:      uploadsSvc,
		Decoder:    decoder,
		Classifier: classifier,
		Aggregator: appanalysis.NewAggregator(clusterer, appanalysis.AggregatorConfig{
			PositiveClusters: cfg.Analysis.PositiveClusters,
			NegativeClusters: cfg.Analysis.NegativeClusters,
		}, logger),
		Reporter: appanalysis.NewReporter(gateway, cfg.LLM.CallTimeout, logger),
		Clock:    clock,
		Logger:   logger,
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond)
		go limiter.Run(ctx, 5*time.Minute)
	}

	handler := httpserver.NewRouter(uploadsSvc, analysisSvc, httpserver.Options{
		Logger:         logger,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RateLimiter:    limiter,
		Health:         health,
		Gatherer:       reg,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model,
			"storage", cfg.Storage.Driver, "database", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLLMClient(ctx context.Context, cfg config.LLMConfig) (domai.Client, io.Closer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return openai.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens), nopCloser{}, nil
	case "gemini":
		cli, err := gemini.NewClient(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens)
		if err != nil {
			return nil, nil, err
		}
		return cli, cli, nil
	}
	return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

func newUploadRepository(ctx context.Context, cfg config.DatabaseConfig) (uploads.Repository, *sql.DB, error) {
	c := config.Config{Database: cfg}
	switch cfg.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, c.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect error: %w", err)
		}
		repo := mysqlp.NewUploadRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("mysql schema error: %w", err)
		}
		return repo, db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, c.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect error: %w", err)
		}
		repo := postgres.NewUploadRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres schema error: %w", err)
		}
		return repo, db, nil
	}
	return memory.NewUploadRepository(), nil, nil
}

func newBlobStore(ctx context.Context, cfg config.StorageConfig) (uploads.BlobStore, error) {
	if cfg.Driver == "minio" {
		m := cfg.Minio
		store, err := storage.New(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.Prefix, m.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("minio init error: %w", err)
		}
		return store, nil
	}
	store, err := storage.NewLocal(cfg.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	return store, nil
}
