// Command worker runs the asynchronous job processing service: it serves
// the cron-triggered worker entrypoint and the job enqueue seam over HTTP,
// applying database migrations on startup.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/devschro/next-precedent/internal/api"
	"github.com/devschro/next-precedent/internal/api/middleware"
	"github.com/devschro/next-precedent/internal/config"
	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/evaluation"
	"github.com/devschro/next-precedent/internal/platform/gcs"
	"github.com/devschro/next-precedent/internal/platform/gemini"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/platform/postgres"
	"github.com/devschro/next-precedent/internal/retrieval"
	"github.com/devschro/next-precedent/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker terminated", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	geminiClient, err := gemini.NewClient(ctx, log, cfg.LLM)
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}

	blobReader, err := gcs.NewReader(ctx, log, cfg.Storage)
	if err != nil {
		return fmt.Errorf("create blob reader: %w", err)
	}
	defer func() { _ = blobReader.Close() }()

	jobStore := postgres.NewPostgresJobStore(db, log)
	documentStore := postgres.NewPostgresDocumentStore(db, log)
	caseStore := postgres.NewPostgresCaseStore(db, log)
	chunkStore := postgres.NewPostgresChunkStore(db, log)
	evaluationStore := postgres.NewPostgresEvaluationStore(db, log)
	chunkWriter := postgres.NewChunkBatchWriter(db, chunkStore)

	callTimeout := time.Duration(cfg.Worker.CallTimeoutSeconds) * time.Second

	retrievalEngine := retrieval.NewEngine(geminiClient, chunkStore, cfg.Worker.RetrievalTopK, log)
	evaluationService := evaluation.NewService(
		caseStore, retrievalEngine, geminiClient, evaluationStore,
		evaluation.ServiceConfig{
			TopK:        cfg.Worker.RetrievalTopK,
			CallTimeout: callTimeout,
		}, log)

	dispatcher := worker.NewDispatcher(log)
	dispatcher.Register(
		domain.JobKindChunkEmbed,
		worker.NewChunkEmbedHandler(documentStore, chunkWriter, blobReader, geminiClient,
			worker.ChunkEmbedConfig{
				MaxChars:    cfg.Worker.ChunkMaxChars,
				Overlap:     cfg.Worker.ChunkOverlap,
				CallTimeout: callTimeout,
			}, log),
	)
	dispatcher.Register(domain.JobKindEvaluate, worker.NewEvaluateHandler(evaluationService, log))

	processor := worker.NewProcessor(jobStore, dispatcher, worker.ProcessorConfig{
		BatchSize:   cfg.Worker.BatchSize,
		MaxAttempts: cfg.Worker.MaxAttempts,
		RetryDelay:  time.Duration(cfg.Worker.RetryDelaySeconds) * time.Second,
		JobTimeout:  time.Duration(cfg.Worker.JobTimeoutSeconds) * time.Second,
	}, log)

	router := api.NewRouter(api.RouterDeps{
		ProcessHandler:    api.NewProcessHandler(processor, log),
		JobHandler:        api.NewJobHandler(jobStore, log),
		EvaluationHandler: api.NewEvaluationHandler(evaluationStore, log),
		Logger:            log,
		Secret:            middleware.NewSecretMiddleware(cfg.Worker.CronSecret).Require,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("worker listening", slog.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

// runMigrations applies any pending goose migrations from the configured
// directory, logging through slog instead of goose's standard logger.
func runMigrations(db *sql.DB, dir string) error {
	goose.SetLogger(&slogGooseLogger{})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct{}

// Printf implements goose.Logger by forwarding messages to slog.Info.
func (l *slogGooseLogger) Printf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "migrations"))
}

// Fatalf implements goose.Logger by forwarding to slog.Error. Goose calls
// this on unrecoverable errors; the surrounding run loop handles the exit.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...), slog.String("component", "migrations"))
}
