package main

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

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyeonso/EnhanceBot_Go/internal/config"
	"github.com/hyeonso/EnhanceBot_Go/internal/database"
	"github.com/hyeonso/EnhanceBot_Go/internal/database/postgres"
	"github.com/hyeonso/EnhanceBot_Go/internal/database/schema"
	"github.com/hyeonso/EnhanceBot_Go/internal/estimator"
	"github.com/hyeonso/EnhanceBot_Go/internal/extractor"
	"github.com/hyeonso/EnhanceBot_Go/internal/itembook"
	"github.com/hyeonso/EnhanceBot_Go/internal/logger"
	"github.com/hyeonso/EnhanceBot_Go/internal/pipeline"
	"github.com/hyeonso/EnhanceBot_Go/internal/repository"
	"github.com/hyeonso/EnhanceBot_Go/internal/resolver"
	"github.com/hyeonso/EnhanceBot_Go/internal/server"
	"github.com/hyeonso/EnhanceBot_Go/internal/transcript"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Default().Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment, false))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	book, err := itembook.NewFileBook(cfg.BookDir)
	if err != nil {
		slog.Default().Warn("Item book unavailable, serving level statistics only",
			"dir", cfg.BookDir, "error", err)
		book = itembook.NewStatic(nil, nil)
	}

	tables, err := buildTables(ctx, cfg, book)
	if err != nil {
		return err
	}

	pool, snapshots, err := connectSnapshotStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	var srv *server.Server
	if pool != nil {
		srv = server.NewServer(cfg.Port, tables, book, pool, snapshots)
	} else {
		srv = server.NewServer(cfg.Port, tables, book, nil, nil)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Default().Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// buildTables aggregates the configured transcript at startup. Without one the
// server starts empty and every strategy falls back to the degenerate ladder.
func buildTables(ctx context.Context, cfg *config.Config, book *itembook.Book) (*estimator.Tables, error) {
	if cfg.TranscriptPath == "" {
		slog.Default().Info("No transcript configured, starting with empty tables")
		return estimator.NewTables(book.SpecialIDs()), nil
	}

	msgs, err := transcript.ReadFile(cfg.TranscriptPath)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	runCtx := logger.WithRunID(ctx, logger.GenerateRunID())
	opts := pipeline.DefaultRunOptions()
	opts.ResolverPolicy = resolver.BatchPolicy()
	opts.Gate = estimator.Gate{
		MinN:              cfg.MinSamples,
		MaxBreakHalfwidth: cfg.MaxBreakHalfwidth,
	}
	opts.MaxLevel = cfg.MaxLevel

	ext := extractor.New(cfg.UserName, cfg.BotName, cfg.MacroName, 0)
	result, err := pipeline.NewService(ext, book).Run(runCtx, msgs, opts)
	if err != nil {
		return nil, fmt.Errorf("building tables from transcript: %w", err)
	}

	slog.Default().Info("Tables built from transcript",
		"path", cfg.TranscriptPath,
		"messages", len(msgs),
		"events", len(result.Events),
		"resolved", result.ResolveSummary.Resolved,
		"unresolved", result.ResolveSummary.Unresolved,
	)
	return result.Tables, nil
}

func connectSnapshotStore(ctx context.Context, databaseURL string) (*pgxpool.Pool, repository.Snapshot, error) {
	if databaseURL == "" {
		slog.Default().Info("DATABASE_URL not set, snapshot store disabled")
		return nil, nil, nil
	}

	pool, err := database.NewPool(databaseURL, 10, 30*time.Minute, time.Hour)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema.SchemaSQL); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("applying schema: %w", err)
	}

	return pool, postgres.NewSnapshotRepository(pool), nil
}
