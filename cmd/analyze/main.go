package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hyeonso/EnhanceBot_Go/internal/config"
	"github.com/hyeonso/EnhanceBot_Go/internal/database"
	"github.com/hyeonso/EnhanceBot_Go/internal/database/postgres"
	"github.com/hyeonso/EnhanceBot_Go/internal/database/schema"
	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/estimator"
	"github.com/hyeonso/EnhanceBot_Go/internal/extractor"
	"github.com/hyeonso/EnhanceBot_Go/internal/itembook"
	"github.com/hyeonso/EnhanceBot_Go/internal/logger"
	"github.com/hyeonso/EnhanceBot_Go/internal/pipeline"
	"github.com/hyeonso/EnhanceBot_Go/internal/repository"
	"github.com/hyeonso/EnhanceBot_Go/internal/resolver"
	"github.com/hyeonso/EnhanceBot_Go/internal/strategy"
	"github.com/hyeonso/EnhanceBot_Go/internal/transcript"
)

func main() {
	if err := run(); err != nil {
		slog.Default().Error("Analysis failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	transcriptPath := flag.String("transcript", "", "chat transcript file (JSON lines), overrides TRANSCRIPT_PATH")
	mode := flag.String("mode", "batch", "resolution mode: batch or online")
	treeID := flag.Int("tree-id", 0, "pin the solve to one upgrade tree (0 = none)")
	startLevel := flag.Int("start-level", 0, "first level of the strategy table")
	unresolvedLog := flag.String("unresolved-log", "", "write unresolved events to this file")
	dataset := flag.String("dataset", "", "merge results into this snapshot dataset (requires DATABASE_URL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment, false))

	ctx := logger.WithRunID(context.Background(), logger.GenerateRunID())
	log := logger.FromContext(ctx)

	path := cfg.TranscriptPath
	if *transcriptPath != "" {
		path = *transcriptPath
	}
	if path == "" {
		return fmt.Errorf("no transcript given; set TRANSCRIPT_PATH or pass -transcript")
	}

	msgs, err := transcript.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}
	log.Info("Transcript loaded", "path", path, "messages", len(msgs))

	book, err := itembook.NewFileBook(cfg.BookDir)
	if err != nil {
		log.Warn("Item book unavailable, falling back to level statistics",
			"dir", cfg.BookDir, "error", err)
		book = itembook.NewStatic(nil, nil)
	}

	policy := resolver.BatchPolicy()
	if *mode == "online" {
		policy = resolver.DefaultPolicy()
		policy.ReloadCooldown = time.Duration(cfg.ReloadCooldownSec * float64(time.Second))
		policy.MaxReloadCalls = cfg.MaxReloadCalls
	}

	opts := pipeline.RunOptions{
		ResolverPolicy: policy,
		Gate: estimator.Gate{
			MinN:              cfg.MinSamples,
			MaxBreakHalfwidth: cfg.MaxBreakHalfwidth,
		},
		StartLevel: *startLevel,
		MaxLevel:   cfg.MaxLevel,
	}
	if *treeID > 0 {
		opts.TreeID = treeID
	}

	ext := extractor.New(cfg.UserName, cfg.BotName, cfg.MacroName, 0)
	result, err := pipeline.NewService(ext, book).Run(ctx, msgs, opts)
	if err != nil {
		return err
	}

	fmt.Println(strategy.FormatTable(result.Decisions))

	if result.Snapshot.Gold != nil {
		attrs := []any{"gold", *result.Snapshot.Gold}
		if it := result.Snapshot.Item; it != nil {
			attrs = append(attrs, "item_name", it.Name, "item_level", it.Level)
		}
		log.Info("Final observed state", attrs...)
	}

	if *unresolvedLog != "" {
		if err := writeUnresolvedLog(*unresolvedLog, result.Events); err != nil {
			return err
		}
		log.Info("Unresolved events written", "path", *unresolvedLog)
	}

	if *dataset != "" {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("-dataset requires DATABASE_URL")
		}
		if err := persistSnapshot(ctx, cfg.DatabaseURL, *dataset, result); err != nil {
			return fmt.Errorf("persisting snapshot %q: %w", *dataset, err)
		}
		log.Info("Snapshot persisted", "dataset", *dataset)
	}

	return nil
}

func writeUnresolvedLog(path string, events []domain.GameEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating unresolved log: %w", err)
	}
	defer f.Close()

	if _, err := resolver.WriteUnresolvedLog(f, events); err != nil {
		return fmt.Errorf("writing unresolved log: %w", err)
	}
	return nil
}

// persistSnapshot merges this run's tables into the named dataset snapshot,
// creating it when absent.
func persistSnapshot(ctx context.Context, databaseURL, dataset string, result *pipeline.Result) error {
	pool, err := database.NewPool(databaseURL, 4, 30*time.Minute, time.Hour)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema.SchemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	start, end := eventRange(result.Events)

	repo := postgres.NewSnapshotRepository(pool)
	snap, err := repo.Get(ctx, dataset)
	switch {
	case err == nil:
		if err := repository.MergeInto(snap, result.Tables, start, end); err != nil {
			return err
		}
	case errors.Is(err, domain.ErrSnapshotNotFound):
		snap = &repository.AggregateSnapshot{
			Dataset: dataset,
			Start:   start,
			End:     end,
			Tables:  result.Tables,
		}
	default:
		return err
	}

	return repo.Upsert(ctx, snap)
}

func eventRange(events []domain.GameEvent) (time.Time, time.Time) {
	var start, end time.Time
	for _, ev := range events {
		if ev.Timestamp.IsZero() {
			continue
		}
		if start.IsZero() || ev.Timestamp.Before(start) {
			start = ev.Timestamp
		}
		if end.IsZero() || ev.Timestamp.After(end) {
			end = ev.Timestamp
		}
	}
	if start.IsZero() {
		now := time.Now().UTC()
		return now, now
	}
	return start, end
}
