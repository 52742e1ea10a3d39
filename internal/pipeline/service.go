package pipeline

import (
	"context"
	"fmt"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/estimator"
	"github.com/hyeonso/EnhanceBot_Go/internal/extractor"
	"github.com/hyeonso/EnhanceBot_Go/internal/itembook"
	"github.com/hyeonso/EnhanceBot_Go/internal/logger"
	"github.com/hyeonso/EnhanceBot_Go/internal/metrics"
	"github.com/hyeonso/EnhanceBot_Go/internal/resolver"
	"github.com/hyeonso/EnhanceBot_Go/internal/strategy"
)

// Service defines the interface for full analysis runs
type Service interface {
	Run(ctx context.Context, msgs []domain.Message, opts RunOptions) (*Result, error)
}

// RunOptions tune one analysis run.
type RunOptions struct {
	// Previous track candidates when continuing an earlier session.
	PreviousCandidates itembook.IDSet
	ResolverPolicy     resolver.Policy
	Gate               estimator.Gate
	StartLevel         int
	MaxLevel           int
	// TreeID pins the solve to one tree; nil solves from group/level tiers
	// for whatever candidates the run ends with.
	TreeID *int
}

// DefaultRunOptions mirror the live calibration.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		ResolverPolicy: resolver.DefaultPolicy(),
		Gate:           estimator.DefaultGate(),
		MaxLevel:       strategy.DefaultMaxLevel,
	}
}

// Result carries every stage's output: the enriched events for export, the
// commands for operator review, the aggregate tables, and the decision list.
type Result struct {
	Events        []domain.GameEvent
	BotCommands   []domain.UserCommand
	MacroCommands []domain.UserCommand

	ResolveSummary resolver.Summary
	Tables         *estimator.Tables
	Decisions      []domain.Decision
	Snapshot       extractor.Snapshot
}

type service struct {
	ext  *extractor.Extractor
	book *itembook.Book
}

// NewService creates a pipeline service over one extractor and item book.
func NewService(ext *extractor.Extractor, book *itembook.Book) Service {
	return &service{ext: ext, book: book}
}

// Run executes the four stages in order: extract events from the transcript,
// resolve item identities against the book, aggregate statistics, and solve
// the enhance-or-sell policy. Only a cost inconsistency fails the run.
func (s *service) Run(ctx context.Context, msgs []domain.Message, opts RunOptions) (*Result, error) {
	log := logger.FromContext(ctx)

	extracted := s.ext.Extract(msgs)
	log.Info("events extracted",
		"messages", len(msgs),
		"events", len(extracted.Events),
		"bot_commands", len(extracted.BotCommands),
		"macro_commands", len(extracted.MacroCommands),
	)

	events, summary := resolver.New(s.book, opts.ResolverPolicy).
		Assign(ctx, extracted.Events, opts.PreviousCandidates)

	tables, err := estimator.Build(events, s.book)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("building aggregate tables: %w", err)
	}

	decisions := strategy.Solve(tables, strategy.Params{
		StartLevel:  opts.StartLevel,
		TreeID:      opts.TreeID,
		MaxLevel:    opts.MaxLevel,
		Gate:        opts.Gate,
		CostByLevel: strategy.DefaultCostByLevel,
	})

	metrics.PipelineRuns.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("analysis run finished",
		"resolved", summary.Resolved,
		"unresolved", summary.Unresolved,
		"decisions", len(decisions),
	)

	return &Result{
		Events:         events,
		BotCommands:    extracted.BotCommands,
		MacroCommands:  extracted.MacroCommands,
		ResolveSummary: summary,
		Tables:         tables,
		Decisions:      decisions,
		Snapshot:       extractor.CurrentSnapshot(events),
	}, nil
}
