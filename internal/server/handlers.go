package server

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/estimator"
	"github.com/hyeonso/EnhanceBot_Go/internal/itembook"
	"github.com/hyeonso/EnhanceBot_Go/internal/logger"
	"github.com/hyeonso/EnhanceBot_Go/internal/repository"
	"github.com/hyeonso/EnhanceBot_Go/internal/strategy"
)

var validate = validator.New()

type handlers struct {
	tables    *estimator.Tables
	book      *itembook.Book
	snapshots repository.Snapshot

	strategyCache *expirable.LRU[string, []domain.Decision]
}

func newHandlers(tables *estimator.Tables, book *itembook.Book, snapshots repository.Snapshot) *handlers {
	return &handlers{
		tables:    tables,
		book:      book,
		snapshots: snapshots,
		strategyCache: expirable.NewLRU[string, []domain.Decision](
			StrategyCacheSize, nil, StrategyCacheTTL),
	}
}

type strategyQuery struct {
	TreeID     *int `validate:"omitempty,min=1"`
	StartLevel int  `validate:"min=0,ltefield=MaxLevel"`
	MaxLevel   int  `validate:"min=1,max=50"`
}

func parseStrategyQuery(r *http.Request) (strategyQuery, error) {
	q := strategyQuery{
		StartLevel: 0,
		MaxLevel:   strategy.DefaultMaxLevel,
	}

	values := r.URL.Query()
	if raw := values.Get("tree_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%s: %w", ErrMsgInvalidTreeID, err)
		}
		q.TreeID = &id
	}
	if raw := values.Get("start_level"); raw != "" {
		lv, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%s: %w", ErrMsgInvalidStartLevel, err)
		}
		q.StartLevel = lv
	}
	if raw := values.Get("max_level"); raw != "" {
		lv, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%s: %w", ErrMsgInvalidMaxLevel, err)
		}
		q.MaxLevel = lv
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func (q strategyQuery) cacheKey() string {
	tree := "-"
	if q.TreeID != nil {
		tree = strconv.Itoa(*q.TreeID)
	}
	return fmt.Sprintf("%s|%d|%d", tree, q.StartLevel, q.MaxLevel)
}

// StrategyResponse is the strategy endpoint payload.
type StrategyResponse struct {
	TreeID    *int              `json:"tree_id,omitempty"`
	Decisions []domain.Decision `json:"decisions"`
}

func (h *handlers) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	q, err := parseStrategyQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := q.cacheKey()
	if decisions, ok := h.strategyCache.Get(key); ok {
		writeJSON(w, http.StatusOK, StrategyResponse{TreeID: q.TreeID, Decisions: decisions})
		return
	}

	decisions := strategy.Solve(h.tables, strategy.Params{
		StartLevel:  q.StartLevel,
		TreeID:      q.TreeID,
		MaxLevel:    q.MaxLevel,
		Gate:        estimator.DefaultGate(),
		CostByLevel: strategy.DefaultCostByLevel,
	})
	h.strategyCache.Add(key, decisions)

	log.Info("Strategy computed",
		"cache_key", key,
		"levels", len(decisions))
	writeJSON(w, http.StatusOK, StrategyResponse{TreeID: q.TreeID, Decisions: decisions})
}

// LevelStats is one row of the level statistics endpoint.
type LevelStats struct {
	Level  int                  `json:"level"`
	Counts domain.EnhanceCounts `json:"counts"`
	Probs  domain.EnhanceProbs  `json:"probs"`
	Sell   *domain.SellStats    `json:"sell,omitempty"`
	Cost   *int                 `json:"cost,omitempty"`
}

func (h *handlers) handleGetLevelStats(w http.ResponseWriter, r *http.Request) {
	levels := make(map[int]struct{})
	for lv := range h.tables.ByLevel {
		levels[lv] = struct{}{}
	}
	for lv := range h.tables.SellByLevel {
		levels[lv] = struct{}{}
	}

	sorted := make([]int, 0, len(levels))
	for lv := range levels {
		sorted = append(sorted, lv)
	}
	sort.Ints(sorted)

	out := make([]LevelStats, 0, len(sorted))
	for _, lv := range sorted {
		row := LevelStats{
			Level:  lv,
			Counts: h.tables.ByLevel[lv],
			Probs:  estimator.CountsToProbs(h.tables.ByLevel[lv]),
		}
		if s, ok := h.tables.SellByLevel[lv]; ok {
			sell := s
			row.Sell = &sell
		}
		if c, ok := h.tables.UpgradeCost[lv]; ok {
			cost := c
			row.Cost = &cost
		}
		out = append(out, row)
	}

	writeJSON(w, http.StatusOK, map[string]any{"levels": out})
}

// snapshotSummary lists a snapshot without its full tables payload.
type snapshotSummary struct {
	ID        string `json:"id"`
	Dataset   string `json:"dataset"`
	Start     string `json:"range_start"`
	End       string `json:"range_end"`
	UpdatedAt string `json:"updated_at"`
}

func (h *handlers) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeError(w, http.StatusServiceUnavailable, ErrMsgSnapshotsDisabled)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	snaps, err := h.snapshots.List(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	out := make([]snapshotSummary, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, snapshotSummary{
			ID:        s.ID.String(),
			Dataset:   s.Dataset,
			Start:     s.Start.Format("2006-01-02T15:04:05Z07:00"),
			End:       s.End.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt: s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": out})
}

func (h *handlers) handleReloadBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := h.book.Reload(); err != nil {
		log.Error("Book reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "book reload failed")
		return
	}

	// Computed ladders may reference stale candidate sets after a reload.
	h.strategyCache.Purge()

	log.Info("Book reloaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}
