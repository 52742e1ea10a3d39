package estimator

import (
	"fmt"
	"math"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/itembook"
)

// Tables holds the three nested count tiers, the parallel sell-revenue tiers,
// the observed upgrade cost schedule, and the special tree set the grouping
// was computed against. Built once per run; read-only afterwards.
type Tables struct {
	ByID    map[domain.IDLevelKey]domain.EnhanceCounts
	ByGroup map[domain.GroupLevelKey]domain.EnhanceCounts
	ByLevel map[int]domain.EnhanceCounts

	SellByID    map[domain.IDLevelKey]domain.SellStats
	SellByGroup map[domain.GroupLevelKey]domain.SellStats
	SellByLevel map[int]domain.SellStats

	// UpgradeCost maps a before-level to the observed cost of the attempt to
	// the next level. One value per level; a second, different observation is
	// a fatal inconsistency.
	UpgradeCost map[int]int

	Special itembook.IDSet
}

// NewTables returns empty, non-nil tables.
func NewTables(special itembook.IDSet) *Tables {
	return &Tables{
		ByID:        map[domain.IDLevelKey]domain.EnhanceCounts{},
		ByGroup:     map[domain.GroupLevelKey]domain.EnhanceCounts{},
		ByLevel:     map[int]domain.EnhanceCounts{},
		SellByID:    map[domain.IDLevelKey]domain.SellStats{},
		SellByGroup: map[domain.GroupLevelKey]domain.SellStats{},
		SellByLevel: map[int]domain.SellStats{},
		UpgradeCost: map[int]int{},
		Special:     special.Clone(),
	}
}

// GroupOf classifies a tree id against the special set. A nil id is normal.
func (t *Tables) GroupOf(treeID *int) domain.Group {
	if treeID != nil && t.Special.Contains(*treeID) {
		return domain.GroupSpecial
	}
	return domain.GroupNormal
}

// Build aggregates the identity-enriched event sequence into count and sell
// tables. Events whose item never resolved to a tree are excluded from every
// tier. Cost observations do not need an identity: the attempt level alone
// keys the upgrade cost schedule.
func Build(events []domain.GameEvent, book *itembook.Book) (*Tables, error) {
	t := NewTables(book.SpecialIDs())

	sellVals := newSellAccumulator()

	for i := range events {
		ev := &events[i]

		switch {
		case ev.IsEnhance():
			before := enhanceBefore(ev, book)
			if before == nil {
				continue
			}
			lv := before.Level

			if ev.Cost != nil {
				if err := t.recordCost(lv, *ev.Cost); err != nil {
					return nil, err
				}
			}

			if before.TreeID == nil {
				continue
			}
			t.count(*before.TreeID, lv, ev.Type)

		case ev.Type == domain.EventSell:
			before := ev.ItemBefore
			if before == nil || before.TreeID == nil || ev.Reward == nil {
				continue
			}
			sellVals.add(t.GroupOf(before.TreeID), *before.TreeID, before.Level, float64(*ev.Reward))
		}
	}

	sellVals.finalize(t)
	return t, nil
}

// enhanceBefore returns the item the attempt started from. When the message
// carried no before-item, a resolved success can recover it from the tree's
// own path one level below the gained item.
func enhanceBefore(ev *domain.GameEvent, book *itembook.Book) *domain.Item {
	if ev.ItemBefore != nil {
		return ev.ItemBefore
	}
	if ev.Type == domain.EventEnhanceKeep {
		return ev.ItemAfter
	}
	if ev.Type != domain.EventEnhanceSuccess {
		return nil
	}
	after := ev.ItemAfter
	if after == nil || after.TreeID == nil || after.Level < 1 {
		return nil
	}
	node, ok := book.NodeAt(*after.TreeID, after.Level-1)
	if !ok {
		return nil
	}
	return &node
}

func (t *Tables) recordCost(level, cost int) error {
	prev, ok := t.UpgradeCost[level]
	if !ok {
		t.UpgradeCost[level] = cost
		return nil
	}
	if prev != cost {
		return fmt.Errorf("%w: level %d observed with cost %d and %d",
			domain.ErrCostMismatch, level, prev, cost)
	}
	return nil
}

func (t *Tables) count(treeID, level int, typ domain.EventType) {
	cell := domain.EnhanceCounts{N: 1}
	switch typ {
	case domain.EventEnhanceSuccess:
		cell.Success = 1
	case domain.EventEnhanceKeep:
		cell.Keep = 1
	case domain.EventEnhanceBreak:
		cell.Break = 1
	}

	idKey := domain.IDLevelKey{TreeID: treeID, Level: level}
	grpKey := domain.GroupLevelKey{Group: t.GroupOf(&treeID), Level: level}

	t.ByID[idKey] = t.ByID[idKey].Add(cell)
	t.ByGroup[grpKey] = t.ByGroup[grpKey].Add(cell)
	t.ByLevel[level] = t.ByLevel[level].Add(cell)
}

// sellAccumulator gathers raw revenue samples per tier until finalize turns
// them into mean/std summaries.
type sellAccumulator struct {
	byID    map[domain.IDLevelKey][]float64
	byGroup map[domain.GroupLevelKey][]float64
	byLevel map[int][]float64
}

func newSellAccumulator() *sellAccumulator {
	return &sellAccumulator{
		byID:    map[domain.IDLevelKey][]float64{},
		byGroup: map[domain.GroupLevelKey][]float64{},
		byLevel: map[int][]float64{},
	}
}

func (a *sellAccumulator) add(group domain.Group, treeID, level int, v float64) {
	idKey := domain.IDLevelKey{TreeID: treeID, Level: level}
	grpKey := domain.GroupLevelKey{Group: group, Level: level}
	a.byID[idKey] = append(a.byID[idKey], v)
	a.byGroup[grpKey] = append(a.byGroup[grpKey], v)
	a.byLevel[level] = append(a.byLevel[level], v)
}

func (a *sellAccumulator) finalize(t *Tables) {
	for k, vals := range a.byID {
		t.SellByID[k] = sellStats(vals)
	}
	for k, vals := range a.byGroup {
		t.SellByGroup[k] = sellStats(vals)
	}
	for k, vals := range a.byLevel {
		t.SellByLevel[k] = sellStats(vals)
	}
}

// sellStats computes mean and sample standard deviation (ddof=1; zero when
// fewer than two samples).
func sellStats(vals []float64) domain.SellStats {
	n := len(vals)
	if n == 0 {
		return domain.SellStats{}
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(n)

	std := 0.0
	if n >= 2 {
		var ss float64
		for _, v := range vals {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
	}
	return domain.SellStats{N: n, Mean: mean, Std: std}
}
