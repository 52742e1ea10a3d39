package estimator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/itembook"
)

func resolved(level int, name string, tree int) *domain.Item {
	it := domain.NewItem(level, name)
	it.TreeID = &tree
	return &it
}

func unresolvedItem(level int, name string) *domain.Item {
	it := domain.NewItem(level, name)
	return &it
}

func intp(v int) *int { return &v }

func enhanceEvent(typ domain.EventType, before, after *domain.Item, cost *int) domain.GameEvent {
	return domain.GameEvent{
		Type:       typ,
		ItemBefore: before,
		ItemAfter:  after,
		Cost:       cost,
		Timestamp:  time.Date(2026, 1, 9, 13, 0, 0, 0, time.UTC),
	}
}

func sellEvent(before *domain.Item, reward *int) domain.GameEvent {
	return domain.GameEvent{Type: domain.EventSell, ItemBefore: before, Reward: reward}
}

func emptyBook() *itembook.Book {
	return itembook.NewStatic(nil, itembook.NewIDSet(2))
}

func TestBuildCountsAcrossTiers(t *testing.T) {
	events := []domain.GameEvent{
		enhanceEvent(domain.EventEnhanceSuccess, resolved(1, "청동 검", 1), resolved(2, "강철 검", 1), intp(20)),
		enhanceEvent(domain.EventEnhanceKeep, resolved(1, "청동 검", 1), resolved(1, "청동 검", 1), intp(20)),
		enhanceEvent(domain.EventEnhanceBreak, resolved(1, "빛나는 검", 2), resolved(0, "낡은 검", 2), intp(20)),
	}

	tables, err := Build(events, emptyBook())
	require.NoError(t, err)

	c1 := tables.ByID[domain.IDLevelKey{TreeID: 1, Level: 1}]
	assert.Equal(t, domain.EnhanceCounts{N: 2, Success: 1, Keep: 1}, c1)

	// Tree 2 is special, tree 1 normal: the group tier splits them.
	normal := tables.ByGroup[domain.GroupLevelKey{Group: domain.GroupNormal, Level: 1}]
	special := tables.ByGroup[domain.GroupLevelKey{Group: domain.GroupSpecial, Level: 1}]
	assert.Equal(t, 2, normal.N)
	assert.Equal(t, domain.EnhanceCounts{N: 1, Break: 1}, special)

	// The global tier pools everything at the level.
	assert.Equal(t, domain.EnhanceCounts{N: 3, Success: 1, Keep: 1, Break: 1}, tables.ByLevel[1])

	assert.Equal(t, 20, tables.UpgradeCost[1])
}

func TestBuildExcludesUnresolvedEvents(t *testing.T) {
	events := []domain.GameEvent{
		enhanceEvent(domain.EventEnhanceKeep, unresolvedItem(1, "미지의 검"), unresolvedItem(1, "미지의 검"), intp(20)),
		sellEvent(unresolvedItem(1, "미지의 검"), intp(100)),
	}

	tables, err := Build(events, emptyBook())
	require.NoError(t, err)

	assert.Empty(t, tables.ByID)
	assert.Empty(t, tables.ByGroup)
	assert.Empty(t, tables.ByLevel)
	assert.Empty(t, tables.SellByLevel)
	// The cost observation itself does not need an identity.
	assert.Equal(t, 20, tables.UpgradeCost[1])
}

func TestBuildCountsLevelZeroAttempts(t *testing.T) {
	events := []domain.GameEvent{
		enhanceEvent(domain.EventEnhanceSuccess, resolved(0, "낡은 검", 1), resolved(1, "청동 검", 1), intp(10)),
	}

	tables, err := Build(events, emptyBook())
	require.NoError(t, err)

	assert.Equal(t, 10, tables.UpgradeCost[0])
	assert.Equal(t, domain.EnhanceCounts{N: 1, Success: 1}, tables.ByLevel[0])
}

func TestBuildCostMismatchIsFatal(t *testing.T) {
	events := []domain.GameEvent{
		enhanceEvent(domain.EventEnhanceKeep, resolved(1, "청동 검", 1), resolved(1, "청동 검", 1), intp(20)),
		enhanceEvent(domain.EventEnhanceKeep, resolved(1, "청동 검", 1), resolved(1, "청동 검", 1), intp(25)),
	}

	_, err := Build(events, emptyBook())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCostMismatch)
	assert.Contains(t, err.Error(), domain.ErrMsgCostMismatch)
}

func TestBuildCountsEventWithoutCost(t *testing.T) {
	events := []domain.GameEvent{
		enhanceEvent(domain.EventEnhanceKeep, resolved(1, "청동 검", 1), resolved(1, "청동 검", 1), nil),
	}

	tables, err := Build(events, emptyBook())
	require.NoError(t, err)

	assert.Equal(t, 1, tables.ByLevel[1].N)
	assert.Empty(t, tables.UpgradeCost)
}

func TestBuildInfersSuccessBeforeFromHierarchy(t *testing.T) {
	book := itembook.NewStaticWithHierarchies(nil, itembook.IDSet{}, map[int]itembook.Hierarchy{
		1: {ID: 1, ByLevel: map[int]domain.Item{
			1: *resolved(1, "청동 검", 1),
			2: *resolved(2, "강철 검", 1),
		}},
	})

	events := []domain.GameEvent{
		enhanceEvent(domain.EventEnhanceSuccess, nil, resolved(2, "강철 검", 1), intp(50)),
	}

	tables, err := Build(events, book)
	require.NoError(t, err)

	// The missing before-item is recovered from the tree path one level
	// below the gained item.
	assert.Equal(t, 1, tables.ByID[domain.IDLevelKey{TreeID: 1, Level: 1}].Success)
	assert.Equal(t, 50, tables.UpgradeCost[1])
}

func TestBuildSellStats(t *testing.T) {
	events := []domain.GameEvent{
		sellEvent(resolved(2, "강철 검", 1), intp(100)),
		sellEvent(resolved(2, "강철 검", 1), intp(200)),
		sellEvent(resolved(2, "빛나는 검", 2), intp(300)),
	}

	tables, err := Build(events, emptyBook())
	require.NoError(t, err)

	s := tables.SellByID[domain.IDLevelKey{TreeID: 1, Level: 2}]
	assert.Equal(t, 2, s.N)
	assert.InDelta(t, 150, s.Mean, 1e-9)
	assert.InDelta(t, 70.710678, s.Std, 1e-5)

	lvl := tables.SellByLevel[2]
	assert.Equal(t, 3, lvl.N)
	assert.InDelta(t, 200, lvl.Mean, 1e-9)

	single := tables.SellByID[domain.IDLevelKey{TreeID: 2, Level: 2}]
	assert.Equal(t, 1, single.N)
	assert.Zero(t, single.Std)
}

func TestWilsonCI(t *testing.T) {
	low, high := WilsonCI(0, 0, DefaultZ)
	assert.Zero(t, low)
	assert.Zero(t, high)

	low, high = WilsonCI(5, 10, DefaultZ)
	assert.Greater(t, high, low)
	assert.GreaterOrEqual(t, low, 0.0)
	assert.LessOrEqual(t, high, 1.0)
	// Interval brackets the point estimate.
	assert.Less(t, low, 0.5)
	assert.Greater(t, high, 0.5)

	// More data narrows the interval at the same proportion.
	assert.Less(t, WilsonHalfwidth(50, 100, DefaultZ), WilsonHalfwidth(5, 10, DefaultZ))
	assert.Less(t, WilsonHalfwidth(500, 1000, DefaultZ), WilsonHalfwidth(50, 100, DefaultZ))
}

func TestCountsToProbs(t *testing.T) {
	p := CountsToProbs(domain.EnhanceCounts{N: 10, Success: 6, Keep: 3, Break: 1})
	assert.InDelta(t, 0.6, p.PS, 1e-9)
	assert.InDelta(t, 0.3, p.PK, 1e-9)
	assert.InDelta(t, 0.1, p.PB, 1e-9)
	assert.InDelta(t, 1.0, p.PS+p.PK+p.PB, 1e-9)

	zero := CountsToProbs(domain.EnhanceCounts{})
	assert.Equal(t, domain.EnhanceProbs{PS: 1, PK: 0, PB: 0, N: 0}, zero)
}

func TestProbsWithBackoffTierPreference(t *testing.T) {
	tables := NewTables(itembook.IDSet{})
	tables.ByID[domain.IDLevelKey{TreeID: 1, Level: 3}] = domain.EnhanceCounts{N: 200, Success: 150, Keep: 48, Break: 2}
	tables.ByGroup[domain.GroupLevelKey{Group: domain.GroupNormal, Level: 3}] = domain.EnhanceCounts{N: 400, Success: 300, Keep: 96, Break: 4}
	tables.ByLevel[3] = domain.EnhanceCounts{N: 450, Success: 330, Keep: 110, Break: 10}

	gate := DefaultGate()

	p, ev := tables.ProbsWithBackoff(intp(1), domain.GroupNormal, 3, gate)
	assert.Equal(t, domain.SourceIDLevel, ev.Source)
	assert.Equal(t, 200, p.N)

	// Without an id the group tier answers.
	_, ev = tables.ProbsWithBackoff(nil, domain.GroupNormal, 3, gate)
	assert.Equal(t, domain.SourceGroupLevel, ev.Source)

	// An id tier below min_n is skipped.
	tables.ByID[domain.IDLevelKey{TreeID: 1, Level: 3}] = domain.EnhanceCounts{N: 50, Success: 40, Keep: 9, Break: 1}
	_, ev = tables.ProbsWithBackoff(intp(1), domain.GroupNormal, 3, gate)
	assert.Equal(t, domain.SourceGroupLevel, ev.Source)
}

func TestProbsWithBackoffBreakConfidenceGate(t *testing.T) {
	tables := NewTables(itembook.IDSet{})
	// Enough samples but the break estimate is too loose for the gate.
	tables.ByID[domain.IDLevelKey{TreeID: 1, Level: 5}] = domain.EnhanceCounts{N: 200, Success: 120, Keep: 60, Break: 20}
	tables.ByLevel[5] = domain.EnhanceCounts{N: 30, Success: 20, Keep: 8, Break: 2}

	p, ev := tables.ProbsWithBackoff(intp(1), domain.GroupNormal, 5, DefaultGate())
	// Level tier answers regardless of the gate: best remaining estimate.
	assert.Equal(t, domain.SourceLevel, ev.Source)
	assert.Equal(t, 30, p.N)
}

func TestProbsWithBackoffFallback(t *testing.T) {
	tables := NewTables(itembook.IDSet{})

	p, ev := tables.ProbsWithBackoff(intp(9), domain.GroupSpecial, 7, DefaultGate())
	assert.Equal(t, domain.SourceFallback, ev.Source)
	assert.Equal(t, domain.EnhanceProbs{PS: 1, PK: 0, PB: 0, N: 0}, p)
	assert.InDelta(t, 1.0, ev.BreakErr, 1e-9)
}

func TestSellWithBackoff(t *testing.T) {
	tables := NewTables(itembook.IDSet{})
	tables.SellByID[domain.IDLevelKey{TreeID: 1, Level: 2}] = domain.SellStats{N: 3, Mean: 120}
	tables.SellByGroup[domain.GroupLevelKey{Group: domain.GroupNormal, Level: 2}] = domain.SellStats{N: 9, Mean: 110}
	tables.SellByLevel[2] = domain.SellStats{N: 20, Mean: 100}

	assert.InDelta(t, 120, tables.SellWithBackoff(intp(1), domain.GroupNormal, 2).Mean, 1e-9)
	assert.InDelta(t, 110, tables.SellWithBackoff(intp(7), domain.GroupNormal, 2).Mean, 1e-9)
	assert.InDelta(t, 100, tables.SellWithBackoff(nil, domain.GroupSpecial, 2).Mean, 1e-9)
	assert.Equal(t, domain.SellStats{}, tables.SellWithBackoff(nil, domain.GroupNormal, 9))
}

func TestMergePoolsSellStatsExactly(t *testing.T) {
	// Build the same data in one pass and in two merged halves; the sell
	// summaries must agree.
	all := []domain.GameEvent{
		sellEvent(resolved(1, "청동 검", 1), intp(100)),
		sellEvent(resolved(1, "청동 검", 1), intp(140)),
		sellEvent(resolved(1, "청동 검", 1), intp(220)),
		sellEvent(resolved(1, "청동 검", 1), intp(260)),
	}

	whole, err := Build(all, emptyBook())
	require.NoError(t, err)

	first, err := Build(all[:2], emptyBook())
	require.NoError(t, err)
	second, err := Build(all[2:], emptyBook())
	require.NoError(t, err)
	require.NoError(t, first.Merge(second))

	key := domain.IDLevelKey{TreeID: 1, Level: 1}
	assert.Equal(t, whole.SellByID[key].N, first.SellByID[key].N)
	assert.InDelta(t, whole.SellByID[key].Mean, first.SellByID[key].Mean, 1e-9)
	assert.InDelta(t, whole.SellByID[key].Std, first.SellByID[key].Std, 1e-9)
}

func TestMergeAddsCountsAndDetectsCostConflicts(t *testing.T) {
	a := NewTables(itembook.IDSet{})
	a.ByLevel[1] = domain.EnhanceCounts{N: 2, Success: 1, Keep: 1}
	a.UpgradeCost[1] = 20

	b := NewTables(itembook.NewIDSet(5))
	b.ByLevel[1] = domain.EnhanceCounts{N: 1, Break: 1}
	b.UpgradeCost[1] = 20

	require.NoError(t, a.Merge(b))
	assert.Equal(t, domain.EnhanceCounts{N: 3, Success: 1, Keep: 1, Break: 1}, a.ByLevel[1])
	assert.True(t, a.Special.Contains(5))

	c := NewTables(itembook.IDSet{})
	c.UpgradeCost[1] = 99
	assert.ErrorIs(t, a.Merge(c), domain.ErrCostMismatch)
}

func TestTablesJSONRoundTrip(t *testing.T) {
	events := []domain.GameEvent{
		enhanceEvent(domain.EventEnhanceSuccess, resolved(1, "청동 검", 1), resolved(2, "강철 검", 1), intp(20)),
		enhanceEvent(domain.EventEnhanceBreak, resolved(1, "빛나는 검", 2), resolved(0, "낡은 검", 2), intp(20)),
		sellEvent(resolved(2, "강철 검", 1), intp(100)),
	}
	tables, err := Build(events, emptyBook())
	require.NoError(t, err)

	data, err := json.Marshal(tables)
	require.NoError(t, err)

	var back Tables
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, tables.ByID, back.ByID)
	assert.Equal(t, tables.ByGroup, back.ByGroup)
	assert.Equal(t, tables.ByLevel, back.ByLevel)
	assert.Equal(t, tables.SellByID, back.SellByID)
	assert.Equal(t, tables.UpgradeCost, back.UpgradeCost)
	assert.True(t, back.Special.Contains(2))
}
