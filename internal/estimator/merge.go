package estimator

import (
	"fmt"
	"math"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
)

// Merge folds another table set into this one. Counts add cell-wise, sell
// statistics combine by pooling, special sets union. Conflicting upgrade
// costs fail the merge with ErrCostMismatch.
func (t *Tables) Merge(o *Tables) error {
	for level, cost := range o.UpgradeCost {
		if err := t.recordCost(level, cost); err != nil {
			return fmt.Errorf("merging tables: %w", err)
		}
	}

	for k, c := range o.ByID {
		t.ByID[k] = t.ByID[k].Add(c)
	}
	for k, c := range o.ByGroup {
		t.ByGroup[k] = t.ByGroup[k].Add(c)
	}
	for k, c := range o.ByLevel {
		t.ByLevel[k] = t.ByLevel[k].Add(c)
	}

	for k, s := range o.SellByID {
		t.SellByID[k] = poolSellStats(t.SellByID[k], s)
	}
	for k, s := range o.SellByGroup {
		t.SellByGroup[k] = poolSellStats(t.SellByGroup[k], s)
	}
	for k, s := range o.SellByLevel {
		t.SellByLevel[k] = poolSellStats(t.SellByLevel[k], s)
	}

	if t.Special == nil {
		t.Special = o.Special.Clone()
	} else {
		for id := range o.Special {
			t.Special[id] = struct{}{}
		}
	}
	return nil
}

// poolSellStats combines two sample summaries exactly, via sums of squares,
// as if the underlying samples had been aggregated together.
func poolSellStats(a, b domain.SellStats) domain.SellStats {
	if a.N == 0 {
		return b
	}
	if b.N == 0 {
		return a
	}

	n := a.N + b.N
	nf := float64(n)
	mean := (float64(a.N)*a.Mean + float64(b.N)*b.Mean) / nf

	ssq := func(s domain.SellStats) float64 {
		return float64(s.N-1)*s.Std*s.Std + float64(s.N)*s.Mean*s.Mean
	}
	std := 0.0
	if n >= 2 {
		variance := (ssq(a) + ssq(b) - nf*mean*mean) / (nf - 1)
		if variance > 0 {
			std = math.Sqrt(variance)
		}
	}
	return domain.SellStats{N: n, Mean: mean, Std: std}
}
