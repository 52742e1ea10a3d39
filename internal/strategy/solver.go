package strategy

import (
	"math"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/estimator"
)

// DefaultMaxLevel is the game's enhancement cap.
const DefaultMaxLevel = 18

// DefaultCostByLevel is the live game's published cost schedule for the
// level -> level+1 attempt. Observed costs from the data set take precedence
// when present.
var DefaultCostByLevel = map[int]int{
	0:  10,
	1:  20,
	2:  50,
	3:  100,
	4:  200,
	5:  500,
	6:  1000,
	7:  2000,
	8:  5000,
	9:  10000,
	10: 20000,
	11: 30000,
	12: 40000,
	13: 50000,
	14: 70000,
	15: 100000,
	16: 150000,
	17: 200000,
	18: 300000,
}

// keepLoopEps bounds the denominator below which the keep self-loop is
// treated as inescapable.
const keepLoopEps = 1e-12

// Params configure one solve.
type Params struct {
	StartLevel int
	// TreeID selects the id tier of the backoff chain; nil solves for an
	// unresolved item on group/level data alone.
	TreeID      *int
	MaxLevel    int
	Gate        estimator.Gate
	CostByLevel map[int]int
}

// DefaultParams solve for an unresolved item from level 0 with the live
// schedule and calibration gate.
func DefaultParams() Params {
	return Params{
		StartLevel:  0,
		MaxLevel:    DefaultMaxLevel,
		Gate:        estimator.DefaultGate(),
		CostByLevel: DefaultCostByLevel,
	}
}

// Solve runs backward induction over the enhance-or-sell decision process:
// V[max] is the sell mean at the cap; below it each level chooses between
// selling now and paying the attempt cost for a chance at V[level+1], with
// the KEEP outcome folding into a self-loop and BREAK forfeiting the rest.
//
//	V_enhance = (-C + ps*V[level+1]) / (1 - pk)
//
// pk >= 1 makes the loop inescapable and the enhancement value -Inf, which
// always loses to selling. Decisions come back ordered by level, from
// StartLevel up to and including MaxLevel.
func Solve(tables *estimator.Tables, p Params) []domain.Decision {
	if p.MaxLevel <= 0 {
		p.MaxLevel = DefaultMaxLevel
	}
	if p.CostByLevel == nil {
		p.CostByLevel = DefaultCostByLevel
	}

	group := tables.GroupOf(p.TreeID)

	sellAt := func(level int) domain.SellStats {
		return tables.SellWithBackoff(p.TreeID, group, level)
	}
	probsAt := func(level int) (domain.EnhanceProbs, estimator.Evidence) {
		return tables.ProbsWithBackoff(p.TreeID, group, level, p.Gate)
	}
	costAt := func(level int) float64 {
		if c, ok := tables.UpgradeCost[level]; ok {
			return float64(c)
		}
		return float64(p.CostByLevel[level])
	}

	values := make(map[int]float64, p.MaxLevel+1)
	decisions := make(map[int]domain.Decision, p.MaxLevel+1)

	// At the cap there is nothing left to attempt.
	capSell := sellAt(p.MaxLevel)
	capProbs, capEv := probsAt(p.MaxLevel)
	values[p.MaxLevel] = capSell.Mean
	decisions[p.MaxLevel] = domain.Decision{
		Level:    p.MaxLevel,
		Action:   domain.ActionSell,
		V:        capSell.Mean,
		VEnhance: math.Inf(-1),
		SellMean: capSell.Mean,
		PS:       capProbs.PS,
		PK:       capProbs.PK,
		PB:       capProbs.PB,
		NProb:    capEv.N,
		NSell:    capSell.N,
		Source:   capEv.Source,
	}

	for level := p.MaxLevel - 1; level >= 0; level-- {
		sell := sellAt(level)
		probs, ev := probsAt(level)
		cost := costAt(level)

		denom := 1.0 - probs.PK
		vEnh := math.Inf(-1)
		if denom > keepLoopEps {
			vEnh = (-cost + probs.PS*values[level+1]) / denom
		}

		action := domain.ActionSell
		vOpt := sell.Mean
		if vEnh > sell.Mean {
			action = domain.ActionEnhance
			vOpt = vEnh
		}

		values[level] = vOpt
		decisions[level] = domain.Decision{
			Level:    level,
			Action:   action,
			V:        vOpt,
			VEnhance: vEnh,
			SellMean: sell.Mean,
			PS:       probs.PS,
			PK:       probs.PK,
			PB:       probs.PB,
			NProb:    ev.N,
			NSell:    sell.N,
			Source:   ev.Source,
		}
	}

	out := make([]domain.Decision, 0, p.MaxLevel-p.StartLevel+1)
	for level := p.StartLevel; level <= p.MaxLevel; level++ {
		out = append(out, decisions[level])
	}
	return out
}
