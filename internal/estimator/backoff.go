package estimator

import "github.com/hyeonso/EnhanceBot_Go/internal/domain"

// Gate holds the confidence thresholds for the id and group tiers: a minimum
// sample size plus a cap on the Wilson half-width of the break proportion.
type Gate struct {
	MinN              int
	MaxBreakHalfwidth float64
}

// DefaultGate matches the live calibration: two hundred attempts and a break
// estimate known to within two percentage points.
func DefaultGate() Gate {
	return Gate{MinN: 200, MaxBreakHalfwidth: 0.02}
}

// Evidence records which tier answered a probability lookup and how well
// supported the answer is.
type Evidence struct {
	Source   domain.ProbSource
	N        int
	BreakErr float64
}

// ProbsWithBackoff resolves outcome probabilities for one level through the
// tier chain: id-level and group-level must pass the gate; the global level
// tier is taken whenever it has any data (best remaining estimate); otherwise
// the degenerate fallback applies.
func (t *Tables) ProbsWithBackoff(treeID *int, group domain.Group, level int, gate Gate) (domain.EnhanceProbs, Evidence) {
	if treeID != nil {
		if c, ok := t.ByID[domain.IDLevelKey{TreeID: *treeID, Level: level}]; ok && c.N >= gate.MinN {
			if berr := breakHalfwidth(c); berr <= gate.MaxBreakHalfwidth {
				return CountsToProbs(c), Evidence{Source: domain.SourceIDLevel, N: c.N, BreakErr: berr}
			}
		}
	}

	if c, ok := t.ByGroup[domain.GroupLevelKey{Group: group, Level: level}]; ok && c.N >= gate.MinN {
		if berr := breakHalfwidth(c); berr <= gate.MaxBreakHalfwidth {
			return CountsToProbs(c), Evidence{Source: domain.SourceGroupLevel, N: c.N, BreakErr: berr}
		}
	}

	if c, ok := t.ByLevel[level]; ok && c.N > 0 {
		return CountsToProbs(c), Evidence{Source: domain.SourceLevel, N: c.N, BreakErr: breakHalfwidth(c)}
	}

	return domain.EnhanceProbs{PS: 1, PK: 0, PB: 0, N: 0},
		Evidence{Source: domain.SourceFallback, N: 0, BreakErr: 1}
}

// SellWithBackoff resolves sell statistics through the same tier chain but
// without a confidence gate; missing everywhere yields the zero stats.
func (t *Tables) SellWithBackoff(treeID *int, group domain.Group, level int) domain.SellStats {
	if treeID != nil {
		if s, ok := t.SellByID[domain.IDLevelKey{TreeID: *treeID, Level: level}]; ok {
			return s
		}
	}
	if s, ok := t.SellByGroup[domain.GroupLevelKey{Group: group, Level: level}]; ok {
		return s
	}
	if s, ok := t.SellByLevel[level]; ok {
		return s
	}
	return domain.SellStats{}
}
