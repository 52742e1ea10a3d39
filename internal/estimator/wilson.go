package estimator

import (
	"math"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
)

// DefaultZ is the 95% normal quantile used for all confidence gating.
const DefaultZ = 1.96

// WilsonCI returns the Wilson score interval for k successes in n trials,
// clipped to [0,1]. n <= 0 yields (0, 0).
func WilsonCI(k, n int, z float64) (low, high float64) {
	if n <= 0 {
		return 0, 0
	}
	nf := float64(n)
	phat := float64(k) / nf
	denom := 1.0 + z*z/nf
	center := (phat + z*z/(2*nf)) / denom
	half := (z / denom) * math.Sqrt(phat*(1-phat)/nf+z*z/(4*nf*nf))
	return math.Max(0, center-half), math.Min(1, center+half)
}

// WilsonHalfwidth is half the width of the Wilson interval.
func WilsonHalfwidth(k, n int, z float64) float64 {
	low, high := WilsonCI(k, n, z)
	return 0.5 * (high - low)
}

// breakHalfwidth is the confidence half-width of the break proportion, the
// quantity the backoff gate tests.
func breakHalfwidth(c domain.EnhanceCounts) float64 {
	return WilsonHalfwidth(c.Break, c.N, DefaultZ)
}

// CountsToProbs converts a count cell into outcome probabilities. An empty
// cell degrades to the optimistic fallback {ps=1, pk=0, pb=0}.
func CountsToProbs(c domain.EnhanceCounts) domain.EnhanceProbs {
	if c.N <= 0 {
		return domain.EnhanceProbs{PS: 1, PK: 0, PB: 0, N: 0}
	}
	n := float64(c.N)
	return domain.EnhanceProbs{
		PS: float64(c.Success) / n,
		PK: float64(c.Keep) / n,
		PB: float64(c.Break) / n,
		N:  c.N,
	}
}
