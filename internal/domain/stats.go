package domain

// Group buckets trees into the two coarse classes the estimator backs off to.
type Group string

const (
	GroupSpecial Group = "special"
	GroupNormal  Group = "normal"
)

// IDLevelKey keys per-(tree, level) aggregates.
type IDLevelKey struct {
	TreeID int
	Level  int
}

// GroupLevelKey keys per-(group, level) aggregates.
type GroupLevelKey struct {
	Group Group
	Level int
}

// EnhanceCounts are raw outcome counts for one aggregation key.
type EnhanceCounts struct {
	N       int `json:"n"`
	Success int `json:"success"`
	Keep    int `json:"keep"`
	Break   int `json:"break"`
}

// Add merges another count cell into this one.
func (c EnhanceCounts) Add(o EnhanceCounts) EnhanceCounts {
	return EnhanceCounts{
		N:       c.N + o.N,
		Success: c.Success + o.Success,
		Keep:    c.Keep + o.Keep,
		Break:   c.Break + o.Break,
	}
}

// EnhanceProbs are outcome probabilities derived from counts. N carries the
// supporting sample size so consumers can judge trust.
type EnhanceProbs struct {
	PS float64 `json:"ps"`
	PK float64 `json:"pk"`
	PB float64 `json:"pb"`
	N  int     `json:"n"`
}

// SellStats summarize sell revenue observations for one aggregation key.
type SellStats struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}
