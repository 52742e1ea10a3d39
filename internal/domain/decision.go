package domain

// Action is the solver's per-level choice.
type Action string

const (
	ActionEnhance Action = "ENHANCE"
	ActionSell    Action = "SELL"
)

// ProbSource records which backoff tier supplied the probabilities behind a
// decision.
type ProbSource string

const (
	SourceIDLevel    ProbSource = "id_level"
	SourceGroupLevel ProbSource = "group_level"
	SourceLevel      ProbSource = "level"
	SourceFallback   ProbSource = "fallback"
)

// Decision is the solver output for one level: the optimal action, its value,
// both alternative values, and the probability/sample diagnostics that
// produced it. Computed fresh from a snapshot of the tables; never mutated.
type Decision struct {
	Level    int     `json:"level"`
	Action   Action  `json:"action"`
	V        float64 `json:"v"`
	VEnhance float64 `json:"v_enhance"`
	SellMean float64 `json:"sell_mean"`

	PS float64 `json:"ps"`
	PK float64 `json:"pk"`
	PB float64 `json:"pb"`

	NProb  int        `json:"n_prob"`
	NSell  int        `json:"n_sell"`
	Source ProbSource `json:"source"`
}
