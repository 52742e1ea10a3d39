package resolver

import "time"

// Mode selects how aggressively the index is consulted.
type Mode string

const (
	// ModeOnline minimizes reloads and inherits candidates across success
	// level-ups, for use against a possibly stale item book.
	ModeOnline Mode = "online"
	// ModeBatch assumes the item book is current and intersects on every
	// step for maximum accuracy. Reloads are never triggered.
	ModeBatch Mode = "batch"
)

// Policy controls candidate narrowing, reload triggering, and throttling for
// one assignment pass.
type Policy struct {
	Mode Mode

	// InheritOnSuccessLevelUp keeps the candidate set across a success that
	// raises the level by one, skipping an index lookup.
	InheritOnSuccessLevelUp bool

	// ValidateWithIndexOnNormalSteps forces an index intersection even on
	// steps where inheritance would suffice.
	ValidateWithIndexOnNormalSteps bool

	EnableReload                   bool
	ReloadOnMissingKey             bool
	ReloadOnTerminationThenMissing bool

	// KeepCandidatesWhenAfterUnindexed carries the candidate set forward when
	// the after-item is absent from the index mid-track, treating the miss as
	// book staleness rather than a track break.
	KeepCandidatesWhenAfterUnindexed bool

	ReloadCooldown time.Duration
	MaxReloadCalls int
}

// DefaultPolicy is the online policy: inherit on success, reload only when a
// fresh track starts on a missing key, at most two reloads per pass.
func DefaultPolicy() Policy {
	return Policy{
		Mode:                             ModeOnline,
		InheritOnSuccessLevelUp:          true,
		ValidateWithIndexOnNormalSteps:   false,
		EnableReload:                     true,
		ReloadOnMissingKey:               false,
		ReloadOnTerminationThenMissing:   true,
		KeepCandidatesWhenAfterUnindexed: true,
		ReloadCooldown:                   30 * time.Second,
		MaxReloadCalls:                   2,
	}
}

// BatchPolicy intersects with the index on every step and never reloads.
func BatchPolicy() Policy {
	p := DefaultPolicy()
	p.Mode = ModeBatch
	p.InheritOnSuccessLevelUp = false
	p.ValidateWithIndexOnNormalSteps = true
	p.EnableReload = false
	return p
}
