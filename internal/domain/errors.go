package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgCostMismatch     = "upgrade cost mismatch"
	ErrMsgBookDirNotFound  = "item book directory not found"
	ErrMsgSnapshotNotFound = "snapshot not found"
	ErrMsgInvalidTranscript = "invalid transcript record"
)

// Common domain errors
// Wrap these with fmt.Errorf("%w: ...", domain.ErrXxx) for additional context.
var (
	// ErrCostMismatch means the same level was observed with two different
	// enhancement costs. That indicates a mixed-version data set or a parsing
	// defect; picking one value silently would corrupt the solver's cost
	// table, so the affected aggregation must fail.
	ErrCostMismatch = errors.New(ErrMsgCostMismatch)

	ErrBookDirNotFound  = errors.New(ErrMsgBookDirNotFound)
	ErrSnapshotNotFound = errors.New(ErrMsgSnapshotNotFound)
	ErrInvalidTranscript = errors.New(ErrMsgInvalidTranscript)
)
