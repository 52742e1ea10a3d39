package server

import "time"

// Route paths
const (
	PathHealthz = "/healthz"
	PathReadyz  = "/readyz"
	PathMetrics = "/metrics"
)

// Strategy cache settings: decision ladders are cheap to compute but the
// endpoint is polled by the control loop, so short-lived caching keeps the
// hot path allocation-free.
const (
	StrategyCacheSize = 128
	StrategyCacheTTL  = 30 * time.Second
)

// Error Messages
const (
	ErrMsgInvalidTreeID     = "invalid tree_id parameter"
	ErrMsgInvalidStartLevel = "invalid start_level parameter"
	ErrMsgInvalidMaxLevel   = "invalid max_level parameter"
	ErrMsgSnapshotsDisabled = "snapshot store is not configured"
)
