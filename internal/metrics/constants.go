package metrics

// ============================================================================
// Metric Names
// ============================================================================

const (
	MetricNameHTTPRequestsTotal    = "enhancebot_http_requests_total"
	MetricNameHTTPRequestDuration  = "enhancebot_http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "enhancebot_http_requests_in_flight"

	MetricNameMessagesScanned   = "enhancebot_extractor_messages_scanned_total"
	MetricNameEventsExtracted   = "enhancebot_extractor_events_total"
	MetricNameBreaksDropped     = "enhancebot_extractor_dropped_breaks_total"
	MetricNameUserCommands      = "enhancebot_extractor_user_commands_total"
	MetricNameReloadCalls       = "enhancebot_resolver_reload_calls_total"
	MetricNameEventsResolved    = "enhancebot_resolver_events_resolved_total"
	MetricNameEventsUnresolved  = "enhancebot_resolver_events_unresolved_total"
	MetricNamePipelineRuns      = "enhancebot_pipeline_runs_total"
)

// ============================================================================
// Help Texts
// ============================================================================

const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests processed"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Number of HTTP requests currently being served"

	HelpTextMessagesScanned  = "Chat messages scanned by the event extractor"
	HelpTextEventsExtracted  = "Game events emitted by the extractor, by kind"
	HelpTextBreaksDropped    = "Break messages dropped for lack of a shatter notice"
	HelpTextUserCommands     = "User mention commands parsed, by target"
	HelpTextReloadCalls      = "Item book reload calls issued by the resolver"
	HelpTextEventsResolved   = "Events whose tree id was resolved"
	HelpTextEventsUnresolved = "Considered events left without a tree id"
	HelpTextPipelineRuns     = "Analysis pipeline runs, by outcome"
)

// ============================================================================
// Label Names
// ============================================================================

const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelKind    = "kind"
	LabelTarget  = "target"
	LabelOutcome = "outcome"
)

// Outcome label values for pipeline runs
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// HTTPLatencyBuckets are the histogram buckets for request latency
var HTTPLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
