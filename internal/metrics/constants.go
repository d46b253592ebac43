package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"

	MetricNameAwardsAccepted     = "progression_awards_accepted_total"
	MetricNameAwardsRejected     = "progression_awards_rejected_total"
	MetricNameLevelUps           = "progression_level_ups_total"
	MetricNameMilestonesUnlocked = "progression_milestones_unlocked_total"
	MetricNameAwardDuration      = "progression_award_duration_seconds"
	MetricNameSummaryCacheHits   = "progression_summary_cache_hits_total"
	MetricNameSummaryCacheMisses = "progression_summary_cache_misses_total"

	MetricNameEventsPublished = "events_published_total"
)

// Help texts
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Number of HTTP requests currently being served"

	HelpTextAwardsAccepted     = "Total accepted experience awards"
	HelpTextAwardsRejected     = "Total rejected experience awards by reason"
	HelpTextLevelUps           = "Total level or tier boundary crossings"
	HelpTextMilestonesUnlocked = "Total one-time milestones unlocked"
	HelpTextAwardDuration      = "End-to-end award latency in seconds"
	HelpTextSummaryCacheHits   = "Progress summary cache hits"
	HelpTextSummaryCacheMisses = "Progress summary cache misses"

	HelpTextEventsPublished = "Total events published on the bus"
)

// Label names
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelSource = "source"
	LabelTrack  = "track"
	LabelReason = "reason"
	LabelType   = "type"
)

// Histogram buckets
var (
	HTTPLatencyBuckets  = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
	AwardLatencyBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}
)
