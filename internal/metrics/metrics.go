package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func counter(name, help string) prometheus.Counter {
	return promauto.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
}

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

// HTTP metrics
var (
	HTTPRequestsTotal   = counterVec(MetricNameHTTPRequestsTotal, HelpTextHTTPRequestsTotal, LabelMethod, LabelPath, LabelStatus)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: MetricNameHTTPRequestsInFlight,
		Help: HelpTextHTTPRequestsInFlight,
	})
)

// Award metrics
var (
	AwardsAccepted     = counterVec(MetricNameAwardsAccepted, HelpTextAwardsAccepted, LabelSource, LabelTrack)
	AwardsRejected     = counterVec(MetricNameAwardsRejected, HelpTextAwardsRejected, LabelReason)
	LevelUps           = counterVec(MetricNameLevelUps, HelpTextLevelUps, LabelTrack)
	MilestonesUnlocked = counter(MetricNameMilestonesUnlocked, HelpTextMilestonesUnlocked)
	SummaryCacheHits   = counter(MetricNameSummaryCacheHits, HelpTextSummaryCacheHits)
	SummaryCacheMisses = counter(MetricNameSummaryCacheMisses, HelpTextSummaryCacheMisses)

	AwardDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricNameAwardDuration,
		Help:    HelpTextAwardDuration,
		Buckets: AwardLatencyBuckets,
	})
)

// Event metrics
var EventsPublished = counterVec(MetricNameEventsPublished, HelpTextEventsPublished, LabelType)
