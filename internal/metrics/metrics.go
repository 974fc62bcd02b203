package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gyansathi_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gyansathi_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	QuotaDenialsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gyansathi_quota_denials_total",
			Help: "Total number of requests denied for exhausted daily quota.",
		},
	)

	PromptsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gyansathi_prompts_rejected_total",
			Help: "Total number of prompts rejected by the sanitizer.",
		},
		[]string{"code"},
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gyansathi_upstream_requests_total",
			Help: "Total number of upstream generation calls by outcome.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		QuotaDenialsTotal,
		PromptsRejectedTotal,
		UpstreamRequestsTotal,
	)
}
