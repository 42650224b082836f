package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventplanner_api_requests_total",
			Help: "Total number of requests sent to the events API",
		},
		[]string{"code", "method"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventplanner_api_request_duration_seconds",
			Help:    "Events API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"code", "method"},
	)

	apiInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventplanner_api_requests_in_flight",
			Help: "Number of events API requests currently in flight",
		},
	)

	authExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventplanner_auth_expired_total",
			Help: "Total number of protected calls rejected with 401",
		},
	)
)

func instrument(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(apiInFlight,
		promhttp.InstrumentRoundTripperCounter(apiRequestsTotal,
			promhttp.InstrumentRoundTripperDuration(apiRequestDuration, next),
		),
	)
}
