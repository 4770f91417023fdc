package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HTTPRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "http_request_duration_seconds",
	Help:    "Duration of HTTP requests in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path", "status"})

var HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of HTTP requests.",
}, []string{"method", "path", "status"})

var InFlightRequests = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "http_in_flight_requests",
	Help: "Current number of in-flight HTTP requests.",
})

// Remote backend call metrics
var RemoteCallDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "remote_call_duration_seconds",
	Help:    "Duration of calls to the hosted backend in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"operation", "client", "status"})

var RemoteCallErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "remote_call_errors_total",
	Help: "Total number of failed calls to the hosted backend.",
}, []string{"operation", "client"})
