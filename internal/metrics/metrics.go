package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PhotoUploadsTotal counts profile photo uploads by outcome (accepted, rejected, error).
	PhotoUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_uploads_total",
			Help: "Total number of profile photo upload attempts by outcome",
		},
		[]string{"outcome"},
	)

	// PhotoRemovalsTotal counts profile photo removals.
	PhotoRemovalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_removals_total",
			Help: "Total number of profile photo removals",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	uploadPathSegment  = regexp.MustCompile(`^/uploads/.+`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, PhotoUploadsTotal, PhotoRemovalsTotal)
	})
}

// NormalizePath reduces cardinality by collapsing numeric path segments to {id}
// and served upload filenames to /uploads/{filename}.
func NormalizePath(path string) string {
	if uploadPathSegment.MatchString(path) {
		return "/uploads/{filename}"
	}
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncPhotoUploads increments the upload counter for the given outcome (accepted, rejected, error).
func IncPhotoUploads(outcome string) {
	PhotoUploadsTotal.WithLabelValues(outcome).Inc()
}

// IncPhotoRemovals increments the removal counter.
func IncPhotoRemovals() {
	PhotoRemovalsTotal.Inc()
}
