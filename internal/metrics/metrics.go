// Package metrics provides Prometheus metrics for the FTP picture frame server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkypi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inkypi_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// FTP session metrics
	ftpConnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkypi_ftp_connects_total",
			Help: "Total number of FTP connection attempts",
		},
		[]string{"status"},
	)

	ftpListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkypi_ftp_listings_total",
			Help: "Total number of directory listings by protocol mode",
		},
		[]string{"mode"},
	)

	ftpImagesEnumerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkypi_ftp_images_enumerated_total",
			Help: "Total number of image paths discovered by recursive walks",
		},
	)

	ftpFetchBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkypi_ftp_fetch_bytes_total",
			Help: "Total bytes downloaded from FTP servers",
		},
	)

	// Render metrics
	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkypi_renders_total",
			Help: "Total number of image render requests",
		},
		[]string{"status"},
	)
)

// IncConnect records an FTP connection attempt.
func IncConnect(status string) {
	ftpConnectsTotal.WithLabelValues(status).Inc()
}

// IncListing records a directory listing by mode ("rich" or "probe").
func IncListing(mode string) {
	ftpListingsTotal.WithLabelValues(mode).Inc()
}

// AddImagesEnumerated records discovered image paths.
func AddImagesEnumerated(n int) {
	ftpImagesEnumerated.Add(float64(n))
}

// AddFetchBytes records downloaded bytes.
func AddFetchBytes(n int64) {
	ftpFetchBytes.Add(float64(n))
}

// IncRender records a render request outcome ("ok" or "error").
func IncRender(status string) {
	rendersTotal.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware instruments HTTP handlers with request counters and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
