package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	questionsTotal    *prometheus.CounterVec
	harvestTierTotal  *prometheus.CounterVec
	packedChunks      *prometheus.HistogramVec
	packedChars       *prometheus.HistogramVec
	retrievalDuration *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidence",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evidence",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "evidence",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	questionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidence",
			Subsystem: "engine",
			Name:      "questions_total",
			Help:      "Total resolved questions by outcome.",
		},
		[]string{"service", "outcome"},
	)
	harvestTierTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidence",
			Subsystem: "engine",
			Name:      "harvest_tier_total",
			Help:      "Total resolved questions by harvesting tier.",
		},
		[]string{"service", "tier"},
	)
	packedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evidence",
			Subsystem: "engine",
			Name:      "packed_chunks",
			Help:      "Distribution of packed chunks per resolved question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	packedChars := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evidence",
			Subsystem: "engine",
			Name:      "packed_chars",
			Help:      "Distribution of packed context size in characters.",
			Buckets:   []float64{0, 500, 1000, 2500, 5000, 10000, 15000, 20000},
		},
		[]string{"service"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evidence",
			Subsystem: "engine",
			Name:      "retrieval_duration_seconds",
			Help:      "Per-question retrieval duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		questionsTotal,
		harvestTierTotal,
		packedChunks,
		packedChars,
		retrievalDuration,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		questionsTotal:    questionsTotal,
		harvestTierTotal:  harvestTierTotal,
		packedChunks:      packedChunks,
		packedChars:       packedChars,
		retrievalDuration: retrievalDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/reviews/"):
		return "/v1/reviews/{review_id}"
	default:
		return path
	}
}

// RecordQuestionResolved observes one resolved question: its outcome, the
// harvesting tier that produced the context, and the packed size.
func (m *HTTPServerMetrics) RecordQuestionResolved(service, tier string, hasEvidence bool, chunkCount, packedLen int, duration time.Duration) {
	outcome := "evidence"
	if !hasEvidence {
		outcome = "no_evidence"
	}
	if tier == "" {
		tier = "none"
	}
	m.questionsTotal.WithLabelValues(service, outcome).Inc()
	m.harvestTierTotal.WithLabelValues(service, tier).Inc()
	m.packedChunks.WithLabelValues(service).Observe(float64(chunkCount))
	m.packedChars.WithLabelValues(service).Observe(float64(packedLen))
	m.retrievalDuration.WithLabelValues(service).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
