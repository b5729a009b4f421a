package observability

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/msgtlv/internal/protocol/message"
	"github.com/danmuck/msgtlv/internal/protocol/tlv"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "msgtlv",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "msgtlv",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	codecRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "msgtlv",
			Subsystem: "codec",
			Name:      "records_total",
			Help:      "Records scanned, decoded or appended.",
		},
		[]string{"op"},
	)
	codecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "msgtlv",
			Subsystem: "codec",
			Name:      "errors_total",
			Help:      "Codec operations that failed, by error kind.",
		},
		[]string{"op", "kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, codecRecords, codecErrors)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCodec counts n records handled by op and, when err is set, one
// failure labelled with its kind.
func RecordCodec(op string, n int, err error) {
	RegisterMetrics()
	if n > 0 {
		codecRecords.WithLabelValues(op).Add(float64(n))
	}
	if err != nil {
		codecErrors.WithLabelValues(op, ErrorKind(err)).Inc()
	}
}

// ErrorKind maps codec and buffer errors to a short metric label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, tlv.ErrNotFound):
		return "not_found"
	case errors.Is(err, tlv.ErrPartialAppend):
		return "partial_append"
	case errors.Is(err, tlv.ErrParse):
		return "parse"
	case errors.Is(err, tlv.ErrRange), errors.Is(err, message.ErrOutOfRange):
		return "range"
	case errors.Is(err, message.ErrTooLarge):
		return "too_large"
	default:
		return "other"
	}
}
