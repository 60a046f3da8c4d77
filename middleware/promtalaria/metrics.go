package promtalaria

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprom "github.com/prometheus/client_golang/prometheus"
)

// Metrics is an implementation of http.RoundTripper that records Prometheus
// metrics for each request made by a client.
type Metrics struct {
	// Next is the next transport in the middleware stack.
	//
	// If it is nil, http.DefaultTransport is used.
	Next http.RoundTripper

	// Requests counts the requests sent by the client, partitioned by HTTP
	// verb and response status.
	//
	// Requests that fail before a response is received are counted under the
	// "error" status.
	Requests metrics.Counter

	// Duration observes the time taken by each exchange, in seconds,
	// partitioned by HTTP verb.
	Duration metrics.Histogram
}

var _ http.RoundTripper = (*Metrics)(nil)

// NewMetrics returns a Metrics middleware with instruments registered against
// the default Prometheus registry.
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterFrom(
			stdprom.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests sent by the client.",
			},
			[]string{"verb", "status"},
		),
		Duration: prometheus.NewHistogramFrom(
			stdprom.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Time taken to complete each HTTP request, in seconds.",
				Buckets:   stdprom.DefBuckets,
			},
			[]string{"verb"},
		),
	}
}

// RoundTrip sends the request via the next transport and records metrics
// about the exchange.
func (m *Metrics) RoundTrip(req *http.Request) (*http.Response, error) {
	next := m.Next
	if next == nil {
		next = http.DefaultTransport
	}

	start := time.Now()
	res, err := next.RoundTrip(req)
	elapsed := time.Since(start)

	m.Duration.With("verb", req.Method).Observe(elapsed.Seconds())

	status := "error"
	if err == nil {
		status = strconv.Itoa(res.StatusCode)
	}

	m.Requests.With("verb", req.Method, "status", status).Add(1)

	return res, err
}
