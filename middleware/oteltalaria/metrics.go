package oteltalaria

import (
	"net/http"
	"sync"
	"time"

	"github.com/dogmatiq/talaria/internal/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Metrics is an implementation of http.RoundTripper that provides
// OpenTelemetry metrics for each request made by a client.
type Metrics struct {
	// Next is the next transport in the middleware stack.
	//
	// If it is nil, http.DefaultTransport is used.
	Next http.RoundTripper

	// MeterProvider is the OpenTelemetry MeterProvider used to create meters.
	MeterProvider metric.MeterProvider

	// PeerService is the application specific name of the remote service, used
	// as the peer.service attribute on every meter.
	//
	// It may be empty, in which case the attribute is omitted.
	PeerService string

	once       sync.Once
	requests   metric.Int64Counter
	errors     metric.Int64Counter
	duration   metric.Int64Histogram
	attributes []attribute.KeyValue
}

var _ http.RoundTripper = (*Metrics)(nil)

// RoundTrip sends the request via the next transport and records metrics
// about the exchange.
func (m *Metrics) RoundTrip(req *http.Request) (*http.Response, error) {
	m.init()

	ctx := req.Context()

	attrs := requestAttributes(req)
	attrs = append(attrs, m.attributes...)
	attrOption := metric.WithAttributes(attrs...)

	m.requests.Add(ctx, 1, attrOption)

	start := time.Now()
	res, err := nextTransport(m.Next).RoundTrip(req)
	elapsed := time.Since(start)

	m.duration.Record(ctx, durationToMillis(elapsed), attrOption)

	if err != nil {
		m.errors.Add(ctx, 1, attrOption)
		return nil, err
	}

	if res.StatusCode >= http.StatusBadRequest {
		m.errors.Add(ctx, 1, metric.WithAttributes(
			append(
				attrs,
				semconv.HTTPStatusCodeKey.Int(res.StatusCode),
			)...,
		))
	}

	return res, nil
}

// init initializes the meters if they have not already been initialized.
func (m *Metrics) init() {
	m.once.Do(func() {
		meter := m.MeterProvider.Meter(
			"github.com/dogmatiq/talaria/middleware/oteltalaria",
			metric.WithInstrumentationVersion(version.Version),
		)

		var err error

		m.requests, err = meter.Int64Counter(
			"http.client.calls",
			metric.WithDescription("The number of HTTP requests sent by the client."),
			metric.WithUnit("1"),
		)
		if err != nil {
			panic(err)
		}

		m.errors, err = meter.Int64Counter(
			"http.client.errors",
			metric.WithDescription("The number of HTTP requests that result in an error."),
			metric.WithUnit("1"),
		)
		if err != nil {
			panic(err)
		}

		m.duration, err = meter.Int64Histogram(
			"http.client.duration",
			metric.WithDescription("The amount of time it takes the remote server to respond to HTTP requests."),
			metric.WithUnit("ms"),
		)
		if err != nil {
			panic(err)
		}

		m.attributes = commonAttributes(m.PeerService)
	})
}
