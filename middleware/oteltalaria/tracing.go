package oteltalaria

import (
	"net/http"
	"sync"

	"github.com/dogmatiq/talaria/internal/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracing is an implementation of http.RoundTripper that provides
// OpenTelemetry tracing for each request made by a client.
//
// It adheres to the OpenTelemetry HTTP semantic conventions as specified in
// https://github.com/open-telemetry/opentelemetry-specification/blob/main/specification/trace/semantic_conventions/http.md.
type Tracing struct {
	// Next is the next transport in the middleware stack.
	//
	// If it is nil, http.DefaultTransport is used.
	Next http.RoundTripper

	// TracerProvider is the OpenTelemetry TracerProvider to use for creating
	// spans.
	TracerProvider trace.TracerProvider

	// PeerService is the application specific name of the remote service, used
	// as the peer.service attribute on every span.
	//
	// It may be empty, in which case the attribute is omitted.
	PeerService string

	// AnnotateExistingSpan controls whether a new span is created for each
	// request, or HTTP attributes are added to the span already present in the
	// request context.
	//
	// By default a new client span is created for each request.
	AnnotateExistingSpan bool

	// Propagators is used to inject the span context into the outgoing request
	// headers, allowing the remote server to participate in the trace.
	//
	// If it is nil, no propagation headers are added.
	Propagators propagation.TextMapPropagator

	once       sync.Once
	tracer     trace.Tracer
	attributes []attribute.KeyValue
}

var _ http.RoundTripper = (*Tracing)(nil)

// RoundTrip sends the request via the next transport within a tracing span.
func (t *Tracing) RoundTrip(req *http.Request) (*http.Response, error) {
	t.init()

	ctx := req.Context()

	var span trace.Span
	if t.AnnotateExistingSpan {
		span = trace.SpanFromContext(ctx)
	} else {
		ctx, span = t.tracer.Start(
			ctx,
			req.Method+" "+req.URL.Path,
			trace.WithSpanKind(trace.SpanKindClient),
		)
		defer span.End()
	}

	// RoundTrip must not modify the caller's request.
	req = req.Clone(ctx)

	span.SetAttributes(t.attributes...)
	span.SetAttributes(requestAttributes(req)...)

	if t.Propagators != nil {
		t.Propagators.Inject(ctx, propagation.HeaderCarrier(req.Header))
	}

	res, err := nextTransport(t.Next).RoundTrip(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		return nil, err
	}

	span.SetAttributes(
		semconv.HTTPStatusCodeKey.Int(res.StatusCode),
	)

	if res.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, res.Status)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return res, nil
}

// init initializes the tracer if it has not already been initialized.
func (t *Tracing) init() {
	t.once.Do(func() {
		t.tracer = t.TracerProvider.Tracer(
			"github.com/dogmatiq/talaria/middleware/oteltalaria",
			trace.WithInstrumentationVersion(version.Version),
		)

		t.attributes = commonAttributes(t.PeerService)
	})
}
