package oteltalaria

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// commonAttributes returns the OpenTelemetry attributes that are recorded on
// every span and meter.
func commonAttributes(peerService string) []attribute.KeyValue {
	var attrs []attribute.KeyValue

	if peerService != "" {
		attrs = append(
			attrs,
			semconv.PeerServiceKey.String(peerService),
		)
	}

	return attrs
}

// requestAttributes returns the OpenTelemetry attributes that describe a
// single HTTP request.
//
// The query string is not included in the target attribute. It may carry a
// token credential.
func requestAttributes(req *http.Request) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.HTTPMethodKey.String(req.Method),
		semconv.HTTPTargetKey.String(req.URL.Path),
		semconv.NetPeerNameKey.String(req.URL.Hostname()),
	}
}
