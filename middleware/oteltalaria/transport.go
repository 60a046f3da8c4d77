package oteltalaria

import (
	"net/http"
	"time"
)

// nextTransport returns the transport that a middleware delegates to.
func nextTransport(rt http.RoundTripper) http.RoundTripper {
	if rt != nil {
		return rt
	}

	return http.DefaultTransport
}

// durationToMillis converts a duration to milliseconds.
func durationToMillis(d time.Duration) int64 {
	return int64(d / time.Millisecond)
}
