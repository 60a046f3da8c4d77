package fixtures

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// RoundTripperStub is a test implementation of the http.RoundTripper interface.
type RoundTripperStub struct {
	RoundTripFunc func(*http.Request) (*http.Response, error)
}

// RoundTrip executes a single HTTP transaction.
func (s *RoundTripperStub) RoundTrip(req *http.Request) (*http.Response, error) {
	if s.RoundTripFunc != nil {
		return s.RoundTripFunc(req)
	}

	return NewResponse(http.StatusOK, "application/json", `{}`), nil
}

// NewResponse returns an HTTP response with the given status code, content
// type and body, suitable for returning from a RoundTripperStub.
func NewResponse(status int, contentType, body string) *http.Response {
	res := &http.Response{
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}

	if contentType != "" {
		res.Header.Set("Content-Type", contentType)
	}

	return res
}
