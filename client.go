package talaria

import (
	"context"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dogmatiq/talaria/internal/version"
	"go.uber.org/zap"
)

// mediaType is the MIME media type used for request bodies.
const mediaType = "application/json"

// Client is an HTTP and JSON-RPC client that sends requests to a single
// remote endpoint.
//
// Clients must be created by New(). All methods are safe for concurrent use.
type Client struct {
	httpClient *http.Client
	endpoint   string
	host       string
	port       int
	tls        bool
	basePath   string
	headers    []Param
	username   string
	password   string
	hasBasic   bool
	token      string
	timeout    time.Duration
	logger     CallLogger

	// prevID is the ID of the last "call" request sent. It is incremented by
	// one to generate the next request ID.
	prevID atomic.Uint64
}

// New returns a client that sends requests to the endpoint described by the
// given options.
func New(options ...Option) *Client {
	c := &Client{
		host: "localhost",
	}

	for _, opt := range options {
		opt(c)
	}

	if c.port == 0 {
		if c.tls {
			c.port = 443
		} else {
			c.port = 80
		}
	}

	scheme := "http"
	if c.tls {
		scheme = "https"
	}

	hostport := net.JoinHostPort(c.host, strconv.Itoa(c.port))
	c.endpoint = scheme + "://" + hostport
	c.headers = resolveHeaders(hostport, c.headers)

	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}

	if c.logger == nil {
		c.logger = NewZapCallLogger(zap.Must(zap.NewProduction()))
	}

	return c
}

// Get sends an HTTP GET request to the given path.
//
// The response payload is unmarshaled into result, which must be a non-nil
// pointer, or nil to discard the payload.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query Query,
	result any,
) error {
	return c.do(
		ctx,
		request{
			verb:  http.MethodGet,
			path:  path,
			query: query,
		},
		result,
	)
}

// Delete sends an HTTP DELETE request to the given path.
//
// The response payload is unmarshaled into result, which must be a non-nil
// pointer, or nil to discard the payload.
func (c *Client) Delete(
	ctx context.Context,
	path string,
	query Query,
	result any,
) error {
	return c.do(
		ctx,
		request{
			verb:  http.MethodDelete,
			path:  path,
			query: query,
		},
		result,
	)
}

// Post sends an HTTP POST request to the given path.
//
// If body is non-nil it is marshaled as JSON and sent as the request body.
// The response payload is unmarshaled into result, which must be a non-nil
// pointer, or nil to discard the payload.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body, result any,
) error {
	return c.do(ctx, newBodyRequest(http.MethodPost, path, body), result)
}

// Put sends an HTTP PUT request to the given path.
//
// If body is non-nil it is marshaled as JSON and sent as the request body.
// The response payload is unmarshaled into result, which must be a non-nil
// pointer, or nil to discard the payload.
func (c *Client) Put(
	ctx context.Context,
	path string,
	body, result any,
) error {
	return c.do(ctx, newBodyRequest(http.MethodPut, path, body), result)
}

// Patch sends an HTTP PATCH request to the given path.
//
// If body is non-nil it is marshaled as JSON and sent as the request body.
// The response payload is unmarshaled into result, which must be a non-nil
// pointer, or nil to discard the payload.
func (c *Client) Patch(
	ctx context.Context,
	path string,
	body, result any,
) error {
	return c.do(ctx, newBodyRequest(http.MethodPatch, path, body), result)
}

// resolveHeaders returns the ordered set of headers applied to every request.
//
// The derived User-Agent and Host headers come first. A configured header
// whose name matches an existing entry, compared case-insensitively, replaces
// that entry in place.
func resolveHeaders(hostport string, configured []Param) []Param {
	headers := []Param{
		{Name: "User-Agent", Value: "talaria/" + version.Version},
		{Name: "Host", Value: hostport},
	}

	for _, h := range configured {
		headers = setHeader(headers, h)
	}

	return headers
}

// setHeader adds h to headers, replacing any existing entry with the same
// name, compared case-insensitively.
func setHeader(headers []Param, h Param) []Param {
	for i, x := range headers {
		if strings.EqualFold(x.Name, h.Name) {
			headers[i] = h
			return headers
		}
	}

	return append(headers, h)
}

// validateResultParameter returns true if v is a valid variable into which a
// response payload can be written.
func validateResultParameter(v any) bool {
	rv := reflect.ValueOf(v)

	if rv.Kind() != reflect.Ptr {
		return false
	}

	if rv.IsNil() {
		return false
	}

	return true
}
