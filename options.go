package talaria

import (
	"net/http"
	"time"
)

// Option is an option that changes the behavior of a client.
type Option func(*Client)

// WithHost is an Option that sets the hostname or IP address of the remote
// endpoint.
//
// The default is "localhost".
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

// WithPort is an Option that sets the TCP port of the remote endpoint.
//
// By default the port is derived from the URL scheme, that is 443 when TLS
// is enabled and 80 otherwise.
func WithPort(port int) Option {
	return func(c *Client) {
		c.port = port
	}
}

// WithTLS is an Option that controls whether requests are made over HTTPS.
//
// TLS is disabled by default.
func WithTLS(enabled bool) Option {
	return func(c *Client) {
		c.tls = enabled
	}
}

// WithBasePath is an Option that sets a path prefix that is prepended to the
// path of every request.
//
// The base path is empty by default. It need not begin or end with a slash;
// it is joined to each request path exactly as given, except that duplicate
// slashes at the join boundary are collapsed.
func WithBasePath(path string) Option {
	return func(c *Client) {
		c.basePath = path
	}
}

// WithHeader is an Option that adds a header to every request.
//
// Headers are applied in the order they are configured. Configuring a header
// whose name matches an existing one, compared case-insensitively, replaces
// it. The derived User-Agent and Host headers may be replaced the same way.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		c.headers = append(c.headers, Param{Name: name, Value: value})
	}
}

// WithBasicAuth is an Option that enables HTTP basic authentication.
//
// Basic authentication takes precedence over a token credential: at most one
// of the two is applied to any given request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
		c.hasBasic = true
	}
}

// WithToken is an Option that sets a token credential.
//
// The token is sent with every request unless basic authentication is also
// configured. For requests without a body it is appended to the query string
// as a "token" parameter, after any caller-supplied parameters. For requests
// that carry a JSON object body it is added to the object as a "token"
// member.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout is an Option that sets a deadline for each request, measured
// from the moment it is sent.
//
// There is no deadline by default. A request that exceeds the deadline fails
// with an error of kind TransportFailure.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient is an Option that sets the HTTP client used to send
// requests.
//
// http.DefaultClient is used by default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger is an Option that sets the logger used to record exchanges.
//
// By default exchanges are logged using a zap production logger.
func WithLogger(logger CallLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
