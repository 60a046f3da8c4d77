package talaria

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dogmatiq/talaria/internal/jsonx"
)

// request describes a single outgoing request before it is sent.
type request struct {
	verb    string
	path    string
	query   Query
	method  string // JSON-RPC method name, empty for plain HTTP requests
	body    []byte // marshaled JSON body, nil when absent
	hasBody bool
}

// newBodyRequest returns a request that carries a JSON body.
//
// It panics if body cannot be marshaled as JSON.
func newBodyRequest(verb, path string, body any) request {
	req := request{
		verb:    verb,
		path:    path,
		hasBody: true,
	}

	if body != nil {
		data, err := jsonx.Marshal(body)
		if err != nil {
			panic(fmt.Sprintf("unable to marshal request body: %s", err))
		}

		req.body = data
	}

	return req
}

// withToken returns a copy of the request with a token credential applied.
//
// Requests that carry a body receive the token as a "token" member of the
// JSON object body. Other requests receive it as a "token" query parameter,
// after any caller-supplied parameters.
func (r request) withToken(token string) request {
	if r.hasBody {
		body := r.body
		if len(body) == 0 {
			body = []byte(`{}`)
		}

		r.body = injectToken(body, token)

		return r
	}

	r.query = append(r.query[:len(r.query):len(r.query)], Param{Name: "token", Value: token})

	return r
}

// injectToken adds a "token" member to a JSON object.
//
// Bodies that are not JSON objects are returned unchanged.
func injectToken(body []byte, token string) []byte {
	if len(body) < 2 || body[0] != '{' || body[len(body)-1] != '}' {
		return body
	}

	value, err := jsonx.Marshal(token)
	if err != nil {
		// CODE COVERAGE: Marshaling a string never fails.
		panic(err)
	}

	var w bytes.Buffer
	w.Write(body[:len(body)-1])

	if len(body) > 2 {
		w.WriteByte(',')
	}

	w.WriteString(`"token":`)
	w.Write(value)
	w.WriteByte('}')

	return w.Bytes()
}

// do sends a request and interprets the response.
//
// The response payload is unmarshaled into result. It panics if result is
// neither nil nor a non-nil pointer.
func (c *Client) do(ctx context.Context, req request, result any) error {
	if result != nil && !validateResultParameter(result) {
		panic("result must be nil or a non-nil pointer")
	}

	if c.token != "" && !c.hasBasic {
		req = req.withToken(c.token)
	}

	target := joinPath(c.basePath, req.path)

	ex := Exchange{
		Verb:        req.verb,
		Path:        target,
		Method:      req.method,
		RequestSize: len(req.body),
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()

	httpRes, err := c.send(ctx, req.verb, target, req.query, req.body)
	if err != nil {
		ex.Elapsed = time.Since(start)

		failure := NewError(TransportFailure, WithCause(err))
		c.logger.LogFailure(ctx, ex, failure)

		return failure
	}
	defer httpRes.Body.Close()

	ex.Status = httpRes.StatusCode

	payload, err := interpret(httpRes)
	ex.Elapsed = time.Since(start)
	ex.ResponseSize = len(payload)

	if err != nil {
		c.logger.LogFailure(ctx, ex, err)
		return err
	}

	if result != nil {
		if err := jsonx.Unmarshal(payload, result, jsonx.AllowUnknownFields(true)); err != nil {
			err = fmt.Errorf("unable to unmarshal result: %w", err)
			c.logger.LogFailure(ctx, ex, err)

			return err
		}
	}

	c.logger.LogCall(ctx, ex)

	return nil
}

// send builds the HTTP request for req and performs the exchange.
func (c *Client) send(
	ctx context.Context,
	verb, target string,
	query Query,
	body []byte,
) (*http.Response, error) {
	var r io.Reader
	if len(body) > 0 {
		r = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, verb, c.endpoint, r)
	if err != nil {
		// CODE COVERAGE: The main failure case for NewRequestWithContext() is
		// an invalid HTTP method, but the methods used are hardcoded.
		panic(err)
	}

	// The composed path and query string are sent exactly as given. net/url
	// only emits RawPath verbatim when it is a valid encoding of Path, so
	// Path carries the decoded form of any escapes the caller supplied.
	httpReq.URL.RawPath = target
	httpReq.URL.Path = target
	if p, err := url.PathUnescape(target); err == nil {
		httpReq.URL.Path = p
	}
	httpReq.URL.RawQuery = query.encode()

	for _, h := range c.headers {
		if strings.EqualFold(h.Name, "Host") {
			httpReq.Host = h.Value
		} else {
			httpReq.Header.Set(h.Name, h.Value)
		}
	}

	if len(body) > 0 {
		httpReq.Header.Set("Content-Type", mediaType)
	}

	if c.hasBasic {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	return c.httpClient.Do(httpReq)
}
