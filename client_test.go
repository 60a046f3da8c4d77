package talaria_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dogmatiq/iago/iotest"
	. "github.com/dogmatiq/talaria"
	"github.com/dogmatiq/talaria/internal/fixtures"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("type Client", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		handler http.HandlerFunc
		server  *httptest.Server
		client  *Client
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)

		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}

		server = httptest.NewServer(
			http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					handler(w, r)
				},
			),
		)
	})

	AfterEach(func() {
		server.Close()
		cancel()
	})

	// newClient returns a client that sends its requests to the test server.
	newClient := func(extra ...Option) *Client {
		u, err := url.Parse(server.URL)
		Expect(err).ShouldNot(HaveOccurred())

		port, err := strconv.Atoi(u.Port())
		Expect(err).ShouldNot(HaveOccurred())

		options := append(
			[]Option{
				WithHost(u.Hostname()),
				WithPort(port),
				WithLogger(
					NewZapCallLogger(zap.NewNop()),
				),
			},
			extra...,
		)

		return New(options...)
	}

	Describe("func New()", func() {
		It("defaults to plain HTTP on port 80", func() {
			var request *http.Request

			client = New(
				WithHTTPClient(&http.Client{
					Transport: &fixtures.RoundTripperStub{
						RoundTripFunc: func(r *http.Request) (*http.Response, error) {
							request = r
							return fixtures.NewResponse(http.StatusOK, "application/json", `{}`), nil
						},
					},
				}),
				WithLogger(
					NewZapCallLogger(zap.NewNop()),
				),
			)

			err := client.Get(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(request.URL.String()).To(Equal("http://localhost:80/"))
			Expect(request.Host).To(Equal("localhost:80"))
		})

		It("defaults to port 443 when TLS is enabled", func() {
			var request *http.Request

			client = New(
				WithTLS(true),
				WithHTTPClient(&http.Client{
					Transport: &fixtures.RoundTripperStub{
						RoundTripFunc: func(r *http.Request) (*http.Response, error) {
							request = r
							return fixtures.NewResponse(http.StatusOK, "application/json", `{}`), nil
						},
					},
				}),
				WithLogger(
					NewZapCallLogger(zap.NewNop()),
				),
			)

			err := client.Get(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(request.URL.String()).To(Equal("https://localhost:443/"))
		})

		It("derives the User-Agent and Host headers from the endpoint", func() {
			var (
				userAgent string
				host      string
			)

			handler = func(w http.ResponseWriter, r *http.Request) {
				userAgent = r.Header.Get("User-Agent")
				host = r.Host

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient()

			err := client.Get(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(userAgent).To(Equal("talaria/0.0.0-dev"))
			Expect(host).To(Equal(
				strings.TrimPrefix(server.URL, "http://"),
			))
		})

		It("allows the derived headers to be overridden case-insensitively", func() {
			var (
				userAgent string
				host      string
			)

			handler = func(w http.ResponseWriter, r *http.Request) {
				userAgent = r.Header.Get("User-Agent")
				host = r.Host

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithHeader("user-agent", "<agent>"),
				WithHeader("HOST", "example.org:8443"),
			)

			err := client.Get(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(userAgent).To(Equal("<agent>"))
			Expect(host).To(Equal("example.org:8443"))
		})

		It("replaces repeated headers instead of accumulating them", func() {
			var values []string

			handler = func(w http.ResponseWriter, r *http.Request) {
				values = r.Header.Values("X-Api-Version")

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithHeader("X-Api-Version", "1"),
				WithHeader("x-api-version", "2"),
			)

			err := client.Get(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(values).To(ConsistOf("2"))
		})
	})

	Describe("func Get()", func() {
		DescribeTable(
			"it composes the request path from the base path",
			func(basePath, requestPath, expect string) {
				var requestURI string

				handler = func(w http.ResponseWriter, r *http.Request) {
					requestURI = r.RequestURI

					w.Header().Set("Content-Type", "application/json")
					w.Write([]byte(`{}`))
				}

				client = newClient(
					WithBasePath(basePath),
				)

				err := client.Get(ctx, requestPath, nil, nil)

				Expect(err).ShouldNot(HaveOccurred())
				Expect(requestURI).To(Equal(expect))
			},
			Entry("no base path", "", "/foo//", "/foo//"),
			Entry("root base path", "/", "/bar/", "/bar/"),
			Entry("root base path, no trailing slash", "/", "/bar", "/bar"),
			Entry("slashes on both sides of the boundary", "/foo/", "/bar/", "/foo/bar/"),
			Entry("longer runs at the boundary", "/foo//", "//bar", "/foo/bar"),
			Entry("empty request path", "/base", "", "/base/"),
			Entry("slashes away from the boundary are preserved", "", "/a//b", "/a//b"),
		)

		It("preserves caller-supplied percent-escapes in the path", func() {
			var requestURI string

			handler = func(w http.ResponseWriter, r *http.Request) {
				requestURI = r.RequestURI

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient()

			err := client.Get(ctx, "/files/a%2Fb%20c", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(requestURI).To(Equal("/files/a%2Fb%20c"))
		})

		It("sends the query parameters in their configured order, verbatim", func() {
			var requestURI string

			handler = func(w http.ResponseWriter, r *http.Request) {
				requestURI = r.RequestURI

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient()

			err := client.Get(
				ctx,
				"/things",
				Query{
					{Name: "redirect", Value: "https://example.org/?x=1"},
					{Name: "v", Value: "a+b"},
				},
				nil,
			)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(requestURI).To(Equal("/things?redirect=https://example.org/?x=1&v=a+b"))
		})

		It("appends the token credential to the query string", func() {
			var requestURI string

			handler = func(w http.ResponseWriter, r *http.Request) {
				requestURI = r.RequestURI

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithToken("123456"),
			)

			err := client.Get(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(requestURI).To(Equal("/?token=123456"))
		})

		It("appends the token credential after the configured query parameters", func() {
			var requestURI string

			handler = func(w http.ResponseWriter, r *http.Request) {
				requestURI = r.RequestURI

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithToken("123456"),
			)

			err := client.Get(
				ctx,
				"/things",
				Query{
					{Name: "a", Value: "1"},
					{Name: "b", Value: "2"},
				},
				nil,
			)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(requestURI).To(Equal("/things?a=1&b=2&token=123456"))
		})

		It("unmarshals the response payload into the result", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"name":"<name>","unrecognized":true}`))
			}

			client = newClient()

			var result struct {
				Name string `json:"name"`
			}

			err := client.Get(ctx, "/", nil, &result)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(result.Name).To(Equal("<name>"))
		})

		It("discards the response payload when the result is nil", func() {
			client = newClient()

			err := client.Get(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
		})

		It("returns an error if the result cannot be unmarshaled", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient()

			var result []string

			err := client.Get(ctx, "/", nil, &result)

			Expect(err).To(MatchError(
				"unable to unmarshal result: json: cannot unmarshal object into Go value of type []string",
			))
		})

		DescribeTable(
			"it panics if the result variable is not usable",
			func(result interface{}) {
				client = newClient()

				Expect(func() {
					client.Get(ctx, "/", nil, result)
				}).To(PanicWith("result must be nil or a non-nil pointer"))
			},
			Entry("nil pointer", (*int)(nil)),
			Entry("non-pointer", "<string>"),
		)
	})

	Describe("func Post()", func() {
		It("sends the body as JSON", func() {
			var (
				body        []byte
				contentType string
			)

			handler = func(w http.ResponseWriter, r *http.Request) {
				var err error
				body, err = io.ReadAll(r.Body)
				Expect(err).ShouldNot(HaveOccurred())

				contentType = r.Header.Get("Content-Type")

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient()

			err := client.Post(
				ctx,
				"/things",
				map[string]string{"name": "<name>"},
				nil,
			)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(body)).To(Equal(`{"name":"<name>"}`))
			Expect(contentType).To(Equal("application/json"))
		})

		It("sends no body when the body is nil", func() {
			var contentLength int64

			handler = func(w http.ResponseWriter, r *http.Request) {
				contentLength = r.ContentLength

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient()

			err := client.Post(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(contentLength).To(BeZero())
		})

		It("merges the token credential into an empty body", func() {
			var body []byte

			handler = func(w http.ResponseWriter, r *http.Request) {
				var err error
				body, err = io.ReadAll(r.Body)
				Expect(err).ShouldNot(HaveOccurred())

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithToken("123456"),
			)

			err := client.Post(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(body)).To(Equal(`{"token":"123456"}`))
		})

		It("merges the token credential into a JSON object body", func() {
			var body []byte

			handler = func(w http.ResponseWriter, r *http.Request) {
				var err error
				body, err = io.ReadAll(r.Body)
				Expect(err).ShouldNot(HaveOccurred())

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithToken("123456"),
			)

			err := client.Post(
				ctx,
				"/",
				map[string]int{"a": 1},
				nil,
			)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(body)).To(Equal(`{"a":1,"token":"123456"}`))
		})

		It("leaves non-object bodies unchanged", func() {
			var body []byte

			handler = func(w http.ResponseWriter, r *http.Request) {
				var err error
				body, err = io.ReadAll(r.Body)
				Expect(err).ShouldNot(HaveOccurred())

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithToken("123456"),
			)

			err := client.Post(
				ctx,
				"/",
				[]int{1, 2, 3},
				nil,
			)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(body)).To(Equal(`[1,2,3]`))
		})

		It("does not add the token credential to the query string", func() {
			var rawQuery string

			handler = func(w http.ResponseWriter, r *http.Request) {
				rawQuery = r.URL.RawQuery

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithToken("123456"),
			)

			err := client.Post(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(rawQuery).To(BeEmpty())
		})

		It("panics if the body cannot be marshaled", func() {
			client = newClient()

			Expect(func() {
				client.Post(ctx, "/", make(chan struct{}), nil)
			}).To(PanicWith(
				"unable to marshal request body: json: unsupported type: chan struct {}",
			))
		})
	})

	DescribeTable(
		"it sends the expected HTTP verb",
		func(send func() error, expect string) {
			var verb string

			handler = func(w http.ResponseWriter, r *http.Request) {
				verb = r.Method

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient()

			err := send()

			Expect(err).ShouldNot(HaveOccurred())
			Expect(verb).To(Equal(expect))
		},
		Entry("GET", func() error { return client.Get(ctx, "/", nil, nil) }, http.MethodGet),
		Entry("DELETE", func() error { return client.Delete(ctx, "/", nil, nil) }, http.MethodDelete),
		Entry("POST", func() error { return client.Post(ctx, "/", nil, nil) }, http.MethodPost),
		Entry("PUT", func() error { return client.Put(ctx, "/", nil, nil) }, http.MethodPut),
		Entry("PATCH", func() error { return client.Patch(ctx, "/", nil, nil) }, http.MethodPatch),
	)

	When("the client has basic authentication credentials", func() {
		It("sends an Authorization header", func() {
			var authorization string

			handler = func(w http.ResponseWriter, r *http.Request) {
				authorization = r.Header.Get("Authorization")

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithBasicAuth("foo", "bar"),
			)

			err := client.Get(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(authorization).To(Equal("Basic Zm9vOmJhcg=="))
		})

		It("takes precedence over the token credential", func() {
			var (
				authorization string
				rawQuery      string
			)

			handler = func(w http.ResponseWriter, r *http.Request) {
				authorization = r.Header.Get("Authorization")
				rawQuery = r.URL.RawQuery

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithBasicAuth("foo", "bar"),
				WithToken("123456"),
			)

			err := client.Get(ctx, "/", nil, nil)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(authorization).To(Equal("Basic Zm9vOmJhcg=="))
			Expect(rawQuery).To(BeEmpty())
		})
	})

	When("the exchange fails", func() {
		It("returns a TransportFailure error if the server can not be reached", func() {
			client = newClient()
			server.Close()

			err := client.Get(ctx, "/", nil, nil)

			var failure *Error
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Kind()).To(Equal(TransportFailure))
			Expect(err.Error()).To(ContainSubstring("connection refused"))
		})

		It("returns a TransportFailure error if the timeout is exceeded", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			}

			client = newClient(
				WithTimeout(10 * time.Millisecond),
			)

			err := client.Get(ctx, "/", nil, nil)

			var failure *Error
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Kind()).To(Equal(TransportFailure))
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})

		It("returns a TransportFailure error if the response body can not be read", func() {
			client = New(
				WithHTTPClient(&http.Client{
					Transport: &fixtures.RoundTripperStub{
						RoundTripFunc: func(r *http.Request) (*http.Response, error) {
							res := fixtures.NewResponse(http.StatusOK, "application/json", ``)
							res.Body = io.NopCloser(iotest.NewFailer(nil, nil))
							return res, nil
						},
					},
				}),
				WithLogger(
					NewZapCallLogger(zap.NewNop()),
				),
			)

			err := client.Get(ctx, "/", nil, nil)

			var failure *Error
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Kind()).To(Equal(TransportFailure))
			Expect(errors.Is(err, iotest.ErrRead)).To(BeTrue())
		})
	})
})
