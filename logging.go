package talaria

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Exchange describes a single request/response exchange made by a client.
type Exchange struct {
	// Verb is the HTTP verb used to send the request.
	Verb string

	// Path is the effective request path, including the client's base path.
	Path string

	// Method is the JSON-RPC method name. It is empty for plain HTTP
	// exchanges.
	Method string

	// Status is the HTTP status code of the response. It is zero if no
	// response was received.
	Status int

	// RequestSize is the size of the request body, in bytes.
	RequestSize int

	// ResponseSize is the size of the response body, in bytes.
	ResponseSize int

	// Elapsed is the time taken by the exchange.
	Elapsed time.Duration
}

// CallLogger is an interface for logging the requests made by a client and
// their outcomes.
type CallLogger interface {
	// LogCall logs about an exchange that produced a usable payload.
	LogCall(ctx context.Context, ex Exchange)

	// LogFailure logs about an exchange that failed.
	LogFailure(ctx context.Context, ex Exchange, err error)
}

// ZapCallLogger is an implementation of CallLogger using zap.Logger.
type ZapCallLogger struct {
	// Target is the destination for log messages.
	Target *zap.Logger
}

// NewZapCallLogger returns a CallLogger that writes to the given zap logger.
func NewZapCallLogger(target *zap.Logger) ZapCallLogger {
	return ZapCallLogger{
		Target: target,
	}
}

var _ CallLogger = (*ZapCallLogger)(nil)

// LogCall logs about an exchange that produced a usable payload.
func (l ZapCallLogger) LogCall(ctx context.Context, ex Exchange) {
	fields := exchangeFields(ctx, ex)
	fields = append(fields, zap.Duration("elapsed", ex.Elapsed))

	l.Target.Info(
		exchangeMessage(ex),
		fields...,
	)
}

// LogFailure logs about an exchange that failed.
func (l ZapCallLogger) LogFailure(ctx context.Context, ex Exchange, err error) {
	fields := exchangeFields(ctx, ex)

	var e *Error
	if errors.As(err, &e) {
		fields = append(fields, zap.String("error", e.Kind().String()))

		if e.Kind() == RPCError {
			fields = append(fields, zap.Int("error_code", e.Code()))
		}

		cause := e.Unwrap()
		if cause != nil {
			fields = append(fields, zap.String("caused_by", cause.Error()))
		}

		if message := e.Message(); message != e.Kind().String() {
			if cause == nil || message != cause.Error() {
				fields = append(fields, zap.String("responded_with", message))
			}
		}
	} else {
		fields = append(fields, zap.String("error", err.Error()))
	}

	fields = append(fields, zap.Duration("elapsed", ex.Elapsed))

	l.Target.Error(
		exchangeMessage(ex),
		fields...,
	)
}

// exchangeFields returns the structured log fields that describe ex.
func exchangeFields(ctx context.Context, ex Exchange) []zap.Field {
	fields := []zap.Field{
		zap.Int("status", ex.Status),
		zap.Int("request_size", ex.RequestSize),
		zap.Int("response_size", ex.ResponseSize),
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
	}

	return fields
}

// exchangeMessage returns the log message that identifies ex.
func exchangeMessage(ex Exchange) string {
	var w strings.Builder

	if ex.Method != "" {
		w.WriteString("call ")
		writeMethod(&w, ex.Method)
	} else {
		w.WriteString(ex.Verb)
		w.WriteByte(' ')
		w.WriteString(ex.Path)
	}

	return w.String()
}

// writeMethod formats a JSON-RPC method name for display and writes it to w.
func writeMethod(w *strings.Builder, m string) {
	if m == "" || !isAlphaNumeric(m) {
		fmt.Fprintf(w, "%#v", m)
	} else {
		w.WriteString(m)
	}
}

// isAlphaNumeric returns true if s consists of only letters and digits.
func isAlphaNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}

	return true
}
