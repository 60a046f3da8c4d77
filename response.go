package talaria

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dogmatiq/talaria/internal/jsonx"
)

// interpret validates an HTTP response and returns its raw JSON payload.
//
// Validation follows a fixed order: the content type must denote JSON, the
// body must parse as JSON, then an HTTP 401 status, a server-reported error
// value and any status other than 200 are reported, in that order. A payload
// that contains an "error" member without a "code" is an ordinary payload.
//
// The raw body read so far is returned even when an error is reported.
func interpret(res *http.Response) ([]byte, error) {
	if ct := res.Header.Get("Content-Type"); !isJSONContentType(ct) {
		return nil, NewError(
			BadContentType,
			WithMessage("unexpected content-type in HTTP response (%s)", ct),
		)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, NewError(
			TransportFailure,
			WithCause(fmt.Errorf("unable to read HTTP response body: %w", err)),
		)
	}

	var payload any
	if err := jsonx.Unmarshal(body, &payload); err != nil {
		return body, NewError(BadContentType, WithCause(err))
	}

	if res.StatusCode == http.StatusUnauthorized {
		return body, NewError(Unauthorized)
	}

	if obj, ok := payload.(map[string]any); ok {
		if errValue, ok := obj["error"].(map[string]any); ok {
			if code, ok := errValue["code"]; ok {
				return body, newServerError(errValue, code)
			}
		}
	}

	if res.StatusCode != http.StatusOK {
		return body, NewError(
			BadStatus,
			WithMessage(
				"unexpected HTTP %d (%s) status code",
				res.StatusCode,
				http.StatusText(res.StatusCode),
			),
		)
	}

	return body, nil
}

// isJSONContentType returns true if ct denotes a JSON payload.
//
// Any media type whose name begins with "application/json" is accepted,
// regardless of case or parameters.
func isJSONContentType(ct string) bool {
	return len(ct) >= len(mediaType) && strings.EqualFold(ct[:len(mediaType)], mediaType)
}

// newServerError builds an RPCError from the error value within a response
// payload.
func newServerError(errValue map[string]any, code any) *Error {
	options := []ErrorOption{
		WithData(errValue),
	}

	if message, ok := errValue["message"].(string); ok {
		options = append(options, WithMessage("%s", message))
	}

	c, _ := code.(float64)
	options = append(options, WithRPCDetails(int(c), formatErrorType(errValue["type"])))

	return NewError(RPCError, options...)
}

// formatErrorType converts the "type" member of a server error value to its
// string form.
func formatErrorType(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
