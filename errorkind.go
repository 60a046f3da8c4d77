package talaria

import "fmt"

// ErrorKind identifies the category of failure reported by a client operation.
type ErrorKind int

const (
	// TransportFailure indicates that the HTTP exchange could not be completed
	// at all, for example because the connection failed, the call deadline was
	// exceeded, or the response body could not be read.
	TransportFailure ErrorKind = iota + 1

	// BadContentType indicates that the response did not carry a JSON content
	// type, or that its body could not be parsed as JSON.
	BadContentType

	// Unauthorized indicates that the server rejected the request with an
	// HTTP 401 (Unauthorized) status.
	Unauthorized

	// BadStatus indicates that the server responded with an HTTP status code
	// other than 200 (OK).
	BadStatus

	// RPCError indicates that the server reported an application-defined error
	// within the response payload.
	RPCError
)

// String returns a brief description of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case TransportFailure:
		return "transport failure"
	case BadContentType:
		return "invalid response content"
	case Unauthorized:
		return "unauthorized"
	case BadStatus:
		return "bad HTTP status"
	case RPCError:
		return "server error"
	}

	return "unknown error"
}

// describeError returns a short string containing the most useful information
// from an error kind and a user-defined message.
func describeError(kind ErrorKind, message string) string {
	if message == "" || message == kind.String() {
		// The error message does not contain any more information than the
		// description of the kind.
		return kind.String()
	}

	return fmt.Sprintf("%s: %s", kind, message)
}
