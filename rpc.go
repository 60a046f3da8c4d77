package talaria

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dogmatiq/talaria/internal/jsonx"
)

// envelope is the JSON-RPC request envelope for a single call.
type envelope struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	ID     uint64          `json:"id"`
}

// Call invokes a JSON-RPC method on the remote endpoint.
//
// The envelope is sent as an HTTP POST to the given path. params may be nil,
// in which case null is sent. Each call is assigned a request ID one greater
// than that of the client's previous call.
//
// The response payload is unmarshaled into result, which must be a non-nil
// pointer, or nil to discard the payload. It panics if params cannot be
// marshaled as JSON.
func (c *Client) Call(
	ctx context.Context,
	path, method string,
	params, result any,
) error {
	requestID := c.prevID.Add(1)

	req, err := newCallRequest(path, method, requestID, params)
	if err != nil {
		panic(fmt.Sprintf(
			"unable to call JSON-RPC method (%s): %s",
			method,
			err,
		))
	}

	return c.do(ctx, req, result)
}

// newCallRequest returns a request that carries a JSON-RPC call envelope.
func newCallRequest(
	path, method string,
	id uint64,
	params any,
) (request, error) {
	env := envelope{
		Method: method,
		ID:     id,
	}

	if params != nil {
		p, err := jsonx.Marshal(params)
		if err != nil {
			return request{}, err
		}

		env.Params = p
	}

	body, err := jsonx.Marshal(env)
	if err != nil {
		// CODE COVERAGE: The envelope cannot fail to marshal once the
		// parameters have been marshaled successfully.
		panic(err)
	}

	return request{
		verb:    http.MethodPost,
		path:    path,
		method:  method,
		body:    body,
		hasBody: true,
	}, nil
}
