// Package talaria provides a client for issuing HTTP requests and JSON-RPC
// calls to a single remote endpoint.
//
// Requests are sent using Go's native HTTP package. The client composes the
// request URL, credentials and JSON-RPC envelope, and classifies the
// response before handing the payload back to the caller.
package talaria
