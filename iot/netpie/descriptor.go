package netpie

import (
	"context"
	"time"
)

// RequestDescriptor describes one request to the NETPIE API, independent of
// any transport. It carries no credentials; the Dispatcher attaches them.
type RequestDescriptor struct {
	Method string
	URL    string
	Query  map[string]string
	// Body is nil, a raw string (JSONMode false) or a decoded JSON value (JSONMode true)
	Body     interface{}
	Headers  map[string]string
	JSONMode bool
	Timeout  time.Duration
}

// Response is the decoded answer of the NETPIE API: a JSON value as produced
// by json.Unmarshal into an interface{}, or a string for non-JSON bodies.
type Response = interface{}

// Dispatcher sends a single request on behalf of the named credential. It
// returns the response, or a *TransportError.
type Dispatcher interface {
	Dispatch(ctx context.Context, request RequestDescriptor, credentialRef string) (Response, error)
}

// DispatcherFunc is an adapter to use ordinary functions as Dispatcher
type DispatcherFunc func(ctx context.Context, request RequestDescriptor, credentialRef string) (Response, error)

// Dispatch calls f(ctx, request, credentialRef)
func (f DispatcherFunc) Dispatch(ctx context.Context, request RequestDescriptor, credentialRef string) (Response, error) {
	return f(ctx, request, credentialRef)
}
