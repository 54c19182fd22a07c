package netpie

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/netpie/core/client"
	"github.com/relabs-tech/netpie/core/logger"
	"github.com/relabs-tech/netpie/core/pointers"
)

// AuthenticatedDispatcher is the Dispatcher for the real NETPIE API. It resolves
// credentials from a CredentialStore and adds the device authorization header
// to every request.
type AuthenticatedDispatcher struct {
	credentials CredentialStore
	client      client.Client
}

var _ Dispatcher = (*AuthenticatedDispatcher)(nil)

// NewAuthenticatedDispatcher returns a dispatcher which sends requests through c
func NewAuthenticatedDispatcher(credentials CredentialStore, c client.Client) *AuthenticatedDispatcher {
	if credentials == nil {
		panic("credential store is missing")
	}
	return &AuthenticatedDispatcher{
		credentials: credentials,
		client:      c,
	}
}

// Dispatch sends the request exactly once and decodes the response.
func (d *AuthenticatedDispatcher) Dispatch(ctx context.Context, request RequestDescriptor, credentialRef string) (Response, error) {
	credential, err := d.credentials.Credential(ctx, credentialRef)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}

	body, err := encodeBody(request)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}

	header := map[string]string{}
	if request.JSONMode {
		header["Accept"] = "application/json"
		if body != nil {
			header["Content-Type"] = "application/json"
		}
	}
	for key, value := range request.Headers {
		header[key] = value
	}
	header["Authorization"] = credential.Authorization()

	if request.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, request.Timeout)
		defer cancel()
	}

	logger.FromContext(ctx).Debugf("%s %s", request.Method, request.URL)
	_, resBody, err := d.client.Do(ctx, client.Request{
		Method: request.Method,
		URL:    request.URL,
		Query:  request.Query,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, transportError(err, request)
	}
	return decodeResponse(resBody), nil
}

func encodeBody(request RequestDescriptor) ([]byte, error) {
	switch body := request.Body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return body, nil
	case string:
		if !request.JSONMode {
			return []byte(body), nil
		}
	}
	if !request.JSONMode {
		return []byte(fmt.Sprint(request.Body)), nil
	}
	j, err := json.Marshal(request.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot encode request body: %w", err)
	}
	return j, nil
}

// decodeResponse decodes JSON bodies. Anything else is returned as string, an
// empty body as empty object.
func decodeResponse(body []byte) Response {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]interface{}{}
	}
	var response interface{}
	if json.Valid(trimmed) {
		if err := json.Unmarshal(trimmed, &response); err == nil {
			return response
		}
	}
	return string(body)
}

func transportError(err error, request RequestDescriptor) *TransportError {
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		terr := &TransportError{
			StatusCode: pointers.IntPtr(statusErr.StatusCode),
			Message:    fmt.Sprintf("request failed with status code %d", statusErr.StatusCode),
			Err:        err,
		}
		if len(statusErr.Body) > 0 {
			terr.RawBody = pointers.StringPtr(string(statusErr.Body))
		}
		return terr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{
			Message: fmt.Sprintf("timeout of %dms exceeded", request.Timeout.Milliseconds()),
			Err:     err,
		}
	}
	return &TransportError{Message: err.Error(), Err: err}
}
