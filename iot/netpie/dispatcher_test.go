package netpie

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/netpie/core/client"
)

var testCredentials = StaticCredentials{
	CredentialName: {ClientID: "client-1", Token: "secret"},
}

type capturedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   string
}

// newTestServer answers every request with status and body and stores the
// last request it received
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*captured = capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   string(b),
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, captured
}

func newTestDispatcher(ts *httptest.Server) *AuthenticatedDispatcher {
	return NewAuthenticatedDispatcher(testCredentials, client.NewWithURL(ts.URL))
}

func TestDispatchShadowRequest(t *testing.T) {
	ts, captured := newTestServer(t, http.StatusOK, `{"deviceid":"client-1","data":{"led":"on"}}`)
	d := newTestDispatcher(ts)

	request, err := ShadowGet.BuildRequest(ts.URL, Parameters{Alias: "led", Timeout: DefaultTimeout}, 0)
	require.NoError(t, err)
	response, err := d.Dispatch(context.Background(), request, CredentialName)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, captured.method)
	assert.Equal(t, "/shadow/data", captured.path)
	assert.Equal(t, "alias=led", captured.query)
	assert.Equal(t, "Device client-1:secret", captured.header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.header.Get("Accept"))
	assert.Empty(t, captured.body)
	assert.Equal(t, map[string]interface{}{
		"deviceid": "client-1",
		"data":     map[string]interface{}{"led": "on"},
	}, response)
}

func TestDispatchTextMessage(t *testing.T) {
	ts, captured := newTestServer(t, http.StatusOK, "")
	d := newTestDispatcher(ts)

	request, err := MessagePublish.BuildRequest(ts.URL, Parameters{
		Topic:       "led",
		Payload:     "ledon",
		Timeout:     DefaultTimeout,
		ContentType: ContentTypeText,
	}, 0)
	require.NoError(t, err)
	response, err := d.Dispatch(context.Background(), request, CredentialName)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, captured.method)
	assert.Equal(t, "/message", captured.path)
	assert.Equal(t, "topic=led", captured.query)
	assert.Equal(t, "text/plain", captured.header.Get("Content-Type"))
	assert.Equal(t, "ledon", captured.body)
	assert.Equal(t, map[string]interface{}{}, response)
}

func TestDispatchJSONMessage(t *testing.T) {
	ts, captured := newTestServer(t, http.StatusOK, "accepted")
	d := newTestDispatcher(ts)

	request, err := MessagePublish.BuildRequest(ts.URL, Parameters{
		Topic:       "led",
		Payload:     `{"state": "on"}`,
		ContentType: ContentTypeJSON,
	}, 0)
	require.NoError(t, err)
	response, err := d.Dispatch(context.Background(), request, CredentialName)
	require.NoError(t, err)

	assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
	assert.JSONEq(t, `{"state":"on"}`, captured.body)
	assert.Equal(t, "accepted", response)
}

func TestDispatchStatusError(t *testing.T) {
	ts, _ := newTestServer(t, http.StatusNotFound, `{"message":"alias not found"}`)
	d := newTestDispatcher(ts)

	request, err := ShadowGet.BuildRequest(ts.URL, Parameters{Alias: "nope", Timeout: DefaultTimeout}, 0)
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), request, CredentialName)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	require.NotNil(t, terr.StatusCode)
	assert.Equal(t, http.StatusNotFound, *terr.StatusCode)
	require.NotNil(t, terr.RawBody)
	assert.Equal(t, `{"message":"alias not found"}`, *terr.RawBody)
	assert.Equal(t, "request failed with status code 404", terr.Message)

	var statusErr *client.StatusError
	assert.True(t, errors.As(err, &statusErr))
}

func TestDispatchStatusErrorWithoutBody(t *testing.T) {
	ts, _ := newTestServer(t, http.StatusUnauthorized, "")
	d := newTestDispatcher(ts)

	_, err := d.Dispatch(context.Background(), RequestDescriptor{
		Method: http.MethodGet,
		URL:    ts.URL + "/shadow/data",
	}, CredentialName)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Nil(t, terr.RawBody)

	message, status := failureDetails(err, "hint")
	assert.Equal(t, "request failed with status code 401", message)
	assert.Equal(t, http.StatusUnauthorized, *status)
}

func TestDispatchTimeout(t *testing.T) {
	done := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(done)
	d := newTestDispatcher(ts)

	_, err := d.Dispatch(context.Background(), RequestDescriptor{
		Method:   http.MethodGet,
		URL:      ts.URL + "/shadow/data",
		JSONMode: true,
		Timeout:  50 * time.Millisecond,
	}, CredentialName)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "timeout of 50ms exceeded", terr.Message)
	assert.Nil(t, terr.StatusCode)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDispatchUnknownCredential(t *testing.T) {
	ts, captured := newTestServer(t, http.StatusOK, "{}")
	d := newTestDispatcher(ts)

	_, err := d.Dispatch(context.Background(), RequestDescriptor{
		Method: http.MethodGet,
		URL:    ts.URL + "/shadow/data",
	}, "other")

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.True(t, errors.Is(err, ErrUnknownCredential))
	assert.Empty(t, captured.method, "no request must be sent")
}

func TestDecodeResponse(t *testing.T) {
	assert.Equal(t, map[string]interface{}{}, decodeResponse(nil))
	assert.Equal(t, map[string]interface{}{}, decodeResponse([]byte("  \n")))
	assert.Equal(t, []interface{}{1.0, "a"}, decodeResponse([]byte(`[1,"a"]`)))
	assert.Equal(t, "ok", decodeResponse([]byte("ok")))
	assert.Equal(t, "{broken", decodeResponse([]byte("{broken")))
}

func TestNewAuthenticatedDispatcherNeedsStore(t *testing.T) {
	assert.Panics(t, func() { NewAuthenticatedDispatcher(nil, client.NewWithURL("http://localhost")) })
}
