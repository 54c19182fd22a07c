package netpie

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/netpie/core/pointers"
)

// fakeDispatcher answers with the responses keyed by the request's alias or
// topic and records every request it sees
type fakeDispatcher struct {
	responses map[string]Response
	failures  map[string]error
	requests  []RequestDescriptor
	refs      []string
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, request RequestDescriptor, credentialRef string) (Response, error) {
	f.requests = append(f.requests, request)
	f.refs = append(f.refs, credentialRef)
	key := request.Query["alias"] + request.Query["topic"]
	if err, ok := f.failures[key]; ok {
		return nil, err
	}
	return f.responses[key], nil
}

func shadowItems(aliases ...string) []Item {
	items := make([]Item, len(aliases))
	for i, alias := range aliases {
		items[i] = params("alias", alias)
	}
	return items
}

func unauthorized() error {
	return &TransportError{
		StatusCode: pointers.IntPtr(401),
		RawBody:    pointers.StringPtr(`{"message":"invalid token"}`),
		Message:    "request failed with status code 401",
	}
}

func TestExecuteShadowGet(t *testing.T) {
	dispatcher := &fakeDispatcher{responses: map[string]Response{
		"led":  map[string]interface{}{"value": "on"},
		"temp": map[string]interface{}{"temp": 21.5},
	}}
	executor := NewExecutor("", dispatcher)

	records, err := executor.Execute(context.Background(), Execution{
		Resource:  "shadow",
		Operation: "get",
		Items:     shadowItems("led", "temp"),
	})
	require.NoError(t, err)
	assert.Equal(t, []OutputRecord{
		{JSON: map[string]interface{}{"alias": "led", "value": "on"}, PairedItem: 0},
		{JSON: map[string]interface{}{"alias": "temp", "value": 21.5}, PairedItem: 1},
	}, records)

	require.Len(t, dispatcher.requests, 2)
	assert.Equal(t, DefaultBaseURL+"/shadow/data", dispatcher.requests[0].URL)
	assert.Equal(t, []string{CredentialName, CredentialName}, dispatcher.refs)
}

func TestExecuteMessagePublish(t *testing.T) {
	dispatcher := &fakeDispatcher{responses: map[string]Response{"led": map[string]interface{}{}}}
	executor := NewExecutor(DefaultBaseURL, dispatcher)

	records, err := executor.Execute(context.Background(), Execution{
		Resource:   "message",
		Operation:  "publish",
		Credential: "lab",
		Items:      []Item{params("topic", "led", "payload", "ledon")},
	})
	require.NoError(t, err)
	assert.Equal(t, []OutputRecord{
		{JSON: map[string]interface{}{"published": true, "topic": "led", "result": "ok"}, PairedItem: 0},
	}, records)
	assert.Equal(t, []string{"lab"}, dispatcher.refs)
	assert.Equal(t, "ledon", dispatcher.requests[0].Body)
}

func TestExecuteWithoutSimplify(t *testing.T) {
	raw := map[string]interface{}{"deviceid": "d-1", "data": map[string]interface{}{"led": "on"}}
	dispatcher := &fakeDispatcher{responses: map[string]Response{"led": raw}}
	executor := NewExecutor(DefaultBaseURL, dispatcher)

	for _, x := range []Execution{
		{Resource: "shadow", Operation: "get", Items: []Item{params("alias", "led", "simplify", false)}},
		{Resource: "message", Operation: "publish", Items: []Item{params("topic", "led", "payload", "x", "simplify", false)}},
	} {
		records, err := executor.Execute(context.Background(), x)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, raw, records[0].JSON)
	}
}

func TestExecuteContinueOnFail(t *testing.T) {
	dispatcher := &fakeDispatcher{
		responses: map[string]Response{"a": map[string]interface{}{"value": 1.0}, "c": map[string]interface{}{"value": 3.0}},
		failures: map[string]error{
			"b": unauthorized(),
			"d": &TransportError{Message: "timeout of 15000ms exceeded"},
		},
	}
	executor := NewExecutor(DefaultBaseURL, dispatcher)

	items := shadowItems("a", "b", "c", "d")
	items = append(items, params("alias", " "))
	records, err := executor.Execute(context.Background(), Execution{
		Resource:       "shadow",
		Operation:      "get",
		ContinueOnFail: true,
		Items:          items,
	})
	require.NoError(t, err)
	require.Len(t, records, len(items))
	for i, record := range records {
		assert.Equal(t, i, record.PairedItem)
	}

	assert.Equal(t, map[string]interface{}{"alias": "a", "value": 1.0}, records[0].JSON)
	assert.Equal(t, map[string]interface{}{
		"message":    `{"message":"invalid token"}`,
		"statusCode": 401,
		"hint":       ShadowGet.Hint(1),
	}, records[1].JSON)
	assert.Equal(t, map[string]interface{}{"alias": "c", "value": 3.0}, records[2].JSON)
	assert.Equal(t, map[string]interface{}{
		"message":    "timeout of 15000ms exceeded",
		"statusCode": nil,
		"hint":       ShadowGet.Hint(3),
	}, records[3].JSON)

	parameterFailure := records[4].JSON.(map[string]interface{})
	assert.Equal(t, "invalid parameter 'alias' for item 4: is required", parameterFailure["message"])
	assert.Nil(t, parameterFailure["statusCode"])

	// the invalid item never reached the dispatcher
	assert.Len(t, dispatcher.requests, 4)
}

func TestExecuteAbortsOnFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{
		responses: map[string]Response{"a": map[string]interface{}{"value": 1.0}},
		failures:  map[string]error{"b": unauthorized()},
	}
	executor := NewExecutor(DefaultBaseURL, dispatcher)

	records, err := executor.Execute(context.Background(), Execution{
		Resource:  "shadow",
		Operation: "get",
		Items:     shadowItems("a", "b", "c"),
	})
	assert.Nil(t, records)

	var operr *OperationError
	require.True(t, errors.As(err, &operr))
	assert.Equal(t, 1, operr.ItemIndex)
	assert.Equal(t, ShadowGet.Hint(1), operr.Hint)
	assert.Equal(t, `{"message":"invalid token"}`, operr.Message)
	assert.Equal(t, 401, pointers.SafeInt(operr.StatusCode))
	assert.Contains(t, err.Error(), "[item 1]")

	var terr *TransportError
	assert.True(t, errors.As(err, &terr))

	// "c" was never attempted
	assert.Len(t, dispatcher.requests, 2)
}

func TestExecutePayloadParseError(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	executor := NewExecutor(DefaultBaseURL, dispatcher)

	x := Execution{
		Resource:  "message",
		Operation: "publish",
		Items: []Item{params(
			"topic", "led",
			"payload", "not json",
			"options", map[string]interface{}{"contentType": "application/json"},
		)},
	}
	_, err := executor.Execute(context.Background(), x)
	var perr *PayloadParseError
	require.True(t, errors.As(err, &perr))
	assert.Empty(t, dispatcher.requests)

	x.ContinueOnFail = true
	records, err := executor.Execute(context.Background(), x)
	require.NoError(t, err)
	require.Len(t, records, 1)
	out := records[0].JSON.(map[string]interface{})
	assert.Contains(t, out["message"], "payload of item 0 is not valid JSON")
	assert.Equal(t, MessagePublish.Hint(0), out["hint"])
	assert.Empty(t, dispatcher.requests)
}

func TestExecuteUnsupportedOperation(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	executor := NewExecutor(DefaultBaseURL, dispatcher)

	x := Execution{Resource: "shadow", Operation: "delete", Items: shadowItems("a", "b")}
	_, err := executor.Execute(context.Background(), x)
	var uerr *UnsupportedOperationError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, 0, uerr.ItemIndex)

	x.ContinueOnFail = true
	records, err := executor.Execute(context.Background(), x)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[1].PairedItem)
	assert.Contains(t, records[1].JSON.(map[string]interface{})["hint"], "item 2")
	assert.Empty(t, dispatcher.requests)
}

func TestExecuteEmptyBatch(t *testing.T) {
	executor := NewExecutor(DefaultBaseURL, &fakeDispatcher{})
	records, err := executor.Execute(context.Background(), Execution{Resource: "shadow", Operation: "get"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFailureDetailsFallsBackToHint(t *testing.T) {
	message, status := failureDetails(&TransportError{}, "the hint")
	assert.Equal(t, "the hint", message)
	assert.Nil(t, status)

	message, _ = failureDetails(&TransportError{RawBody: pointers.StringPtr(""), Message: "boom"}, "the hint")
	assert.Equal(t, "boom", message)
}

func TestNewExecutorNeedsDispatcher(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(DefaultBaseURL, nil) })
}

func TestExecuteWithDispatcherFunc(t *testing.T) {
	var seen []string
	dispatcher := DispatcherFunc(func(ctx context.Context, request RequestDescriptor, credentialRef string) (Response, error) {
		seen = append(seen, credentialRef+" "+request.Method+" "+request.Query["topic"])
		return "accepted", nil
	})
	executor := NewExecutor(DefaultBaseURL+"/", dispatcher)
	assert.Equal(t, DefaultBaseURL, executor.BaseURL())

	records, err := executor.Execute(context.Background(), Execution{
		Resource:  "message",
		Operation: "publish",
		Items: []Item{
			params("topic", "a", "payload", "1"),
			params("topic", "b", "payload", "2"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"netpieApi PUT a", "netpieApi PUT b"}, seen)
	assert.Equal(t, "ok", records[1].JSON.(map[string]interface{})["result"])
}
