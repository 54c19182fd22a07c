package netpie

import (
	"fmt"
)

// ParameterError reports a missing or invalid item parameter
type ParameterError struct {
	ItemIndex int
	// Parameter is the dotted parameter name, e.g. "options.timeout". It is
	// empty if the parameters could not be decoded at all.
	Parameter string
	Reason    string
}

func (e *ParameterError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("invalid parameters for item %d: %s", e.ItemIndex, e.Reason)
	}
	return fmt.Sprintf("invalid parameter '%s' for item %d: %s", e.Parameter, e.ItemIndex, e.Reason)
}

// PayloadParseError reports a payload which is not valid JSON although the
// application/json content type was selected
type PayloadParseError struct {
	ItemIndex int
	Err       error
}

func (e *PayloadParseError) Error() string {
	return fmt.Sprintf("payload of item %d is not valid JSON: %v", e.ItemIndex, e.Err)
}

func (e *PayloadParseError) Unwrap() error {
	return e.Err
}

// UnsupportedOperationError reports an unknown resource/operation pair
type UnsupportedOperationError struct {
	ItemIndex int
	Resource  string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("the operation '%s' is not supported for resource '%s' (item %d)", e.Operation, e.Resource, e.ItemIndex)
}

// TransportError reports a failed request to the remote API. StatusCode and
// RawBody are set when the server answered.
type TransportError struct {
	StatusCode *int
	RawBody    *string
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != nil {
		return fmt.Sprintf("%s (status %d)", e.Message, *e.StatusCode)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// OperationError is the fatal error which aborts a batch when continue-on-failure
// is disabled. It unwraps to the error of the failing item.
type OperationError struct {
	ItemIndex  int
	Hint       string
	Message    string
	StatusCode *int
	Err        error
}

func (e *OperationError) Error() string {
	if e.Message == "" || e.Message == e.Hint {
		return fmt.Sprintf("%s [item %d]", e.Hint, e.ItemIndex)
	}
	return fmt.Sprintf("%s %s [item %d]", e.Hint, e.Message, e.ItemIndex)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
