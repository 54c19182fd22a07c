package api

import (
	"errors"

	"github.com/relabs-tech/netpie/iot/netpie"
)

// BatchRequest is the body of an operation request. The CLI reads the same
// structure from YAML items files.
type BatchRequest struct {
	Credential     string        `json:"credential,omitempty" yaml:"credential,omitempty"`
	ContinueOnFail bool          `json:"continueOnFail" yaml:"continueOnFail"`
	Items          []netpie.Item `json:"items" yaml:"items"`
}

// Execution returns the execution of operation on resource for the request.
// defaultCredential is used when the request names no credential.
func (b BatchRequest) Execution(resource, operation, defaultCredential string) netpie.Execution {
	credential := b.Credential
	if credential == "" {
		credential = defaultCredential
	}
	return netpie.Execution{
		Resource:       resource,
		Operation:      operation,
		Credential:     credential,
		ContinueOnFail: b.ContinueOnFail,
		Items:          b.Items,
	}
}

// BatchResponse is the body of a successful operation request. It holds one
// record per processed item.
type BatchResponse struct {
	Records []netpie.OutputRecord `json:"records"`
}

// FailureResponse is the body of an aborted batch or a failed credential test
type FailureResponse struct {
	Error      string `json:"error"`
	ItemIndex  *int   `json:"itemIndex,omitempty"`
	Hint       string `json:"hint,omitempty"`
	Message    string `json:"message,omitempty"`
	StatusCode *int   `json:"statusCode,omitempty"`
}

func newFailureResponse(err error) FailureResponse {
	response := FailureResponse{Error: err.Error()}

	var operr *netpie.OperationError
	if errors.As(err, &operr) {
		index := operr.ItemIndex
		response.ItemIndex = &index
		response.Hint = operr.Hint
		response.Message = operr.Message
		response.StatusCode = operr.StatusCode
		return response
	}

	var terr *netpie.TransportError
	if errors.As(err, &terr) {
		response.Message = terr.Message
		if terr.RawBody != nil {
			response.Message = *terr.RawBody
		}
		response.StatusCode = terr.StatusCode
	}
	return response
}
