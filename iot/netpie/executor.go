package netpie

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/netpie/core/logger"
)

// Item is one input item of a batch. Parameters holds the parameter values the
// host resolved for this item, e.g. "alias", "simplify" or "options".
type Item struct {
	JSON       map[string]interface{} `json:"json,omitempty" yaml:"json,omitempty"`
	Parameters map[string]interface{} `json:"parameters" yaml:"parameters"`
}

// OutputRecord is the result for one input item. PairedItem is the index of
// the input item.
type OutputRecord struct {
	JSON       interface{} `json:"json"`
	PairedItem int         `json:"pairedItem"`
}

// Execution is one batch execution of an operation
type Execution struct {
	Resource       string
	Operation      string
	// Credential names the credential to use, CredentialName if empty
	Credential     string
	ContinueOnFail bool
	Items          []Item
}

// Executor runs operations against the NETPIE API
type Executor struct {
	baseURL    string
	dispatcher Dispatcher
}

// NewExecutor returns an executor which sends its requests through dispatcher
// to the API rooted at baseURL
func NewExecutor(baseURL string, dispatcher Dispatcher) *Executor {
	if dispatcher == nil {
		panic("dispatcher is missing")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Executor{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		dispatcher: dispatcher,
	}
}

// BaseURL returns the API root of the executor
func (e *Executor) BaseURL() string {
	return e.baseURL
}

// Execute runs the operation for every item, strictly one after another and in
// input order.
//
// With ContinueOnFail, a failing item produces a record with message, statusCode
// and hint, and the batch goes on; the result then holds exactly one record per
// item. Without it, the first failure aborts the batch with an *OperationError
// and no records are returned.
func (e *Executor) Execute(ctx context.Context, x Execution) ([]OutputRecord, error) {
	ctx, rlog := logger.ContextWithLogger(ctx)
	op, supported := LookupOperation(x.Resource, x.Operation)
	rlog = rlog.WithFields(logrus.Fields{
		"operation": x.Resource + "." + x.Operation,
		"items":     len(x.Items),
	})
	rlog.Debugln("executing batch")

	credential := x.Credential
	if credential == "" {
		credential = CredentialName
	}

	records := make([]OutputRecord, 0, len(x.Items))
	for i, item := range x.Items {
		var (
			out  interface{}
			err  error
			hint string
		)
		if supported {
			hint = op.Hint(i)
			out, err = e.executeItem(ctx, op, credential, item, i)
		} else {
			hint = unsupportedHint(x.Resource, x.Operation, i)
			err = &UnsupportedOperationError{ItemIndex: i, Resource: x.Resource, Operation: x.Operation}
		}

		if err == nil {
			records = append(records, OutputRecord{JSON: out, PairedItem: i})
			continue
		}
		if !x.ContinueOnFail {
			rlog.WithField("item", i).WithError(err).Errorln("aborting batch")
			return nil, fatalError(err, hint, i)
		}
		rlog.WithField("item", i).WithError(err).Warnln("item failed, continuing")
		records = append(records, failureRecord(err, hint, i))
	}
	return records, nil
}

// executeItem runs resolve, build, dispatch and simplify for a single item
func (e *Executor) executeItem(ctx context.Context, op *Operation, credential string, item Item, index int) (interface{}, error) {
	params, err := op.Resolve(item, index)
	if err != nil {
		return nil, err
	}
	request, err := op.BuildRequest(e.baseURL, params, index)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("item", index).Debugln("dispatching", op.Key())
	response, err := e.dispatcher.Dispatch(ctx, request, credential)
	if err != nil {
		return nil, err
	}
	if !params.Simplify {
		return response, nil
	}
	return op.Simplify(response, params), nil
}

// TestCredential checks the named credential against the API. It returns nil if the
// API accepted the credential, and a *TransportError otherwise.
func (e *Executor) TestCredential(ctx context.Context, credential string) error {
	ctx, _ = logger.ContextWithLogger(ctx)
	_, err := e.dispatcher.Dispatch(ctx, RequestDescriptor{
		Method:   http.MethodGet,
		URL:      e.baseURL + ShadowGet.Path,
		JSONMode: true,
		Timeout:  DefaultTimeout,
	}, credential)
	return err
}
