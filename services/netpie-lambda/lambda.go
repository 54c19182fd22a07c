package main

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/netpie/core/logger"
	"github.com/relabs-tech/netpie/iot/api"
	"github.com/relabs-tech/netpie/iot/netpie"
)

// Event is the invocation event. It is a batch request for one operation, e.g.
//
//  {"resource": "shadow", "operation": "get", "items": [{"parameters": {"alias": "led"}}]}
type Event struct {
	Resource  string `json:"resource"`
	Operation string `json:"operation"`
	api.BatchRequest
}

type handler struct {
	executor          *netpie.Executor
	defaultCredential string
}

// handle runs the batch of the event. An aborted batch is returned as error, so
// that the invocation fails.
func (h *handler) handle(ctx context.Context, event Event) (api.BatchResponse, error) {
	ctx, rlog := invocationContext(ctx)
	if event.Resource == "" || event.Operation == "" {
		return api.BatchResponse{}, errors.New("event needs resource and operation")
	}

	rlog.Infof("invoked for %s.%s with %d items", event.Resource, event.Operation, len(event.Items))
	records, err := h.executor.Execute(ctx, event.Execution(event.Resource, event.Operation, h.defaultCredential))
	if err != nil {
		rlog.WithError(err).Errorln("batch aborted")
		return api.BatchResponse{}, err
	}
	return api.BatchResponse{Records: records}, nil
}

// invocationContext returns ctx with an execution logger. The logger carries the
// AWS request ID as identity when ctx belongs to a Lambda invocation.
func invocationContext(ctx context.Context) (context.Context, *logrus.Entry) {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return logger.ContextWithLoggerIdentity(ctx, lc.AwsRequestID)
	}
	return logger.ContextWithLogger(ctx)
}

func main() {
	config := netpie.Config{}
	if err := envdecode.Decode(&config); err != nil {
		panic(err)
	}
	logger.InitLogger(logger.ParseLevel(config.LogLevel))

	executor, err := config.NewExecutor()
	if err != nil {
		panic(err)
	}
	h := &handler{executor: executor, defaultCredential: config.Credential}
	lambda.Start(h.handle)
}
