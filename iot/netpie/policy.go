package netpie

import (
	"errors"
	"fmt"

	"github.com/relabs-tech/netpie/core/pointers"
)

// failureDetails extracts the diagnostics of a failed item: the raw response
// body if there is one, else the error message, else the hint.
func failureDetails(err error, hint string) (message string, statusCode *int) {
	var terr *TransportError
	if errors.As(err, &terr) {
		statusCode = terr.StatusCode
		if body := pointers.SafeString(terr.RawBody); body != "" {
			return body, statusCode
		}
		if terr.Message != "" {
			return terr.Message, statusCode
		}
	}
	if err != nil && err.Error() != "" {
		return err.Error(), statusCode
	}
	return hint, statusCode
}

// failureRecord is the output record of a failed item when continue-on-failure
// is enabled
func failureRecord(err error, hint string, index int) OutputRecord {
	message, statusCode := failureDetails(err, hint)
	var status interface{}
	if statusCode != nil {
		status = *statusCode
	}
	return OutputRecord{
		JSON: map[string]interface{}{
			"message":    message,
			"statusCode": status,
			"hint":       hint,
		},
		PairedItem: index,
	}
}

// fatalError is the error which aborts the batch when continue-on-failure is disabled
func fatalError(err error, hint string, index int) *OperationError {
	message, statusCode := failureDetails(err, hint)
	return &OperationError{
		ItemIndex:  index,
		Hint:       hint,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

func unsupportedHint(resource, operation string, index int) string {
	return fmt.Sprintf("Failed to run %s.%s for item %d. Check that the resource and operation are supported.", resource, operation, index+1)
}
