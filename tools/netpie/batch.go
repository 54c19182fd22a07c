package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/netpie/iot/api"
	"github.com/relabs-tech/netpie/iot/netpie"
)

// itemFlags are the flags shared by the operation commands
type itemFlags struct {
	itemsFile      string
	continueOnFail bool
	raw            bool
	timeout        time.Duration
}

// loadBatch reads a batch from a YAML items file, e.g.
//
//  continueOnFail: true
//  items:
//    - parameters:
//        alias: led
//    - parameters:
//        alias: temperature
//        options:
//          timeout: 2500
func loadBatch(path string) (api.BatchRequest, error) {
	var batch api.BatchRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return batch, err
	}
	if err = yaml.Unmarshal(data, &batch); err != nil {
		return batch, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	if len(batch.Items) == 0 {
		return batch, errors.New(path + " contains no items")
	}
	return batch, nil
}

// batch returns the batch for the command: the items file if one was given,
// otherwise a single item with parameters. --raw and --timeout apply to every
// item which does not set simplify or options.timeout itself.
func (f *itemFlags) batch(parameters map[string]interface{}) (api.BatchRequest, error) {
	batch := api.BatchRequest{
		ContinueOnFail: f.continueOnFail,
		Items:          []netpie.Item{{Parameters: parameters}},
	}
	if f.itemsFile != "" {
		var err error
		if batch, err = loadBatch(f.itemsFile); err != nil {
			return batch, err
		}
		if f.continueOnFail {
			batch.ContinueOnFail = true
		}
	}
	for i := range batch.Items {
		batch.Items[i].Parameters = f.apply(batch.Items[i].Parameters)
	}
	return batch, nil
}

// apply returns parameters with the defaults from the flags filled in
func (f *itemFlags) apply(parameters map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(parameters)+2)
	for k, v := range parameters {
		out[k] = v
	}
	if _, ok := out["simplify"]; f.raw && !ok {
		out["simplify"] = false
	}

	options := map[string]interface{}{}
	if o, ok := out["options"].(map[string]interface{}); ok {
		for k, v := range o {
			options[k] = v
		}
	}
	if _, ok := options["timeout"]; f.timeout > 0 && !ok {
		options["timeout"] = f.timeout.Milliseconds()
	}
	if len(options) > 0 {
		out["options"] = options
	}
	return out
}
