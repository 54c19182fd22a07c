package netpie

import (
	"context"

	"github.com/relabs-tech/netpie/iot"
)

// Device gives single-call access to one device credential. Every call runs a
// one-item batch with continue-on-failure disabled, so failures are returned
// as *OperationError.
type Device struct {
	executor   *Executor
	credential string
}

var (
	_ iot.ShadowReader     = (*Device)(nil)
	_ iot.MessagePublisher = (*Device)(nil)
)

// NewDevice returns a device using the named credential
func NewDevice(executor *Executor, credential string) *Device {
	return &Device{executor: executor, credential: credential}
}

// ReadShadow returns the simplified shadow value for alias
func (d *Device) ReadShadow(ctx context.Context, alias string) (interface{}, error) {
	records, err := d.executor.Execute(ctx, Execution{
		Resource:   ShadowGet.Resource,
		Operation:  ShadowGet.Name,
		Credential: d.credential,
		Items:      []Item{{Parameters: map[string]interface{}{"alias": alias}}},
	})
	if err != nil {
		return nil, err
	}
	out, _ := records[0].JSON.(map[string]interface{})
	return out["value"], nil
}

// PublishMessage publishes payload as text/plain to topic
func (d *Device) PublishMessage(ctx context.Context, topic string, payload []byte) error {
	_, err := d.executor.Execute(ctx, Execution{
		Resource:   MessagePublish.Resource,
		Operation:  MessagePublish.Name,
		Credential: d.credential,
		Items: []Item{{Parameters: map[string]interface{}{
			"topic":   topic,
			"payload": string(payload),
		}}},
	})
	return err
}
