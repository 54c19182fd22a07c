package iot

import "context"

// ShadowReader is an interface to read values from a device shadow
type ShadowReader interface {
	ReadShadow(ctx context.Context, alias string) (interface{}, error)
}

// MessagePublisher is an interface to publish messages to device topics
type MessagePublisher interface {
	PublishMessage(ctx context.Context, topic string, payload []byte) error
}
