package sinks

import "context"

// Sink delivers exchange events to a downstream destination (webhook, SQS, etc).
type Sink interface {
	ID() string
	Type() string
	Send(ctx context.Context, evt Event) error
}
