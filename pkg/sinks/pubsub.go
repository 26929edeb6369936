package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/samvad-hq/samvad-api-helper/internal/logger"
	"google.golang.org/api/option"
)

// pubsubSink publishes events to a Google Cloud Pub/Sub topic.
type pubsubSink struct {
	id     string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    logger.Logger
}

func newPubSubSink(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("sink %q missing pubsub configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	if cfg.PubSub.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.PubSub.Endpoint))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubSink{
		id:     cfg.ID,
		client: client,
		topic:  client.Topic(cfg.PubSub.Topic),
		log:    logger.Ensure(log),
	}, nil
}

func (p *pubsubSink) ID() string   { return p.id }
func (p *pubsubSink) Type() string { return TypePubSub }

// Send publishes the event and waits for the server to acknowledge it.
func (p *pubsubSink) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := make(map[string]string)
	for k, v := range evt.attributes() {
		if v != "" {
			attrs[k] = v
		}
	}

	id, err := p.topic.Publish(ctx, &pubsub.Message{Data: payload, Attributes: attrs}).Get(ctx)
	if err != nil {
		p.log.ErrorObj("pubsub sink publish failed", "sink_pubsub_error", map[string]any{
			"sink_id": p.id,
			"error":   err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub sink delivered event", "sink_pubsub_delivery", map[string]any{
		"sink_id":    p.id,
		"message_id": id,
	})
	return nil
}

func (p *pubsubSink) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
