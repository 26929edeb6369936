package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/samvad-hq/samvad-api-helper/internal/logger"
)

// sqsClient defines the minimal subset of the SQS client used by sqsSink.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsSink sends events to an AWS SQS queue.
type sqsSink struct {
	id       string
	queueURL string
	client   sqsClient
	log      logger.Logger
}

func newSQSSink(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("sink %q missing sqs configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.AWSConfig)
	if err != nil {
		return nil, err
	}
	endpoint := cfg.SQS.Endpoint
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &sqsSink{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		client:   client,
		log:      logger.Ensure(log),
	}, nil
}

func (s *sqsSink) ID() string   { return s.id }
func (s *sqsSink) Type() string { return TypeSQS }

// Send enqueues the event as a JSON message.
func (s *sqsSink) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := make(map[string]types.MessageAttributeValue)
	for k, v := range evt.attributes() {
		if v == "" {
			continue
		}
		dt, sv := stringAttribute(v)
		attrs[k] = types.MessageAttributeValue{DataType: dt, StringValue: sv}
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(payload)),
		MessageAttributes: attrs,
	}
	if _, err := s.client.SendMessage(ctx, input); err != nil {
		s.log.ErrorObj("sqs sink send failed", "sink_sqs_error", map[string]any{
			"sink_id": s.id,
			"error":   err.Error(),
		})
		return fmt.Errorf("send message to sqs: %w", err)
	}
	s.log.DebugObj("sqs sink delivered event", "sink_sqs_delivery", map[string]any{
		"sink_id":     s.id,
		"exchange_id": evt.Exchange.ID,
	})
	return nil
}
