package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/samvad-hq/samvad-api-helper/internal/logger"
)

// snsClient defines the minimal subset of the SNS client used by snsSink.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsSink publishes events to an AWS SNS topic.
type snsSink struct {
	id       string
	topicARN string
	client   snsClient
	log      logger.Logger
}

func newSNSSink(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("sink %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.AWSConfig)
	if err != nil {
		return nil, err
	}
	endpoint := cfg.SNS.Endpoint
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &snsSink{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		client:   client,
		log:      logger.Ensure(log),
	}, nil
}

func (s *snsSink) ID() string   { return s.id }
func (s *snsSink) Type() string { return TypeSNS }

func (s *snsSink) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := make(map[string]snstypes.MessageAttributeValue)
	for k, v := range evt.attributes() {
		if v == "" {
			continue
		}
		dt, sv := stringAttribute(v)
		attrs[k] = snstypes.MessageAttributeValue{DataType: dt, StringValue: sv}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(string(payload)),
		MessageAttributes: attrs,
	})
	if err != nil {
		s.log.ErrorObj("sns sink publish failed", "sink_sns_error", map[string]any{
			"sink_id": s.id,
			"error":   err.Error(),
		})
		return fmt.Errorf("publish to sns: %w", err)
	}
	s.log.DebugObj("sns sink delivered event", "sink_sns_delivery", map[string]any{
		"sink_id":    s.id,
		"message_id": aws.ToString(out.MessageId),
	})
	return nil
}
