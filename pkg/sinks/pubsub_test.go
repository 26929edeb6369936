package sinks

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubSinkPublishes(t *testing.T) {
	// In-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "exchanges"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	sink, err := newPubSubSink(ctx, SinkConfig{
		ID:     "ps",
		Type:   TypePubSub,
		PubSub: &PubSubSinkConfig{ProjectID: "test-project", Topic: "exchanges"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubSink: %v", err)
	}
	defer sink.(*pubsubSink).Close()

	if err := sink.Send(ctx, failedEvent()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["exchange_id"] != "ex-9" {
		t.Fatalf("unexpected attributes %v", msgs[0].Attributes)
	}
}
