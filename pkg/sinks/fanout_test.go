package sinks

import (
	"context"
	"errors"
	"testing"

	"github.com/samvad-hq/samvad-api-helper/internal/domain"
	"github.com/samvad-hq/samvad-api-helper/internal/logger"
)

type stubSink struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return s.typ }
func (s *stubSink) Send(context.Context, Event) error {
	s.calls++
	return s.err
}
func (s *stubSink) Close() error {
	s.closed = true
	return nil
}

func TestFanoutSendAggregatesErrors(t *testing.T) {
	ok := &stubSink{id: "ok", typ: "http"}
	bad := &stubSink{id: "bad", typ: "http", err: errors.New("failed")}
	fanout := NewFanout([]Sink{ok, nil, bad})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil sinks to be skipped, size=%d", fanout.Size())
	}
	count, err := fanout.Send(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("every sink should be tried once, got ok=%d bad=%d", ok.calls, bad.calls)
	}
}

func TestFanoutCloseClosesSinks(t *testing.T) {
	s := &stubSink{id: "a", typ: "http"}
	if err := NewFanout([]Sink{s}).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.closed {
		t.Fatalf("sink was not closed")
	}
}

func TestNilFanoutIsInert(t *testing.T) {
	var f *Fanout
	if n, err := f.Send(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("nil fanout Send = %d, %v", n, err)
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	sinks, err := BuildAll(context.Background(), reg, []SinkConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPSinkConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(sinks) != 1 || sinks[0].Type() != TypeHTTP {
		t.Fatalf("unexpected sinks %#v", sinks)
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), DefaultRegistry(), []SinkConfig{{ID: "x", Type: "kafka"}}, nil)
	if err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestFailuresOnlySkipsSuccessfulExchanges(t *testing.T) {
	stub := &stubSink{id: "s", typ: "stub"}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, SinkConfig, logger.Logger) (Sink, error) { return stub, nil },
	})
	s, err := reg.SinkFor(context.Background(), SinkConfig{ID: "s", Type: "stub", FailuresOnly: true}, nil)
	if err != nil {
		t.Fatalf("SinkFor: %v", err)
	}

	if err := s.Send(context.Background(), NewEvent("app", domain.Exchange{ID: "1"})); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := s.Send(context.Background(), NewEvent("app", domain.Exchange{ID: "2", ErrorKind: "request_error"})); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected only the failed exchange to be delivered, got %d calls", stub.calls)
	}
}

func TestNewEventOutcome(t *testing.T) {
	if got := NewEvent("app", domain.Exchange{}).Outcome; got != "ok" {
		t.Fatalf("outcome = %q", got)
	}
	if got := NewEvent("app", domain.Exchange{ErrorKind: "io_error"}).Outcome; got != "io_error" {
		t.Fatalf("outcome = %q", got)
	}
}
