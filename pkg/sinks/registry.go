package sinks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/samvad-api-helper/internal/logger"
)

// Builder creates a Sink from a config entry.
type Builder func(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error)

// Registry maps sink types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	SinkFor(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a sink type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// SinkFor builds the sink described by cfg.
func (r *registry) SinkFor(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("sink %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no sink registered for type %q", cfg.Type)
	}
	s, err := builder(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.FailuresOnly {
		s = failuresOnly{Sink: s}
	}
	return s, nil
}

// DefaultRegistry wires up the built-in sinks.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:   newHTTPSink,
		TypeSQS:    newSQSSink,
		TypeSNS:    newSNSSink,
		TypePubSub: newPubSubSink,
	})
}

// BuildAll instantiates sinks for cfgs. Sinks built before a failure are closed.
func BuildAll(ctx context.Context, reg Registry, cfgs []SinkConfig, log logger.Logger) ([]Sink, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}

	var out []Sink
	for _, cfg := range cfgs {
		s, err := reg.SinkFor(ctx, cfg, log)
		if err != nil {
			NewFanout(out).Close()
			return nil, fmt.Errorf("build sink %q: %w", cfg.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// failuresOnly drops events for successful exchanges.
type failuresOnly struct {
	Sink
}

func (f failuresOnly) Send(ctx context.Context, evt Event) error {
	if evt.Exchange.Succeeded() {
		return nil
	}
	return f.Sink.Send(ctx, evt)
}

func (f failuresOnly) Close() error {
	if c, ok := f.Sink.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
