package sinks

import (
	"context"
	"errors"
	"fmt"
)

// Fanout dispatches events to every configured sink.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a dispatcher over sinks, skipping nil entries.
func NewFanout(sinks []Sink) *Fanout {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Fanout{sinks: cp}
}

// Send forwards evt to each sink in order and returns how many accepted it.
// Failures of individual sinks are joined into the returned error.
func (f *Fanout) Send(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.sinks) == 0 {
		return 0, nil
	}

	var errs []error
	delivered := 0
	for _, s := range f.sinks {
		if err := s.Send(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s sink[%s]: %w", s.Type(), s.ID(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Close releases sinks holding connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, s := range f.sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s sink[%s]: %w", s.Type(), s.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
