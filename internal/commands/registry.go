package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samvad-hq/samvad-api-helper/internal/apihelper"
)

// Failure kinds produced by the command layer itself. Executor failures keep
// their apihelper kind.
const (
	KindUnknownCommand   = "unknown_command"
	KindInvalidArguments = "invalid_arguments"
	KindInternal         = "internal_error"
)

// ErrUnknownCommand is returned by Invoke for unregistered names.
var ErrUnknownCommand = errors.New("unknown command")

// Handler runs one command with its raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Failure is the error shape returned to the frontend.
type Failure struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// argsError marks a malformed argument payload.
type argsError struct {
	command string
	err     error
}

func (e *argsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.command, e.err)
}

func (e *argsError) Unwrap() error { return e.err }

// Registry maps command names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h, replacing any previous binding.
func (r *Registry) Register(name string, h Handler) {
	if name = strings.TrimSpace(name); name == "" || h == nil {
		return
	}
	r.mu.Lock()
	r.handlers[name] = h
	r.mu.Unlock()
}

// Names lists registered commands in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Invoke runs the named command.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	r.mu.RLock()
	h := r.handlers[name]
	r.mu.RUnlock()
	if h == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return h(ctx, args)
}

// FailureOf flattens err into the boundary shape: one message and a kind.
func FailureOf(err error) Failure {
	if err == nil {
		return Failure{}
	}
	kind := string(apihelper.KindOf(err))
	if kind == "" {
		var ae *argsError
		switch {
		case errors.Is(err, ErrUnknownCommand):
			kind = KindUnknownCommand
		case errors.As(err, &ae):
			kind = KindInvalidArguments
		default:
			kind = KindInternal
		}
	}
	return Failure{Message: err.Error(), Kind: kind}
}

// decodeArgs unmarshals args into dst. Empty or null payloads leave dst untouched.
func decodeArgs(command string, args json.RawMessage, dst any) error {
	trimmed := strings.TrimSpace(string(args))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return &argsError{command: command, err: err}
	}
	return nil
}
