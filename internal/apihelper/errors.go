package apihelper

import (
	"errors"
	"fmt"
)

// Kind classifies why a send_request invocation failed.
type Kind string

const (
	KindIO                 Kind = "io_error"
	KindCertParse          Kind = "cert_parse_error"
	KindClientBuild        Kind = "client_build_error"
	KindInvalidHeaderName  Kind = "invalid_header_name"
	KindInvalidHeaderValue Kind = "invalid_header_value"
	KindInvalidMethod      Kind = "invalid_method"
	KindRequest            Kind = "request_error"
	KindBodyRead           Kind = "body_read_error"
)

// Error is a classified failure. Op is the user-facing stage description.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
