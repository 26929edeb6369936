package httpclient

import (
	"context"
	"io"
	"net/http"
)

// Request is one outbound call. Body is nil when no payload is sent.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   *string
}

// Response exposes the parts of a received response callers read. The raw
// body is unread and must be closed by the caller.
type Response interface {
	StatusCode() int
	Header() http.Header
	RawBody() io.ReadCloser
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Execute(ctx context.Context, req Request) (Response, error)
}
