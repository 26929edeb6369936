package domain

import "time"

// Exchange summarizes one completed send_request invocation. Bodies and
// header values are never recorded.
type Exchange struct {
	ID           string    `json:"id"`
	Method       string    `json:"method"`
	URL          string    `json:"url"`
	Status       uint16    `json:"status,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	Error        string    `json:"error,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	ResponseSize int       `json:"response_size"`
	CustomTLS    bool      `json:"custom_tls"`
	StartedAt    time.Time `json:"started_at"`
}

// Succeeded reports whether the exchange produced a response.
func (e Exchange) Succeeded() bool {
	return e.ErrorKind == ""
}
