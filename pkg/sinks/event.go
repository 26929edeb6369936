package sinks

import (
	"time"

	"github.com/samvad-hq/samvad-api-helper/internal/domain"
)

// Event is the payload delivered to sinks after each send_request call.
type Event struct {
	App       string          `json:"app"`
	Outcome   string          `json:"outcome"`
	Exchange  domain.Exchange `json:"exchange"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// NewEvent wraps ex for delivery. Outcome is "ok" or the exchange error kind.
func NewEvent(app string, ex domain.Exchange) Event {
	outcome := "ok"
	if !ex.Succeeded() {
		outcome = ex.ErrorKind
	}
	return Event{
		App:       app,
		Outcome:   outcome,
		Exchange:  ex,
		EmittedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"exchange_id": e.Exchange.ID,
		"method":      e.Exchange.Method,
		"outcome":     e.Outcome,
	}
}
