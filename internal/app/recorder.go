package app

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-api-helper/internal/apihelper"
	"github.com/samvad-hq/samvad-api-helper/internal/commands"
	"github.com/samvad-hq/samvad-api-helper/internal/domain"
	"github.com/samvad-hq/samvad-api-helper/internal/logger"
	"github.com/samvad-hq/samvad-api-helper/internal/storage"
	"github.com/samvad-hq/samvad-api-helper/pkg/sinks"
)

const (
	sinkDeliveryTimeout = 15 * time.Second
	redacted            = "xxxxx"
)

// recorder wraps the executor, journaling each call and handing a summary to
// the sinks. Neither step can change the result returned to the caller.
type recorder struct {
	app     string
	next    *apihelper.Executor
	journal storage.Journal
	fanout  *sinks.Fanout
	log     logger.Logger
	pending sync.WaitGroup
}

func (r *recorder) Send(ctx context.Context, cfg apihelper.RequestConfig) (*apihelper.ResponseData, error) {
	start := time.Now()
	resp, err := r.next.Send(ctx, cfg)
	ex := summarize(cfg, resp, err, start)

	if jerr := r.journal.Record(ex); jerr != nil {
		r.log.WarnObj("journal record failed", "journal_error", map[string]any{
			"exchange_id": ex.ID,
			"error":       jerr.Error(),
		})
	}
	r.publish(ctx, ex)
	return resp, err
}

// publish delivers ex to the sinks in the background.
func (r *recorder) publish(ctx context.Context, ex domain.Exchange) {
	if r.fanout.Size() == 0 {
		return
	}
	evt := sinks.NewEvent(r.app, ex)
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkDeliveryTimeout)
		defer cancel()
		delivered, err := r.fanout.Send(sendCtx, evt)
		if err != nil {
			r.log.ErrorObj("sink delivery failed", "sink_error", map[string]any{
				"exchange_id": ex.ID,
				"delivered":   delivered,
				"error":       err.Error(),
			})
		}
	}()
}

// wait blocks until in-flight sink deliveries finish.
func (r *recorder) wait() {
	r.pending.Wait()
}

// summarize builds the journal entry for one call. Bodies and header values
// are left out and the URL is redacted.
func summarize(cfg apihelper.RequestConfig, resp *apihelper.ResponseData, err error, start time.Time) domain.Exchange {
	ex := domain.Exchange{
		ID:         newExchangeID(),
		Method:     strings.ToUpper(strings.TrimSpace(cfg.Method)),
		URL:        redactURL(cfg.URL),
		DurationMs: time.Since(start).Milliseconds(),
		CustomTLS:  cfg.CertPath != "" || cfg.CAPath != "" || cfg.SkipVerification,
		StartedAt:  start.UTC(),
	}
	if err != nil {
		ex.ErrorKind = string(apihelper.KindOf(err))
		if ex.ErrorKind == "" {
			ex.ErrorKind = commands.KindInternal
		}
		ex.Error = err.Error()
		return ex
	}
	if resp != nil {
		ex.Status = resp.Status
		ex.ResponseSize = len(resp.Body)
	}
	return ex
}

func newExchangeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// redactURL masks the password, every query value and the fragment. Query
// keys are kept.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			q[k] = []string{redacted}
		}
		u.RawQuery = q.Encode()
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.Redacted()
}
