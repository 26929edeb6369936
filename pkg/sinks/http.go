package sinks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-api-helper/internal/logger"
	"github.com/samvad-hq/samvad-api-helper/pkg/httpclient"
)

const errorSnippetBytes = 512

// httpSink posts events as JSON to a webhook.
type httpSink struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     logger.Logger
}

func newHTTPSink(_ context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}

	client, err := httpclient.NewRestyHTTPClient(httpclient.Options{
		Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}

	method := cfg.HTTP.Method
	if method == "" {
		method = httpDefaultMethod
	}
	return &httpSink{
		id:      cfg.ID,
		method:  method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  client,
		log:     logger.Ensure(log),
	}, nil
}

func (h *httpSink) ID() string   { return h.id }
func (h *httpSink) Type() string { return TypeHTTP }

func (h *httpSink) Send(ctx context.Context, evt Event) error {
	req := h.client.R().
		SetContext(ctx).
		SetBody(evt)

	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}
	req.SetHeader("Content-Type", "application/json")

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("http response status %d: %s", resp.StatusCode(), readBodySnippet(resp.Body()))
	}
	h.log.DebugObj("http sink delivered event", "sink_http_delivery", map[string]any{
		"sink_id":     h.id,
		"exchange_id": evt.Exchange.ID,
		"status":      resp.StatusCode(),
	})
	return nil
}

func (h *httpSink) Close() error {
	h.client.GetClient().CloseIdleConnections()
	return nil
}

func readBodySnippet(body []byte) string {
	if len(body) > errorSnippetBytes {
		body = body[:errorSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}
