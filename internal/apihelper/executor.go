package apihelper

import (
	"context"
	"math"
	"time"

	"github.com/samvad-hq/samvad-api-helper/internal/logger"
	"github.com/samvad-hq/samvad-api-helper/pkg/httpclient"
)

// ClientSource hands out clients for a trust configuration. Nil settings
// select the shared default client.
type ClientSource interface {
	ClientFor(settings *httpclient.TLSSettings) (httpclient.Client, error)
}

// Options tunes an Executor.
type Options struct {
	// Timeout is the default per-request deadline. Zero means none.
	Timeout time.Duration
	// ClientIdentity presents the cert/key pair as a TLS client certificate
	// in addition to trusting the certificate.
	ClientIdentity bool
	Logger         logger.Logger
}

// Executor forwards RequestConfigs. It holds no per-call state and is safe
// for concurrent use.
type Executor struct {
	clients  ClientSource
	timeout  time.Duration
	identity bool
	log      logger.Logger
}

// NewExecutor wires an executor over clients.
func NewExecutor(clients ClientSource, opts Options) *Executor {
	return &Executor{
		clients:  clients,
		timeout:  opts.Timeout,
		identity: opts.ClientIdentity,
		log:      logger.Ensure(opts.Logger),
	}
}

// Send performs one request: build client, translate headers, dispatch,
// marshal. Every failure is an *Error and nothing is retried.
func (e *Executor) Send(ctx context.Context, cfg RequestConfig) (*ResponseData, error) {
	trust, err := buildTrust(cfg, e.identity)
	if err != nil {
		return nil, err
	}
	if trust.certIgnored {
		e.log.WarnObj("certificate ignored without private key", "cert_path", cfg.CertPath)
	}

	client, err := e.clients.ClientFor(trust.settings)
	if err != nil {
		return nil, newError(KindClientBuild, "failed to build HTTP client", err)
	}

	headers, err := TranslateHeaders(cfg.Headers)
	if err != nil {
		return nil, err
	}

	method, err := ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}

	e.log.DebugObj("dispatching request", "request", map[string]any{
		"method":     method,
		"url":        cfg.URL,
		"headers":    maskHeaders(cfg.Headers),
		"has_body":   cfg.Body != nil,
		"custom_tls": trust.settings != nil,
	})

	ctx, cancel := e.withDeadline(ctx, cfg.TimeoutSeconds)
	defer cancel()

	resp, err := client.Execute(ctx, httpclient.Request{
		Method: method,
		URL:    cfg.URL,
		Header: headers,
		Body:   cfg.Body,
	})
	if err != nil {
		return nil, newError(KindRequest, "request failed", err)
	}

	return marshalResponse(resp)
}

// MaxTimeoutSeconds is the largest deadline expressible as a time.Duration.
const MaxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// withDeadline applies the per-call override when given, else the default.
// Overrides beyond MaxTimeoutSeconds are clamped rather than wrapped.
func (e *Executor) withDeadline(ctx context.Context, overrideSeconds *int64) (context.Context, context.CancelFunc) {
	timeout := e.timeout
	if overrideSeconds != nil {
		timeout = SecondsToDuration(*overrideSeconds)
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// SecondsToDuration converts s to a Duration, saturating at the largest
// representable deadline.
func SecondsToDuration(s int64) time.Duration {
	if s > MaxTimeoutSeconds {
		s = MaxTimeoutSeconds
	}
	return time.Duration(s) * time.Second
}
