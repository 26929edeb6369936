package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures the transport behind a resty client.
type Options struct {
	// Timeout bounds the whole exchange including the body read. Zero disables it.
	Timeout time.Duration
	// Proxy overrides the environment proxy settings when non-empty.
	Proxy  string
	TLS    *TLSSettings
	Logger resty.Logger
}

// TLSSettings is the effective trust configuration of one client.
type TLSSettings struct {
	RootCAs            *x509.CertPool
	Certificates       []tls.Certificate
	InsecureSkipVerify bool
	// Fingerprint identifies the material the settings were built from.
	// Clients are only cached when it is set.
	Fingerprint string
}

func (s *TLSSettings) config() *tls.Config {
	return &tls.Config{
		RootCAs:            s.RootCAs,
		Certificates:       s.Certificates,
		InsecureSkipVerify: s.InsecureSkipVerify, //nolint:gosec // explicit per-request opt-in
	}
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

var _ Client = (*RestyClient)(nil)

// NewRestyClient creates a new RestyClient with the given options.
func NewRestyClient(opts Options) (*RestyClient, error) {
	c, err := newRestyBaseClient(opts)
	if err != nil {
		return nil, err
	}
	return &RestyClient{client: c}, nil
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(opts Options) (*resty.Client, error) {
	return newRestyBaseClient(opts)
}

// newRestyBaseClient creates a resty.Client over a fresh transport. The client
// keeps no cookie jar so calls sharing it cannot observe each other.
func newRestyBaseClient(opts Options) (*resty.Client, error) {
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", opts.Timeout)
	}

	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("default transport is not an *http.Transport")
	}
	transport := base.Clone()

	if opts.Proxy != "" {
		proxyURL, err := parseProxy(opts.Proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	if opts.TLS != nil {
		transport.TLSClientConfig = opts.TLS.config()
	}

	c := resty.NewWithClient(&http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	})
	c.SetAllowGetMethodPayload(true)
	c.SetPreRequestHook(restoreBody)
	if opts.Logger != nil {
		c.SetLogger(opts.Logger)
	}
	return c, nil
}

func parseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy url %q must include scheme and host", raw)
	}
	return u, nil
}

// Execute sends req and returns the response with its body left unread.
func (r *RestyClient) Execute(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)

	if len(req.Header) > 0 {
		rr.SetHeaderMultiValues(req.Header)
	}
	if req.Body != nil {
		rr.SetBody(*req.Body)
		ctx = context.WithValue(ctx, rawBodyKey{}, *req.Body)
		rr.SetContext(ctx)
	}

	resp, err := rr.Execute(req.Method, req.URL)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, err
	}
	return resp, nil
}

type rawBodyKey struct{}

// restoreBody attaches the caller's body when resty left the request empty.
// resty skips payloads for HEAD and OPTIONS.
func restoreBody(_ *resty.Client, req *http.Request) error {
	body, ok := req.Context().Value(rawBodyKey{}).(string)
	if !ok || body == "" || (req.Body != nil && req.Body != http.NoBody) {
		return nil
	}
	req.Body = io.NopCloser(strings.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
	req.ContentLength = int64(len(body))
	return nil
}

// CloseIdleConnections releases pooled connections of the underlying transport.
func (r *RestyClient) CloseIdleConnections() {
	if r == nil || r.client == nil {
		return
	}
	r.client.GetClient().CloseIdleConnections()
}
