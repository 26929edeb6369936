package httpclient

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Factory owns the shared default client and a bounded cache of clients
// built for custom trust settings. All clients are read-only once built.
type Factory struct {
	base   Options
	shared *RestyClient
	cache  *lru.Cache[string, *RestyClient]
}

// NewFactory builds the shared client from base and prepares a cache holding
// up to cacheSize custom clients.
func NewFactory(base Options, cacheSize int) (*Factory, error) {
	base.TLS = nil
	shared, err := NewRestyClient(base)
	if err != nil {
		return nil, fmt.Errorf("build shared client: %w", err)
	}

	cache, err := lru.NewWithEvict(cacheSize, func(_ string, c *RestyClient) {
		c.CloseIdleConnections()
	})
	if err != nil {
		return nil, fmt.Errorf("init client cache: %w", err)
	}

	return &Factory{base: base, shared: shared, cache: cache}, nil
}

// Shared returns the process-wide default client.
func (f *Factory) Shared() *RestyClient { return f.shared }

// ClientFor returns a client honoring settings. Nil settings select the shared
// client; settings with a fingerprint are served from the cache when possible.
func (f *Factory) ClientFor(settings *TLSSettings) (Client, error) {
	if settings == nil {
		return f.shared, nil
	}

	key := settings.Fingerprint
	if key != "" {
		if c, ok := f.cache.Get(key); ok {
			return c, nil
		}
	}

	opts := f.base
	opts.TLS = settings
	c, err := NewRestyClient(opts)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return c, nil
	}

	// Another caller may have built the same client concurrently; keep the first.
	if prev, ok, _ := f.cache.PeekOrAdd(key, c); ok {
		return prev, nil
	}
	return c, nil
}

// Cached reports how many custom clients are currently cached.
func (f *Factory) Cached() int { return f.cache.Len() }

// Close releases idle connections held by every client.
func (f *Factory) Close() {
	f.shared.CloseIdleConnections()
	f.cache.Purge()
}
