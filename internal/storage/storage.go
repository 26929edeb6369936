// Package storage keeps an optional local journal of completed exchanges.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-api-helper/internal/domain"
)

// Journal records exchange summaries and lists the most recent ones.
type Journal interface {
	Close() error
	Record(ex domain.Exchange) error
	Recent(limit int) ([]domain.Exchange, error)
}

// Options controls retention characteristics for concrete journal implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewJournal creates the configured storage backend.
func NewJournal(typ, path string, opts Options) (Journal, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopJournal{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJournal struct{}

func (noopJournal) Close() error                          { return nil }
func (noopJournal) Record(domain.Exchange) error          { return nil }
func (noopJournal) Recent(int) ([]domain.Exchange, error) { return nil, nil }
