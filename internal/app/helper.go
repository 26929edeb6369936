package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-api-helper/internal/apihelper"
	"github.com/samvad-hq/samvad-api-helper/internal/bridge"
	"github.com/samvad-hq/samvad-api-helper/internal/commands"
	"github.com/samvad-hq/samvad-api-helper/internal/config"
	"github.com/samvad-hq/samvad-api-helper/internal/logger"
	"github.com/samvad-hq/samvad-api-helper/internal/storage"
	"github.com/samvad-hq/samvad-api-helper/pkg/httpclient"
	"github.com/samvad-hq/samvad-api-helper/pkg/sinks"
	"go.uber.org/zap"
)

// Helper is the API helper runtime. It owns the client factory, the exchange
// journal and the sinks, and exposes them through the command registry.
type Helper struct {
	cfg      *config.Config
	factory  *httpclient.Factory
	journal  storage.Journal
	fanout   *sinks.Fanout
	recorder *recorder
	commands *commands.Registry
	log      logger.Logger
}

// NewHelper builds the runtime from cfg.
func NewHelper(ctx context.Context, cfg *config.Config, log logger.Logger) (*Helper, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	base := httpclient.Options{Proxy: cfg.HTTPProxy}
	if logger.S != nil {
		base.Logger = logger.S
	}
	factory, err := httpclient.NewFactory(base, cfg.ClientCacheSize)
	if err != nil {
		return nil, fmt.Errorf("init http client factory: %w", err)
	}

	journal, err := storage.NewJournal(cfg.StorageType, cfg.BBoltPath, storage.Options{
		EntryTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		factory.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	fanout, err := loadSinks(ctx, cfg.SinksFile, log)
	if err != nil {
		journal.Close()
		factory.Close()
		return nil, err
	}

	exec := apihelper.NewExecutor(factory, apihelper.Options{
		Timeout:        cfg.RequestTimeout,
		ClientIdentity: cfg.ClientIdentityEnabled,
		Logger:         log,
	})
	rec := &recorder{
		app:     cfg.AppName,
		next:    exec,
		journal: journal,
		fanout:  fanout,
		log:     log,
	}

	return &Helper{
		cfg:      cfg,
		factory:  factory,
		journal:  journal,
		fanout:   fanout,
		recorder: rec,
		commands: commands.Default(rec, journal),
		log:      log,
	}, nil
}

// loadSinks builds the enabled sinks from path. An empty path disables sinks.
func loadSinks(ctx context.Context, path string, log logger.Logger) (*sinks.Fanout, error) {
	if path == "" {
		return sinks.NewFanout(nil), nil
	}

	reg, err := sinks.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := reg.Enabled()
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return sinks.NewFanout(built), nil
}

// Commands returns the registry serving frontend commands.
func (h *Helper) Commands() *commands.Registry {
	return h.commands
}

// Serve runs the command bridge until ctx is cancelled. ready, when set,
// receives the bound address and the token the frontend must send.
func (h *Helper) Serve(ctx context.Context, ready func(addr, token string)) error {
	if h == nil || h.commands == nil {
		return fmt.Errorf("helper is not initialized")
	}

	h.log.InfoObj("bridge starting", "bridge_state", map[string]any{
		"address":     h.cfg.BridgeAddr,
		"commands":    h.commands.Names(),
		"sinks_count": h.fanout.Size(),
		"origins":     h.cfg.BridgeAllowedOrigins,
	})
	srv := bridge.New(h.commands, bridge.Options{
		Addr:           h.cfg.BridgeAddr,
		MaxBodyBytes:   h.cfg.MaxRequestBytes,
		Token:          h.cfg.BridgeToken,
		AllowedOrigins: h.cfg.BridgeAllowedOrigins,
		Ready:          ready,
		Logger:         zapFor(h.log),
	})
	return srv.Run(ctx)
}

// Close waits for pending sink deliveries and releases clients, sinks and storage.
func (h *Helper) Close() error {
	if h == nil {
		return nil
	}
	h.recorder.wait()

	var errs []error
	if err := h.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := h.journal.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	h.factory.Close()
	return errors.Join(errs...)
}

func zapFor(log logger.Logger) *zap.Logger {
	if zl, ok := log.(*logger.ZapLogger); ok && zl.Sugar() != nil {
		return zl.Sugar().Desugar()
	}
	return zap.NewNop()
}
