package config

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BridgeAddr != "127.0.0.1:7878" {
		t.Fatalf("unexpected bridge_addr %q", cfg.BridgeAddr)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	if cfg.ClientIdentityEnabled {
		t.Fatalf("client identity must be opt-in")
	}
	if cfg.StorageType != "none" {
		t.Fatalf("journal should be disabled by default, got %q", cfg.StorageType)
	}
	if cfg.BridgeToken != "" {
		t.Fatalf("bridge token should be generated per launch, got %q", cfg.BridgeToken)
	}
	if len(cfg.BridgeAllowedOrigins) != 3 || cfg.BridgeAllowedOrigins[0] != "tauri://localhost" {
		t.Fatalf("unexpected allowed origins %v", cfg.BridgeAllowedOrigins)
	}
}

func TestLoadBridgeSettingsFromEnvironment(t *testing.T) {
	t.Setenv("BRIDGE_TOKEN", " secret ")
	t.Setenv("BRIDGE_ALLOWED_ORIGINS", "http://localhost:1420, tauri://localhost")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BridgeToken != "secret" {
		t.Fatalf("unexpected token %q", cfg.BridgeToken)
	}
	logged, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(logged), "secret") {
		t.Fatalf("token leaked into logged config: %s", logged)
	}
	if len(cfg.BridgeAllowedOrigins) != 2 || cfg.BridgeAllowedOrigins[0] != "http://localhost:1420" || cfg.BridgeAllowedOrigins[1] != "tauri://localhost" {
		t.Fatalf("unexpected allowed origins %q", cfg.BridgeAllowedOrigins)
	}
}

func TestLoadRejectsNonLoopbackBridgeAddr(t *testing.T) {
	for _, addr := range []string{"0.0.0.0:7878", "192.168.1.10:7878", "example.com:7878", "7878"} {
		t.Setenv("BRIDGE_ADDR", addr)
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for bridge_addr %q", addr)
		}
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("CLIENT_CACHE_SIZE", "4")
	t.Setenv("CLIENT_IDENTITY_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("expected no deadline, got %v", cfg.RequestTimeout)
	}
	if cfg.ClientCacheSize != 4 {
		t.Fatalf("expected cache size 4, got %d", cfg.ClientCacheSize)
	}
	if !cfg.ClientIdentityEnabled {
		t.Fatalf("expected client identity enabled")
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-1")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative timeout")
	}
}

func TestLoadRejectsOverflowingTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "18446744074")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for timeout beyond the duration range")
	}
}

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()
	if cfg.ClientCacheSize != 16 || cfg.StorageTTL <= 0 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}
