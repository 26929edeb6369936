package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRequest(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadRequestFileYAML(t *testing.T) {
	path := writeRequest(t, "req.yaml", `
method: POST
url: https://example.com/items
headers:
  Content-Type: application/json
body: '{"name":"x"}'
ca_path: /etc/ssl/ca.pem
skip_verification: true
timeout_seconds: 5
`)
	cfg, err := loadRequestFile(path)
	if err != nil {
		t.Fatalf("loadRequestFile: %v", err)
	}
	if cfg.Method != "POST" || cfg.URL != "https://example.com/items" || cfg.CAPath != "/etc/ssl/ca.pem" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Body == nil || *cfg.Body != `{"name":"x"}` {
		t.Fatalf("unexpected body %v", cfg.Body)
	}
	if !cfg.SkipVerification || cfg.TimeoutSeconds == nil || *cfg.TimeoutSeconds != 5 {
		t.Fatalf("flags not decoded: %+v", cfg)
	}
}

func TestLoadRequestFileJSON(t *testing.T) {
	path := writeRequest(t, "req.json", `{"method":"GET","url":"https://example.com"}`)
	cfg, err := loadRequestFile(path)
	if err != nil {
		t.Fatalf("loadRequestFile: %v", err)
	}
	if cfg.Body != nil || cfg.Headers == nil {
		t.Fatalf("expected absent body and empty headers, got %+v", cfg)
	}
}

func TestLoadRequestFileErrors(t *testing.T) {
	if _, err := loadRequestFile(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := loadRequestFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := loadRequestFile(writeRequest(t, "bad.json", `{"method":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
