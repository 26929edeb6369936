package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/samvad-api-helper/internal/apihelper"
	"gopkg.in/yaml.v3"
)

// loadRequestFile reads a RequestConfig from YAML or JSON. Files without a
// known extension are parsed as YAML, which also accepts JSON.
func loadRequestFile(path string) (apihelper.RequestConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return apihelper.RequestConfig{}, fmt.Errorf("request file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return apihelper.RequestConfig{}, fmt.Errorf("read request file: %w", err)
	}

	var cfg apihelper.RequestConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &cfg)
	default:
		err = yaml.Unmarshal(raw, &cfg)
	}
	if err != nil {
		return apihelper.RequestConfig{}, fmt.Errorf("decode request file %s: %w", filepath.Base(path), err)
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	return cfg, nil
}
