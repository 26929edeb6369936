package sinks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Supported sink types.
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// configFile represents the structure of the sinks file.
type configFile struct {
	Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
}

// SinkConfig represents a single sink entry declared in the sinks file.
type SinkConfig struct {
	ID      string `json:"id" yaml:"id"`
	Type    string `json:"type" yaml:"type"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`
	// FailuresOnly restricts delivery to exchanges that ended in an error.
	FailuresOnly bool              `json:"failures_only" yaml:"failures_only"`
	HTTP         *HTTPSinkConfig   `json:"http" yaml:"http"`
	SQS          *SQSSinkConfig    `json:"sqs" yaml:"sqs"`
	SNS          *SNSSinkConfig    `json:"sns" yaml:"sns"`
	PubSub       *PubSubSinkConfig `json:"pubsub" yaml:"pubsub"`
}

// HTTPSinkConfig holds webhook settings.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSConfig holds settings shared by the AWS sinks. Static credentials are
// optional; the default credential chain is used otherwise.
type AWSConfig struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSSinkConfig holds AWS SQS settings.
type SQSSinkConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	AWSConfig `yaml:",inline"`
}

// SNSSinkConfig holds AWS SNS settings.
type SNSSinkConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSConfig `yaml:",inline"`
}

// PubSubSinkConfig holds Google Cloud Pub/Sub settings.
type PubSubSinkConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// ConfigRegistry holds sink definitions loaded from a sinks file.
type ConfigRegistry struct {
	mu    sync.RWMutex
	sinks []SinkConfig
	idx   map[string]SinkConfig
}

// LoadRegistry loads sink definitions from a YAML/JSON file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sinks file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}

	file, err := parseSinksFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(file.Sinks) == 0 {
		return nil, errors.New("sinks file contains no sinks entries")
	}

	reg := &ConfigRegistry{
		sinks: make([]SinkConfig, len(file.Sinks)),
		idx:   make(map[string]SinkConfig, len(file.Sinks)),
	}
	for i := range file.Sinks {
		cfg := sanitizeSinkConfig(file.Sinks[i])
		if err := validateSinkConfig(cfg); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate sink id %q", cfg.ID)
		}
		reg.sinks[i] = cfg
		reg.idx[cfg.ID] = cfg
	}
	return reg, nil
}

// parseSinksFile decodes by extension, or tries YAML then JSON when there is none.
func parseSinksFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file configFile
		if err := d.fn(data, &file); err != nil {
			lastErr = fmt.Errorf("decode %s sinks: %w", d.name, err)
			continue
		}
		return file, nil
	}
	if lastErr != nil {
		return configFile{}, lastErr
	}
	return configFile{}, fmt.Errorf("sinks file extension %q not recognized (expected YAML or JSON)", ext)
}

func sanitizeSinkConfig(cfg SinkConfig) SinkConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		c.Headers = sanitizeHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.AWSConfig = sanitizeAWS(c.AWSConfig)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.AWSConfig = sanitizeAWS(c.AWSConfig)
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		c.Endpoint = strings.TrimSpace(c.Endpoint)
		cfg.PubSub = &c
	}
	return cfg
}

func sanitizeAWS(c AWSConfig) AWSConfig {
	c.Region = strings.TrimSpace(c.Region)
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
	c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
	c.SessionToken = strings.TrimSpace(c.SessionToken)
	return c
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateSinkConfig checks that required fields are present for the type.
func validateSinkConfig(cfg SinkConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for sink %q", cfg.ID)
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for sink %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for sink %q", cfg.ID)
		}
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("sqs config required for sink %q", cfg.ID)
		}
		if cfg.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.uri is required for sink %q", cfg.ID)
		}
		if cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.region is required for sink %q", cfg.ID)
		}
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("sns config required for sink %q", cfg.ID)
		}
		if cfg.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for sink %q", cfg.ID)
		}
		if cfg.SNS.Region == "" {
			return fmt.Errorf("sns.region is required for sink %q", cfg.ID)
		}
	case TypePubSub:
		if cfg.PubSub == nil {
			return fmt.Errorf("pubsub config required for sink %q", cfg.ID)
		}
		if cfg.PubSub.ProjectID == "" || cfg.PubSub.Topic == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic are required for sink %q", cfg.ID)
		}
	default:
		return fmt.Errorf("unsupported sink type %q for sink %q", cfg.Type, cfg.ID)
	}
	return nil
}

// ByID returns the sink config by id.
func (r *ConfigRegistry) ByID(id string) (SinkConfig, bool) {
	if r == nil {
		return SinkConfig{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return SinkConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns every configured sink.
func (r *ConfigRegistry) All() []SinkConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SinkConfig, len(r.sinks))
	copy(out, r.sinks)
	return out
}

// Enabled returns the sinks that are switched on.
func (r *ConfigRegistry) Enabled() []SinkConfig {
	all := r.All()
	if len(all) == 0 {
		return nil
	}
	out := make([]SinkConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns the enabled flag, defaulting to true.
func (cfg SinkConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
