package apihelper

// RequestConfig declares one request to forward. Empty paths mean "not set".
// A certificate path is only honored together with a key path.
type RequestConfig struct {
	Method           string            `json:"method" yaml:"method"`
	URL              string            `json:"url" yaml:"url"`
	Headers          map[string]string `json:"headers" yaml:"headers"`
	Body             *string           `json:"body,omitempty" yaml:"body,omitempty"`
	CertPath         string            `json:"cert_path,omitempty" yaml:"cert_path,omitempty"`
	KeyPath          string            `json:"key_path,omitempty" yaml:"key_path,omitempty"`
	CAPath           string            `json:"ca_path,omitempty" yaml:"ca_path,omitempty"`
	SkipVerification bool              `json:"skip_verification,omitempty" yaml:"skip_verification,omitempty"`
	// TimeoutSeconds overrides the configured deadline; zero disables it.
	TimeoutSeconds *int64 `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// ResponseData is the marshalled result of a forwarded request.
type ResponseData struct {
	Status  uint16            `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}
