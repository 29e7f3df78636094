package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUpstreamURL is the transcription backend the gateway forwards to.
	// Keep this in sync with the client's base URL; both are configuration,
	// not constants to duplicate elsewhere.
	DefaultUpstreamURL = "http://localhost:8008"

	// DefaultAPIPrefix is the URL subtree forwarded to the upstream.
	DefaultAPIPrefix = "/api/v1"

	// DefaultMaxBodyBytes caps uploaded request bodies at 50MB, sized for
	// large WAV payloads.
	DefaultMaxBodyBytes = 50 << 20

	// DefaultUpstreamTimeout matches the generous proxy timeout large audio
	// transcriptions need.
	DefaultUpstreamTimeout = 300 * time.Second
)

// GatewayConfig holds everything the gateway server needs to run.
type GatewayConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port" validate:"required,numeric"`
	UpstreamURL     string        `yaml:"upstream_url" validate:"required,url"`
	APIPrefix       string        `yaml:"api_prefix" validate:"required,startswith=/"`
	DocRoot         string        `yaml:"doc_root" validate:"required"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout" validate:"gt=0"`
	DeploymentMode  string        `yaml:"deployment_mode" validate:"oneof=development production"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
}

// GetGatewayConfig builds gateway configuration from environment or defaults.
func GetGatewayConfig() GatewayConfig {
	cfg := GatewayConfig{
		Host:            getEnvOrDefault("WAVEGATE_HOST", "0.0.0.0"),
		Port:            getEnvOrDefault("WAVEGATE_PORT", "8080"),
		UpstreamURL:     getEnvOrDefault("WAVEGATE_UPSTREAM_URL", DefaultUpstreamURL),
		APIPrefix:       getEnvOrDefault("WAVEGATE_API_PREFIX", DefaultAPIPrefix),
		DocRoot:         getEnvOrDefault("WAVEGATE_DOC_ROOT", "web/static"),
		MaxBodyBytes:    DefaultMaxBodyBytes,
		UpstreamTimeout: DefaultUpstreamTimeout,
		DeploymentMode:  getEnvOrDefault("DEPLOYMENT_MODE", "development"),
		ReadTimeout:     DefaultUpstreamTimeout + 10*time.Second,
		WriteTimeout:    DefaultUpstreamTimeout + 10*time.Second,
		IdleTimeout:     120 * time.Second,
	}

	if raw := os.Getenv("WAVEGATE_MAX_BODY_BYTES"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			cfg.MaxBodyBytes = v
		}
	}
	if raw := os.Getenv("WAVEGATE_UPSTREAM_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.UpstreamTimeout = d
		}
	}

	return cfg
}

// LoadGatewayConfigFile overlays values from a YAML config file onto cfg.
// Zero-valued fields in the file keep their current values.
func LoadGatewayConfigFile(cfg GatewayConfig, path string) (GatewayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read gateway config %s: %w", path, err)
	}

	var overlay GatewayConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("parse gateway config %s: %w", path, err)
	}

	if overlay.Host != "" {
		cfg.Host = overlay.Host
	}
	if overlay.Port != "" {
		cfg.Port = overlay.Port
	}
	if overlay.UpstreamURL != "" {
		cfg.UpstreamURL = overlay.UpstreamURL
	}
	if overlay.APIPrefix != "" {
		cfg.APIPrefix = overlay.APIPrefix
	}
	if overlay.DocRoot != "" {
		cfg.DocRoot = overlay.DocRoot
	}
	if overlay.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = overlay.MaxBodyBytes
	}
	if overlay.UpstreamTimeout > 0 {
		cfg.UpstreamTimeout = overlay.UpstreamTimeout
	}
	if overlay.DeploymentMode != "" {
		cfg.DeploymentMode = overlay.DeploymentMode
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c GatewayConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid gateway configuration: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (c GatewayConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ClientConfig holds upload client configuration.
type ClientConfig struct {
	BaseURL      string `validate:"required,url"`
	MaxFileBytes int64  `validate:"gt=0"`
}

// GetClientConfig builds client configuration from environment or defaults.
// The default base URL points at a local gateway so uploads ride the proxied
// API prefix.
func GetClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:      getEnvOrDefault("WAVEGATE_API_URL", "http://localhost:8080"),
		MaxFileBytes: DefaultMaxBodyBytes,
	}
}

// Validate checks the configuration against its struct tags.
func (c ClientConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid client configuration: %w", err)
	}
	return nil
}
