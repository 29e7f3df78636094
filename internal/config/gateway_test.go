package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetGatewayConfig_Defaults(t *testing.T) {
	cfg := GetGatewayConfig()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultUpstreamURL, cfg.UpstreamURL)
	assert.Equal(t, DefaultAPIPrefix, cfg.APIPrefix)
	assert.Equal(t, "web/static", cfg.DocRoot)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.Equal(t, DefaultUpstreamTimeout, cfg.UpstreamTimeout)
	assert.Equal(t, "development", cfg.DeploymentMode)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestGetGatewayConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WAVEGATE_HOST", "127.0.0.1")
	t.Setenv("WAVEGATE_PORT", "9090")
	t.Setenv("WAVEGATE_UPSTREAM_URL", "http://transcriber:8008")
	t.Setenv("WAVEGATE_API_PREFIX", "/api/v2")
	t.Setenv("WAVEGATE_MAX_BODY_BYTES", "1048576")
	t.Setenv("WAVEGATE_UPSTREAM_TIMEOUT", "30s")
	t.Setenv("DEPLOYMENT_MODE", "production")

	cfg := GetGatewayConfig()

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://transcriber:8008", cfg.UpstreamURL)
	assert.Equal(t, "/api/v2", cfg.APIPrefix)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "production", cfg.DeploymentMode)
}

func TestGetGatewayConfig_IgnoresBadEnvValues(t *testing.T) {
	t.Setenv("WAVEGATE_MAX_BODY_BYTES", "not-a-number")
	t.Setenv("WAVEGATE_UPSTREAM_TIMEOUT", "-5s")

	cfg := GetGatewayConfig()

	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.Equal(t, DefaultUpstreamTimeout, cfg.UpstreamTimeout)
}

func TestLoadGatewayConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	content := `
port: "9000"
upstream_url: http://backend:8008
max_body_bytes: 2097152
deployment_mode: production
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	base := GetGatewayConfig()
	cfg, err := LoadGatewayConfigFile(base, path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "http://backend:8008", cfg.UpstreamURL)
	assert.Equal(t, int64(2<<20), cfg.MaxBodyBytes)
	assert.Equal(t, "production", cfg.DeploymentMode)

	// Fields absent from the file keep their prior values.
	assert.Equal(t, base.Host, cfg.Host)
	assert.Equal(t, base.APIPrefix, cfg.APIPrefix)
	assert.Equal(t, base.UpstreamTimeout, cfg.UpstreamTimeout)
}

func TestLoadGatewayConfigFile_Errors(t *testing.T) {
	base := GetGatewayConfig()

	_, err := LoadGatewayConfigFile(base, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not, a, string"), 0o644))
	_, err = LoadGatewayConfigFile(base, path)
	assert.Error(t, err)
}

func TestGatewayConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GatewayConfig)
		wantErr bool
	}{
		{"valid defaults", func(c *GatewayConfig) {}, false},
		{"missing port", func(c *GatewayConfig) { c.Port = "" }, true},
		{"non-numeric port", func(c *GatewayConfig) { c.Port = "http" }, true},
		{"bad upstream url", func(c *GatewayConfig) { c.UpstreamURL = "not a url" }, true},
		{"prefix without slash", func(c *GatewayConfig) { c.APIPrefix = "api/v1" }, true},
		{"zero body limit", func(c *GatewayConfig) { c.MaxBodyBytes = 0 }, true},
		{"unknown mode", func(c *GatewayConfig) { c.DeploymentMode = "staging" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetGatewayConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetClientConfig(t *testing.T) {
	cfg := GetClientConfig()
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxFileBytes)
	assert.NoError(t, cfg.Validate())

	t.Setenv("WAVEGATE_API_URL", "http://gateway.internal:8080")
	cfg = GetClientConfig()
	assert.Equal(t, "http://gateway.internal:8080", cfg.BaseURL)
}
