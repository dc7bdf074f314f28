// 配置加载器与默认配置测试。
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- 默认配置测试 ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	openai := cfg.Providers.OpenAI
	assert.True(t, openai.Enabled)
	assert.Equal(t, "https://api.openai.com/v1", openai.BaseURL)
	assert.Equal(t, "gpt-4", openai.Model)
	assert.Equal(t, "dall-e-2", openai.ImageModel)
	assert.Equal(t, 60*time.Second, openai.Timeout)
	assert.Empty(t, openai.APIKey)

	assert.Equal(t, "openai", cfg.Registry.Default)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)

	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "omniai", cfg.Metrics.Namespace)

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "omniai", cfg.Telemetry.ServiceName)

	require.NoError(t, cfg.Validate())
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig().Providers, cfg.Providers)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "omniai.yaml")
	yamlContent := `
providers:
  openai:
    enabled: true
    api_key: "sk-yaml"
    base_url: "http://localhost:8080/v1"
    model: "gpt-4o"
    image_model: "gpt-image-1"
    organization: "org-yaml"
    timeout: 15s
registry:
  default: openai
log:
  level: debug
  format: console
  output_paths: ["stdout"]
metrics:
  enabled: true
  namespace: test
telemetry:
  sample_rate: 0.5
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	openai := cfg.Providers.OpenAI
	assert.Equal(t, "sk-yaml", openai.APIKey)
	assert.Equal(t, "http://localhost:8080/v1", openai.BaseURL)
	assert.Equal(t, "gpt-4o", openai.Model)
	assert.Equal(t, "gpt-image-1", openai.ImageModel)
	assert.Equal(t, "org-yaml", openai.Organization)
	assert.Equal(t, 15*time.Second, openai.Timeout)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "test", cfg.Metrics.Namespace)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRate)
	// 未出现在 YAML 中的字段保留默认值
	assert.Equal(t, "omniai", cfg.Telemetry.ServiceName)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("OMNIAI_PROVIDERS_OPENAI_API_KEY", "sk-env")
	t.Setenv("OMNIAI_PROVIDERS_OPENAI_BASE_URL", "http://proxy.local/v1")
	t.Setenv("OMNIAI_PROVIDERS_OPENAI_TIMEOUT", "5s")
	t.Setenv("OMNIAI_PROVIDERS_OPENAI_ORGANIZATION", "org-env")
	t.Setenv("OMNIAI_REGISTRY_DEFAULT", "")
	t.Setenv("OMNIAI_LOG_LEVEL", "warn")
	t.Setenv("OMNIAI_LOG_OUTPUT_PATHS", "stderr, /tmp/omniai.log")
	t.Setenv("OMNIAI_METRICS_ENABLED", "true")
	t.Setenv("OMNIAI_TELEMETRY_SAMPLE_RATE", "0.25")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, "http://proxy.local/v1", cfg.Providers.OpenAI.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Providers.OpenAI.Timeout)
	assert.Equal(t, "org-env", cfg.Providers.OpenAI.Organization)
	// 空值不覆盖
	assert.Equal(t, "openai", cfg.Registry.Default)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"stderr", "/tmp/omniai.log"}, cfg.Log.OutputPaths)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 0.25, cfg.Telemetry.SampleRate)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "omniai.yaml")
	yamlContent := `
providers:
  openai:
    api_key: "sk-yaml"
    model: "yaml-model"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))
	t.Setenv("OMNIAI_PROVIDERS_OPENAI_API_KEY", "sk-env")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, "yaml-model", cfg.Providers.OpenAI.Model)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MYAPP_PROVIDERS_OPENAI_MODEL", "custom-model")

	cfg, err := NewLoader().WithEnvPrefix("MYAPP").Load()
	require.NoError(t, err)
	assert.Equal(t, "custom-model", cfg.Providers.OpenAI.Model)
}

func TestLoader_DotEnv(t *testing.T) {
	const key = "OMNIAI_PROVIDERS_OPENAI_IMAGE_MODEL"
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(key+"=dall-e-3\n"), 0o644))
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	cfg, err := NewLoader().
		WithDotEnv(filepath.Join(dir, "missing.env"), envPath).
		Load()
	require.NoError(t, err)
	assert.Equal(t, "dall-e-3", cfg.Providers.OpenAI.ImageModel)
}

func TestLoader_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	const key = "OMNIAI_PROVIDERS_OPENAI_VERSION"
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(key+"=from-file\n"), 0o644))
	t.Setenv(key, "from-env")

	cfg, err := NewLoader().WithDotEnv(envPath).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Providers.OpenAI.Version)
}

func TestLoader_WithValidator(t *testing.T) {
	t.Setenv("OMNIAI_LOG_LEVEL", "verbose")

	_, err := NewLoader().WithValidator((*Config).Validate).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
	assert.Contains(t, err.Error(), `invalid log level "verbose"`)
}

func TestLoader_NonExistentFile(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/omniai.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoader_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("providers: [unclosed"), 0o644))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("OMNIAI_PROVIDERS_OPENAI_TIMEOUT", "soon")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OMNIAI_PROVIDERS_OPENAI_TIMEOUT")
}

func TestSetFieldValue(t *testing.T) {
	var target struct {
		Name    string
		Rate    float64
		On      bool
		Paths   []string
		Timeout time.Duration
		Count   int
		IDs     []int
	}
	v := reflect.ValueOf(&target).Elem()

	require.NoError(t, setFieldValue(v.FieldByName("Name"), "omniai"))
	require.NoError(t, setFieldValue(v.FieldByName("Rate"), "0.25"))
	require.NoError(t, setFieldValue(v.FieldByName("On"), "true"))
	require.NoError(t, setFieldValue(v.FieldByName("Paths"), "stdout, /tmp/a.log"))
	require.NoError(t, setFieldValue(v.FieldByName("Timeout"), "1m30s"))

	assert.Equal(t, "omniai", target.Name)
	assert.Equal(t, 0.25, target.Rate)
	assert.True(t, target.On)
	assert.Equal(t, []string{"stdout", "/tmp/a.log"}, target.Paths)
	assert.Equal(t, 90*time.Second, target.Timeout)

	// 配置中没有的类型直接拒绝
	assert.Error(t, setFieldValue(v.FieldByName("Count"), "3"))
	assert.Error(t, setFieldValue(v.FieldByName("IDs"), "1,2"))
	assert.Zero(t, target.Count)
}

// --- 验证测试 ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Providers.OpenAI.Timeout = -time.Second },
			wantErr: "timeout must not be negative",
		},
		{
			name:    "default provider disabled",
			mutate:  func(c *Config) { c.Providers.OpenAI.Enabled = false },
			wantErr: `registry.default "openai" is not an enabled provider`,
		},
		{
			name: "no default is fine",
			mutate: func(c *Config) {
				c.Providers.OpenAI.Enabled = false
				c.Registry.Default = ""
			},
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: `invalid log format "xml"`,
		},
		{
			name: "metrics without namespace",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Namespace = ""
			},
			wantErr: "metrics.namespace is required",
		},
		{
			name:    "sample rate out of range",
			mutate:  func(c *Config) { c.Telemetry.SampleRate = 1.5 },
			wantErr: "sample_rate must be between 0 and 1",
		},
		{
			name: "telemetry without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.OTLPEndpoint = ""
			},
			wantErr: "otlp_endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Sanitized(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.OpenAI.APIKey = "sk-secret"

	view := cfg.Sanitized()
	require.NotNil(t, view)

	openai := view["providers"].(map[string]any)["openai"].(map[string]any)
	assert.Equal(t, "[REDACTED]", openai["api_key"])
	assert.Equal(t, "https://api.openai.com/v1", openai["base_url"])
	// 原配置不受影响
	assert.Equal(t, "sk-secret", cfg.Providers.OpenAI.APIKey)
}

func TestMustLoad_Success(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "omniai.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: error\n"), 0o644))

	cfg := MustLoad(configPath)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestMustLoad_Panics(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log: [x"), 0o644))

	assert.Panics(t, func() { MustLoad(configPath) })
}
