package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BaSui01/omniai/llm/providers"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 OmniAI 的完整配置结构
type Config struct {
	// Providers 各厂商适配器配置
	Providers ProvidersConfig `yaml:"providers" json:"providers" env:"PROVIDERS"`

	// Registry 注册表配置
	Registry RegistryConfig `yaml:"registry" json:"registry" env:"REGISTRY"`

	// Log 日志配置
	Log LogConfig `yaml:"log" json:"log" env:"LOG"`

	// Metrics Prometheus 指标配置
	Metrics MetricsConfig `yaml:"metrics" json:"metrics" env:"METRICS"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry" env:"TELEMETRY"`
}

// ProvidersConfig 按厂商划分的适配器配置
type ProvidersConfig struct {
	OpenAI OpenAIProviderConfig `yaml:"openai" json:"openai" env:"OPENAI"`
}

// OpenAIProviderConfig OpenAI 适配器配置
type OpenAIProviderConfig struct {
	// 是否在注册表中启用
	Enabled bool `yaml:"enabled" json:"enabled" env:"ENABLED"`

	providers.OpenAIConfig `yaml:",inline" env:""`
}

// EnabledNames 返回已启用的 Provider 名称
func (p ProvidersConfig) EnabledNames() []string {
	var names []string
	if p.OpenAI.Enabled {
		names = append(names, "openai")
	}
	return names
}

// RegistryConfig 注册表配置
type RegistryConfig struct {
	// 默认 Provider，必须是已启用的 Provider 之一；为空表示不设默认
	Default string `yaml:"default" json:"default" env:"DEFAULT"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" json:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" json:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" json:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" json:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" json:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" json:"enabled" env:"ENABLED"`
	// 指标命名空间
	Namespace string `yaml:"namespace" json:"namespace" env:"NAMESPACE"`
	// /metrics 监听地址
	Addr string `yaml:"addr" json:"addr" env:"ADDR"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" json:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" json:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 是否使用明文 gRPC 连接
	Insecure bool `yaml:"insecure" json:"insecure" env:"INSECURE"`
	// 服务名称
	ServiceName string `yaml:"service_name" json:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate" env:"SAMPLE_RATE"`
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "console": true}
)

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Providers.OpenAI.Timeout < 0 {
		errs = append(errs, "providers.openai.timeout must not be negative")
	}

	if c.Registry.Default != "" {
		known := false
		for _, name := range c.Providers.EnabledNames() {
			if name == c.Registry.Default {
				known = true
				break
			}
		}
		if !known {
			errs = append(errs, fmt.Sprintf("registry.default %q is not an enabled provider", c.Registry.Default))
		}
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format %q", c.Log.Format))
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		errs = append(errs, "metrics.namespace is required when metrics are enabled")
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be between 0 and 1")
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		errs = append(errs, "telemetry.otlp_endpoint is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Sanitized 返回敏感字段已脱敏的配置视图，用于日志输出
func (c *Config) Sanitized() map[string]any {
	data, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	redactSensitiveFields(result)
	return result
}

var sensitiveKeys = []string{"password", "api_key", "apikey", "secret", "token", "credential"}

// redactSensitiveFields 递归地脱敏非空的敏感字符串字段
func redactSensitiveFields(data map[string]any) {
	for key, value := range data {
		lowerKey := strings.ToLower(key)
		for _, sensitive := range sensitiveKeys {
			if strings.Contains(lowerKey, sensitive) {
				if str, ok := value.(string); ok && str != "" {
					data[key] = "[REDACTED]"
				}
				break
			}
		}
		if nested, ok := value.(map[string]any); ok {
			redactSensitiveFields(nested)
		}
	}
}
