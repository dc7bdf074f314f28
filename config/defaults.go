// =============================================================================
// 📦 OmniAI 默认配置
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/omniai/llm/providers"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Providers: DefaultProvidersConfig(),
		Registry:  RegistryConfig{Default: "openai"},
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultProvidersConfig 返回默认 Provider 配置
func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{
		OpenAI: OpenAIProviderConfig{
			Enabled: true,
			OpenAIConfig: providers.OpenAIConfig{
				BaseProviderConfig: providers.BaseProviderConfig{
					BaseURL: "https://api.openai.com/v1",
					Model:   "gpt-4",
					Timeout: 60 * time.Second,
				},
				ImageModel: "dall-e-2",
			},
		},
	}
}

// DefaultLogConfig 返回默认日志配置
// 日志写入 stderr，stdout 留给命令输出
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "omniai",
		Addr:      ":9091",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		Insecure:     true,
		ServiceName:  "omniai",
		SampleRate:   0.1,
	}
}
