package providers

import "time"

// BaseProviderConfig 所有 Provider 共享的基础配置字段。
type BaseProviderConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key" env:"API_KEY"`
	BaseURL string        `json:"base_url" yaml:"base_url" env:"BASE_URL"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty" env:"MODEL"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" env:"TIMEOUT"`
}

// OpenAIConfig OpenAI Provider 配置
type OpenAIConfig struct {
	BaseProviderConfig `yaml:",inline" env:""`
	// ImageModel 是未指定模型时文生图与变体使用的默认模型
	ImageModel   string `json:"image_model,omitempty" yaml:"image_model,omitempty" env:"IMAGE_MODEL"`
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty" env:"ORGANIZATION"`
	// Version 出现在 ProviderInfo 中，可为空
	Version string `json:"version,omitempty" yaml:"version,omitempty" env:"VERSION"`
}
