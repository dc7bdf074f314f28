// Package config 提供 OmniAI 的配置管理功能。
//
// 配置来源依次为默认值、YAML 文件与带 OMNIAI_ 前缀的环境变量，
// 可选地先从 .env 文件补充环境变量。嵌入的 Provider 配置字段沿用
// 外层前缀，例如 OMNIAI_PROVIDERS_OPENAI_API_KEY。
package config
