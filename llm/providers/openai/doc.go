// Copyright 2026 OmniAI Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 openai 提供 OpenAI 的 Provider 适配实现：文本生成走 Responses API
（/v1/responses），图像生成与变体走 Images API。所有 HTTP 交换委托给
providers.HTTPClient，错误以 *types.Error 返回并标注 Provider 名称。

# 核心结构体

  - OpenAIProvider — 同时实现 llm.TextProvider 与 llm.ImageProvider

# 支持能力

  - 文本生成（POST /responses，默认模型 gpt-4）
  - 已存储响应的获取、删除、取消（/responses/{id}、/responses/{id}/cancel）
  - 文生图（POST /images/generations，默认模型 dall-e-2）
  - 图像变体（POST /images/variations，multipart 表单）
  - Organization header 支持

# 元数据

每个结果都带有 llm.GenerationMetadata：LatencyMs 仅覆盖 HTTP 交换本身，
ProviderResponse 保留原始响应体；上游未返回用量时 Usage 各字段为 0。

# 可观测性

  - WithMetrics 注入 Recorder（如 internal/metrics.Collector），每次操作完成后回调
  - Debug 级别日志记录操作名、模型与延迟
*/
package openai
