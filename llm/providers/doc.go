// Copyright 2026 OmniAI Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 是所有具体 Provider 实现的公共基础层：一次 HTTP 交换的
请求构造、JSON / multipart 序列化，以及非成功响应到结构化错误的统一归一。

# 核心类型

  - HTTPClient — Get / Post / Delete，返回解码后的 JSON 或 *types.Error
  - Form / FormPart — multipart/form-data 载荷，由 Post 原样发送
  - EncodeBody / Payload — 预先编码请求体，让计时只覆盖 HTTP 交换
  - IsNil / Stringify — 识别 typed nil，查询串与表单值的字符串化
  - HTTPErrorDetails — HTTP_ERROR 的 Details（状态码、状态文本、解码后的响应体）
  - BaseProviderConfig / OpenAIConfig — Provider 配置

# 核心函数

  - BuildQuery — 查询串构造，nil 值（含 typed nil）跳过
  - BuildForm — 选项映射到 multipart 表单（二进制值作为文件段）
  - ErrorMessage — 错误消息提取：有 error 键时取 error.message 或 error（字符串），否则通用描述；无 error 键时才用 message

# 错误语义

  - 非 2xx 响应：HTTP_ERROR，Retryable 对 429 / 5xx 置位（仅为提示，本层不重试）
  - 传输层失败（DNS、连接、超时、响应体无法解码）：NETWORK_ERROR，Cause 保留原始错误
  - 已经是 *types.Error 的失败原样返回，不会重复包装

# 可观测性

每次交换开启一个 client span（go.opentelemetry.io/otel），注入
trace context，并附带 X-Client-Request-Id 请求头（调用方未指定时自动生成）。
*/
package providers
