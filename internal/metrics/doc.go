// Copyright 2026 OmniAI Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
包 metrics 提供基于 Prometheus 的 Provider 操作指标采集。

# 概述

Collector 实现适配器的 Recorder 回调，每次操作完成（成功或失败）后
记录一次。指标注册到调用方传入的 prometheus.Registerer，便于在测试
中使用独立的 Registry，也便于 CLI 通过 promhttp 暴露 /metrics。

# 指标

  - provider_requests_total{provider,operation,status}：status 为
    success 或错误码（HTTP_ERROR、NETWORK_ERROR 等）
  - provider_request_duration_seconds{provider,operation}：仅 HTTP 交换耗时
  - provider_tokens_used_total{provider,model,type}：type 为 prompt / completion
  - provider_http_errors_total{provider,operation,status}：状态码归类为 4xx / 5xx

# OpenTelemetry

同一组观测同时写入 OTel instrument（<namespace>.provider.requests、
<namespace>.provider.request.duration、<namespace>.provider.tokens），
由 telemetry 包安装的 MeterProvider 通过 OTLP 导出。未启用遥测时
全局 MeterProvider 为 noop。
*/
package metrics
