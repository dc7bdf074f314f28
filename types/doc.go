// Copyright 2026 OmniAI Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package types 提供 omniai 的结构化错误体系。

# 概述

types 是最底层的公共包，不依赖任何内部包。所有跨包返回给调用方的失败
都是 *Error：一个稳定的 ErrorCode 种类标签、一条可读的 Message，以及
用于日志与诊断的 Details 载荷。匹配依据 Code，而不是 Go 类型。

# 错误种类

  - ErrCapabilityNotSupported — Provider 未声明所请求的能力
  - ErrProviderNotSupported   — 注册表中不存在该名称
  - ErrHTTP                   — 上游返回非成功状态码
  - ErrNetwork                — 传输层失败，Cause 保留原始错误
  - ErrAssertionFailed        — 内部前置条件不满足（见 Assert）
  - ErrGeneric                — 未指定种类时的缺省值

# 工具函数

  - AsError / GetErrorCode / IsCode / IsRetryable
  - NewProviderNotSupportedError / NewCapabilityError
*/
package types
