// Copyright 2026 OmniAI Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
包 llm 定义统一的文本/图像生成契约与 Provider 注册表。

# 概述

本包屏蔽具体厂商在请求结构与响应结构上的差异，对调用方暴露一致的
请求/结果类型、能力描述符与注册表。它不包含任何 HTTP 细节；具体的
厂商适配位于 llm/providers 下的子包。

# 核心接口

  - [Provider]：名称、能力描述符与只读信息
  - [TextProvider]：GenerateText / RetrieveResponse / DeleteResponse / CancelResponse
  - [ImageProvider]：GenerateImage / GenerateImageVariation
  - [ProviderRegistry]：按名称注册、查找（未注册即报错）、列举与移除

# 能力检查

调用方在使用某项能力前检查 [Capabilities]，或直接使用
[ProviderRegistry.Text] / [ProviderRegistry.Image]，二者在能力缺失时
返回 CAPABILITY_NOT_SUPPORTED 错误，而不是返回 nil。

# 参数透传

[TextRequest]、[ImageRequest]、[ImageVariationRequest] 的固定字段之外，
其余厂商参数通过 Extra 透传；值为 nil 的键视为未设置。
*/
package llm
