// Copyright 2026 OmniAI Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package main 提供 omniai 命令行程序入口。

# 概述

cmd/omniai 是对 llm 注册表与 OpenAI 适配器的命令行封装：加载配置
（YAML 文件、.env 与 OMNIAI_ 前缀环境变量），按配置构建注册表，
执行一次文本或图像操作并以缩进 JSON 输出结果。

# 子命令

  - text       — 文本生成，位置参数为输入
  - image      — 文生图，位置参数为提示词
  - variation  — 图像变体，--image 指定源图片
  - retrieve / delete / cancel — 按 ID 操作已存储的响应
  - providers  — 列出注册表中的 Provider 及其能力
  - version、help

# 通用选项

  - --config <path>      YAML 配置文件
  - --dotenv <path>      在读取环境变量前加载的 .env 文件（默认 .env）
  - --provider <name>    Provider 名称，缺省为注册表默认值
  - --model <name>       覆盖模型
  - --param key=value    可重复；值若为合法 JSON 则按 JSON 解析，否则作为字符串
  - --metrics-addr <addr> 命令运行期间在该地址暴露 /metrics

# 错误输出

结构化错误（*types.Error）以 JSON 写入 stderr，进程退出码为 1。
*/
package main
