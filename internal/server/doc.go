// Copyright 2026 OmniAI Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
包 server 管理命令运行期间的辅助 HTTP 监听（用于暴露 /metrics）。

# 概述

Manager 封装 net/http.Server：Start 同步绑定端口、后台提供服务，
地址错误直接返回给调用方；Shutdown 在超时内排空请求，可重复调用。
信号处理由命令入口通过 context 完成，本包不监听信号。

# 核心类型

  - Manager：持有 http.Server、net.Listener 与异步错误通道
  - Config：监听地址、读写超时与优雅关闭超时
*/
package server
