// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"context"
	"time"

	"github.com/BaSui01/omniai/llm"
	"github.com/BaSui01/omniai/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const meterName = "github.com/BaSui01/omniai/internal/metrics"

const (
	statusSuccess = "success"
	unknownModel  = "unknown"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 记录 Provider 操作的请求数、耗时、Token 用量与 HTTP 错误。
// 满足 openai.Recorder 接口。
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensUsed      *prometheus.CounterVec
	httpErrors      *prometheus.CounterVec

	// OTel 镜像，经 OTLP 导出；未安装 SDK 时为 noop
	otelRequests metric.Int64Counter
	otelDuration metric.Float64Histogram
	otelTokens   metric.Int64Counter

	logger *zap.Logger
}

// CollectorOption 配置 Collector
type CollectorOption func(*collectorOptions)

type collectorOptions struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider 指定 OTel MeterProvider，默认使用全局 otel.GetMeterProvider()
func WithMeterProvider(mp metric.MeterProvider) CollectorOption {
	return func(o *collectorOptions) { o.meterProvider = mp }
}

// NewCollector 创建指标收集器并注册到 reg；reg 为 nil 时使用默认 Registerer
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger, opts ...CollectorOption) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o collectorOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.requestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of provider operations",
		},
		[]string{"provider", "operation", "status"},
	)

	c.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider HTTP exchange duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "operation"},
	)

	c.tokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_used_total",
			Help:      "Total number of tokens reported by providers",
		},
		[]string{"provider", "model", "type"}, // type: prompt, completion
	)

	c.httpErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_http_errors_total",
			Help:      "Non-success HTTP responses returned by providers",
		},
		[]string{"provider", "operation", "status"},
	)

	c.initOTel(namespace, o.meterProvider.Meter(meterName))
	return c
}

// initOTel 创建与 Prometheus 指标对应的 OTel instrument。
// 创建失败只记录日志，对应的 instrument 保持 nil。
func (c *Collector) initOTel(namespace string, meter metric.Meter) {
	prefix := "provider."
	if namespace != "" {
		prefix = namespace + ".provider."
	}

	var err error
	if c.otelRequests, err = meter.Int64Counter(prefix+"requests",
		metric.WithDescription("Total number of provider operations"),
		metric.WithUnit("{request}"),
	); err != nil {
		c.logger.Warn("failed to create otel instrument", zap.String("instrument", "requests"), zap.Error(err))
		c.otelRequests = nil
	}
	if c.otelDuration, err = meter.Float64Histogram(prefix+"request.duration",
		metric.WithDescription("Provider HTTP exchange duration"),
		metric.WithUnit("s"),
	); err != nil {
		c.logger.Warn("failed to create otel instrument", zap.String("instrument", "duration"), zap.Error(err))
		c.otelDuration = nil
	}
	if c.otelTokens, err = meter.Int64Counter(prefix+"tokens",
		metric.WithDescription("Total number of tokens reported by providers"),
		metric.WithUnit("{token}"),
	); err != nil {
		c.logger.Warn("failed to create otel instrument", zap.String("instrument", "tokens"), zap.Error(err))
		c.otelTokens = nil
	}
}

// =============================================================================
// 🤖 Provider 指标记录
// =============================================================================

// ObserveRequest 记录一次完成的 Provider 操作
func (c *Collector) ObserveRequest(provider, operation, model string, err error, latency time.Duration, usage llm.Usage) {
	status := statusSuccess
	if err != nil {
		status = string(types.GetErrorCode(err))
		if e, ok := types.AsError(err); ok && e.HTTPStatus > 0 {
			c.httpErrors.WithLabelValues(provider, operation, statusCode(e.HTTPStatus)).Inc()
		}
	}

	c.requestsTotal.WithLabelValues(provider, operation, status).Inc()
	c.requestDuration.WithLabelValues(provider, operation).Observe(latency.Seconds())

	ctx := context.Background()
	opAttrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	)
	if c.otelRequests != nil {
		c.otelRequests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("operation", operation),
			attribute.String("status", status),
		))
	}
	if c.otelDuration != nil {
		c.otelDuration.Record(ctx, latency.Seconds(), opAttrs)
	}

	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		return
	}
	if model == "" {
		model = unknownModel
	}
	c.tokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(usage.PromptTokens))
	c.tokensUsed.WithLabelValues(provider, model, "completion").Add(float64(usage.CompletionTokens))
	if c.otelTokens != nil {
		for typ, n := range map[string]int{"prompt": usage.PromptTokens, "completion": usage.CompletionTokens} {
			c.otelTokens.Add(ctx, int64(n), metric.WithAttributes(
				attribute.String("provider", provider),
				attribute.String("model", model),
				attribute.String("type", typ),
			))
		}
	}
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码归类为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
