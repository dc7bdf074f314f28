package openai

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/BaSui01/omniai/llm"
	"github.com/BaSui01/omniai/llm/providers"
	"github.com/BaSui01/omniai/types"
	"go.uber.org/zap"
)

const (
	providerName         = "openai"
	defaultBaseURL       = "https://api.openai.com/v1"
	defaultTextModel     = "gpt-4"
	defaultImageModel    = "dall-e-2"
	defaultImageFilename = "image.png"
)

// Operation names passed to a Recorder.
const (
	OpGenerateText           = "generate_text"
	OpRetrieveResponse       = "retrieve_response"
	OpDeleteResponse         = "delete_response"
	OpCancelResponse         = "cancel_response"
	OpGenerateImage          = "generate_image"
	OpGenerateImageVariation = "generate_image_variation"
)

// Recorder 观察每次完成的操作（成功或失败）。internal/metrics.Collector 实现了该接口。
type Recorder interface {
	ObserveRequest(provider, operation, model string, err error, latency time.Duration, usage llm.Usage)
}

// Option 配置 OpenAIProvider
type Option func(*OpenAIProvider)

// WithHTTPClient 替换默认的传输客户端。
func WithHTTPClient(client *providers.HTTPClient) Option {
	return func(p *OpenAIProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithMetrics 设置操作观察者。
func WithMetrics(r Recorder) Option {
	return func(p *OpenAIProvider) { p.recorder = r }
}

// WithVersion 设置 Info 中报告的版本，覆盖配置中的 Version。
func WithVersion(v string) Option {
	return func(p *OpenAIProvider) { p.version = v }
}

// OpenAIProvider 实现 OpenAI 文本（Responses API）与图像（Images API）适配.
type OpenAIProvider struct {
	cfg      providers.OpenAIConfig
	baseURL  string
	version  string
	client   *providers.HTTPClient
	recorder Recorder
	logger   *zap.Logger
}

var (
	_ llm.TextProvider  = (*OpenAIProvider)(nil)
	_ llm.ImageProvider = (*OpenAIProvider)(nil)
)

// NewOpenAIProvider 创建新的 OpenAI 提供者实例.
func NewOpenAIProvider(cfg providers.OpenAIConfig, logger *zap.Logger, opts ...Option) *OpenAIProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	p := &OpenAIProvider{
		cfg:     cfg,
		baseURL: baseURL,
		version: cfg.Version,
		logger:  logger.With(zap.String("provider", providerName)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = providers.NewHTTPClient(cfg.Timeout, logger)
	}
	return p
}

func (p *OpenAIProvider) Name() string { return providerName }

func (p *OpenAIProvider) Capabilities() llm.Capabilities {
	return llm.Capabilities{Text: true, Image: true}
}

func (p *OpenAIProvider) Info() llm.ProviderInfo {
	return llm.ProviderInfo{
		Name:         p.Name(),
		Version:      p.version,
		Capabilities: p.Capabilities(),
	}
}

// BaseURL returns the endpoint prefix all requests are sent to.
func (p *OpenAIProvider) BaseURL() string { return p.baseURL }

func (p *OpenAIProvider) headers() map[string]string {
	h := map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}
	if p.cfg.Organization != "" {
		h["OpenAI-Organization"] = p.cfg.Organization
	}
	return h
}

func (p *OpenAIProvider) textModel(requested string) string {
	if requested != "" {
		return requested
	}
	if p.cfg.Model != "" {
		return p.cfg.Model
	}
	return defaultTextModel
}

func (p *OpenAIProvider) imageModel(requested string) string {
	if requested != "" {
		return requested
	}
	if p.cfg.ImageModel != "" {
		return p.cfg.ImageModel
	}
	return defaultImageModel
}

// observe logs and records one finished operation.
func (p *OpenAIProvider) observe(op, model string, err error, latency time.Duration, usage llm.Usage) {
	if err != nil {
		p.logger.Debug("openai request failed",
			zap.String("operation", op),
			zap.String("model", model),
			zap.Duration("latency", latency),
			zap.String("code", string(types.GetErrorCode(err))),
		)
	} else {
		p.logger.Debug("openai request completed",
			zap.String("operation", op),
			zap.String("model", model),
			zap.Duration("latency", latency),
			zap.Int("total_tokens", usage.TotalTokens),
		)
	}
	if p.recorder != nil {
		p.recorder.ObserveRequest(providerName, op, model, err, latency, usage)
	}
}

// encode builds the request body before the timed exchange starts.
// Encoding failures are still recorded, with zero latency.
func (p *OpenAIProvider) encode(op, model string, body any) (*providers.Payload, error) {
	payload, err := providers.EncodeBody(body)
	if err != nil {
		p.observe(op, model, err, 0, llm.Usage{})
		return nil, tagProvider(err)
	}
	return payload, nil
}

// tagProvider stamps the provider name on structured errors that lack one.
func tagProvider(err error) error {
	if e, ok := types.AsError(err); ok && e.Provider == "" {
		e.Provider = providerName
	}
	return err
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return types.NewError(types.ErrGeneric, "failed to decode openai response").
			WithCause(err).
			WithProvider(providerName)
	}
	return nil
}

// mergeExtra copies the non-nil entries of extra into a fresh body map.
// Typed nils such as (*string)(nil) count as nil.
func mergeExtra(extra map[string]any) map[string]any {
	body := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		if !providers.IsNil(v) {
			body[k] = v
		}
	}
	return body
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	InputTokens      int `json:"input_tokens"`
	OutputTokens     int `json:"output_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// toUsage accepts both the Chat Completions and the Responses API field names.
// Missing counts stay zero.
func (u *apiUsage) toUsage() llm.Usage {
	if u == nil {
		return llm.Usage{}
	}
	out := llm.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if out.PromptTokens == 0 {
		out.PromptTokens = u.InputTokens
	}
	if out.CompletionTokens == 0 {
		out.CompletionTokens = u.OutputTokens
	}
	return out
}
