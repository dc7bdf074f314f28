package llm

import (
	"encoding/json"
	"io"
)

// TextRequest 表示一次文本生成请求。
// Model / Input 为固定字段，其余厂商参数放入 Extra 原样透传；
// Extra 中值为 nil 的键视为未设置，不会出现在请求体中。
type TextRequest struct {
	Model string         `json:"model,omitempty"`
	Input any            `json:"input"`
	Extra map[string]any `json:"-"`
}

// ImageRequest 表示一次文生图请求。
type ImageRequest struct {
	Model  string         `json:"model,omitempty"`
	Prompt string         `json:"prompt"`
	Extra  map[string]any `json:"-"`
}

// ImageVariationRequest 表示一次图像变体请求，以 multipart 表单发送。
// Extra 中的 FilePart、[]byte、io.Reader 值作为文件段，其余非 nil 值转为字符串。
type ImageVariationRequest struct {
	Image FilePart       `json:"-"`
	Model string         `json:"model,omitempty"`
	Extra map[string]any `json:"-"`
}

// Fields flattens the request into the option mapping sent as form parts.
// Fixed fields win over same-named Extra keys; an empty Model is left out.
func (r *ImageVariationRequest) Fields() map[string]any {
	fields := make(map[string]any, len(r.Extra)+2)
	for k, v := range r.Extra {
		fields[k] = v
	}
	if r.Image.Reader != nil {
		fields["image"] = r.Image
	}
	if r.Model != "" {
		fields["model"] = r.Model
	}
	return fields
}

// FilePart is a binary option value uploaded as a file.
type FilePart struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Usage 是 token 用量；上游未返回的字段保持为 0。
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// GenerationMetadata accompanies every generation result.
type GenerationMetadata struct {
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
	// LatencyMs is wall-clock time of the HTTP exchange only.
	LatencyMs int64 `json:"latencyMs"`
	// ProviderResponse is the undecoded vendor body, kept for debugging.
	ProviderResponse json.RawMessage `json:"providerResponse,omitempty"`
}

// TextResult is the normalized outcome of a text generation.
type TextResult struct {
	Text     string             `json:"text"`
	Metadata GenerationMetadata `json:"metadata"`
}

// GeneratedImage carries whichever of URL or inline base64 the vendor returned.
type GeneratedImage struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// ImageResult is the normalized outcome of an image generation or variation.
type ImageResult struct {
	Images   []GeneratedImage   `json:"images"`
	Metadata GenerationMetadata `json:"metadata"`
}

// StoredResponse is a vendor-side response object fetched or cancelled by ID.
type StoredResponse struct {
	ID       string             `json:"id"`
	Object   string             `json:"object,omitempty"`
	Status   string             `json:"status,omitempty"`
	Model    string             `json:"model,omitempty"`
	Text     string             `json:"text"`
	Metadata GenerationMetadata `json:"metadata"`
}

// DeletedResponse is the vendor acknowledgement of a delete.
type DeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Deleted bool   `json:"deleted"`
}
