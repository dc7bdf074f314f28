package llm

import "context"

// ProviderInfo is a read-only view of a provider.
type ProviderInfo struct {
	Name         string       `json:"name"`
	Version      string       `json:"version,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

// Provider 是所有适配器共享的最小接口。
// 具体能力通过 TextProvider / ImageProvider 暴露，调用方应先检查 Capabilities。
type Provider interface {
	// Name 返回 Provider 的唯一标识，注册表以此为键
	Name() string

	// Capabilities 返回构造时固定的能力描述符
	Capabilities() Capabilities

	// Info 返回名称、版本与能力的只读视图
	Info() ProviderInfo
}

// TextProvider generates text and manages stored vendor responses.
type TextProvider interface {
	Provider

	// GenerateText sends one generation request and normalizes the first output text.
	GenerateText(ctx context.Context, req *TextRequest) (*TextResult, error)

	// RetrieveResponse fetches a previously created response by ID.
	RetrieveResponse(ctx context.Context, id string, query map[string]any) (*StoredResponse, error)

	// DeleteResponse removes a stored response by ID.
	DeleteResponse(ctx context.Context, id string) (*DeletedResponse, error)

	// CancelResponse cancels an in-flight background response by ID.
	CancelResponse(ctx context.Context, id string) (*StoredResponse, error)
}

// ImageProvider generates images from prompts and from existing images.
type ImageProvider interface {
	Provider

	// GenerateImage creates images from a text prompt.
	GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResult, error)

	// GenerateImageVariation creates variations of an existing image.
	GenerateImageVariation(ctx context.Context, req *ImageVariationRequest) (*ImageResult, error)
}
