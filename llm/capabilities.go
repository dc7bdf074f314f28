package llm

// Capability 是能力描述符中单个标志的名称，用于 CAPABILITY_NOT_SUPPORTED 错误与日志。
type Capability string

const (
	CapabilityText      Capability = "text"
	CapabilityImage     Capability = "image"
	CapabilityVision    Capability = "vision"
	CapabilityAudio     Capability = "audio"
	CapabilityStreaming Capability = "streaming"
	CapabilityAsync     Capability = "async"
)

// Capabilities declares what a provider instance can do.
// It is fixed at construction and returned by value, so callers cannot mutate it.
type Capabilities struct {
	Text      bool `json:"text" yaml:"text"`
	Image     bool `json:"image" yaml:"image"`
	Vision    bool `json:"vision,omitempty" yaml:"vision,omitempty"`
	Audio     bool `json:"audio,omitempty" yaml:"audio,omitempty"`
	Streaming bool `json:"streaming,omitempty" yaml:"streaming,omitempty"`
	Async     bool `json:"async,omitempty" yaml:"async,omitempty"`
}

// Supports reports whether the named capability flag is set.
// Unknown names are never supported.
func (c Capabilities) Supports(capability Capability) bool {
	switch capability {
	case CapabilityText:
		return c.Text
	case CapabilityImage:
		return c.Image
	case CapabilityVision:
		return c.Vision
	case CapabilityAudio:
		return c.Audio
	case CapabilityStreaming:
		return c.Streaming
	case CapabilityAsync:
		return c.Async
	default:
		return false
	}
}

// List returns the names of all set flags in declaration order.
func (c Capabilities) List() []Capability {
	all := []Capability{
		CapabilityText, CapabilityImage, CapabilityVision,
		CapabilityAudio, CapabilityStreaming, CapabilityAsync,
	}
	out := make([]Capability, 0, len(all))
	for _, capability := range all {
		if c.Supports(capability) {
			out = append(out, capability)
		}
	}
	return out
}
