package openai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BaSui01/omniai/llm"
	"github.com/BaSui01/omniai/llm/providers"
	"github.com/BaSui01/omniai/types"
)

type imagesResponse struct {
	Created int64       `json:"created"`
	Data    []imageData `json:"data"`
	Usage   *apiUsage   `json:"usage,omitempty"`
}

type imageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// GenerateImage 通过 POST {base}/images/generations 生成图像.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, req *llm.ImageRequest) (*llm.ImageResult, error) {
	if err := types.Assert(req != nil, "image request is required"); err != nil {
		return nil, err
	}
	model := p.imageModel(req.Model)

	body := mergeExtra(req.Extra)
	body["prompt"] = req.Prompt
	body["model"] = model

	payload, err := p.encode(OpGenerateImage, model, body)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	start := time.Now()
	err = p.client.Post(ctx, p.baseURL+"/images/generations", payload, p.headers(), &raw)
	latency := time.Since(start)
	return p.imageResult(OpGenerateImage, model, raw, err, latency)
}

// GenerateImageVariation 以 multipart 表单 POST {base}/images/variations.
// 未给出文件名时图像以 image.png 上传；未指定模型时元数据中的模型回退为默认图像模型.
func (p *OpenAIProvider) GenerateImageVariation(ctx context.Context, req *llm.ImageVariationRequest) (*llm.ImageResult, error) {
	if err := types.Assert(req != nil, "image variation request is required"); err != nil {
		return nil, err
	}

	variation := *req
	if variation.Image.Filename == "" {
		variation.Image.Filename = defaultImageFilename
	}
	if variation.Model == "" && p.cfg.ImageModel != "" {
		variation.Model = p.cfg.ImageModel
	}
	fields := variation.Fields()
	if err := types.Assert(fields["image"] != nil, "image is required"); err != nil {
		return nil, err
	}

	model := variation.Model
	if model == "" {
		if m, ok := fields["model"].(string); ok && m != "" {
			model = m
		} else {
			model = defaultImageModel
		}
	}

	// 文件读取发生在计时之前
	payload, err := p.encode(OpGenerateImageVariation, model, providers.BuildForm(fields))
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	start := time.Now()
	err = p.client.Post(ctx, p.baseURL+"/images/variations", payload, p.headers(), &raw)
	latency := time.Since(start)
	return p.imageResult(OpGenerateImageVariation, model, raw, err, latency)
}

func (p *OpenAIProvider) imageResult(op, model string, raw json.RawMessage, err error, latency time.Duration) (*llm.ImageResult, error) {
	if err != nil {
		p.observe(op, model, err, latency, llm.Usage{})
		return nil, tagProvider(err)
	}

	var resp imagesResponse
	if err := decode(raw, &resp); err != nil {
		p.observe(op, model, err, latency, llm.Usage{})
		return nil, err
	}

	images := make([]llm.GeneratedImage, 0, len(resp.Data))
	for _, d := range resp.Data {
		images = append(images, llm.GeneratedImage{
			URL:           d.URL,
			B64JSON:       d.B64JSON,
			RevisedPrompt: d.RevisedPrompt,
		})
	}

	usage := resp.Usage.toUsage()
	p.observe(op, model, nil, latency, usage)

	return &llm.ImageResult{
		Images: images,
		Metadata: llm.GenerationMetadata{
			Model:            model,
			Usage:            usage,
			LatencyMs:        latency.Milliseconds(),
			ProviderResponse: raw,
		},
	}, nil
}
