package openai

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/BaSui01/omniai/llm"
	"github.com/BaSui01/omniai/types"
)

// --- Responses API Types ---

type responsesResponse struct {
	ID     string            `json:"id"`
	Object string            `json:"object"`
	Status string            `json:"status"`
	Model  string            `json:"model"`
	Output []responsesOutput `json:"output"`
	Usage  *apiUsage         `json:"usage,omitempty"`
}

type responsesOutput struct {
	Type    string             `json:"type"`
	ID      string             `json:"id"`
	Role    string             `json:"role"`
	Content []responsesContent `json:"content"`
}

type responsesContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// firstText returns output[0].content[0].text, or "" when any level is missing.
func (r *responsesResponse) firstText() string {
	if len(r.Output) == 0 || len(r.Output[0].Content) == 0 {
		return ""
	}
	return r.Output[0].Content[0].Text
}

type deleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// GenerateText 通过 POST {base}/responses 生成文本.
// 请求体为 Extra 展开后再写入 input 与 model；结果取第一个输出的第一段文本.
func (p *OpenAIProvider) GenerateText(ctx context.Context, req *llm.TextRequest) (*llm.TextResult, error) {
	if err := types.Assert(req != nil, "text request is required"); err != nil {
		return nil, err
	}
	model := p.textModel(req.Model)

	body := mergeExtra(req.Extra)
	if req.Input != nil {
		body["input"] = req.Input
	}
	body["model"] = model

	payload, err := p.encode(OpGenerateText, model, body)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	start := time.Now()
	err = p.client.Post(ctx, p.baseURL+"/responses", payload, p.headers(), &raw)
	latency := time.Since(start)
	if err != nil {
		p.observe(OpGenerateText, model, err, latency, llm.Usage{})
		return nil, tagProvider(err)
	}

	var resp responsesResponse
	if err := decode(raw, &resp); err != nil {
		p.observe(OpGenerateText, model, err, latency, llm.Usage{})
		return nil, err
	}

	usage := resp.Usage.toUsage()
	metaModel := resp.Model
	if metaModel == "" {
		metaModel = model
	}
	p.observe(OpGenerateText, metaModel, nil, latency, usage)

	return &llm.TextResult{
		Text: resp.firstText(),
		Metadata: llm.GenerationMetadata{
			Model:            metaModel,
			Usage:            usage,
			LatencyMs:        latency.Milliseconds(),
			ProviderResponse: raw,
		},
	}, nil
}

// RetrieveResponse 通过 GET {base}/responses/{id} 获取已存储的响应.
func (p *OpenAIProvider) RetrieveResponse(ctx context.Context, id string, query map[string]any) (*llm.StoredResponse, error) {
	if err := types.Assert(id != "", "response id is required"); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	start := time.Now()
	err := p.client.Get(ctx, p.responseURL(id), query, p.headers(), &raw)
	latency := time.Since(start)
	return p.storedResponse(OpRetrieveResponse, raw, err, latency)
}

// CancelResponse 通过 POST {base}/responses/{id}/cancel（空 JSON 体）取消后台响应.
func (p *OpenAIProvider) CancelResponse(ctx context.Context, id string) (*llm.StoredResponse, error) {
	if err := types.Assert(id != "", "response id is required"); err != nil {
		return nil, err
	}

	payload, err := p.encode(OpCancelResponse, "", map[string]any{})
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	start := time.Now()
	err = p.client.Post(ctx, p.responseURL(id)+"/cancel", payload, p.headers(), &raw)
	latency := time.Since(start)
	return p.storedResponse(OpCancelResponse, raw, err, latency)
}

// DeleteResponse 通过 DELETE {base}/responses/{id} 删除已存储的响应.
func (p *OpenAIProvider) DeleteResponse(ctx context.Context, id string) (*llm.DeletedResponse, error) {
	if err := types.Assert(id != "", "response id is required"); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	start := time.Now()
	err := p.client.Delete(ctx, p.responseURL(id), p.headers(), &raw)
	latency := time.Since(start)
	if err != nil {
		p.observe(OpDeleteResponse, "", err, latency, llm.Usage{})
		return nil, tagProvider(err)
	}

	var resp deleteResponse
	if err := decode(raw, &resp); err != nil {
		p.observe(OpDeleteResponse, "", err, latency, llm.Usage{})
		return nil, err
	}
	p.observe(OpDeleteResponse, "", nil, latency, llm.Usage{})

	return &llm.DeletedResponse{ID: resp.ID, Object: resp.Object, Deleted: resp.Deleted}, nil
}

func (p *OpenAIProvider) responseURL(id string) string {
	return p.baseURL + "/responses/" + url.PathEscape(id)
}

func (p *OpenAIProvider) storedResponse(op string, raw json.RawMessage, err error, latency time.Duration) (*llm.StoredResponse, error) {
	if err != nil {
		p.observe(op, "", err, latency, llm.Usage{})
		return nil, tagProvider(err)
	}

	var resp responsesResponse
	if err := decode(raw, &resp); err != nil {
		p.observe(op, "", err, latency, llm.Usage{})
		return nil, err
	}

	usage := resp.Usage.toUsage()
	p.observe(op, resp.Model, nil, latency, usage)

	return &llm.StoredResponse{
		ID:     resp.ID,
		Object: resp.Object,
		Status: resp.Status,
		Model:  resp.Model,
		Text:   resp.firstText(),
		Metadata: llm.GenerationMetadata{
			Model:            resp.Model,
			Usage:            usage,
			LatencyMs:        latency.Milliseconds(),
			ProviderResponse: raw,
		},
	}, nil
}
