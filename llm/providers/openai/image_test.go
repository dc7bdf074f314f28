package openai

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/BaSui01/omniai/llm"
	"github.com/BaSui01/omniai/llm/providers"
	"github.com/BaSui01/omniai/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const imagesBody = `{
	"created": 1713833628,
	"data": [
		{"url": "https://example.com/a.png", "revised_prompt": "a calm cat"},
		{"b64_json": "aGVsbG8="}
	]
}`

type formPart struct {
	Filename    string
	ContentType string
	Data        string
}

func parseForm(t *testing.T, req capturedRequest) map[string]formPart {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	parts := map[string]formPart{}
	reader := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"])
	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		parts[p.FormName()] = formPart{
			Filename:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Data:        string(data),
		}
	}
	return parts
}

func TestOpenAIProvider_GenerateImage(t *testing.T) {
	api, server := newFakeAPI(t, http.StatusOK, imagesBody)
	rec := &recorderStub{}
	p := newTestProvider(t, server.URL, WithMetrics(rec))

	res, err := p.GenerateImage(context.Background(), &llm.ImageRequest{
		Prompt: "a cat",
		Extra:  map[string]any{"n": 2, "size": "256x256", "style": nil},
	})
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/images/generations", req.Path)
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))

	body := api.jsonBody(t)
	assert.Equal(t, map[string]any{
		"prompt": "a cat",
		"model":  "dall-e-2",
		"n":      float64(2),
		"size":   "256x256",
	}, body)

	require.Len(t, res.Images, 2)
	assert.Equal(t, llm.GeneratedImage{URL: "https://example.com/a.png", RevisedPrompt: "a calm cat"}, res.Images[0])
	assert.Equal(t, llm.GeneratedImage{B64JSON: "aGVsbG8="}, res.Images[1])
	assert.Equal(t, "dall-e-2", res.Metadata.Model)
	assert.Equal(t, llm.Usage{}, res.Metadata.Usage)
	assert.GreaterOrEqual(t, res.Metadata.LatencyMs, int64(0))
	assert.JSONEq(t, imagesBody, string(res.Metadata.ProviderResponse))

	obs := rec.all()
	require.Len(t, obs, 1)
	assert.Equal(t, OpGenerateImage, obs[0].Operation)
	assert.Equal(t, "dall-e-2", obs[0].Model)
}

func TestOpenAIProvider_GenerateImage_ExplicitModelAndUsage(t *testing.T) {
	api, server := newFakeAPI(t, http.StatusOK,
		`{"data":[{"b64_json":"eA=="}],"usage":{"input_tokens":10,"output_tokens":20,"total_tokens":30}}`)
	p := newTestProvider(t, server.URL)

	res, err := p.GenerateImage(context.Background(), &llm.ImageRequest{Model: "gpt-image-1", Prompt: "x"})
	require.NoError(t, err)

	assert.Equal(t, "gpt-image-1", api.jsonBody(t)["model"])
	assert.Equal(t, "gpt-image-1", res.Metadata.Model)
	assert.Equal(t, llm.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30}, res.Metadata.Usage)
}

func TestOpenAIProvider_GenerateImage_EmptyData(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusOK, `{"created":1}`)
	p := newTestProvider(t, server.URL)

	res, err := p.GenerateImage(context.Background(), &llm.ImageRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.NotNil(t, res.Images)
	assert.Empty(t, res.Images)
}

func TestOpenAIProvider_GenerateImageVariation(t *testing.T) {
	api, server := newFakeAPI(t, http.StatusOK, imagesBody)
	p := newTestProvider(t, server.URL)

	res, err := p.GenerateImageVariation(context.Background(), &llm.ImageVariationRequest{
		Image: llm.FilePart{Reader: bytes.NewReader([]byte("PNGBYTES"))},
		Model: "dall-e-2",
		Extra: map[string]any{"n": 2, "user": nil},
	})
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/images/variations", req.Path)
	assert.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data; boundary="))

	parts := parseForm(t, req)
	require.Len(t, parts, 3)
	assert.Equal(t, "image.png", parts["image"].Filename)
	assert.Equal(t, "PNGBYTES", parts["image"].Data)
	assert.Equal(t, "dall-e-2", parts["model"].Data)
	assert.Equal(t, "2", parts["n"].Data)
	assert.NotContains(t, parts, "user")

	require.Len(t, res.Images, 2)
	assert.Equal(t, "dall-e-2", res.Metadata.Model)
}

func TestOpenAIProvider_GenerateImageVariation_ModelFallback(t *testing.T) {
	tests := []struct {
		name      string
		cfgModel  string
		extra     map[string]any
		wantModel string
		wantField string
	}{
		{name: "no model anywhere", wantModel: "dall-e-2"},
		{name: "model passed through extra", extra: map[string]any{"model": "dall-e-3"}, wantModel: "dall-e-3", wantField: "dall-e-3"},
		{name: "configured image model", cfgModel: "gpt-image-1", wantModel: "gpt-image-1", wantField: "gpt-image-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, server := newFakeAPI(t, http.StatusOK, imagesBody)
			p := NewOpenAIProvider(providers.OpenAIConfig{
				BaseProviderConfig: providers.BaseProviderConfig{APIKey: "sk-test", BaseURL: server.URL},
				ImageModel:         tt.cfgModel,
			}, zaptest.NewLogger(t))

			res, err := p.GenerateImageVariation(context.Background(), &llm.ImageVariationRequest{
				Image: llm.FilePart{Filename: "in.png", ContentType: "image/png", Reader: strings.NewReader("img")},
				Extra: tt.extra,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, res.Metadata.Model)

			parts := parseForm(t, api.last(t))
			assert.Equal(t, "in.png", parts["image"].Filename)
			assert.Equal(t, "image/png", parts["image"].ContentType)
			if tt.wantField == "" {
				assert.NotContains(t, parts, "model")
			} else {
				assert.Equal(t, tt.wantField, parts["model"].Data)
			}
		})
	}
}

func TestOpenAIProvider_GenerateImageVariation_RequiresImage(t *testing.T) {
	api, server := newFakeAPI(t, http.StatusOK, imagesBody)
	p := newTestProvider(t, server.URL)

	_, err := p.GenerateImageVariation(context.Background(), &llm.ImageVariationRequest{Model: "dall-e-2"})
	assert.True(t, types.IsCode(err, types.ErrAssertionFailed))
	assert.Empty(t, api.requests)
}

func TestOpenAIProvider_GenerateImageVariation_HTTPError(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusBadRequest, `{"error":{"message":"Invalid image file"}}`)
	p := newTestProvider(t, server.URL)

	_, err := p.GenerateImageVariation(context.Background(), &llm.ImageVariationRequest{
		Image: llm.FilePart{Reader: strings.NewReader("not an image")},
	})
	require.Error(t, err)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrHTTP, e.Code)
	assert.Equal(t, "Invalid image file", e.Message)
	assert.Equal(t, "openai", e.Provider)
}

// slowReader 每次 Read 前等待一段时间，模拟慢速的文件来源
type slowReader struct {
	r     io.Reader
	delay time.Duration
}

func (s *slowReader) Read(p []byte) (int, error) {
	time.Sleep(s.delay)
	if len(p) > 4 {
		p = p[:4]
	}
	return s.r.Read(p)
}

func TestOpenAIProvider_GenerateImageVariation_LatencyExcludesFileRead(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusOK, imagesBody)
	rec := &recorderStub{}
	p := newTestProvider(t, server.URL, WithMetrics(rec))

	const delay = 100 * time.Millisecond
	// "PNGBYTES" 分两次读出，再加一次 EOF：至少 300ms 花在读文件上
	src := &slowReader{r: strings.NewReader("PNGBYTES"), delay: delay}

	start := time.Now()
	res, err := p.GenerateImageVariation(context.Background(), &llm.ImageVariationRequest{
		Image: llm.FilePart{Reader: src},
	})
	elapsed := time.Since(start)
	require.NoError(t, err)
	require.GreaterOrEqual(t, elapsed, 3*delay)

	assert.Less(t, res.Metadata.LatencyMs, (2 * delay).Milliseconds())

	obs := rec.all()
	require.Len(t, obs, 1)
	assert.Equal(t, OpGenerateImageVariation, obs[0].Operation)
	assert.Less(t, obs[0].Latency, 2*delay)
}
