package providers

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/omniai/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/BaSui01/omniai/llm/providers"

// RequestIDHeader is set on every outbound request unless the caller supplies one.
const RequestIDHeader = "X-Client-Request-Id"

// HTTPErrorDetails is the Details payload of an ErrHTTP error.
type HTTPErrorDetails struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	// Body is the decoded JSON body, or the raw text when it is not JSON.
	Body any `json:"details"`
}

// HTTPClient performs one HTTP exchange per call and returns either the
// decoded JSON payload or a *types.Error.
type HTTPClient struct {
	client *http.Client
	logger *zap.Logger
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithClient replaces the underlying *http.Client.
func WithClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// NewHTTPClient creates an HTTPClient with a TLS 1.2+ transport.
// A zero timeout defaults to 60s.
func NewHTTPClient(timeout time.Duration, logger *zap.Logger, opts ...ClientOption) *HTTPClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &HTTPClient{
		client: &http.Client{Timeout: timeout, Transport: secureTransport()},
		logger: logger.With(zap.String("component", "http_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func secureTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Get issues a GET with the query built from params and decodes the JSON body into out.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, params map[string]any, headers map[string]string, out any) error {
	if qs := BuildQuery(params); qs != "" {
		rawURL += "?" + qs
	}
	defaults := map[string]string{"Content-Type": "application/json"}
	return c.do(ctx, http.MethodGet, rawURL, nil, mergeHeaders(defaults, headers), out)
}

// Delete issues a DELETE and decodes the JSON body into out.
func (c *HTTPClient) Delete(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	defaults := map[string]string{"Content-Type": "application/json"}
	return c.do(ctx, http.MethodDelete, rawURL, nil, mergeHeaders(defaults, headers), out)
}

// Payload is a request body encoded ahead of the exchange. Encoding a
// multipart form drains its file readers, so callers that time the round
// trip encode first and pass the Payload to Post.
type Payload struct {
	data        []byte
	contentType string
}

// ContentType returns the Content-Type header value for the body.
func (p *Payload) ContentType() string { return p.contentType }

// Len returns the encoded size in bytes.
func (p *Payload) Len() int { return len(p.data) }

// EncodeBody encodes a *Form as multipart/form-data and anything else as
// JSON. A *Payload is returned unchanged. Failures are ErrNetwork.
func EncodeBody(body any) (*Payload, error) {
	switch b := body.(type) {
	case *Payload:
		return b, nil
	case *Form:
		r, contentType, err := b.Encode()
		if err != nil {
			return nil, networkError(err)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, networkError(err)
		}
		return &Payload{data: data, contentType: contentType}, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, networkError(err)
		}
		return &Payload{data: data, contentType: "application/json"}, nil
	}
}

// Post sends body and decodes the JSON response into out.
// body is encoded with EncodeBody unless it already is a *Payload.
// Caller headers override the default Content-Type.
func (c *HTTPClient) Post(ctx context.Context, rawURL string, body any, headers map[string]string, out any) error {
	payload, err := EncodeBody(body)
	if err != nil {
		return err
	}
	defaults := map[string]string{"Content-Type": payload.contentType}
	return c.do(ctx, http.MethodPost, rawURL, bytes.NewReader(payload.data), mergeHeaders(defaults, headers), out)
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body io.Reader, headers map[string]string, out any) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", redactQuery(rawURL)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return networkError(err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.client.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer SafeCloseBody(resp.Body)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := readHTTPError(resp)
		c.logger.Warn("http request failed",
			zap.String("method", method),
			zap.String("url", redactQuery(rawURL)),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", req.Header.Get(RequestIDHeader)),
			zap.String("message", herr.Message),
		)
		return herr
	}

	c.logger.Debug("http request completed",
		zap.String("method", method),
		zap.String("url", redactQuery(rawURL)),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", req.Header.Get(RequestIDHeader)),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return networkError(err)
	}
	return nil
}

// networkError wraps a lower-level failure as ErrNetwork. A *types.Error
// anywhere in err's chain is returned as is.
func networkError(err error) error {
	if e, ok := types.AsError(err); ok {
		return e
	}
	cause := err
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		cause = uerr.Err
	}
	return types.NewError(types.ErrNetwork, "Network Error: "+cause.Error()).
		WithCause(err).
		WithRetryable(!errors.Is(err, context.Canceled))
}

// readHTTPError decodes a non-success response into an ErrHTTP error.
func readHTTPError(resp *http.Response) *types.Error {
	statusText := StatusText(resp)

	var body any
	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil || json.Unmarshal(data, &body) != nil {
		body = string(data)
	}

	return types.NewError(types.ErrHTTP, ErrorMessage(resp.StatusCode, statusText, body)).
		WithHTTPStatus(resp.StatusCode).
		WithRetryable(resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500).
		WithDetails(HTTPErrorDetails{
			Status:     resp.StatusCode,
			StatusText: statusText,
			Body:       body,
		})
}

// ErrorMessage derives a readable message from a decoded error body:
// error.message, then error (when a string), then message, then a generic line.
// message is only consulted when the body has no error key at all; an error
// value of any other shape yields the generic line.
func ErrorMessage(status int, statusText string, body any) string {
	generic := fmt.Sprintf("HTTP request failed: %d %s", status, statusText)
	obj, ok := body.(map[string]any)
	if !ok {
		return generic
	}
	if errVal, present := obj["error"]; present {
		switch v := errVal.(type) {
		case map[string]any:
			if msg, ok := v["message"].(string); ok {
				return msg
			}
		case string:
			return v
		}
		return generic
	}
	if msg, ok := obj["message"].(string); ok {
		return msg
	}
	return generic
}

// StatusText returns the reason phrase the server sent, or the canonical one.
func StatusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// BuildQuery encodes params as a query string. Nil values are skipped;
// everything else is stringified with fmt.Sprint. Output is sorted by key.
func BuildQuery(params map[string]any) string {
	values := url.Values{}
	for k, v := range params {
		if IsNil(v) {
			continue
		}
		values.Add(k, Stringify(v))
	}
	return values.Encode()
}

// IsNil reports whether v is nil or a typed nil such as (*string)(nil).
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Stringify formats a query or form value. Pointers are followed so that
// a *string yields its text rather than an address.
func Stringify(v any) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}
	return fmt.Sprint(rv.Interface())
}

func mergeHeaders(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range overrides {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	return merged
}

func redactQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// SafeCloseBody 安全关闭 HTTP 响应体并忽略错误
func SafeCloseBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
