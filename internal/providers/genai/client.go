package genai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"contentgate/internal/domain"
	"contentgate/internal/infra"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a lightweight facade over the Gemini image API. Without an API
// key it renders deterministic synthetic images instead of calling out, which
// keeps the whole pipeline operational in local and CI environments.
//
// Failures are classified: a quota-exhaustion response surfaces as
// domain.ErrQuotaExhausted so the circuit breaker can open, anything else as
// domain.ErrProviderFailure. Callers depend on that distinction.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// ImageRequest captures one image-generation call.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
	GradeLevel  int
	RequestID   string
}

// ImageAsset is the normalized result returned by the client.
type ImageAsset struct {
	Format       string
	Width        int
	Height       int
	Data         []byte
	GenerationMS int64
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiTool struct {
	ImageGeneration *geminiImageTool `json:"image_generation,omitempty"`
}

type geminiImageTool struct{}

type geminiGenerateContentRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "imagen-4.0-generate-001"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateImage produces one image for the prompt. With no API key the result
// is a deterministic synthetic PNG keyed on the request.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.apiKey == "" {
		return c.syntheticImage(req), nil
	}

	started := time.Now()
	asset, err := c.remoteGenerateImage(ctx, req)
	if err != nil {
		return nil, err
	}
	asset.GenerationMS = time.Since(started).Milliseconds()
	return asset, nil
}

func (c *Client) remoteGenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: req.Prompt}},
			},
		},
		Tools: []geminiTool{{ImageGeneration: &geminiImageTool{}}},
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model)), payload, &response); err != nil {
		return nil, err
	}

	width, height := normalizeAspect(req.AspectRatio)
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil || len(data) == 0 {
				continue
			}
			format := part.InlineData.MimeType
			if format == "" {
				format = "image/png"
			}
			c.logger.Debug().
				Str("request_id", req.RequestID).
				Str("model", c.model).
				Msg("genai: generated remote image asset")
			return &ImageAsset{Format: format, Width: width, Height: height, Data: data}, nil
		}
	}

	return nil, fmt.Errorf("%w: no image content returned", domain.ErrProviderFailure)
}

func (c *Client) invokeGemini(ctx context.Context, path string, payload any, out any) error {
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: invoke gemini: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.classifyError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode gemini response: %v", domain.ErrProviderFailure, err)
	}
	return nil
}

// classifyError separates quota exhaustion from ordinary provider failures.
// The provider signals exhaustion with HTTP 429 plus a RESOURCE_EXHAUSTED
// status or a "Quota exceeded" message; plain 429s are rate limiting and stay
// transient.
func (c *Client) classifyError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	message := strings.TrimSpace(string(data))

	var apiErr geminiErrorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	if resp.StatusCode == http.StatusTooManyRequests && isQuotaExhaustedBody(apiErr, message) {
		return fmt.Errorf("%w: gemini status %d: %s", domain.ErrQuotaExhausted, resp.StatusCode, message)
	}
	if message == "" {
		return fmt.Errorf("%w: gemini status %d", domain.ErrProviderFailure, resp.StatusCode)
	}
	return fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderFailure, resp.StatusCode, message)
}

func isQuotaExhaustedBody(apiErr geminiErrorResponse, message string) bool {
	if strings.EqualFold(apiErr.Error.Status, "RESOURCE_EXHAUSTED") {
		return true
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "quota exceeded") || strings.Contains(lower, "resource_exhausted")
}

func (c *Client) syntheticImage(req ImageRequest) *ImageAsset {
	width, height := normalizeAspect(req.AspectRatio)
	seed := deterministicSeed(req.RequestID, req.Prompt, req.AspectRatio, req.GradeLevel)
	data := renderSyntheticImage(width, height, seed)

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Msg("genai: generated synthetic image asset")

	return &ImageAsset{Format: "image/png", Width: width, Height: height, Data: data}
}

func deterministicSeed(requestID, prompt, aspect string, grade int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", requestID, prompt, aspect, grade)))
	return hex.EncodeToString(sum[:8])
}

// renderSyntheticImage draws a small vertical color blend derived from the
// seed, so each request yields a visually distinct but reproducible PNG.
func renderSyntheticImage(width, height int, seed string) []byte {
	raw, _ := hex.DecodeString(seed)
	var base uint32
	if len(raw) >= 4 {
		base = binary.BigEndian.Uint32(raw[:4])
	}
	top := color.NRGBA{R: uint8(base >> 24), G: uint8(base >> 16), B: uint8(base >> 8), A: 255}
	bottom := color.NRGBA{R: uint8(base >> 8), G: uint8(base), B: uint8(base >> 24), A: 255}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		blend := float64(y) / float64(height)
		row := color.NRGBA{
			R: lerp(top.R, bottom.R, blend),
			G: lerp(top.G, bottom.G, blend),
			B: lerp(top.B, bottom.B, blend),
			A: 255,
		}
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, row)
		}
	}

	buf := &bytes.Buffer{}
	_ = png.Encode(buf, img)
	return buf.Bytes()
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func normalizeAspect(aspect string) (int, int) {
	switch strings.TrimSpace(aspect) {
	case "16:9":
		return 1024, 576
	case "9:16":
		return 576, 1024
	case "4:3":
		return 1024, 768
	case "3:4":
		return 768, 1024
	default:
		return 1024, 1024
	}
}
