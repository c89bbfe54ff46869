package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogseed/internal/domain"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image"
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
}

// Client implements domain.TextModel and domain.ImageModel on the Gemini
// generateContent REST endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	textModel  string
	imageModel string
	httpClient *http.Client
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}
	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = DefaultTextModel
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: httpClient,
	}
}

func (c *Client) GenerateJSON(ctx context.Context, req domain.StructuredRequest) ([]byte, error) {
	schema, err := json.Marshal(req.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", req.Name, err)
	}

	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType:   "application/json",
			ResponseJSONSchema: schema,
		},
	}
	if req.Instructions != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: req.Instructions}}}
	}

	resp, err := c.generateContent(ctx, c.textModel, payload)
	if err != nil && isUnknownFieldError(err, "responseJsonSchema") {
		// Older API versions only know the OpenAPI-subset responseSchema, which
		// rejects parts of our schemas. Put the schema in the prompt instead.
		log.Warn().Str("request", req.Name).Msg("responseJsonSchema unsupported, inlining schema")
		payload.GenerationConfig.ResponseJSONSchema = nil
		payload.Contents[0].Parts = append(payload.Contents[0].Parts,
			part{Text: "Respond with JSON matching this JSON schema:\n" + string(schema)})
		resp, err = c.generateContent(ctx, c.textModel, payload)
	}
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", req.Name, err)
	}

	text := strings.TrimSpace(resp.Text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("generate %s: %w", req.Name, domain.ErrEmptyResponse)
	}
	return []byte(text), nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	req := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: "1:1"},
		},
	}

	resp, err := c.generateContent(ctx, c.imageModel, req)
	if err != nil && isUnknownFieldError(err, "imageConfig") {
		req.GenerationConfig.ImageConfig = nil
		resp, err = c.generateContent(ctx, c.imageModel, req)
	}
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Images) == 0 {
		return nil, fmt.Errorf("generate image: %w", domain.ErrEmptyResponse)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Images[0].Data)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}

type response struct {
	Text   string
	Images []blob
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return response{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return response{}, fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return response{}, fmt.Errorf("prompt blocked: %s", decoded.PromptFeedback.BlockReason)
	}
	return extractParts(decoded), nil
}

func extractParts(resp generateContentResponse) response {
	var out response
	if len(resp.Candidates) == 0 {
		return out
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		if p.Text != "" {
			text.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" {
			out.Images = append(out.Images, *p.InlineData)
		}
	}
	out.Text = text.String()
	return out
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}
