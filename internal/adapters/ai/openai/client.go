package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/phenrril/catalogseed/internal/domain"
)

const (
	DefaultTextModel  = openai.GPT4oMini
	DefaultImageModel = openai.CreateImageModelDallE3
)

type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
}

// Client implements domain.TextModel and domain.ImageModel on the OpenAI API.
type Client struct {
	api        *openai.Client
	textModel  string
	imageModel string
}

func New(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = DefaultTextModel
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = DefaultImageModel
	}

	return &Client{
		api:        openai.NewClientWithConfig(cfg),
		textModel:  textModel,
		imageModel: imageModel,
	}
}

func (c *Client) GenerateJSON(ctx context.Context, req domain.StructuredRequest) ([]byte, error) {
	var messages []openai.ChatCompletionMessage
	if req.Instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.textModel,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Name,
				Schema: req.Schema,
				Strict: req.Strict,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion %s: %w", req.Name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion %s: %w", req.Name, domain.ErrEmptyResponse)
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return nil, fmt.Errorf("chat completion %s refused: %s", req.Name, msg.Refusal)
	}

	content := stripFences(msg.Content)
	if content == "" {
		return nil, fmt.Errorf("chat completion %s: %w", req.Name, domain.ErrEmptyResponse)
	}
	log.Debug().Str("request", req.Name).Int("bytes", len(content)).Str("model", c.textModel).Msg("structured output received")
	return []byte(content), nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("create image: %w", domain.ErrEmptyResponse)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}

// Models sometimes wrap JSON in markdown fences even when a schema is set.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
