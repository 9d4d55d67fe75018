package genai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// OpenAIClient is a Generator backed by an OpenAI-compatible chat
// completion API. The model is chosen per call, so one client serves
// both the cheap classifier and the heavier extractor.
type OpenAIClient struct {
	llm *openai.LLM
}

// NewOpenAIClient creates a client for the given endpoint. Returns
// ErrNoCredential when apiKey is empty; callers decide whether that
// degrades to emulator mode or fails the invocation.
func NewOpenAIClient(apiKey, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	return &OpenAIClient{llm: llm}, nil
}

// Generate implements Generator.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	var msgs []llms.MessageContent
	if req.System != "" {
		msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeSystem, req.System))
	}
	msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeHuman, req.User))

	resp, err := c.llm.GenerateContent(ctx, msgs,
		llms.WithModel(req.Model),
		llms.WithMaxTokens(req.MaxTokens),
		llms.WithTemperature(req.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("genai: generate: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
