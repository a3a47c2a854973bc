// Package ai implements the language-model collaborator over an
// OpenAI-compatible chat completions API.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"

	"github.com/sashabaranov/go-openai"
)

const insightSystemPrompt = `You are a trading analysis assistant. Given a stock quote snapshot, respond with ONLY a JSON object of the shape {"action":"buy"|"sell"|"hold"|"watch","confidence":0-100,"reasoning":["...","..."]}. No prose outside the JSON.`

const chatSystemPrompt = `You are a trading analysis assistant answering follow-up questions about a previously generated insight. Be concise and concrete.`

// Client implements InsightModel on top of an OpenAI-compatible endpoint.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// New creates an AI client. baseURL points at an OpenAI-compatible API, e.g.
// Groq's https://api.groq.com/openai/v1.
func New(baseURL, apiKey, model string, timeout time.Duration) drepo.InsightModel {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// GenerateInsight asks the model for a recommendation and strictly parses the
// response. Any transport error, timeout, or shape deviation is returned as
// an error so the caller can fall back.
func (c *Client) GenerateInsight(ctx context.Context, quote *models.Quote) (*models.ParsedInsight, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	snapshot, err := json.Marshal(quote)
	if err != nil {
		return nil, fmt.Errorf("marshal quote: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: insightSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Analyze %s: %s", quote.Symbol, snapshot)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("insight completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("insight completion: empty choices")
	}

	return ParseInsight(resp.Choices[0].Message.Content)
}

// ParseInsight strictly parses model output into a ParsedInsight. It
// tolerates surrounding prose by extracting the outermost JSON object, but
// rejects everything that does not validate field by field.
func ParseInsight(content string) (*models.ParsedInsight, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("parse insight: no JSON object in response")
	}

	var parsed models.ParsedInsight
	dec := json.NewDecoder(strings.NewReader(content[start : end+1]))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse insight: %w", err)
	}

	if !models.ValidAction(string(parsed.Action)) {
		return nil, fmt.Errorf("parse insight: invalid action %q", parsed.Action)
	}
	if parsed.Confidence < 0 || parsed.Confidence > 100 {
		return nil, fmt.Errorf("parse insight: confidence %d out of range", parsed.Confidence)
	}
	if len(parsed.Reasoning) == 0 {
		return nil, fmt.Errorf("parse insight: empty reasoning")
	}
	return &parsed, nil
}

// Answer asks the model a follow-up question about an insight.
func (c *Client) Answer(ctx context.Context, question string, insight *models.Insight) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	insightCtx, err := json.Marshal(insight)
	if err != nil {
		return "", fmt.Errorf("marshal insight: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Insight context: %s\n\nQuestion: %s", insightCtx, question)},
		},
		Temperature: 0.5,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
