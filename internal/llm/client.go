// Package llm is the narrative assessment gateway: it sends per-criterion
// evaluation prompts to an OpenAI-compatible chat endpoint and turns the
// responses into verdicts. All failures here degrade into errored
// verdicts; nothing in this package aborts a batch.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

var (
	ErrEmptyResponse    = errors.New("empty completion response")
	ErrRetriesExhausted = errors.New("retries exhausted")
)

const (
	// temperature is fixed: scoring must be as repeatable as the model allows.
	temperature         = 0.1
	maxCompletionTokens = 1024
	maxRetries          = 3
)

var retryDelays = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// Message is one chat turn.
type Message struct {
	Role    string // "system" or "user"
	Content string
}

func SystemMessage(content string) Message { return Message{Role: "system", Content: content} }
func UserMessage(content string) Message   { return Message{Role: "user", Content: content} }

// Client completes a chat exchange and returns the raw response text.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// TokenUsage is the cumulative token count across all completions.
type TokenUsage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// OpenAIClient is the production Client. It retries rate limits, server
// errors and connectivity failures with fixed backoff and gives up after
// maxRetries.
type OpenAIClient struct {
	client openai.Client
	model  string
	logger *zap.Logger

	promptTokens     atomic.Int64
	completionTokens atomic.Int64
}

// NewOpenAIClient builds a client for the given endpoint. baseURL may be
// empty to use the default OpenAI endpoint.
func NewOpenAIClient(apiKey, model, baseURL string, logger *zap.Logger) *OpenAIClient {
	opts := []openaiopt.RequestOption{openaiopt.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, openaiopt.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(c.model),
		Messages:            toOpenAIMessages(messages),
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxCompletionTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err == nil {
			c.promptTokens.Add(resp.Usage.PromptTokens)
			c.completionTokens.Add(resp.Usage.CompletionTokens)
			if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
				return "", ErrEmptyResponse
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		if !retryable(err) || attempt >= maxRetries {
			break
		}
		c.logger.Warn("completion failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if err := sleepCtx(ctx, retryDelays[attempt]); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

// Usage returns the cumulative token usage since the client was created.
func (c *OpenAIClient) Usage() TokenUsage {
	return TokenUsage{
		PromptTokens:     c.promptTokens.Load(),
		CompletionTokens: c.completionTokens.Load(),
	}
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			out = append(out, openai.SystemMessage(m.Content))
		} else {
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// retryable reports whether the request should be retried: rate limits,
// server-side errors, and anything that is not an API error (timeouts,
// connection resets).
func retryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
