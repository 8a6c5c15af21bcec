package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"chatrelay-backend/internal/models"
)

// ErrProviderUnavailable is the uniform failure the gateway sees when the
// completion provider cannot produce a response, whatever the underlying
// cause: transport, auth, timeout or a malformed body.
var ErrProviderUnavailable = errors.New("completion provider unavailable")

// CompletionMode selects how the provider delivers the response body.
type CompletionMode int

const (
	ModeBlocking CompletionMode = iota
	ModeStreaming
)

// GroqConfig holds the fixed per-deployment provider settings. None of these
// vary per request.
type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
	Timeout     time.Duration
}

// GroqClient wraps the Groq OpenAI-compatible completion API.
type GroqClient struct {
	llm llms.Model
	cfg GroqConfig
}

func NewGroqClient(cfg GroqConfig) (*GroqClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is not set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Groq client: %w", err)
	}

	return &GroqClient{llm: llm, cfg: cfg}, nil
}

// ModelID reports the deployed model identifier for turn bookkeeping.
func (c *GroqClient) ModelID() string {
	return c.cfg.Model
}

// Complete sends the assembled message sequence to the provider and returns
// the full response text. The call is bounded by the configured timeout so a
// stalled provider cannot hold a request goroutine indefinitely.
func (c *GroqClient) Complete(ctx context.Context, messages []models.ChatMessage, mode CompletionMode) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	content := toProviderMessages(messages)

	if mode == ModeStreaming {
		return c.completeStreaming(ctx, content)
	}
	return c.completeBlocking(ctx, content)
}

func (c *GroqClient) completeBlocking(ctx context.Context, content []llms.MessageContent) (string, error) {
	resp, err := c.llm.GenerateContent(ctx, content, c.callOptions()...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrProviderUnavailable)
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", fmt.Errorf("%w: response text was empty", ErrProviderUnavailable)
	}

	return text, nil
}

// completeStreaming runs the provider call as a producer/consumer pipeline:
// the streaming callback produces fragments onto a channel and this goroutine
// concatenates them in arrival order. No fragment is dropped or reordered.
func (c *GroqClient) completeStreaming(ctx context.Context, content []llms.MessageContent) (string, error) {
	fragments := make(chan string, 16)
	done := make(chan error, 1)

	opts := append(c.callOptions(), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		select {
		case fragments <- string(chunk):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}))

	go func() {
		defer close(fragments)
		_, err := c.llm.GenerateContent(ctx, content, opts...)
		done <- err
	}()

	var b strings.Builder
	for fragment := range fragments {
		b.WriteString(fragment)
	}

	if err := <-done; err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: stream produced no text", ErrProviderUnavailable)
	}

	return text, nil
}

func (c *GroqClient) callOptions() []llms.CallOption {
	return []llms.CallOption{
		llms.WithTemperature(c.cfg.Temperature),
		llms.WithMaxTokens(c.cfg.MaxTokens),
		llms.WithTopP(c.cfg.TopP),
	}
}

func toProviderMessages(messages []models.ChatMessage) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role llms.ChatMessageType
		switch m.Role {
		case models.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case models.RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, m.Content))
	}
	return content
}
