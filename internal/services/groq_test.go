package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tmc/langchaingo/llms"

	"chatrelay-backend/internal/models"
)

type fakeModel struct {
	response  string
	fragments []string
	err       error

	gotMessages []llms.MessageContent
	gotOpts     llms.CallOptions
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.gotMessages = messages

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	m.gotOpts = opts

	if opts.StreamingFunc != nil {
		for _, fragment := range m.fragments {
			if err := opts.StreamingFunc(ctx, []byte(fragment)); err != nil {
				return nil, err
			}
		}
	}

	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return m.response, m.err
}

func newTestClient(model *fakeModel) *GroqClient {
	return &GroqClient{
		llm: model,
		cfg: GroqConfig{
			Model:       "llama-3.2-3b-preview",
			Temperature: 0.7,
			MaxTokens:   1000,
			TopP:        1,
			Timeout:     time.Second,
		},
	}
}

func TestGroqClient_Blocking(t *testing.T) {
	model := &fakeModel{response: "  full response  "}
	client := newTestClient(model)

	text, err := client.Complete(context.Background(), []models.ChatMessage{
		{Role: models.RoleSystem, Content: "be helpful"},
		{Role: models.RoleUser, Content: "hi"},
	}, ModeBlocking)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if text != "full response" {
		t.Errorf("Expected trimmed response text, got %q", text)
	}
	if model.gotOpts.Temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", model.gotOpts.Temperature)
	}
	if model.gotOpts.MaxTokens != 1000 {
		t.Errorf("Expected max tokens 1000, got %d", model.gotOpts.MaxTokens)
	}
	if model.gotOpts.TopP != 1 {
		t.Errorf("Expected top_p 1, got %v", model.gotOpts.TopP)
	}
}

func TestGroqClient_StreamingAccumulatesInOrder(t *testing.T) {
	model := &fakeModel{fragments: []string{"Hel", "lo", " ", "wor", "ld", "!"}}
	client := newTestClient(model)

	text, err := client.Complete(context.Background(), []models.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
	}, ModeStreaming)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if text != "Hello world!" {
		t.Errorf("Expected fragments concatenated in arrival order, got %q", text)
	}
	if model.gotOpts.StreamingFunc == nil {
		t.Error("Expected streaming mode to install a streaming callback")
	}
}

func TestGroqClient_RoleMapping(t *testing.T) {
	model := &fakeModel{response: "ok"}
	client := newTestClient(model)

	_, err := client.Complete(context.Background(), []models.ChatMessage{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "question"},
		{Role: models.RoleAssistant, Content: "answer"},
		{Role: models.RoleUser, Content: "followup"},
	}, ModeBlocking)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	expected := []llms.ChatMessageType{
		llms.ChatMessageTypeSystem,
		llms.ChatMessageTypeHuman,
		llms.ChatMessageTypeAI,
		llms.ChatMessageTypeHuman,
	}
	if len(model.gotMessages) != len(expected) {
		t.Fatalf("Expected %d provider messages, got %d", len(expected), len(model.gotMessages))
	}
	for i, want := range expected {
		if model.gotMessages[i].Role != want {
			t.Errorf("Message %d: expected role %q, got %q", i, want, model.gotMessages[i].Role)
		}
	}
}

func TestGroqClient_FailuresAreUniform(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		mode  CompletionMode
	}{
		{"transport failure blocking", &fakeModel{err: errors.New("connection refused")}, ModeBlocking},
		{"transport failure streaming", &fakeModel{err: errors.New("connection refused")}, ModeStreaming},
		{"empty response blocking", &fakeModel{response: "   "}, ModeBlocking},
		{"empty stream", &fakeModel{fragments: nil}, ModeStreaming},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(tc.model)

			_, err := client.Complete(context.Background(), []models.ChatMessage{
				{Role: models.RoleUser, Content: "hi"},
			}, tc.mode)

			if !errors.Is(err, ErrProviderUnavailable) {
				t.Errorf("Expected ErrProviderUnavailable, got %v", err)
			}
		})
	}
}

func TestNewGroqClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGroqClient(GroqConfig{})
	if err == nil {
		t.Error("Expected error for missing API key")
	}
}
