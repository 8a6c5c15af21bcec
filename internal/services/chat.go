package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"chatrelay-backend/internal/models"
)

// apologyResponse substitutes for the bot response when the provider is
// unavailable. The turn still persists: an upstream outage never loses the
// user's message.
const apologyResponse = "I apologize, but I'm having trouble processing your request at the moment. Please try again later."

// defaultModelTag is recorded as model_used when no model id is configured.
const defaultModelTag = "groq"

type historyStore interface {
	Create(ctx context.Context, t *models.ChatTurn) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatTurn, error)
	MarkFlagged(ctx context.Context, id uuid.UUID) error
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error
}

type completionProvider interface {
	Complete(ctx context.Context, messages []models.ChatMessage, mode CompletionMode) (string, error)
	ModelID() string
}

// ChatService orchestrates one chat turn: throttle, context assembly,
// completion, persistence, moderation. All collaborators are injected at
// construction.
type ChatService struct {
	store        historyStore
	provider     completionProvider
	throttle     ThrottleGate
	moderation   *ModerationFilter
	mode         CompletionMode
	contextTurns int
	historyLimit int
}

func NewChatService(
	store historyStore,
	provider completionProvider,
	throttle ThrottleGate,
	moderation *ModerationFilter,
	mode CompletionMode,
	contextTurns int,
	historyLimit int,
) *ChatService {
	return &ChatService{
		store:        store,
		provider:     provider,
		throttle:     throttle,
		moderation:   moderation,
		mode:         mode,
		contextTurns: contextTurns,
		historyLimit: historyLimit,
	}
}

// SubmitTurn runs one full request cycle for an inbound user message and
// returns the persisted turn.
func (s *ChatService) SubmitTurn(ctx context.Context, userID uuid.UUID, message string) (*models.ChatTurn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &ValidationError{Fields: map[string]string{"user_message": "Message cannot be empty"}}
	}

	allowed, err := s.throttle.Allow(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("throttle gate: %w", err)
	}
	if !allowed {
		return nil, &RateLimitError{Message: "Message limit reached. Please try again later."}
	}

	history, err := s.store.ListRecent(ctx, userID, s.contextTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat context: %w", err)
	}

	botResponse, err := s.provider.Complete(ctx, assembleContext(history, message), s.mode)
	if err != nil {
		// Degrade, never fail: the turn completes with the apology text.
		log.Printf("chat: provider call failed for user=%s: %v", userID, err)
		botResponse = apologyResponse
	}

	turn := &models.ChatTurn{
		UserID:      userID,
		UserMessage: message,
		BotResponse: strings.TrimSpace(botResponse),
		ModelUsed:   s.modelTag(),
	}
	if turn.BotResponse == "" {
		return nil, fmt.Errorf("invalid chat turn: bot response is empty")
	}

	if err := s.store.Create(ctx, turn); err != nil {
		// The generated response is lost with the message; accepted, not retried.
		return nil, fmt.Errorf("failed to persist chat turn: %w", err)
	}

	// Moderation is a post-hoc audit signal on the user's input. It never
	// blocks the provider call and never touches the bot response.
	if s.moderation.Classify(message) {
		if err := s.store.MarkFlagged(ctx, turn.ID); err != nil {
			log.Printf("chat: failed to flag turn=%s: %v", turn.ID, err)
		} else {
			turn.IsFlagged = true
		}
	}

	return turn, nil
}

// History returns the caller's most recent turns, newest first.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID) ([]*models.ChatTurn, error) {
	turns, err := s.store.ListRecent(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat history: %w", err)
	}
	if turns == nil {
		turns = []*models.ChatTurn{}
	}
	return turns, nil
}

// ClearHistory deletes every turn belonging to the caller.
func (s *ChatService) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}

func (s *ChatService) modelTag() string {
	if id := s.provider.ModelID(); id != "" {
		return id
	}
	return defaultModelTag
}
