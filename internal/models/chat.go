package models

import (
	"time"

	"github.com/google/uuid"
)

// Message roles used in the provider payload.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single role-tagged message sent to the
// completion provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatTurn is one user-message/bot-response exchange. A turn is immutable
// once persisted, except for the single false→true flagged transition.
type ChatTurn struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"-"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	IsFlagged   bool      `json:"-"`
	ModelUsed   string    `json:"-"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChatRequest is the payload posted to the chat endpoint.
type ChatRequest struct {
	UserMessage string `json:"user_message"`
}
