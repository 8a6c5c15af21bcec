package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/models"
)

// chatService is the slice of the gateway the HTTP layer depends on.
type chatService interface {
	SubmitTurn(ctx context.Context, userID uuid.UUID, message string) (*models.ChatTurn, error)
	History(ctx context.Context, userID uuid.UUID) ([]*models.ChatTurn, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) error
}

type ChatHandler struct {
	chat chatService
}

func NewChatHandler(chat chatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// SubmitMessage handles POST /api/v1/chat.
func (h *ChatHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	turn, err := h.chat.SubmitTurn(r.Context(), userID, req.UserMessage)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, turn)
}

// History handles GET /api/v1/chat/history.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	turns, err := h.chat.History(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, turns)
}

// ClearHistory handles DELETE /api/v1/chat/history.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.chat.ClearHistory(r.Context(), userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
