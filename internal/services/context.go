package services

import "chatrelay-backend/internal/models"

// systemPrompt is the fixed instruction prepended to every provider request.
const systemPrompt = `You are a helpful AI assistant. Provide clear, accurate, and engaging responses.
Keep responses concise but informative. Be friendly and professional.`

// assembleContext builds the exact payload handed to the completion provider:
// the system instruction, prior turns in chronological order (each turn
// contributing a user entry then an assistant entry), then the new user
// message. history is expected newest-first, as ListRecent returns it.
func assembleContext(history []*models.ChatTurn, userMessage string) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, 2*len(history)+2)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: systemPrompt})

	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		messages = append(messages,
			models.ChatMessage{Role: models.RoleUser, Content: turn.UserMessage},
			models.ChatMessage{Role: models.RoleAssistant, Content: turn.BotResponse},
		)
	}

	return append(messages, models.ChatMessage{Role: models.RoleUser, Content: userMessage})
}
