package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatrelay-backend/internal/models"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

// Create persists a complete turn. Both message fields go in a single INSERT
// so a partially-written turn is never visible to readers. The timestamp is
// assigned by the database, keeping per-user ordering consistent with commit
// order.
func (r *ChatRepo) Create(ctx context.Context, t *models.ChatTurn) error {
	t.ID = uuid.New()

	query := `INSERT INTO chat_history (id, user_id, user_message, bot_response, is_flagged, model_used)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING timestamp`

	return r.pool.QueryRow(ctx, query,
		t.ID, t.UserID, t.UserMessage, t.BotResponse, t.IsFlagged, t.ModelUsed,
	).Scan(&t.Timestamp)
}

// ListRecent returns up to limit turns for the user, newest first.
func (r *ChatRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatTurn, error) {
	query := `SELECT id, user_id, user_message, bot_response, is_flagged, model_used, timestamp
		FROM chat_history WHERE user_id = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []*models.ChatTurn
	for rows.Next() {
		t := &models.ChatTurn{}
		err := rows.Scan(
			&t.ID, &t.UserID, &t.UserMessage, &t.BotResponse,
			&t.IsFlagged, &t.ModelUsed, &t.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}

	return turns, rows.Err()
}

// MarkFlagged records the moderation outcome. The transition is one-way; a
// flagged turn is never cleared.
func (r *ChatRepo) MarkFlagged(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE chat_history SET is_flagged = TRUE WHERE id = $1", id)
	return err
}

// DeleteAllByUser removes every turn belonging to the user.
func (r *ChatRepo) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chat_history WHERE user_id = $1", userID)
	return err
}
