package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hewor/agency-backend/internal/models"
)

// ChatRepository отвечает за переписку по заказам.
// Лента append-only: сообщения не редактируются и не удаляются,
// очистка вложений затирает только ссылку на файл.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository создаёт новый экземпляр.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Add сохраняет сообщение.
func (r *ChatRepository) Add(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (order_id, channel, sender_id, message, attachment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, msg.OrderID, msg.Channel, msg.SenderID, msg.Message, msg.Attachment).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("chat repository: insert %w", err)
	}
	return nil
}

// List возвращает сообщения канала заказа в хронологическом порядке.
func (r *ChatRepository) List(ctx context.Context, orderID uuid.UUID, channel string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	query := `
		SELECT id, order_id, channel, sender_id, message, attachment, created_at
		FROM chat_messages
		WHERE order_id = $1 AND channel = $2
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &messages, query, orderID, channel); err != nil {
		return nil, fmt.Errorf("chat repository: list %w", err)
	}
	return messages, nil
}

// ListWithAttachments возвращает сообщения канала с непустыми вложениями.
func (r *ChatRepository) ListWithAttachments(ctx context.Context, orderID uuid.UUID, channel string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	query := `
		SELECT id, order_id, channel, sender_id, message, attachment, created_at
		FROM chat_messages
		WHERE order_id = $1 AND channel = $2 AND attachment IS NOT NULL
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &messages, query, orderID, channel); err != nil {
		return nil, fmt.Errorf("chat repository: list with attachments %w", err)
	}
	return messages, nil
}

// ClearAttachment затирает ссылку на вложение, сохраняя текст сообщения.
func (r *ChatRepository) ClearAttachment(ctx context.Context, messageID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE chat_messages SET attachment = NULL WHERE id = $1`, messageID); err != nil {
		return fmt.Errorf("chat repository: clear attachment %w", err)
	}
	return nil
}

// CountAttachments возвращает число сообщений канала с вложениями.
func (r *ChatRepository) CountAttachments(ctx context.Context, orderID uuid.UUID, channel string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM chat_messages WHERE order_id = $1 AND channel = $2 AND attachment IS NOT NULL`
	if err := r.db.GetContext(ctx, &count, query, orderID, channel); err != nil {
		return 0, fmt.Errorf("chat repository: count attachments %w", err)
	}
	return count, nil
}
