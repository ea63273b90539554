package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage описывает сообщение в переписке по заказу.
// Сообщения неизменяемы и только добавляются; политика очистки файлов
// удаляет вложение, но строка сообщения обязана пережить очистку.
type ChatMessage struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrderID    uuid.UUID `db:"order_id" json:"order_id"`
	Channel    string    `db:"channel" json:"channel"`
	SenderID   uuid.UUID `db:"sender_id" json:"sender_id"`
	Message    string    `db:"message" json:"message"`
	Attachment *string   `db:"attachment" json:"attachment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
