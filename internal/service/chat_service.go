package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/pkg/apperror"
	"github.com/hewor/agency-backend/internal/validation"
)

// ChatMessageRepository описывает хранилище переписки.
type ChatMessageRepository interface {
	Add(ctx context.Context, msg *models.ChatMessage) error
	List(ctx context.Context, orderID uuid.UUID, channel string) ([]models.ChatMessage, error)
}

// ChatOrderRepository описывает минимальный контракт сервиса переписки
// с заказами.
type ChatOrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// ChatService содержит бизнес-логику переписки по заказу. Два изолированных
// канала: клиент-агентство и агентство-исполнитель. Лента append-only.
type ChatService struct {
	chat   ChatMessageRepository
	orders ChatOrderRepository
}

// NewChatService создаёт сервис переписки.
func NewChatService(chat ChatMessageRepository, orders ChatOrderRepository) *ChatService {
	return &ChatService{chat: chat, orders: orders}
}

// SendInput входные данные отправки сообщения.
type SendInput struct {
	OrderID    uuid.UUID
	Channel    string
	SenderID   uuid.UUID
	SenderRole string
	Message    string
	Attachment *string
}

// Send отправляет сообщение в канал заказа. Первый ответ администратора
// в клиентском канале означает, что агентство взяло заказ в работу:
// заказ продвигается в in_progress.
func (s *ChatService) Send(ctx context.Context, in SendInput) (*models.ChatMessage, error) {
	if _, ok := models.ValidChatChannels[in.Channel]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("некорректный канал %q", in.Channel))
	}
	// Сообщение с вложением может не иметь текста.
	if in.Attachment == nil {
		if err := validation.ValidateMessageContent(in.Message); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	} else if in.Message != "" {
		if err := validation.ValidateLength("сообщение", in.Message, 0, validation.MaxMessageLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		OrderID:    in.OrderID,
		Channel:    in.Channel,
		SenderID:   in.SenderID,
		Message:    in.Message,
		Attachment: in.Attachment,
	}
	if err := s.chat.Add(ctx, msg); err != nil {
		return nil, err
	}

	// Ответ агентства клиенту означает начало работы над заказом.
	// Сбой продвижения статуса не откатывает отправку сообщения.
	if in.SenderRole == models.RoleAdmin && in.Channel == models.ChatChannelClient &&
		models.OrderStatusRank[order.Status] < models.OrderStatusRank[models.OrderStatusInProgress] {
		if err := s.orders.UpdateStatus(ctx, in.OrderID, models.OrderStatusInProgress); err != nil {
			logger.Log.Errorf("chat: не удалось перевести заказ %s в работу: %v", in.OrderID, err)
		}
	}

	return msg, nil
}

// List возвращает сообщения канала заказа.
func (s *ChatService) List(ctx context.Context, orderID uuid.UUID, channel string) ([]models.ChatMessage, error) {
	if _, ok := models.ValidChatChannels[channel]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("некорректный канал %q", channel))
	}
	return s.chat.List(ctx, orderID, channel)
}
