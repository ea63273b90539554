package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/notify"
)

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
	BroadcastToAdmins(event string, data interface{})
}

// NotificationService рассылает уведомления о событиях заказа.
// Все каналы строго best-effort: сбой доставки логируется и никогда
// не влияет на состояние заказа.
type NotificationService struct {
	mailer notify.Mailer
	hub    WSNotifier
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(mailer notify.Mailer, hub WSNotifier) *NotificationService {
	return &NotificationService{mailer: mailer, hub: hub}
}

// NotifyAssigned уведомляет исполнителя о новом назначении: письмо на почту
// анкеты и событие в админ-панель. Возвращает ошибку почтового канала,
// чтобы вызывающая сторона могла её залогировать.
func (s *NotificationService) NotifyAssigned(ctx context.Context, order *models.Order, freelancer *models.Freelancer) error {
	if s.hub != nil {
		s.hub.BroadcastToAdmins("order_assigned", map[string]interface{}{
			"order_id":      order.ID,
			"freelancer_id": freelancer.ID,
		})
		if err := s.hub.BroadcastToUser(freelancer.UserID, "order_assigned", order); err != nil {
			logger.Log.Warnf("notification: websocket уведомление исполнителю %s: %v", freelancer.ID, err)
		}
	}

	subject := fmt.Sprintf("Новый заказ: %s", order.Title)
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВам назначен заказ «%s».\n", freelancer.Name, order.Title)
	if order.FreelancerPayment != nil {
		body += fmt.Sprintf("Оплата: %.2f\n", *order.FreelancerPayment)
	}
	if order.FreelancerDeadline != nil {
		body += fmt.Sprintf("Срок: %s\n", order.FreelancerDeadline.Format("02.01.2006 15:04"))
	}
	body += "\nПодтвердите назначение в личном кабинете. Без подтверждения назначение будет снято."

	if err := s.mailer.Send(ctx, freelancer.Email, subject, body); err != nil {
		return fmt.Errorf("notification: письмо исполнителю %s: %w", freelancer.ID, err)
	}

	logger.Log.Infof("notification: исполнитель %s уведомлён о заказе %s", freelancer.ID, order.ID)
	return nil
}

// NotifyCompleted уведомляет админ-панель о завершении заказа.
func (s *NotificationService) NotifyCompleted(ctx context.Context, order *models.Order) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToAdmins("order_completed", map[string]interface{}{
		"order_id": order.ID,
	})
}

// NotifyNewOrder уведомляет админ-панель о новой заявке клиента.
func (s *NotificationService) NotifyNewOrder(ctx context.Context, order *models.Order) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToAdmins("order_created", map[string]interface{}{
		"order_id":     order.ID,
		"service_type": order.ServiceType,
		"title":        order.Title,
	})
}
