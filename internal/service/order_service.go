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

// OrderRepository описывает взаимодействие сервиса с хранилищем заказов.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetCompleted(ctx context.Context, id uuid.UUID, deliveryFile, deliveryMessage *string) (*models.Order, error)
	SetFileUpload(ctx context.Context, id uuid.UUID, path string) error
	MarkPaid(ctx context.Context, id uuid.UUID, transactionID string, screenshot *string) error
	MarkFreelancerPaid(ctx context.Context, id uuid.UUID, transactionID string, screenshot *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RetentionEngine описывает политику удержания файлов заказа.
type RetentionEngine interface {
	Run(ctx context.Context, order *models.Order) (int, error)
}

// OrderFileLister описывает чтение коллекции файлов для выдачи заказа.
type OrderFileLister interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderFile, error)
}

// OrderService содержит бизнес-логику жизненного цикла заказа.
//
// Основной статус движется строго вперёд: pending -> contacted ->
// in_progress -> completed. Возврат назад запрещён, повтор текущего
// статуса — no-op. Завершение проставляет completed_at ровно один раз
// и запускает политику очистки файлов.
type OrderService struct {
	repo            OrderRepository
	files           OrderFileLister
	retention       RetentionEngine
	cleanupOnFinish bool
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(repo OrderRepository, files OrderFileLister, retention RetentionEngine, cleanupOnFinish bool) *OrderService {
	return &OrderService{
		repo:            repo,
		files:           files,
		retention:       retention,
		cleanupOnFinish: cleanupOnFinish,
	}
}

// CreateOrderInput входные данные заявки клиента.
type CreateOrderInput struct {
	ClientID    uuid.UUID
	ServiceType string
	Title       string
	Description string
	RequestCall bool
	PhoneNumber *string
	FileUpload  *string
}

// CreateOrder принимает заявку клиента. Новый заказ всегда стартует
// в статусе pending без назначенного исполнителя.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := validation.ValidateServiceType(in.ServiceType); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateOrderTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateOrderDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.RequestCall {
		if in.PhoneNumber == nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "для обратного звонка нужен номер телефона")
		}
		if err := validation.ValidatePhone(*in.PhoneNumber); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	order := &models.Order{
		ClientID:         in.ClientID,
		ServiceType:      in.ServiceType,
		Title:            in.Title,
		Description:      in.Description,
		RequestCall:      in.RequestCall,
		PhoneNumber:      in.PhoneNumber,
		Status:           models.OrderStatusPending,
		FileUpload:       in.FileUpload,
		FreelancerStatus: models.FreelancerStatusUnassigned,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("order service: создание заказа: %w", err)
	}

	logger.Log.Infof("order: создан заказ %s клиента %s (%s)", order.ID, order.ClientID, order.ServiceType)
	return order, nil
}

// GetOrder возвращает заказ вместе с коллекцией файлов.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := s.files.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order service: файлы заказа: %w", err)
	}
	order.Files = files

	return order, nil
}

// GetOrderForClient возвращает заказ с проверкой принадлежности клиенту.
func (s *OrderService) GetOrderForClient(ctx context.Context, id, clientID uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}
	return order, nil
}

// ListClientOrders возвращает заказы клиента.
func (s *OrderService) ListClientOrders(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	return s.repo.ListByClient(ctx, clientID)
}

// ListOrders возвращает заказы для панели администратора.
func (s *OrderService) ListOrders(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	if status != "" {
		if _, ok := models.ValidOrderStatuses[status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("некорректный статус %q", status))
		}
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}

// SetStatus переводит заказ в новый основной статус. Разрешено только
// движение вперёд; повтор текущего статуса — no-op. Завершение идёт
// через MarkDelivered, а не напрямую.
func (s *OrderService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	if _, ok := models.ValidOrderStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("некорректный статус %q", status))
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == status {
		return order, nil
	}
	if models.OrderStatusRank[status] < models.OrderStatusRank[order.Status] {
		return nil, apperror.New(apperror.ErrCodeConflict,
			fmt.Sprintf("нельзя вернуть заказ из статуса %q в %q", order.Status, status))
	}

	if status == models.OrderStatusCompleted {
		return s.MarkDelivered(ctx, id, nil, nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	logger.Log.Infof("order: заказ %s переведён %s -> %s", id, order.Status, status)
	order.Status = status
	return order, nil
}

// MarkContacted отмечает, что с клиентом связались.
func (s *OrderService) MarkContacted(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.SetStatus(ctx, id, models.OrderStatusContacted)
}

// StartProgress переводит заказ в работу.
func (s *OrderService) StartProgress(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.SetStatus(ctx, id, models.OrderStatusInProgress)
}

// MarkDelivered завершает заказ. Загрузка файла поставки сама по себе
// означает завершение: статус становится completed, completed_at
// проставляется один раз и больше не сдвигается. После завершения
// срабатывает политика очистки; её сбой логируется и не откатывает
// смену статуса.
func (s *OrderService) MarkDelivered(ctx context.Context, id uuid.UUID, deliveryFile, deliveryMessage *string) (*models.Order, error) {
	order, err := s.repo.SetCompleted(ctx, id, deliveryFile, deliveryMessage)
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("order: заказ %s завершён", id)

	if s.cleanupOnFinish {
		if _, err := s.retention.Run(ctx, order); err != nil {
			logger.Log.Errorf("order: очистка файлов заказа %s завершилась с ошибкой: %v", id, err)
		}
	}

	return order, nil
}

// DeleteOrder удаляет заказ. Очистка бинарников выполняется всегда,
// независимо от настройки очистки при завершении: после удаления
// строки заказа ссылки на файлы восстановить уже нельзя.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.retention.Run(ctx, order); err != nil {
		logger.Log.Errorf("order: очистка файлов перед удалением заказа %s: %v", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Log.Infof("order: заказ %s удалён", id)
	return nil
}

// AttachSourceFile записывает путь исходного файла клиента.
func (s *OrderService) AttachSourceFile(ctx context.Context, id uuid.UUID, path string) error {
	return s.repo.SetFileUpload(ctx, id, path)
}

// MarkPaid фиксирует оплату клиента.
func (s *OrderService) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string, screenshot *string) error {
	if err := validation.ValidateNonEmpty("идентификатор транзакции", transactionID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return s.repo.MarkPaid(ctx, id, transactionID, screenshot)
}

// MarkFreelancerPaid фиксирует выплату исполнителю.
func (s *OrderService) MarkFreelancerPaid(ctx context.Context, id uuid.UUID, transactionID string, screenshot *string) error {
	if err := validation.ValidateNonEmpty("идентификатор транзакции", transactionID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return s.repo.MarkFreelancerPaid(ctx, id, transactionID, screenshot)
}
