package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/models"
)

// CleanupOrderRepository описывает работу политики очистки со строкой заказа.
type CleanupOrderRepository interface {
	ClearFileSlots(ctx context.Context, id uuid.UUID) error
}

// CleanupFileRepository описывает работу с коллекцией файлов заказа.
type CleanupFileRepository interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int, error)
}

// CleanupChatRepository описывает работу с вложениями переписки.
type CleanupChatRepository interface {
	ListWithAttachments(ctx context.Context, orderID uuid.UUID, channel string) ([]models.ChatMessage, error)
	ClearAttachment(ctx context.Context, messageID uuid.UUID) error
	CountAttachments(ctx context.Context, orderID uuid.UUID, channel string) (int, error)
}

// BinaryStore описывает удаление бинарников из файлового хранилища.
// Удаление отсутствующего пути обязано возвращать nil.
type BinaryStore interface {
	Delete(ctx context.Context, relativePath string) error
}

// CleanupService реализует политику удержания файлов: при завершении или
// удалении заказа все бинарники удаляются, текст переписки сохраняется.
//
// Проход строго best-effort по каждому элементу: сбой удаления одного файла
// логируется и не прерывает обработку остальных. Повторный запуск по уже
// очищенному заказу ничего не находит и возвращает ноль.
type CleanupService struct {
	orders  CleanupOrderRepository
	files   CleanupFileRepository
	chat    CleanupChatRepository
	storage BinaryStore
}

// NewCleanupService создаёт сервис очистки.
func NewCleanupService(orders CleanupOrderRepository, files CleanupFileRepository, chat CleanupChatRepository, storage BinaryStore) *CleanupService {
	return &CleanupService{orders: orders, files: files, chat: chat, storage: storage}
}

// slotPaths собирает непустые файловые слоты строки заказа.
func slotPaths(order *models.Order) []string {
	var paths []string
	for _, slot := range []*string{
		order.FileUpload,
		order.DeliveryFile,
		order.FreelancerRoadmap,
		order.PaymentScreenshot,
		order.FreelancerPaymentScreenshot,
	} {
		if slot != nil && *slot != "" {
			paths = append(paths, *slot)
		}
	}
	return paths
}

// Run удаляет все бинарники заказа и возвращает число удалённых файлов.
// Порядок: пять слотов строки заказа, затем коллекция файлов, затем вложения
// переписки исполнителя. Ссылки очищаются только после успешного удаления
// бинарника, поэтому недоудалённое подхватит следующий запуск.
func (s *CleanupService) Run(ctx context.Context, order *models.Order) (int, error) {
	deleted := 0

	slots := slotPaths(order)
	slotsCleared := 0
	for _, path := range slots {
		if err := s.storage.Delete(ctx, path); err != nil {
			logger.Log.Warnf("cleanup: не удалось удалить файл %s заказа %s: %v", path, order.ID, err)
			continue
		}
		deleted++
		slotsCleared++
	}

	// Слоты обнуляются одним UPDATE, но только если все бинарники слотов
	// удалены: иначе ссылка на уцелевший файл потеряется.
	if len(slots) > 0 && slotsCleared == len(slots) {
		if err := s.orders.ClearFileSlots(ctx, order.ID); err != nil {
			logger.Log.Errorf("cleanup: не удалось очистить файловые слоты заказа %s: %v", order.ID, err)
			return deleted, err
		}
	}

	files, err := s.files.ListByOrder(ctx, order.ID)
	if err != nil {
		logger.Log.Errorf("cleanup: не удалось получить файлы заказа %s: %v", order.ID, err)
		return deleted, err
	}
	for _, file := range files {
		if err := s.storage.Delete(ctx, file.FilePath); err != nil {
			logger.Log.Warnf("cleanup: не удалось удалить файл %s заказа %s: %v", file.FilePath, order.ID, err)
			continue
		}
		if err := s.files.Delete(ctx, file.ID); err != nil {
			logger.Log.Warnf("cleanup: не удалось удалить запись файла %s: %v", file.ID, err)
			continue
		}
		deleted++
	}

	messages, err := s.chat.ListWithAttachments(ctx, order.ID, models.ChatChannelFreelancer)
	if err != nil {
		logger.Log.Errorf("cleanup: не удалось получить вложения переписки заказа %s: %v", order.ID, err)
		return deleted, err
	}
	for _, msg := range messages {
		if msg.Attachment == nil || *msg.Attachment == "" {
			continue
		}
		if err := s.storage.Delete(ctx, *msg.Attachment); err != nil {
			logger.Log.Warnf("cleanup: не удалось удалить вложение %s сообщения %s: %v", *msg.Attachment, msg.ID, err)
			continue
		}
		// Текст сообщения остаётся, затирается только ссылка на файл.
		if err := s.chat.ClearAttachment(ctx, msg.ID); err != nil {
			logger.Log.Warnf("cleanup: не удалось очистить вложение сообщения %s: %v", msg.ID, err)
			continue
		}
		deleted++
	}

	logger.Log.Infof("cleanup: заказ %s, удалено файлов: %d", order.ID, deleted)
	return deleted, nil
}

// PendingCount возвращает число бинарников, которые удалил бы Run.
// Используется в режиме dry-run пакетной сверки.
func (s *CleanupService) PendingCount(ctx context.Context, order *models.Order) (int, error) {
	count := len(slotPaths(order))

	fileCount, err := s.files.CountByOrder(ctx, order.ID)
	if err != nil {
		return count, err
	}
	count += fileCount

	attachCount, err := s.chat.CountAttachments(ctx, order.ID, models.ChatChannelFreelancer)
	if err != nil {
		return count, err
	}
	count += attachCount

	return count, nil
}
