package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hewor/agency-backend/internal/models"
)

type mockCleanupOrders struct {
	mock.Mock
}

func (m *mockCleanupOrders) ClearFileSlots(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCleanupFiles struct {
	mock.Mock
}

func (m *mockCleanupFiles) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderFile, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.OrderFile), args.Error(1)
}

func (m *mockCleanupFiles) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCleanupFiles) CountByOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

type mockCleanupChat struct {
	mock.Mock
}

func (m *mockCleanupChat) ListWithAttachments(ctx context.Context, orderID uuid.UUID, channel string) ([]models.ChatMessage, error) {
	args := m.Called(ctx, orderID, channel)
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *mockCleanupChat) ClearAttachment(ctx context.Context, messageID uuid.UUID) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *mockCleanupChat) CountAttachments(ctx context.Context, orderID uuid.UUID, channel string) (int, error) {
	args := m.Called(ctx, orderID, channel)
	return args.Int(0), args.Error(1)
}

type mockBinaryStore struct {
	mock.Mock
}

func (m *mockBinaryStore) Delete(ctx context.Context, relativePath string) error {
	args := m.Called(ctx, relativePath)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func TestCleanupService_Run_DeletesEverything(t *testing.T) {
	orders := new(mockCleanupOrders)
	files := new(mockCleanupFiles)
	chat := new(mockCleanupChat)
	store := new(mockBinaryStore)
	svc := NewCleanupService(orders, files, chat, store)
	ctx := context.Background()

	orderID := uuid.New()
	order := &models.Order{
		ID:           orderID,
		FileUpload:   strPtr("a/source.docx"),
		DeliveryFile: strPtr("a/result.pdf"),
	}

	fileID := uuid.New()
	msgID := uuid.New()

	store.On("Delete", ctx, "a/source.docx").Return(nil)
	store.On("Delete", ctx, "a/result.pdf").Return(nil)
	orders.On("ClearFileSlots", ctx, orderID).Return(nil)

	files.On("ListByOrder", ctx, orderID).Return([]models.OrderFile{
		{ID: fileID, OrderID: orderID, FilePath: "a/work.xlsx", OriginalName: "work.xlsx"},
	}, nil)
	store.On("Delete", ctx, "a/work.xlsx").Return(nil)
	files.On("Delete", ctx, fileID).Return(nil)

	chat.On("ListWithAttachments", ctx, orderID, models.ChatChannelFreelancer).Return([]models.ChatMessage{
		{ID: msgID, OrderID: orderID, Attachment: strPtr("a/screenshot.png")},
	}, nil)
	store.On("Delete", ctx, "a/screenshot.png").Return(nil)
	chat.On("ClearAttachment", ctx, msgID).Return(nil)

	deleted, err := svc.Run(ctx, order)

	assert.NoError(t, err)
	assert.Equal(t, 4, deleted)
	orders.AssertCalled(t, "ClearFileSlots", ctx, orderID)
	chat.AssertCalled(t, "ClearAttachment", ctx, msgID)
}

func TestCleanupService_Run_SecondRunIsNoop(t *testing.T) {
	orders := new(mockCleanupOrders)
	files := new(mockCleanupFiles)
	chat := new(mockCleanupChat)
	store := new(mockBinaryStore)
	svc := NewCleanupService(orders, files, chat, store)
	ctx := context.Background()

	orderID := uuid.New()
	// Заказ после первого прохода: слоты пусты, записей не осталось.
	order := &models.Order{ID: orderID}

	files.On("ListByOrder", ctx, orderID).Return([]models.OrderFile{}, nil)
	chat.On("ListWithAttachments", ctx, orderID, models.ChatChannelFreelancer).Return([]models.ChatMessage{}, nil)

	deleted, err := svc.Run(ctx, order)

	assert.NoError(t, err)
	assert.Equal(t, 0, deleted)
	orders.AssertNotCalled(t, "ClearFileSlots", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCleanupService_Run_SkipsFailedFile(t *testing.T) {
	orders := new(mockCleanupOrders)
	files := new(mockCleanupFiles)
	chat := new(mockCleanupChat)
	store := new(mockBinaryStore)
	svc := NewCleanupService(orders, files, chat, store)
	ctx := context.Background()

	orderID := uuid.New()
	order := &models.Order{ID: orderID}

	goodID := uuid.New()
	badID := uuid.New()

	files.On("ListByOrder", ctx, orderID).Return([]models.OrderFile{
		{ID: badID, OrderID: orderID, FilePath: "a/locked.bin", OriginalName: "locked.bin"},
		{ID: goodID, OrderID: orderID, FilePath: "a/ok.txt", OriginalName: "ok.txt"},
	}, nil)
	store.On("Delete", ctx, "a/locked.bin").Return(errors.New("permission denied"))
	store.On("Delete", ctx, "a/ok.txt").Return(nil)
	files.On("Delete", ctx, goodID).Return(nil)

	chat.On("ListWithAttachments", ctx, orderID, models.ChatChannelFreelancer).Return([]models.ChatMessage{}, nil)

	deleted, err := svc.Run(ctx, order)

	assert.NoError(t, err)
	assert.Equal(t, 1, deleted)
	// Запись о недоудалённом файле остаётся, её подхватит следующий запуск.
	files.AssertNotCalled(t, "Delete", ctx, badID)
}

func TestCleanupService_Run_KeepsSlotRefOnStorageFailure(t *testing.T) {
	orders := new(mockCleanupOrders)
	files := new(mockCleanupFiles)
	chat := new(mockCleanupChat)
	store := new(mockBinaryStore)
	svc := NewCleanupService(orders, files, chat, store)
	ctx := context.Background()

	orderID := uuid.New()
	order := &models.Order{
		ID:         orderID,
		FileUpload: strPtr("a/source.docx"),
	}

	store.On("Delete", ctx, "a/source.docx").Return(errors.New("io error"))
	files.On("ListByOrder", ctx, orderID).Return([]models.OrderFile{}, nil)
	chat.On("ListWithAttachments", ctx, orderID, models.ChatChannelFreelancer).Return([]models.ChatMessage{}, nil)

	deleted, err := svc.Run(ctx, order)

	assert.NoError(t, err)
	assert.Equal(t, 0, deleted)
	orders.AssertNotCalled(t, "ClearFileSlots", mock.Anything, mock.Anything)
}

func TestCleanupService_PendingCount(t *testing.T) {
	orders := new(mockCleanupOrders)
	files := new(mockCleanupFiles)
	chat := new(mockCleanupChat)
	store := new(mockBinaryStore)
	svc := NewCleanupService(orders, files, chat, store)
	ctx := context.Background()

	orderID := uuid.New()
	order := &models.Order{
		ID:                orderID,
		FileUpload:        strPtr("a/source.docx"),
		PaymentScreenshot: strPtr("a/pay.png"),
	}

	files.On("CountByOrder", ctx, orderID).Return(2, nil)
	chat.On("CountAttachments", ctx, orderID, models.ChatChannelFreelancer).Return(1, nil)

	count, err := svc.PendingCount(ctx, order)

	assert.NoError(t, err)
	assert.Equal(t, 5, count)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
