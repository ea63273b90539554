package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/pkg/apperror"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil {
		order.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockOrderRepo) SetCompleted(ctx context.Context, id uuid.UUID, deliveryFile, deliveryMessage *string) (*models.Order, error) {
	args := m.Called(ctx, id, deliveryFile, deliveryMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) SetFileUpload(ctx context.Context, id uuid.UUID, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func (m *mockOrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string, screenshot *string) error {
	args := m.Called(ctx, id, transactionID, screenshot)
	return args.Error(0)
}

func (m *mockOrderRepo) MarkFreelancerPaid(ctx context.Context, id uuid.UUID, transactionID string, screenshot *string) error {
	args := m.Called(ctx, id, transactionID, screenshot)
	return args.Error(0)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRetention struct {
	mock.Mock
}

func (m *mockRetention) Run(ctx context.Context, order *models.Order) (int, error) {
	args := m.Called(ctx, order)
	return args.Int(0), args.Error(1)
}

type mockFileLister struct {
	mock.Mock
}

func (m *mockFileLister) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderFile, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.OrderFile), args.Error(1)
}

func newOrderService(repo *mockOrderRepo, files *mockFileLister, retention *mockRetention) *OrderService {
	return NewOrderService(repo, files, retention, true)
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	repo := new(mockOrderRepo)
	files := new(mockFileLister)
	retention := new(mockRetention)
	svc := newOrderService(repo, files, retention)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		ClientID:    uuid.New(),
		ServiceType: models.ServiceTypePresentation,
		Title:       "Презентация для защиты",
		Description: "Нужна презентация на двадцать слайдов по готовому тексту",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.FreelancerStatusUnassigned, order.FreelancerStatus)
}

func TestOrderService_CreateOrder_ShortTitle(t *testing.T) {
	repo := new(mockOrderRepo)
	files := new(mockFileLister)
	retention := new(mockRetention)
	svc := newOrderService(repo, files, retention)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:    uuid.New(),
		ServiceType: models.ServiceTypeOther,
		Title:       "ab",
		Description: "Достаточно длинное описание задачи",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_CallWithoutPhone(t *testing.T) {
	repo := new(mockOrderRepo)
	files := new(mockFileLister)
	retention := new(mockRetention)
	svc := newOrderService(repo, files, retention)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:    uuid.New(),
		ServiceType: models.ServiceTypeConsultation,
		Title:       "Консультация",
		Description: "Нужна консультация по предмету, час-полтора",
		RequestCall: true,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestOrderService_SetStatus_Backward(t *testing.T) {
	repo := new(mockOrderRepo)
	files := new(mockFileLister)
	retention := new(mockRetention)
	svc := newOrderService(repo, files, retention)
	ctx := context.Background()

	orderID := uuid.New()
	repo.On("GetByID", ctx, orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusInProgress}, nil)

	_, err := svc.SetStatus(ctx, orderID, models.OrderStatusPending)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_SetStatus_SameStatusIsNoop(t *testing.T) {
	repo := new(mockOrderRepo)
	files := new(mockFileLister)
	retention := new(mockRetention)
	svc := newOrderService(repo, files, retention)
	ctx := context.Background()

	orderID := uuid.New()
	repo.On("GetByID", ctx, orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusContacted}, nil)

	order, err := svc.SetStatus(ctx, orderID, models.OrderStatusContacted)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusContacted, order.Status)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_MarkDelivered_RunsRetention(t *testing.T) {
	repo := new(mockOrderRepo)
	files := new(mockFileLister)
	retention := new(mockRetention)
	svc := newOrderService(repo, files, retention)
	ctx := context.Background()

	orderID := uuid.New()
	completedAt := time.Now()
	delivery := "o/result.pdf"
	completed := &models.Order{
		ID:          orderID,
		Status:      models.OrderStatusCompleted,
		CompletedAt: &completedAt,
	}

	repo.On("SetCompleted", ctx, orderID, &delivery, (*string)(nil)).Return(completed, nil)
	retention.On("Run", ctx, completed).Return(3, nil)

	order, err := svc.MarkDelivered(ctx, orderID, &delivery, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.NotNil(t, order.CompletedAt)
	retention.AssertCalled(t, "Run", ctx, completed)
}

func TestOrderService_MarkDelivered_CleanupDisabled(t *testing.T) {
	repo := new(mockOrderRepo)
	files := new(mockFileLister)
	retention := new(mockRetention)
	svc := NewOrderService(repo, files, retention, false)
	ctx := context.Background()

	orderID := uuid.New()
	completedAt := time.Now()
	repo.On("SetCompleted", ctx, orderID, (*string)(nil), (*string)(nil)).Return(&models.Order{
		ID:          orderID,
		Status:      models.OrderStatusCompleted,
		CompletedAt: &completedAt,
	}, nil)

	_, err := svc.MarkDelivered(ctx, orderID, nil, nil)

	assert.NoError(t, err)
	retention.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestOrderService_DeleteOrder_AlwaysRunsRetention(t *testing.T) {
	repo := new(mockOrderRepo)
	files := new(mockFileLister)
	retention := new(mockRetention)
	// Очистка при завершении выключена, но удаление всё равно чистит файлы.
	svc := NewOrderService(repo, files, retention, false)
	ctx := context.Background()

	orderID := uuid.New()
	order := &models.Order{ID: orderID, Status: models.OrderStatusPending}

	repo.On("GetByID", ctx, orderID).Return(order, nil)
	retention.On("Run", ctx, order).Return(2, nil)
	repo.On("Delete", ctx, orderID).Return(nil)

	err := svc.DeleteOrder(ctx, orderID)

	assert.NoError(t, err)
	retention.AssertCalled(t, "Run", ctx, order)
	repo.AssertCalled(t, "Delete", ctx, orderID)
}
