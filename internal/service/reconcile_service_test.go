package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hewor/agency-backend/internal/models"
)

type mockReconcileOrders struct {
	mock.Mock
}

func (m *mockReconcileOrders) ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]models.Order), args.Error(1)
}

type mockReconcileRetention struct {
	mock.Mock
}

func (m *mockReconcileRetention) Run(ctx context.Context, order *models.Order) (int, error) {
	args := m.Called(ctx, order)
	return args.Int(0), args.Error(1)
}

func (m *mockReconcileRetention) PendingCount(ctx context.Context, order *models.Order) (int, error) {
	args := m.Called(ctx, order)
	return args.Int(0), args.Error(1)
}

func completedOrder(daysAgo int) models.Order {
	completedAt := time.Now().AddDate(0, 0, -daysAgo)
	return models.Order{
		ID:          uuid.New(),
		Status:      models.OrderStatusCompleted,
		CompletedAt: &completedAt,
	}
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return lines[len(lines)-1]
}

func TestReconcileService_Run_DryRun(t *testing.T) {
	orders := new(mockReconcileOrders)
	retention := new(mockReconcileRetention)
	svc := NewReconcileService(orders, retention)
	ctx := context.Background()

	order := completedOrder(40)
	orders.On("ListCompletedBefore", ctx, mock.AnythingOfType("time.Time")).Return([]models.Order{order}, nil)
	retention.On("PendingCount", ctx, mock.AnythingOfType("*models.Order")).Return(3, nil)

	var out bytes.Buffer
	err := svc.Run(ctx, 30, true, &out)

	assert.NoError(t, err)
	assert.Equal(t, "DRY RUN: заказов обработано: 1, файлов к удалению: 3", lastLine(out.String()))
	retention.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestReconcileService_Run_Deletes(t *testing.T) {
	orders := new(mockReconcileOrders)
	retention := new(mockReconcileRetention)
	svc := NewReconcileService(orders, retention)
	ctx := context.Background()

	first := completedOrder(45)
	second := completedOrder(60)
	orders.On("ListCompletedBefore", ctx, mock.AnythingOfType("time.Time")).Return([]models.Order{first, second}, nil)
	retention.On("Run", ctx, mock.AnythingOfType("*models.Order")).Return(2, nil)

	var out bytes.Buffer
	err := svc.Run(ctx, 30, false, &out)

	assert.NoError(t, err)
	assert.Equal(t, "COMPLETED: заказов обработано: 2, файлов удалено: 4", lastLine(out.String()))
}

func TestReconcileService_Run_NothingToProcess(t *testing.T) {
	orders := new(mockReconcileOrders)
	retention := new(mockReconcileRetention)
	svc := NewReconcileService(orders, retention)
	ctx := context.Background()

	orders.On("ListCompletedBefore", ctx, mock.AnythingOfType("time.Time")).Return([]models.Order{}, nil)

	var out bytes.Buffer
	err := svc.Run(ctx, 30, false, &out)

	assert.NoError(t, err)
	assert.Equal(t, "COMPLETED: заказов обработано: 0, файлов удалено: 0", lastLine(out.String()))
}

func TestReconcileService_Run_InvalidDays(t *testing.T) {
	orders := new(mockReconcileOrders)
	retention := new(mockReconcileRetention)
	svc := NewReconcileService(orders, retention)

	var out bytes.Buffer
	err := svc.Run(context.Background(), 0, false, &out)

	assert.Error(t, err)
	orders.AssertNotCalled(t, "ListCompletedBefore", mock.Anything, mock.Anything)
}
