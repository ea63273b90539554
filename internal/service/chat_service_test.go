package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hewor/agency-backend/internal/models"
)

type mockChatRepo struct {
	mock.Mock
}

func (m *mockChatRepo) Add(ctx context.Context, msg *models.ChatMessage) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		msg.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockChatRepo) List(ctx context.Context, orderID uuid.UUID, channel string) ([]models.ChatMessage, error) {
	args := m.Called(ctx, orderID, channel)
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

type mockChatOrders struct {
	mock.Mock
}

func (m *mockChatOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockChatOrders) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func TestChatService_Send_AdminReplyStartsProgress(t *testing.T) {
	chat := new(mockChatRepo)
	orders := new(mockChatOrders)
	svc := NewChatService(chat, orders)
	ctx := context.Background()

	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusPending}, nil)
	chat.On("Add", ctx, mock.AnythingOfType("*models.ChatMessage")).Return(nil)
	orders.On("UpdateStatus", ctx, orderID, models.OrderStatusInProgress).Return(nil)

	msg, err := svc.Send(ctx, SendInput{
		OrderID:    orderID,
		Channel:    models.ChatChannelClient,
		SenderID:   uuid.New(),
		SenderRole: models.RoleAdmin,
		Message:    "Здравствуйте! Приняли вашу заявку в работу.",
	})

	assert.NoError(t, err)
	assert.NotNil(t, msg)
	orders.AssertCalled(t, "UpdateStatus", ctx, orderID, models.OrderStatusInProgress)
}

func TestChatService_Send_AdminReplyOnCompletedOrderKeepsStatus(t *testing.T) {
	chat := new(mockChatRepo)
	orders := new(mockChatOrders)
	svc := NewChatService(chat, orders)
	ctx := context.Background()

	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusCompleted}, nil)
	chat.On("Add", ctx, mock.AnythingOfType("*models.ChatMessage")).Return(nil)

	_, err := svc.Send(ctx, SendInput{
		OrderID:    orderID,
		Channel:    models.ChatChannelClient,
		SenderID:   uuid.New(),
		SenderRole: models.RoleAdmin,
		Message:    "Спасибо за обратную связь!",
	})

	assert.NoError(t, err)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_Send_FreelancerChannelDoesNotPromote(t *testing.T) {
	chat := new(mockChatRepo)
	orders := new(mockChatOrders)
	svc := NewChatService(chat, orders)
	ctx := context.Background()

	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusPending}, nil)
	chat.On("Add", ctx, mock.AnythingOfType("*models.ChatMessage")).Return(nil)

	_, err := svc.Send(ctx, SendInput{
		OrderID:    orderID,
		Channel:    models.ChatChannelFreelancer,
		SenderID:   uuid.New(),
		SenderRole: models.RoleAdmin,
		Message:    "Передаю материалы по заказу.",
	})

	assert.NoError(t, err)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_Send_ClientMessageDoesNotPromote(t *testing.T) {
	chat := new(mockChatRepo)
	orders := new(mockChatOrders)
	svc := NewChatService(chat, orders)
	ctx := context.Background()

	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusPending}, nil)
	chat.On("Add", ctx, mock.AnythingOfType("*models.ChatMessage")).Return(nil)

	_, err := svc.Send(ctx, SendInput{
		OrderID:    orderID,
		Channel:    models.ChatChannelClient,
		SenderID:   uuid.New(),
		SenderRole: models.RoleClient,
		Message:    "Когда будет готово?",
	})

	assert.NoError(t, err)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_Send_InvalidChannel(t *testing.T) {
	chat := new(mockChatRepo)
	orders := new(mockChatOrders)
	svc := NewChatService(chat, orders)

	_, err := svc.Send(context.Background(), SendInput{
		OrderID: uuid.New(),
		Channel: "support",
		Message: "привет",
	})

	assert.Error(t, err)
	chat.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestChatService_Send_TooLongMessage(t *testing.T) {
	chat := new(mockChatRepo)
	orders := new(mockChatOrders)
	svc := NewChatService(chat, orders)

	_, err := svc.Send(context.Background(), SendInput{
		OrderID:  uuid.New(),
		Channel:  models.ChatChannelClient,
		SenderID: uuid.New(),
		Message:  strings.Repeat("а", 5001),
	})

	assert.Error(t, err)
	chat.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}
