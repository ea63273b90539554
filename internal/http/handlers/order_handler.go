package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/service"
	"github.com/hewor/agency-backend/internal/storage"
)

// OrderHandler обрабатывает клиентские операции с заказами.
type OrderHandler struct {
	orders        *service.OrderService
	chat          *service.ChatService
	notifications *service.NotificationService
	storage       *storage.FileStorage
}

// NewOrderHandler создаёт новый хэндлер.
func NewOrderHandler(orders *service.OrderService, chat *service.ChatService, notifications *service.NotificationService, storage *storage.FileStorage) *OrderHandler {
	return &OrderHandler{orders: orders, chat: chat, notifications: notifications, storage: storage}
}

// CreateOrder обрабатывает POST /orders: multipart-форма заявки
// с необязательным исходным файлом.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	clientID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	in := service.CreateOrderInput{
		ClientID:    clientID,
		ServiceType: c.PostForm("service_type"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		RequestCall: c.PostForm("request_call") == "true",
	}
	if phone := c.PostForm("phone_number"); phone != "" {
		in.PhoneNumber = &phone
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Файл сохраняется после создания заказа: путь в хранилище
	// привязан к идентификатору. Сбой загрузки не отменяет заявку.
	if file, err := c.FormFile("file"); err == nil {
		src, err := openUpload(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "order": order})
			return
		}
		defer src.Close()

		relativePath, _, err := h.storage.Save(c.Request.Context(), order.ID, file.Filename, src)
		if err != nil {
			logger.Log.Errorf("order handler: сохранение файла заявки %s: %v", order.ID, err)
		} else {
			relativePath = filepath.ToSlash(relativePath)
			if err := h.orders.AttachSourceFile(c.Request.Context(), order.ID, relativePath); err != nil {
				logger.Log.Errorf("order handler: привязка файла заявки %s: %v", order.ID, err)
			} else {
				order.FileUpload = &relativePath
			}
		}
	}

	h.notifications.NotifyNewOrder(c.Request.Context(), order)

	c.JSON(http.StatusCreated, order)
}

// ListMyOrders обрабатывает GET /orders/my.
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	clientID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orders, err := h.orders.ListClientOrders(c.Request.Context(), clientID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder обрабатывает GET /orders/:id с проверкой принадлежности.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	clientID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	order, err := h.orders.GetOrderForClient(c.Request.Context(), orderID, clientID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type payRequest struct {
	TransactionID string  `json:"transaction_id" binding:"required"`
	Screenshot    *string `json:"screenshot"`
}

// Pay обрабатывает POST /orders/:id/pay.
func (h *OrderHandler) Pay(c *gin.Context) {
	clientID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	if _, err := h.orders.GetOrderForClient(c.Request.Context(), orderID, clientID); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.orders.MarkPaid(c.Request.Context(), orderID, req.TransactionID, req.Screenshot); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage обрабатывает POST /orders/:id/chat: клиентский канал переписки.
func (h *OrderHandler) SendMessage(c *gin.Context) {
	clientID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	if _, err := h.orders.GetOrderForClient(c.Request.Context(), orderID, clientID); err != nil {
		_ = c.Error(err)
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	msg, err := h.chat.Send(c.Request.Context(), service.SendInput{
		OrderID:    orderID,
		Channel:    models.ChatChannelClient,
		SenderID:   clientID,
		SenderRole: models.RoleClient,
		Message:    req.Message,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// ListMessages обрабатывает GET /orders/:id/chat.
func (h *OrderHandler) ListMessages(c *gin.Context) {
	clientID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	if _, err := h.orders.GetOrderForClient(c.Request.Context(), orderID, clientID); err != nil {
		_ = c.Error(err)
		return
	}

	messages, err := h.chat.List(c.Request.Context(), orderID, models.ChatChannelClient)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
