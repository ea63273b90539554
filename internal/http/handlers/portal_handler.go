package handlers

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/pkg/apperror"
	"github.com/hewor/agency-backend/internal/service"
	"github.com/hewor/agency-backend/internal/storage"
)

// OrderFileAdder описывает добавление файла в коллекцию заказа.
type OrderFileAdder interface {
	Add(ctx context.Context, file *models.OrderFile) error
}

// OrderGetter описывает чтение заказа для проверки прав.
type OrderGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// PortalHandler обрабатывает личный кабинет исполнителя.
type PortalHandler struct {
	assignments *service.AssignmentService
	freelancers *service.FreelancerService
	chat        *service.ChatService
	orders      OrderGetter
	files       OrderFileAdder
	storage     *storage.FileStorage
}

// NewPortalHandler создаёт новый хэндлер.
func NewPortalHandler(
	assignments *service.AssignmentService,
	freelancers *service.FreelancerService,
	chat *service.ChatService,
	orders OrderGetter,
	files OrderFileAdder,
	storage *storage.FileStorage,
) *PortalHandler {
	return &PortalHandler{
		assignments: assignments,
		freelancers: freelancers,
		chat:        chat,
		orders:      orders,
		files:       files,
		storage:     storage,
	}
}

// authorizeAssigned проверяет, что заказ назначен этому исполнителю.
func (h *PortalHandler) authorizeAssigned(ctx context.Context, orderID, userID uuid.UUID) error {
	freelancer, err := h.freelancers.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	order, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.FreelancerID == nil || *order.FreelancerID != freelancer.ID {
		return apperror.ErrForbidden
	}
	return nil
}

// Dashboard обрабатывает GET /portal/orders: заказы исполнителя.
// Просроченные назначения переводятся в timeout до выдачи.
func (h *PortalHandler) Dashboard(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orders, err := h.assignments.DashboardOrders(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Profile обрабатывает GET /portal/profile.
func (h *PortalHandler) Profile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	freelancer, err := h.freelancers.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, freelancer)
}

// Accept обрабатывает POST /portal/orders/:id/accept.
func (h *PortalHandler) Accept(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	order, err := h.assignments.Accept(c.Request.Context(), orderID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Reject обрабатывает POST /portal/orders/:id/reject.
func (h *PortalHandler) Reject(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	if err := h.assignments.Reject(c.Request.Context(), orderID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadWork обрабатывает POST /portal/orders/:id/files: загрузка рабочего
// файла в коллекцию заказа. Повторное имя файла в рамках заказа отклоняется.
func (h *PortalHandler) UploadWork(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	if err := h.authorizeAssigned(c.Request.Context(), orderID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поле file обязательно"})
		return
	}

	src, err := openUpload(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	relativePath, _, err := h.storage.Save(c.Request.Context(), orderID, file.Filename, src)
	if err != nil {
		_ = c.Error(err)
		return
	}

	orderFile := &models.OrderFile{
		OrderID:      orderID,
		FilePath:     filepath.ToSlash(relativePath),
		FileType:     models.FileTypeFreelancerUpload,
		OriginalName: file.Filename,
	}
	if err := h.files.Add(c.Request.Context(), orderFile); err != nil {
		// Запись не прошла — бинарник больше никому не нужен.
		if delErr := h.storage.Delete(c.Request.Context(), relativePath); delErr != nil {
			logger.Log.Warnf("portal: не удалось удалить осиротевший файл %s: %v", relativePath, delErr)
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, orderFile)
}

// SendMessage обрабатывает POST /portal/orders/:id/chat.
func (h *PortalHandler) SendMessage(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	if err := h.authorizeAssigned(c.Request.Context(), orderID, userID); err != nil {
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
		Channel:    models.ChatChannelFreelancer,
		SenderID:   userID,
		SenderRole: models.RoleFreelancer,
		Message:    req.Message,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// ListMessages обрабатывает GET /portal/orders/:id/chat.
func (h *PortalHandler) ListMessages(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	if err := h.authorizeAssigned(c.Request.Context(), orderID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	messages, err := h.chat.List(c.Request.Context(), orderID, models.ChatChannelFreelancer)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
