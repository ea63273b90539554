package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/service"
	"github.com/hewor/agency-backend/internal/storage"
	"github.com/hewor/agency-backend/internal/validation"
)

// PanelHandler обрабатывает операции админ-панели агентства.
type PanelHandler struct {
	orders      *service.OrderService
	assignments *service.AssignmentService
	freelancers *service.FreelancerService
	chat        *service.ChatService
	auth        *service.AuthService
	storage     *storage.FileStorage
}

// NewPanelHandler создаёт новый хэндлер.
func NewPanelHandler(
	orders *service.OrderService,
	assignments *service.AssignmentService,
	freelancers *service.FreelancerService,
	chat *service.ChatService,
	auth *service.AuthService,
	storage *storage.FileStorage,
) *PanelHandler {
	return &PanelHandler{
		orders:      orders,
		assignments: assignments,
		freelancers: freelancers,
		chat:        chat,
		auth:        auth,
		storage:     storage,
	}
}

// ListOrders обрабатывает GET /panel/orders.
func (h *PanelHandler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := h.orders.ListOrders(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder обрабатывает GET /panel/orders/:id.
func (h *PanelHandler) GetOrder(c *gin.Context) {
	orderID, _ := uuid.Parse(c.Param("id"))

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus обрабатывает PUT /panel/orders/:id/status.
func (h *PanelHandler) SetStatus(c *gin.Context) {
	orderID, _ := uuid.Parse(c.Param("id"))

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	order, err := h.orders.SetStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Deliver обрабатывает POST /panel/orders/:id/deliver: multipart-форма
// с файлом поставки и сообщением. Загрузка поставки завершает заказ.
func (h *PanelHandler) Deliver(c *gin.Context) {
	orderID, _ := uuid.Parse(c.Param("id"))

	var deliveryPath *string
	if file, err := c.FormFile("file"); err == nil {
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
		relativePath = filepath.ToSlash(relativePath)
		deliveryPath = &relativePath
	}

	var deliveryMessage *string
	if msg := c.PostForm("message"); msg != "" {
		deliveryMessage = &msg
	}

	order, err := h.orders.MarkDelivered(c.Request.Context(), orderID, deliveryPath, deliveryMessage)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// DeleteOrder обрабатывает DELETE /panel/orders/:id.
func (h *PanelHandler) DeleteOrder(c *gin.Context) {
	orderID, _ := uuid.Parse(c.Param("id"))

	if err := h.orders.DeleteOrder(c.Request.Context(), orderID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type assignRequest struct {
	FreelancerID uuid.UUID `json:"freelancer_id" binding:"required"`
	Amount       string    `json:"amount"`
	Roadmap      *string   `json:"roadmap"`
	Description  *string   `json:"description"`
}

// Assign обрабатывает POST /panel/orders/:id/assign.
func (h *PanelHandler) Assign(c *gin.Context) {
	orderID, _ := uuid.Parse(c.Param("id"))

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	amount, err := validation.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.assignments.Assign(c.Request.Context(), service.AssignInput{
		OrderID:      orderID,
		FreelancerID: req.FreelancerID,
		Amount:       amount,
		Roadmap:      req.Roadmap,
		Description:  req.Description,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Unassign обрабатывает POST /panel/orders/:id/unassign.
func (h *PanelHandler) Unassign(c *gin.Context) {
	orderID, _ := uuid.Parse(c.Param("id"))

	if err := h.assignments.Unassign(c.Request.Context(), orderID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PayFreelancer обрабатывает POST /panel/orders/:id/pay-freelancer.
func (h *PanelHandler) PayFreelancer(c *gin.Context) {
	orderID, _ := uuid.Parse(c.Param("id"))

	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	if err := h.orders.MarkFreelancerPaid(c.Request.Context(), orderID, req.TransactionID, req.Screenshot); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SendMessage обрабатывает POST /panel/orders/:id/chat/:channel.
// Администратор пишет в оба канала: клиенту и исполнителю.
func (h *PanelHandler) SendMessage(c *gin.Context) {
	adminID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, _ := uuid.Parse(c.Param("id"))

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	msg, err := h.chat.Send(c.Request.Context(), service.SendInput{
		OrderID:    orderID,
		Channel:    c.Param("channel"),
		SenderID:   adminID,
		SenderRole: models.RoleAdmin,
		Message:    req.Message,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// ListMessages обрабатывает GET /panel/orders/:id/chat/:channel.
func (h *PanelHandler) ListMessages(c *gin.Context) {
	orderID, _ := uuid.Parse(c.Param("id"))

	messages, err := h.chat.List(c.Request.Context(), orderID, c.Param("channel"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type createFreelancerRequest struct {
	Username       string  `json:"username" binding:"required"`
	Password       string  `json:"password" binding:"required"`
	Code           string  `json:"code" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Phone          *string `json:"phone"`
	Profession     *string `json:"profession"`
	Expertise      *string `json:"expertise"`
	PaymentDetails *string `json:"payment_details"`
}

// CreateFreelancer обрабатывает POST /panel/freelancers: заводит учётную
// запись и анкету исполнителя.
func (h *PanelHandler) CreateFreelancer(c *gin.Context) {
	var req createFreelancerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, models.RoleFreelancer)
	if err != nil {
		_ = c.Error(err)
		return
	}

	freelancer := &models.Freelancer{
		UserID:         user.ID,
		Code:           req.Code,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Profession:     req.Profession,
		Expertise:      req.Expertise,
		PaymentDetails: req.PaymentDetails,
	}
	if err := h.freelancers.Create(c.Request.Context(), freelancer); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, freelancer)
}

// ListFreelancers обрабатывает GET /panel/freelancers.
func (h *PanelHandler) ListFreelancers(c *gin.Context) {
	freelancers, err := h.freelancers.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"freelancers": freelancers})
}

// GetFreelancer обрабатывает GET /panel/freelancers/:id.
func (h *PanelHandler) GetFreelancer(c *gin.Context) {
	freelancerID, _ := uuid.Parse(c.Param("id"))

	freelancer, err := h.freelancers.Get(c.Request.Context(), freelancerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, freelancer)
}

// UpdateFreelancer обрабатывает PUT /panel/freelancers/:id.
func (h *PanelHandler) UpdateFreelancer(c *gin.Context) {
	freelancerID, _ := uuid.Parse(c.Param("id"))

	freelancer, err := h.freelancers.Get(c.Request.Context(), freelancerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := c.ShouldBindJSON(freelancer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}
	freelancer.ID = freelancerID

	if err := h.freelancers.Update(c.Request.Context(), freelancer); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, freelancer)
}

// DeleteFreelancer обрабатывает DELETE /panel/freelancers/:id.
func (h *PanelHandler) DeleteFreelancer(c *gin.Context) {
	freelancerID, _ := uuid.Parse(c.Param("id"))

	if err := h.freelancers.Delete(c.Request.Context(), freelancerID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
