package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hewor/agency-backend/internal/config"
	"github.com/hewor/agency-backend/internal/http/handlers"
	"github.com/hewor/agency-backend/internal/http/middleware"
	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения. Три поверхности API:
// клиентская (/orders), админ-панель (/panel) и кабинет исполнителя (/portal).
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	orderHandler *handlers.OrderHandler,
	panelHandler *handlers.PanelHandler,
	portalHandler *handlers.PortalHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/files", http.Dir(cfg.FileStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	api.GET("/ws", wsHandler.Handle)

	// Клиентская поверхность.
	client := api.Group("/")
	client.Use(middleware.AuthMiddleware(tokenManager))
	client.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		client.POST("/orders", orderHandler.CreateOrder)
		client.GET("/orders/my", orderHandler.ListMyOrders)
		client.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.GetOrder)
		client.POST("/orders/:id/pay", middleware.UUIDValidator("id"), orderHandler.Pay)
		client.GET("/orders/:id/chat", middleware.UUIDValidator("id"), orderHandler.ListMessages)
		client.POST("/orders/:id/chat", middleware.UUIDValidator("id"), orderHandler.SendMessage)
	}

	// Админ-панель агентства.
	panel := api.Group("/panel")
	panel.Use(middleware.AuthMiddleware(tokenManager))
	panel.Use(middleware.RequireRole(models.RoleAdmin))
	{
		panel.GET("/orders", panelHandler.ListOrders)
		panel.GET("/orders/:id", middleware.UUIDValidator("id"), panelHandler.GetOrder)
		panel.PUT("/orders/:id/status", middleware.UUIDValidator("id"), panelHandler.SetStatus)
		panel.POST("/orders/:id/deliver", middleware.UUIDValidator("id"), panelHandler.Deliver)
		panel.DELETE("/orders/:id", middleware.UUIDValidator("id"), panelHandler.DeleteOrder)
		panel.POST("/orders/:id/assign", middleware.UUIDValidator("id"), panelHandler.Assign)
		panel.POST("/orders/:id/unassign", middleware.UUIDValidator("id"), panelHandler.Unassign)
		panel.POST("/orders/:id/pay-freelancer", middleware.UUIDValidator("id"), panelHandler.PayFreelancer)
		panel.GET("/orders/:id/chat/:channel", middleware.UUIDValidator("id"), panelHandler.ListMessages)
		panel.POST("/orders/:id/chat/:channel", middleware.UUIDValidator("id"), panelHandler.SendMessage)

		panel.POST("/freelancers", panelHandler.CreateFreelancer)
		panel.GET("/freelancers", panelHandler.ListFreelancers)
		panel.GET("/freelancers/:id", middleware.UUIDValidator("id"), panelHandler.GetFreelancer)
		panel.PUT("/freelancers/:id", middleware.UUIDValidator("id"), panelHandler.UpdateFreelancer)
		panel.DELETE("/freelancers/:id", middleware.UUIDValidator("id"), panelHandler.DeleteFreelancer)
	}

	// Кабинет исполнителя.
	portal := api.Group("/portal")
	portal.Use(middleware.AuthMiddleware(tokenManager))
	portal.Use(middleware.RequireRole(models.RoleFreelancer))
	{
		portal.GET("/profile", portalHandler.Profile)
		portal.GET("/orders", portalHandler.Dashboard)
		portal.POST("/orders/:id/accept", middleware.UUIDValidator("id"), portalHandler.Accept)
		portal.POST("/orders/:id/reject", middleware.UUIDValidator("id"), portalHandler.Reject)
		portal.POST("/orders/:id/files", middleware.UUIDValidator("id"), portalHandler.UploadWork)
		portal.GET("/orders/:id/chat", middleware.UUIDValidator("id"), portalHandler.ListMessages)
		portal.POST("/orders/:id/chat", middleware.UUIDValidator("id"), portalHandler.SendMessage)
	}

	return r
}
