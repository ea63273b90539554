package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hewor/agency-backend/internal/config"
	"github.com/hewor/agency-backend/internal/db"
	httpHandlers "github.com/hewor/agency-backend/internal/http/handlers"
	httpRouter "github.com/hewor/agency-backend/internal/http/router"
	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/notify"
	"github.com/hewor/agency-backend/internal/repository"
	"github.com/hewor/agency-backend/internal/service"
	"github.com/hewor/agency-backend/internal/storage"
	"github.com/hewor/agency-backend/internal/sweeper"
	"github.com/hewor/agency-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.FileStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	var mailer notify.Mailer = notify.NoopMailer{}
	if cfg.SMTPAddr != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, nil)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	fileRepo := repository.NewFileRepository(dbConn)
	chatRepo := repository.NewChatRepository(dbConn)
	freelancerRepo := repository.NewFreelancerRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	cleanupService := service.NewCleanupService(orderRepo, fileRepo, chatRepo, fileStorage)
	orderService := service.NewOrderService(orderRepo, fileRepo, cleanupService, cfg.FileCleanupOnCompletion)
	notificationService := service.NewNotificationService(mailer, hub)
	assignmentService := service.NewAssignmentService(orderRepo, freelancerRepo, notificationService, cfg.AssignmentNoticeTTL, cfg.AcceptanceWindow)
	freelancerService := service.NewFreelancerService(freelancerRepo)
	chatService := service.NewChatService(chatRepo, orderRepo)

	if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("main: не удалось создать администратора: %v", err)
	}

	// Планировщик просроченных назначений.
	sweep := sweeper.New(assignmentService, cfg.SweepSchedule)
	if err := sweep.Start(); err != nil {
		log.Fatalf("main: не удалось запустить планировщик: %v", err)
	}
	defer sweep.Stop()

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	orderHandler := httpHandlers.NewOrderHandler(orderService, chatService, notificationService, fileStorage)
	panelHandler := httpHandlers.NewPanelHandler(orderService, assignmentService, freelancerService, chatService, authService, fileStorage)
	portalHandler := httpHandlers.NewPortalHandler(assignmentService, freelancerService, chatService, orderRepo, fileRepo, fileStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, orderHandler, panelHandler, portalHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(dbConn *sqlx.DB) {
	if err := dbConn.Close(); err != nil {
		log.Printf("main: ошибка закрытия соединения с базой: %v", err)
	}
}
