package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hewor/agency-backend/internal/config"
	"github.com/hewor/agency-backend/internal/db"
	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/repository"
	"github.com/hewor/agency-backend/internal/service"
	"github.com/hewor/agency-backend/internal/storage"
)

var (
	days   int
	dryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Пакетная сверка файлов завершённых заказов",
	Long: `Находит заказы, завершённые более указанного числа дней назад,
и удаляет оставшиеся у них бинарники. С флагом --dry-run файлы только
пересчитываются, ничего не удаляется.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().IntVar(&days, "days", 30, "возраст завершения заказа в днях")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "только посчитать, ничего не удалять")
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init("info")
	logger.SetTextFormatter()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbConn, err := db.NewPostgres(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	fileStorage, err := storage.NewFileStorage(cfg.FileStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		return err
	}

	orderRepo := repository.NewOrderRepository(dbConn)
	fileRepo := repository.NewFileRepository(dbConn)
	chatRepo := repository.NewChatRepository(dbConn)

	cleanup := service.NewCleanupService(orderRepo, fileRepo, chatRepo, fileStorage)
	reconcile := service.NewReconcileService(orderRepo, cleanup)

	return reconcile.Run(ctx, days, dryRun, os.Stdout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("cleanup: %v", err)
	}
}
