package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/models"
)

// ReconcileOrderRepository описывает выборку заказов для пакетной сверки.
type ReconcileOrderRepository interface {
	ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

// ReconcileRetention описывает политику очистки для пакетной сверки:
// подсчёт в режиме dry-run и фактическое удаление.
type ReconcileRetention interface {
	Run(ctx context.Context, order *models.Order) (int, error)
	PendingCount(ctx context.Context, order *models.Order) (int, error)
}

// ReconcileService — пакетная сверка: находит давно завершённые заказы,
// у которых по какой-то причине остались бинарники, и дочищает их.
// Страховка на случай, когда очистка при завершении была выключена
// или частично не прошла.
type ReconcileService struct {
	orders    ReconcileOrderRepository
	retention ReconcileRetention
}

// NewReconcileService создаёт сервис сверки.
func NewReconcileService(orders ReconcileOrderRepository, retention ReconcileRetention) *ReconcileService {
	return &ReconcileService{orders: orders, retention: retention}
}

// Run обрабатывает заказы, завершённые более days дней назад. В режиме
// dryRun файлы только пересчитываются. Отчёт пишется в out построчно;
// последняя строка всегда начинается с "DRY RUN:" либо "COMPLETED:".
func (s *ReconcileService) Run(ctx context.Context, days int, dryRun bool, out io.Writer) error {
	if days <= 0 {
		return fmt.Errorf("reconcile: число дней должно быть положительным, получено %d", days)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	fmt.Fprintf(out, "Сверка заказов, завершённых до %s\n", cutoff.Format("2006-01-02 15:04"))

	orders, err := s.orders.ListCompletedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	processed := 0
	totalFiles := 0

	for i := range orders {
		order := &orders[i]

		var count int
		var err error
		if dryRun {
			count, err = s.retention.PendingCount(ctx, order)
		} else {
			count, err = s.retention.Run(ctx, order)
		}
		if err != nil {
			// Частичный результат по заказу уже учтён, идём дальше.
			logger.Log.Errorf("reconcile: заказ %s: %v", order.ID, err)
			fmt.Fprintf(out, "Заказ %s: ошибка: %v\n", order.ID, err)
		}

		fmt.Fprintf(out, "Заказ %s (завершён %s): файлов: %d\n",
			order.ID, order.CompletedAt.Format("2006-01-02"), count)

		processed++
		totalFiles += count
	}

	if dryRun {
		fmt.Fprintf(out, "DRY RUN: заказов обработано: %d, файлов к удалению: %d\n", processed, totalFiles)
	} else {
		fmt.Fprintf(out, "COMPLETED: заказов обработано: %d, файлов удалено: %d\n", processed, totalFiles)
	}

	return nil
}
