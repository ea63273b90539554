package sweeper

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hewor/agency-backend/internal/logger"
)

// AssignmentExpirer описывает массовый перевод просроченных назначений.
type AssignmentExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// Sweeper по расписанию переводит просроченные назначения в timeout.
// Дополняет ленивый обход при чтении дашборда: просрочка фиксируется,
// даже если исполнитель не заходит в кабинет.
type Sweeper struct {
	cron     *cron.Cron
	expirer  AssignmentExpirer
	schedule string
}

// New создаёт планировщик. schedule — стандартное cron-выражение.
func New(expirer AssignmentExpirer, schedule string) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		expirer:  expirer,
		schedule: schedule,
	}
}

// Start регистрирует задачу и запускает планировщик.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.expirer.ExpireOverdue(ctx); err != nil {
			logger.Log.Errorf("sweeper: обход просроченных назначений: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Log.Infof("sweeper: запущен по расписанию %q", s.schedule)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущей задачи.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
