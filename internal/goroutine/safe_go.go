package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/hewor/agency-backend/internal/logger"
)

// SafeGo запускает горутину с обработкой panic. Используется для
// fire-and-forget задач вроде рассылки уведомлений: их падение не должно
// ронять процесс.
func SafeGo(fn func()) {
	go func() {
		defer recoverPanic()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer recoverPanic()
		fn(ctx)
	}()
}

func recoverPanic() {
	if r := recover(); r != nil {
		logger.Log.Errorf("goroutine: panic: %v\n%s", r, debug.Stack())
	}
}
