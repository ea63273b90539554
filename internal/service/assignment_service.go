package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hewor/agency-backend/internal/goroutine"
	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/pkg/apperror"
	"github.com/hewor/agency-backend/internal/repository"
	"github.com/hewor/agency-backend/internal/validation"
)

// Ошибки подтверждения назначения.
var (
	// ErrAcceptanceExpired возвращается при попытке принять назначение
	// после истечения окна подтверждения. Назначение при этом уже
	// переведено в timeout.
	ErrAcceptanceExpired = apperror.New(apperror.ErrCodeConflict, "срок подтверждения назначения истёк")

	// ErrNotPendingAcceptance возвращается, когда назначение уже не
	// ожидает подтверждения: принято, отклонено или просрочено ранее.
	ErrNotPendingAcceptance = apperror.New(apperror.ErrCodeConflict, "назначение не ожидает подтверждения")
)

// AssignmentOrderRepository описывает работу сервиса назначений с заказами.
type AssignmentOrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	AssignFreelancer(ctx context.Context, in repository.AssignInput) (*models.Order, error)
	UpdateFreelancerStatus(ctx context.Context, id uuid.UUID, from, to string) error
	ClearFreelancer(ctx context.Context, id uuid.UUID) error
	ExpireOverdueAssignments(ctx context.Context, cutoff time.Time, freelancerID *uuid.UUID) (int64, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// FreelancerProvider описывает чтение анкет исполнителей.
type FreelancerProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Freelancer, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Freelancer, error)
}

// AssignmentNotifier описывает уведомление исполнителя о назначении.
type AssignmentNotifier interface {
	NotifyAssigned(ctx context.Context, order *models.Order, freelancer *models.Freelancer) error
}

// AssignmentService содержит бизнес-логику назначения исполнителей.
//
// Под-статус назначения живёт отдельно от основного статуса заказа:
// unassigned -> pending_acceptance -> accepted | rejected | timeout.
// Решающим окном подтверждения является AcceptanceWindow; показываемый
// исполнителю дедлайн (NoticeTTL) — информационный.
type AssignmentService struct {
	orders      AssignmentOrderRepository
	freelancers FreelancerProvider
	notifier    AssignmentNotifier

	noticeTTL        time.Duration
	acceptanceWindow time.Duration
}

// NewAssignmentService создаёт сервис назначений.
func NewAssignmentService(orders AssignmentOrderRepository, freelancers FreelancerProvider, notifier AssignmentNotifier, noticeTTL, acceptanceWindow time.Duration) *AssignmentService {
	return &AssignmentService{
		orders:           orders,
		freelancers:      freelancers,
		notifier:         notifier,
		noticeTTL:        noticeTTL,
		acceptanceWindow: acceptanceWindow,
	}
}

// AssignInput входные данные назначения исполнителя на заказ.
type AssignInput struct {
	OrderID      uuid.UUID
	FreelancerID uuid.UUID
	Amount       *float64
	Roadmap      *string
	Description  *string
}

// Assign назначает исполнителя. Повторное назначение заменяет предыдущее:
// ссылка, отметки времени и под-статус pending_acceptance выставляются
// одним атомарным обновлением. Уведомление уходит в фоне и не влияет
// на результат операции.
func (s *AssignmentService) Assign(ctx context.Context, in AssignInput) (*models.Order, error) {
	if in.Amount != nil {
		if err := validation.ValidateAmount(*in.Amount); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	freelancer, err := s.freelancers.GetByID(ctx, in.FreelancerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order, err := s.orders.AssignFreelancer(ctx, repository.AssignInput{
		OrderID:      in.OrderID,
		FreelancerID: in.FreelancerID,
		AssignedAt:   now,
		Deadline:     now.Add(s.noticeTTL),
		Amount:       in.Amount,
		Roadmap:      in.Roadmap,
		Description:  in.Description,
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("assignment: заказ %s назначен исполнителю %s (%s)", order.ID, freelancer.ID, freelancer.Code)

	goroutine.SafeGo(func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.NotifyAssigned(notifyCtx, order, freelancer); err != nil {
			logger.Log.Warnf("assignment: уведомление исполнителя %s не доставлено: %v", freelancer.ID, err)
		}
	})

	return order, nil
}

// Accept принимает назначение от имени исполнителя. Если окно подтверждения
// истекло, назначение переводится в timeout и возвращается
// ErrAcceptanceExpired — повторные попытки принять просроченное назначение
// дают тот же результат. Успешное принятие продвигает основной статус
// заказа в in_progress.
func (s *AssignmentService) Accept(ctx context.Context, orderID, freelancerUserID uuid.UUID) (*models.Order, error) {
	freelancer, err := s.freelancers.GetByUserID(ctx, freelancerUserID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.FreelancerID == nil || *order.FreelancerID != freelancer.ID {
		return nil, apperror.ErrForbidden
	}
	if order.FreelancerStatus != models.FreelancerStatusPendingAcceptance {
		return nil, ErrNotPendingAcceptance
	}
	if order.AssignedAt == nil {
		return nil, fmt.Errorf("assignment: у заказа %s нет отметки времени назначения", orderID)
	}

	if time.Since(*order.AssignedAt) > s.acceptanceWindow {
		if err := s.orders.UpdateFreelancerStatus(ctx, orderID, models.FreelancerStatusPendingAcceptance, models.FreelancerStatusTimeout); err != nil && err != repository.ErrStatusConflict {
			return nil, err
		}
		logger.Log.Infof("assignment: заказ %s — окно подтверждения истекло, назначение переведено в timeout", orderID)
		return nil, ErrAcceptanceExpired
	}

	if err := s.orders.UpdateFreelancerStatus(ctx, orderID, models.FreelancerStatusPendingAcceptance, models.FreelancerStatusAccepted); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, ErrNotPendingAcceptance
		}
		return nil, err
	}

	order.FreelancerStatus = models.FreelancerStatusAccepted
	logger.Log.Infof("assignment: исполнитель %s принял заказ %s", freelancer.ID, orderID)

	// Принятие переводит заказ в работу. Сбой продвижения основного
	// статуса не откатывает принятие: назначение уже подтверждено.
	if models.OrderStatusRank[order.Status] < models.OrderStatusRank[models.OrderStatusInProgress] {
		if err := s.orders.UpdateStatus(ctx, orderID, models.OrderStatusInProgress); err != nil {
			logger.Log.Errorf("assignment: не удалось перевести заказ %s в работу: %v", orderID, err)
		} else {
			order.Status = models.OrderStatusInProgress
		}
	}

	return order, nil
}

// Reject отклоняет назначение от имени исполнителя. Отклонить можно только
// назначение в ожидании подтверждения; заказ сохраняет ссылку на
// исполнителя с терминальным под-статусом rejected, снять её может
// администратор через Unassign.
func (s *AssignmentService) Reject(ctx context.Context, orderID, freelancerUserID uuid.UUID) error {
	freelancer, err := s.freelancers.GetByUserID(ctx, freelancerUserID)
	if err != nil {
		return err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.FreelancerID == nil || *order.FreelancerID != freelancer.ID {
		return apperror.ErrForbidden
	}

	if err := s.orders.UpdateFreelancerStatus(ctx, orderID, models.FreelancerStatusPendingAcceptance, models.FreelancerStatusRejected); err != nil {
		if err == repository.ErrStatusConflict {
			return ErrNotPendingAcceptance
		}
		return err
	}

	logger.Log.Infof("assignment: исполнитель %s отклонил заказ %s", freelancer.ID, orderID)
	return nil
}

// Unassign снимает исполнителя с заказа и очищает поля назначения.
func (s *AssignmentService) Unassign(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orders.ClearFreelancer(ctx, orderID); err != nil {
		return err
	}
	logger.Log.Infof("assignment: с заказа %s снят исполнитель", orderID)
	return nil
}

// ExpireOverdue массово переводит просроченные назначения в timeout.
// Вызывается планировщиком.
func (s *AssignmentService) ExpireOverdue(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.acceptanceWindow)
	expired, err := s.orders.ExpireOverdueAssignments(ctx, cutoff, nil)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		logger.Log.Infof("assignment: просрочено назначений: %d", expired)
	}
	return expired, nil
}

// DashboardOrders возвращает заказы исполнителя для дашборда. Перед выдачей
// просроченные назначения этого исполнителя переводятся в timeout, поэтому
// дашборд никогда не показывает зависшее pending_acceptance.
func (s *AssignmentService) DashboardOrders(ctx context.Context, freelancerUserID uuid.UUID) ([]models.Order, error) {
	freelancer, err := s.freelancers.GetByUserID(ctx, freelancerUserID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-s.acceptanceWindow)
	if _, err := s.orders.ExpireOverdueAssignments(ctx, cutoff, &freelancer.ID); err != nil {
		logger.Log.Errorf("assignment: ленивый обход просрочек исполнителя %s: %v", freelancer.ID, err)
	}

	return s.orders.ListByFreelancer(ctx, freelancer.ID)
}
