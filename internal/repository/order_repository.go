package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hewor/agency-backend/internal/models"
)

// OrderRepository отвечает за работу с заказами.
type OrderRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrFreelancerNotFound = errors.New("freelancer not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateFile      = errors.New("duplicate file for order")
	ErrStatusConflict     = errors.New("status changed concurrently")
)

const orderColumns = `
	id, client_id, service_type, title, description, request_call, phone_number, status,
	file_upload, delivery_file, delivery_message,
	is_paid, transaction_id, payment_screenshot,
	freelancer_id, freelancer_status, assigned_at, freelancer_deadline,
	freelancer_payment, is_freelancer_paid, freelancer_transaction_id,
	freelancer_payment_screenshot, freelancer_roadmap, freelancer_description,
	completed_at, created_at, updated_at
`

// NewOrderRepository создаёт новый экземпляр.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create сохраняет новый заказ.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (client_id, service_type, title, description, request_call, phone_number, status, file_upload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, freelancer_status, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		order.ClientID,
		order.ServiceType,
		order.Title,
		order.Description,
		order.RequestCall,
		order.PhoneNumber,
		order.Status,
		order.FileUpload,
	).Scan(&order.ID, &order.FreelancerStatus, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("order repository: insert order %w", err)
	}

	return nil
}

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id %w", err)
	}
	return &order, nil
}

// ListByClient возвращает заказы клиента, свежие первыми.
func (r *OrderRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE client_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &orders, query, clientID); err != nil {
		return nil, fmt.Errorf("order repository: list by client %w", err)
	}
	return orders, nil
}

// List возвращает заказы для панели с необязательным фильтром по статусу.
func (r *OrderRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	if status != "" {
		query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		if err := r.db.SelectContext(ctx, &orders, query, status, limit, offset); err != nil {
			return nil, fmt.Errorf("order repository: list %w", err)
		}
		return orders, nil
	}

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &orders, query, limit, offset); err != nil {
		return nil, fmt.Errorf("order repository: list %w", err)
	}
	return orders, nil
}

// ListByFreelancer возвращает заказы, назначенные исполнителю.
func (r *OrderRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE freelancer_id = $1 ORDER BY assigned_at DESC NULLS LAST`
	if err := r.db.SelectContext(ctx, &orders, query, freelancerID); err != nil {
		return nil, fmt.Errorf("order repository: list by freelancer %w", err)
	}
	return orders, nil
}

// ListCompletedBefore возвращает завершённые заказы со временем завершения раньше cutoff.
func (r *OrderRepository) ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 AND completed_at < $2 ORDER BY completed_at`
	if err := r.db.SelectContext(ctx, &orders, query, models.OrderStatusCompleted, cutoff); err != nil {
		return nil, fmt.Errorf("order repository: list completed before %w", err)
	}
	return orders, nil
}

// UpdateStatus меняет основной статус заказа.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("order repository: update status %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// SetCompleted переводит заказ в completed и проставляет completed_at,
// если он ещё не был проставлен. Повторный вызов не сдвигает отметку:
// completed_at заполнен тогда и только тогда, когда статус completed.
func (r *OrderRepository) SetCompleted(ctx context.Context, id uuid.UUID, deliveryFile, deliveryMessage *string) (*models.Order, error) {
	var order models.Order
	query := `
		UPDATE orders
		SET status = $2,
		    completed_at = COALESCE(completed_at, NOW()),
		    delivery_file = COALESCE($3, delivery_file),
		    delivery_message = COALESCE($4, delivery_message),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	if err := r.db.GetContext(ctx, &order, query, id, models.OrderStatusCompleted, deliveryFile, deliveryMessage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: set completed %w", err)
	}
	return &order, nil
}

// SetFileUpload записывает путь исходного файла клиента.
func (r *OrderRepository) SetFileUpload(ctx context.Context, id uuid.UUID, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET file_upload = $2, updated_at = NOW() WHERE id = $1`, id, path)
	if err != nil {
		return fmt.Errorf("order repository: set file upload %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkPaid фиксирует оплату клиента.
func (r *OrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string, screenshot *string) error {
	query := `
		UPDATE orders
		SET is_paid = TRUE, transaction_id = $2, payment_screenshot = COALESCE($3, payment_screenshot), updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, transactionID, screenshot)
	if err != nil {
		return fmt.Errorf("order repository: mark paid %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkFreelancerPaid фиксирует выплату исполнителю.
func (r *OrderRepository) MarkFreelancerPaid(ctx context.Context, id uuid.UUID, transactionID string, screenshot *string) error {
	query := `
		UPDATE orders
		SET is_freelancer_paid = TRUE, freelancer_transaction_id = $2,
		    freelancer_payment_screenshot = COALESCE($3, freelancer_payment_screenshot), updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, transactionID, screenshot)
	if err != nil {
		return fmt.Errorf("order repository: mark freelancer paid %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// AssignInput параметры назначения исполнителя.
type AssignInput struct {
	OrderID      uuid.UUID
	FreelancerID uuid.UUID
	AssignedAt   time.Time
	Deadline     time.Time
	Amount       *float64
	Roadmap      *string
	Description  *string
}

// AssignFreelancer назначает исполнителя одним UPDATE: ссылка, отметки времени
// и под-статус меняются атомарно. Повторное назначение заменяет предыдущее.
func (r *OrderRepository) AssignFreelancer(ctx context.Context, in AssignInput) (*models.Order, error) {
	var order models.Order
	query := `
		UPDATE orders
		SET freelancer_id = $2,
		    freelancer_status = $3,
		    assigned_at = $4,
		    freelancer_deadline = $5,
		    freelancer_payment = $6,
		    is_freelancer_paid = FALSE,
		    freelancer_transaction_id = NULL,
		    freelancer_roadmap = COALESCE($7, freelancer_roadmap),
		    freelancer_description = COALESCE($8, freelancer_description),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	if err := r.db.GetContext(ctx, &order, query,
		in.OrderID,
		in.FreelancerID,
		models.FreelancerStatusPendingAcceptance,
		in.AssignedAt,
		in.Deadline,
		in.Amount,
		in.Roadmap,
		in.Description,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: assign freelancer %w", err)
	}
	return &order, nil
}

// UpdateFreelancerStatus меняет под-статус назначения с проверкой текущего
// значения (compare-and-set поверх атомарности одиночного UPDATE).
// Возвращает ErrStatusConflict, если под-статус уже не from.
func (r *OrderRepository) UpdateFreelancerStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE orders SET freelancer_status = $3, updated_at = NOW() WHERE id = $1 AND freelancer_status = $2`,
		id, from, to,
	)
	if err != nil {
		return fmt.Errorf("order repository: update freelancer status %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// ClearFreelancer снимает исполнителя с заказа и очищает поля назначения.
func (r *OrderRepository) ClearFreelancer(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE orders
		SET freelancer_id = NULL,
		    freelancer_status = $2,
		    assigned_at = NULL,
		    freelancer_deadline = NULL,
		    freelancer_payment = NULL,
		    is_freelancer_paid = FALSE,
		    freelancer_transaction_id = NULL,
		    freelancer_description = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, models.FreelancerStatusUnassigned)
	if err != nil {
		return fmt.Errorf("order repository: clear freelancer %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ExpireOverdueAssignments массово переводит просроченные назначения в timeout.
// При непустом freelancerID затрагиваются только заказы этого исполнителя
// (ленивый обход при чтении дашборда); nil — полный обход для планировщика.
func (r *OrderRepository) ExpireOverdueAssignments(ctx context.Context, cutoff time.Time, freelancerID *uuid.UUID) (int64, error) {
	query := `
		UPDATE orders
		SET freelancer_status = $1, updated_at = NOW()
		WHERE freelancer_status = $2 AND assigned_at < $3
	`
	args := []interface{}{models.FreelancerStatusTimeout, models.FreelancerStatusPendingAcceptance, cutoff}
	if freelancerID != nil {
		query += ` AND freelancer_id = $4`
		args = append(args, *freelancerID)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("order repository: expire overdue assignments %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("order repository: expire overdue assignments %w", err)
	}
	return affected, nil
}

// ClearFileSlots обнуляет файловые слоты заказа одним UPDATE после очистки.
func (r *OrderRepository) ClearFileSlots(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE orders
		SET file_upload = NULL,
		    delivery_file = NULL,
		    freelancer_roadmap = NULL,
		    payment_screenshot = NULL,
		    freelancer_payment_screenshot = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("order repository: clear file slots %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Delete удаляет заказ. Дочерние записи (файлы, переписка) удаляются каскадом
// на уровне схемы; бинарники должна была удалить политика очистки до вызова.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("order repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
