package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hewor/agency-backend/internal/models"
)

// FileRepository отвечает за записи файлов, прикреплённых к заказам.
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository создаёт новый экземпляр.
func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Add сохраняет запись о файле. Повторное имя в рамках одного заказа
// отклоняется на уровне уникального индекса.
func (r *FileRepository) Add(ctx context.Context, file *models.OrderFile) error {
	query := `
		INSERT INTO order_files (order_id, file_path, file_type, original_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, uploaded_at
	`

	err := r.db.QueryRowxContext(ctx, query, file.OrderID, file.FilePath, file.FileType, file.OriginalName).
		Scan(&file.ID, &file.UploadedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateFile
		}
		return fmt.Errorf("file repository: insert %w", err)
	}
	return nil
}

// ListByOrder возвращает файлы заказа в порядке загрузки.
func (r *FileRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderFile, error) {
	var files []models.OrderFile
	query := `
		SELECT id, order_id, file_path, file_type, original_name, uploaded_at
		FROM order_files
		WHERE order_id = $1
		ORDER BY uploaded_at
	`
	if err := r.db.SelectContext(ctx, &files, query, orderID); err != nil {
		return nil, fmt.Errorf("file repository: list by order %w", err)
	}
	return files, nil
}

// Delete удаляет запись о файле.
func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("file repository: delete %w", err)
	}
	return nil
}

// CountByOrder возвращает число файловых записей заказа.
func (r *FileRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM order_files WHERE order_id = $1`, orderID); err != nil {
		return 0, fmt.Errorf("file repository: count by order %w", err)
	}
	return count, nil
}
