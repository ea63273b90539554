package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hewor/agency-backend/internal/models"
)

// FreelancerRepository отвечает за анкеты исполнителей.
type FreelancerRepository struct {
	db *sqlx.DB
}

// NewFreelancerRepository создаёт новый экземпляр.
func NewFreelancerRepository(db *sqlx.DB) *FreelancerRepository {
	return &FreelancerRepository{db: db}
}

// Create сохраняет нового исполнителя.
func (r *FreelancerRepository) Create(ctx context.Context, f *models.Freelancer) error {
	query := `
		INSERT INTO freelancers (user_id, code, name, email, phone, profession, expertise, payment_details, profile_image, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		f.UserID, f.Code, f.Name, f.Email, f.Phone, f.Profession, f.Expertise, f.PaymentDetails, f.ProfileImage, f.QRCode,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("freelancer repository: insert %w", err)
	}
	return nil
}

// GetByID возвращает исполнителя по идентификатору.
func (r *FreelancerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Freelancer, error) {
	var f models.Freelancer
	if err := r.db.GetContext(ctx, &f, `SELECT * FROM freelancers WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFreelancerNotFound
		}
		return nil, fmt.Errorf("freelancer repository: get by id %w", err)
	}
	return &f, nil
}

// GetByCode возвращает исполнителя по внутреннему коду.
func (r *FreelancerRepository) GetByCode(ctx context.Context, code string) (*models.Freelancer, error) {
	var f models.Freelancer
	if err := r.db.GetContext(ctx, &f, `SELECT * FROM freelancers WHERE code = $1`, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFreelancerNotFound
		}
		return nil, fmt.Errorf("freelancer repository: get by code %w", err)
	}
	return &f, nil
}

// GetByUserID возвращает анкету исполнителя по учётной записи.
func (r *FreelancerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Freelancer, error) {
	var f models.Freelancer
	if err := r.db.GetContext(ctx, &f, `SELECT * FROM freelancers WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFreelancerNotFound
		}
		return nil, fmt.Errorf("freelancer repository: get by user id %w", err)
	}
	return &f, nil
}

// List возвращает всех исполнителей.
func (r *FreelancerRepository) List(ctx context.Context) ([]models.Freelancer, error) {
	var freelancers []models.Freelancer
	if err := r.db.SelectContext(ctx, &freelancers, `SELECT * FROM freelancers ORDER BY name`); err != nil {
		return nil, fmt.Errorf("freelancer repository: list %w", err)
	}
	return freelancers, nil
}

// Update обновляет анкету.
func (r *FreelancerRepository) Update(ctx context.Context, f *models.Freelancer) error {
	query := `
		UPDATE freelancers
		SET name = $2, email = $3, phone = $4, profession = $5, expertise = $6,
		    payment_details = $7, profile_image = $8, qr_code = $9
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		f.ID, f.Name, f.Email, f.Phone, f.Profession, f.Expertise, f.PaymentDetails, f.ProfileImage, f.QRCode,
	)
	if err != nil {
		return fmt.Errorf("freelancer repository: update %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrFreelancerNotFound
	}
	return nil
}

// Delete удаляет анкету исполнителя.
func (r *FreelancerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM freelancers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("freelancer repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrFreelancerNotFound
	}
	return nil
}
