package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/pkg/apperror"
	"github.com/hewor/agency-backend/internal/validation"
)

// FreelancerRepository описывает хранилище анкет исполнителей.
type FreelancerRepository interface {
	Create(ctx context.Context, f *models.Freelancer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Freelancer, error)
	GetByCode(ctx context.Context, code string) (*models.Freelancer, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Freelancer, error)
	List(ctx context.Context) ([]models.Freelancer, error)
	Update(ctx context.Context, f *models.Freelancer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FreelancerService содержит бизнес-логику анкет исполнителей.
type FreelancerService struct {
	repo FreelancerRepository
}

// NewFreelancerService создаёт сервис исполнителей.
func NewFreelancerService(repo FreelancerRepository) *FreelancerService {
	return &FreelancerService{repo: repo}
}

// Create регистрирует нового исполнителя.
func (s *FreelancerService) Create(ctx context.Context, f *models.Freelancer) error {
	if err := validation.ValidateFreelancerCode(f.Code); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("имя исполнителя", f.Name, 1, validation.MaxFreelancerNameLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("почта исполнителя", f.Email); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return err
	}

	logger.Log.Infof("freelancer: создан исполнитель %s (%s)", f.ID, f.Code)
	return nil
}

// Get возвращает исполнителя по идентификатору.
func (s *FreelancerService) Get(ctx context.Context, id uuid.UUID) (*models.Freelancer, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUserID возвращает анкету по учётной записи.
func (s *FreelancerService) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Freelancer, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// List возвращает всех исполнителей.
func (s *FreelancerService) List(ctx context.Context) ([]models.Freelancer, error) {
	return s.repo.List(ctx)
}

// Update обновляет анкету.
func (s *FreelancerService) Update(ctx context.Context, f *models.Freelancer) error {
	if err := validation.ValidateLength("имя исполнителя", f.Name, 1, validation.MaxFreelancerNameLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return s.repo.Update(ctx, f)
}

// Delete удаляет анкету исполнителя.
func (s *FreelancerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Infof("freelancer: удалён исполнитель %s", id)
	return nil
}
