package port

import (
	"context"

	"github.com/google/uuid"

	"winelist/internal/domain"
)

// RestaurantRepository reads restaurant records for authorization.
type RestaurantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
}

// ImportJobRepository persists OCR import jobs.
type ImportJobRepository interface {
	Create(ctx context.Context, job *domain.ImportJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error)
	UpdateStatus(ctx context.Context, job *domain.ImportJob) error
}

// ImportItemRepository persists extracted wine rows for a job.
type ImportItemRepository interface {
	CreateBatch(ctx context.Context, items []domain.ImportItem) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ImportItem, error)
}
