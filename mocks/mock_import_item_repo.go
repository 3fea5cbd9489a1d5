package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"winelist/internal/domain"
)

// MockImportItemRepo is a mock implementation of port.ImportItemRepository.
type MockImportItemRepo struct {
	mock.Mock
}

func (m *MockImportItemRepo) CreateBatch(ctx context.Context, items []domain.ImportItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockImportItemRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ImportItem, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ImportItem), args.Error(1)
}
