package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"winelist/internal/domain"
)

// MockRestaurantRepo is a mock implementation of port.RestaurantRepository.
type MockRestaurantRepo struct {
	mock.Mock
}

func (m *MockRestaurantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}
