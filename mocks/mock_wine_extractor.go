package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"winelist/internal/port"
)

// MockWineExtractor is a mock implementation of port.WineExtractor.
type MockWineExtractor struct {
	mock.Mock
}

func (m *MockWineExtractor) ExtractChunk(ctx context.Context, input port.ChunkInput) (*port.ChunkOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ChunkOutput), args.Error(1)
}
