package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTextAcquirer is a mock implementation of port.TextAcquirer.
type MockTextAcquirer struct {
	mock.Mock
}

func (m *MockTextAcquirer) Acquire(ctx context.Context, key string, data []byte, mime string) (string, error) {
	args := m.Called(ctx, key, data, mime)
	return args.String(0), args.Error(1)
}
