package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStagingStore is a mock implementation of port.StagingStore.
type MockStagingStore struct {
	mock.Mock
}

func (m *MockStagingStore) Put(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	args := m.Called(ctx, bucket, object, data, contentType)
	return args.Error(0)
}

func (m *MockStagingStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	args := m.Called(ctx, bucket, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStagingStore) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	args := m.Called(ctx, bucket, object)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
