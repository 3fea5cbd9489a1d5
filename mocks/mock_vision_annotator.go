package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"winelist/internal/port"
)

// MockVisionAnnotator is a mock implementation of port.VisionAnnotator.
type MockVisionAnnotator struct {
	mock.Mock
}

func (m *MockVisionAnnotator) AnnotateImage(ctx context.Context, content []byte) (string, error) {
	args := m.Called(ctx, content)
	return args.String(0), args.Error(1)
}

func (m *MockVisionAnnotator) StartDocumentAnnotation(ctx context.Context, req port.DocumentAnnotationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockVisionAnnotator) GetOperation(ctx context.Context, name string) (*port.OperationStatus, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.OperationStatus), args.Error(1)
}
