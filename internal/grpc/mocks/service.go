package mocks

import (
	"context"
	"errors"

	"github.com/godilite/remark-server/internal/service"
)

// MockRemarkService is a mock implementation of the RemarkService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockRemarkService struct {
	AnnotateFunc func(ctx context.Context, req service.AnnotateRequest) (service.Run, error)
	GenerateFunc func(ctx context.Context, req service.GenerateRequest) (service.Run, error)
	GetRunFunc   func(ctx context.Context, id string) (service.Run, error)
	ListRunsFunc func(ctx context.Context, limit int) ([]service.RunSummary, error)
}

// Annotate implements the RemarkService interface
func (m *MockRemarkService) Annotate(ctx context.Context, req service.AnnotateRequest) (service.Run, error) {
	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(ctx, req)
	}
	return service.Run{}, errors.New("AnnotateFunc not implemented")
}

// Generate implements the RemarkService interface
func (m *MockRemarkService) Generate(ctx context.Context, req service.GenerateRequest) (service.Run, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return service.Run{}, errors.New("GenerateFunc not implemented")
}

// GetRun implements the RemarkService interface
func (m *MockRemarkService) GetRun(ctx context.Context, id string) (service.Run, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(ctx, id)
	}
	return service.Run{}, errors.New("GetRunFunc not implemented")
}

// ListRuns implements the RemarkService interface
func (m *MockRemarkService) ListRuns(ctx context.Context, limit int) ([]service.RunSummary, error) {
	if m.ListRunsFunc != nil {
		return m.ListRunsFunc(ctx, limit)
	}
	return nil, errors.New("ListRunsFunc not implemented")
}
