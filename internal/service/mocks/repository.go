package mocks

import (
	"context"
	"errors"

	"github.com/godilite/remark-server/internal/repository/models"
)

// MockRunRepository is a mock implementation of the RunRepository interface
// for testing the service layer.
type MockRunRepository struct {
	SaveRunFunc       func(ctx context.Context, run models.Run) error
	GetRunFunc        func(ctx context.Context, id string) (models.Run, error)
	GetBandCountsFunc func(ctx context.Context, id string) ([]models.BandCount, error)
	ListRunsFunc      func(ctx context.Context, limit int) ([]models.RunSummary, error)
}

// SaveRun implements the RunRepository interface
func (m *MockRunRepository) SaveRun(ctx context.Context, run models.Run) error {
	if m.SaveRunFunc != nil {
		return m.SaveRunFunc(ctx, run)
	}
	return nil
}

// GetRun implements the RunRepository interface
func (m *MockRunRepository) GetRun(ctx context.Context, id string) (models.Run, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(ctx, id)
	}
	return models.Run{}, errors.New("GetRunFunc not implemented")
}

// GetBandCounts implements the RunRepository interface
func (m *MockRunRepository) GetBandCounts(ctx context.Context, id string) ([]models.BandCount, error) {
	if m.GetBandCountsFunc != nil {
		return m.GetBandCountsFunc(ctx, id)
	}
	return nil, errors.New("GetBandCountsFunc not implemented")
}

// ListRuns implements the RunRepository interface
func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if m.ListRunsFunc != nil {
		return m.ListRunsFunc(ctx, limit)
	}
	return nil, errors.New("ListRunsFunc not implemented")
}
