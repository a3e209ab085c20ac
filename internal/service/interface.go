package service

import (
	"context"
	"time"

	"github.com/godilite/remark-server/internal/evidence"
	"github.com/godilite/remark-server/internal/repository/models"
)

// RunRepository defines the persistence operations the service needs.
type RunRepository interface {
	SaveRun(ctx context.Context, run models.Run) error
	GetRun(ctx context.Context, id string) (models.Run, error)
	GetBandCounts(ctx context.Context, id string) ([]models.BandCount, error)
	ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error)
}

// Generator produces a remark text block for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, attachments []evidence.Attachment) (string, error)
}

// MetricsRecorder receives per-row and per-run observations.
type MetricsRecorder interface {
	ObserveAssignment(band string, fallback bool)
	ObserveGeneration(d time.Duration, err error)
	ObserveRun(source string, leftovers int, err error)
}
