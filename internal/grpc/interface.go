package grpc

import (
	"context"
	"time"

	"github.com/godilite/remark-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type RemarkService interface {
	Annotate(ctx context.Context, req service.AnnotateRequest) (service.Run, error)
	Generate(ctx context.Context, req service.GenerateRequest) (service.Run, error)
	GetRun(ctx context.Context, id string) (service.Run, error)
	ListRuns(ctx context.Context, limit int) ([]service.RunSummary, error)
}
