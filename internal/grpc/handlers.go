package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/remark-server/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultCacheDuration = 30 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
	// generation waits on an external model, so it gets a longer budget.
	generateGRPCTimeout = 90 * time.Second
)

type CacheKeyType string

const cacheKeyRun CacheKeyType = "grpc:run"

type GRPCHandlers struct {
	remarks  RemarkService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

var _ RemarkServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers. cache may be nil.
func NewGRPCHandlers(remarks RemarkService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if remarks == nil {
		panic("nil RemarkService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		remarks:  remarks,
		cache:    cache,
		logger:   logger.Named("grpc-handler"),
		cacheTTL: ttl,
	}
}

func runKey(id string) string {
	return string(cacheKeyRun) + ":" + id
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrEmptyRoster):
		return status.Error(codes.InvalidArgument, "roster has no rows")
	case errors.Is(err, service.ErrRunNotFound):
		s.logger.Info("run not found", zap.String("op", op))
		return status.Error(codes.NotFound, "run not found")
	case errors.Is(err, service.ErrGeneratorUnavailable):
		return status.Error(codes.FailedPrecondition, "remark generator is not configured")
	case errors.Is(err, service.ErrGenerationFailed):
		s.logger.Error("generation failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "remark generation failed")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) respondRun(ctx context.Context, op string, run service.Run) (*structpb.Struct, error) {
	out, err := runToStruct(run)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

func (s *GRPCHandlers) AnnotateRoster(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := toAnnotateRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	run, err := s.remarks.Annotate(ctx, in)
	if err != nil {
		return nil, s.handleError(ctx, "AnnotateRoster", err)
	}
	storeAsync(s.cache, runKey(run.ID), run, s.cacheTTL, s.logger)

	return s.respondRun(ctx, "AnnotateRoster", run)
}

func (s *GRPCHandlers) GenerateRemarks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := toGenerateRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, generateGRPCTimeout)
	defer cancel()

	run, err := s.remarks.Generate(ctx, in)
	if err != nil {
		return nil, s.handleError(ctx, "GenerateRemarks", err)
	}
	storeAsync(s.cache, runKey(run.ID), run, s.cacheTTL, s.logger)

	return s.respondRun(ctx, "GenerateRemarks", run)
}

func (s *GRPCHandlers) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := runIDField(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	run, err := FindAndCache(ctx, s.cache, &s.sfGroup, runKey(id), s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.Run, error) {
		return s.remarks.GetRun(fetchCtx, id)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetRun", err)
	}

	return s.respondRun(ctx, "GetRun", run)
}

func (s *GRPCHandlers) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	runs, err := s.remarks.ListRuns(ctx, limitField(req))
	if err != nil {
		return nil, s.handleError(ctx, "ListRuns", err)
	}

	out, err := runsToStruct(runs)
	if err != nil {
		return nil, s.handleError(ctx, "ListRuns", err)
	}
	return out, nil
}
