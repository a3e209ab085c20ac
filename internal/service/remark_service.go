package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/godilite/remark-server/internal/prompt"
	"github.com/godilite/remark-server/internal/remark"
	"github.com/godilite/remark-server/internal/repository"
	"github.com/godilite/remark-server/internal/repository/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dbTimeout                = 2 * time.Second
	defaultGenerationTimeout = 60 * time.Second
	defaultListLimit         = 20
	maxListLimit             = 100
)

var (
	ErrEmptyRoster          = errors.New("roster has no rows")
	ErrGeneratorUnavailable = errors.New("remark generator is not configured")
	ErrGenerationFailed     = errors.New("remark generation failed")
	ErrStorageFailure       = errors.New("storage failure")
	ErrRunNotFound          = errors.New("run not found")
)

// RemarkService runs the classify, parse and assign pipeline and records
// every run.
type RemarkService struct {
	storage    RunRepository
	generator  Generator
	metrics    MetricsRecorder
	logger     *zap.Logger
	fallback   string
	genTimeout time.Duration
	now        func() time.Time
	newID      func() string
}

type Option func(*RemarkService)

// WithFallback sets the remark used when a request does not carry one.
func WithFallback(text string) Option {
	return func(s *RemarkService) {
		if strings.TrimSpace(text) != "" {
			s.fallback = text
		}
	}
}

func WithGenerationTimeout(d time.Duration) Option {
	return func(s *RemarkService) {
		if d > 0 {
			s.genTimeout = d
		}
	}
}

func WithMetrics(m MetricsRecorder) Option {
	return func(s *RemarkService) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *RemarkService) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *RemarkService) { s.newID = fn }
}

// NewRemarkService creates a new RemarkService. The generator may be nil, in
// which case only Annotate with supplied text is available.
func NewRemarkService(storage RunRepository, generator Generator, logger *zap.Logger, opts ...Option) *RemarkService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &RemarkService{
		storage:    storage,
		generator:  generator,
		logger:     logger.Named("remark-service"),
		fallback:   remark.DefaultFallback,
		genTimeout: defaultGenerationTimeout,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasGenerator reports whether Generate can be used.
func (s *RemarkService) HasGenerator() bool {
	return s.generator != nil
}

// Distribution classifies scores and counts them per band without assigning.
func (s *RemarkService) Distribution(scores []any) remark.Distribution {
	return remark.Summarize(remark.ClassifyAll(scores))
}

// Annotate assigns remarks from a text block the caller already has.
func (s *RemarkService) Annotate(ctx context.Context, req AnnotateRequest) (Run, error) {
	if len(req.Scores) == 0 {
		return Run{}, ErrEmptyRoster
	}

	bands := remark.ClassifyAll(req.Scores)
	pools := remark.Parse(req.RemarksText)

	run, err := s.complete(ctx, runInput{
		source:   SourceSupplied,
		subject:  req.Subject,
		lesson:   req.Lesson,
		fallback: req.Fallback,
		rawText:  req.RemarksText,
		scores:   req.Scores,
		bands:    bands,
		pools:    pools,
	})
	s.observeRun(SourceSupplied, run, err)
	return run, err
}

// Generate asks the generator for remarks sized to the roster's band
// distribution, then assigns them.
func (s *RemarkService) Generate(ctx context.Context, req GenerateRequest) (Run, error) {
	if len(req.Scores) == 0 {
		return Run{}, ErrEmptyRoster
	}
	if s.generator == nil {
		return Run{}, ErrGeneratorUnavailable
	}

	bands := remark.ClassifyAll(req.Scores)
	dist := remark.Summarize(bands)

	var text string
	if dist.Total() > 0 {
		p := prompt.Build(prompt.Request{
			Subject:      req.Subject,
			Lesson:       req.Lesson,
			Distribution: dist,
			Context:      req.Evidence.Text,
		})

		var err error
		text, err = s.generate(ctx, p, req)
		if err != nil {
			s.observeRun(SourceGenerated, Run{}, err)
			return Run{}, err
		}
	} else {
		s.logger.Warn("no classifiable scores, skipping generation",
			zap.Int("rows", len(req.Scores)))
	}

	run, err := s.complete(ctx, runInput{
		source:   SourceGenerated,
		subject:  req.Subject,
		lesson:   req.Lesson,
		fallback: req.Fallback,
		rawText:  text,
		scores:   req.Scores,
		bands:    bands,
		pools:    remark.Parse(text),
	})
	s.observeRun(SourceGenerated, run, err)
	return run, err
}

func (s *RemarkService) generate(ctx context.Context, p string, req GenerateRequest) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.Generate(genCtx, p, req.Evidence.Attachments)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveGeneration(elapsed, err)
	}
	if err != nil {
		s.logger.Error("remark generation failed",
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	s.logger.Info("generated remark text",
		zap.String("subject", req.Subject),
		zap.String("lesson", req.Lesson),
		zap.Int("attachments", len(req.Evidence.Attachments)),
		zap.Duration("elapsed", elapsed))
	return text, nil
}

type runInput struct {
	source   string
	subject  string
	lesson   string
	fallback string
	rawText  string
	scores   []any
	bands    []remark.Band
	pools    *remark.Pools
}

// complete assigns remarks, builds the run and persists it. The pools in the
// input are drained.
func (s *RemarkService) complete(ctx context.Context, in runInput) (Run, error) {
	fallback := in.fallback
	if strings.TrimSpace(fallback) == "" {
		fallback = s.fallback
	}

	assignments := remark.Assign(in.bands, in.pools, fallback)

	run := Run{
		ID:        s.newID(),
		Source:    in.source,
		Subject:   in.subject,
		Lesson:    in.lesson,
		Fallback:  fallback,
		CreatedAt: s.now().UTC(),
		RawText:   in.rawText,
		Rows:      make([]Row, len(assignments)),
		Leftover:  in.pools.Total(),
	}
	for i, a := range assignments {
		run.Rows[i] = Row{
			Index:    i,
			Score:    scoreText(in.scores[i]),
			Band:     a.Band.String(),
			Remark:   a.Remark,
			Fallback: a.Fallback,
		}
		if a.Fallback {
			run.Fallbacks++
		}
		if a.Band == remark.Unclassified {
			run.Unclassified++
		}
		if s.metrics != nil {
			s.metrics.ObserveAssignment(a.Band.String(), a.Fallback)
		}
	}
	run.Bands = summarizeRows(run.Rows)

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.storage.SaveRun(dbCtx, toModel(run)); err != nil {
		s.logger.Error("failed to save run", zap.String("run_id", run.ID), zap.Error(err))
		return Run{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("annotated roster",
		zap.String("run_id", run.ID),
		zap.String("source", run.Source),
		zap.Int("rows", len(run.Rows)),
		zap.Int("fallbacks", run.Fallbacks),
		zap.Int("unclassified", run.Unclassified),
		zap.Int("leftover", run.Leftover))

	return run, nil
}

// GetRun loads a stored run with per-band counts aggregated by storage.
func (s *RemarkService) GetRun(ctx context.Context, id string) (Run, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	m, err := s.storage.GetRun(dbCtx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	counts, err := s.storage.GetBandCounts(dbCtx, id)
	if err != nil {
		return Run{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	run := fromModel(m)
	run.Bands = bandSummaries(counts)
	return run, nil
}

// ListRuns returns recent runs, newest first.
func (s *RemarkService) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListRuns(dbCtx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	out := make([]RunSummary, len(rows))
	for i, r := range rows {
		out[i] = RunSummary{
			ID:        r.ID,
			Source:    r.Source,
			Subject:   r.Subject,
			Lesson:    r.Lesson,
			CreatedAt: r.CreatedAt,
			Rows:      r.Rows,
			Fallbacks: r.Fallbacks,
		}
	}
	return out, nil
}

func (s *RemarkService) observeRun(source string, run Run, err error) {
	if s.metrics != nil {
		s.metrics.ObserveRun(source, run.Leftover, err)
	}
}

func scoreText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func summarizeRows(rows []Row) []BandSummary {
	counts := make([]models.BandCount, 0)
	idx := make(map[string]int)
	for _, r := range rows {
		i, ok := idx[r.Band]
		if !ok {
			i = len(counts)
			idx[r.Band] = i
			counts = append(counts, models.BandCount{Band: r.Band})
		}
		counts[i].Rows++
		if r.Fallback {
			counts[i].Fallbacks++
		}
	}
	return bandSummaries(counts)
}

// bandSummaries orders counts from the highest band down, unclassified last.
func bandSummaries(counts []models.BandCount) []BandSummary {
	out := make([]BandSummary, len(counts))
	for i, c := range counts {
		out[i] = BandSummary{Band: c.Band, Rows: c.Rows, Fallbacks: c.Fallbacks}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return bandRank(out[i].Band) > bandRank(out[j].Band)
	})
	return out
}

func bandRank(label string) int {
	if b, ok := remark.ParseBand(label); ok {
		return int(b)
	}
	return int(remark.Unclassified)
}

func toModel(r Run) models.Run {
	rows := make([]models.RunRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = models.RunRow(row)
	}
	return models.Run{
		ID:           r.ID,
		Subject:      r.Subject,
		Lesson:       r.Lesson,
		Fallback:     r.Fallback,
		Source:       r.Source,
		RawText:      r.RawText,
		Unclassified: r.Unclassified,
		Leftover:     r.Leftover,
		CreatedAt:    r.CreatedAt,
		Rows:         rows,
	}
}

func fromModel(m models.Run) Run {
	run := Run{
		ID:           m.ID,
		Source:       m.Source,
		Subject:      m.Subject,
		Lesson:       m.Lesson,
		Fallback:     m.Fallback,
		CreatedAt:    m.CreatedAt,
		RawText:      m.RawText,
		Unclassified: m.Unclassified,
		Leftover:     m.Leftover,
		Rows:         make([]Row, len(m.Rows)),
	}
	for i, row := range m.Rows {
		run.Rows[i] = Row(row)
		if row.Fallback {
			run.Fallbacks++
		}
	}
	return run
}
