package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/remark-server/internal/evidence"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

var (
	ErrMissingAPIKey = errors.New("gemini API key is required")
	ErrEmptyResponse = errors.New("gemini returned no text")
)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiGenerator asks a Gemini model for remark text.
type GeminiGenerator struct {
	generate    generateFunc
	model       string
	temperature *float32
	logger      *zap.Logger
}

type Option func(*GeminiGenerator)

func WithModel(model string) Option {
	return func(g *GeminiGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

func WithTemperature(t float32) Option {
	return func(g *GeminiGenerator) {
		g.temperature = genai.Ptr(t)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(g *GeminiGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGeminiGenerator creates a generator backed by the Gemini API.
func NewGeminiGenerator(ctx context.Context, apiKey string, opts ...Option) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGenerator(client.Models.GenerateContent, opts...), nil
}

func newGenerator(fn generateFunc, opts ...Option) *GeminiGenerator {
	g := &GeminiGenerator{
		generate: fn,
		model:    DefaultModel,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("gemini")
	return g
}

// Model returns the model name requests are sent to.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate sends the prompt and any attachments as a single user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, attachments []evidence.Attachment) (string, error) {
	parts := make([]*genai.Part, 0, len(attachments)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, a := range attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var cfg *genai.GenerateContentConfig
	if g.temperature != nil {
		cfg = &genai.GenerateContentConfig{Temperature: g.temperature}
	}

	start := time.Now()
	resp, err := g.generate(ctx, g.model, contents, cfg)
	if err != nil {
		g.logger.Warn("generate content failed",
			zap.String("model", g.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := ""
	if resp != nil {
		text = resp.Text()
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	g.logger.Debug("generated remarks",
		zap.String("model", g.model),
		zap.Int("attachments", len(attachments)),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}
