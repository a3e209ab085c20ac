package mocks

import (
	"context"
	"errors"

	"github.com/godilite/remark-server/internal/evidence"
)

// MockGenerator returns canned remark text.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, attachments []evidence.Attachment) (string, error)
	Calls        int
}

// Generate implements the Generator interface
func (m *MockGenerator) Generate(ctx context.Context, prompt string, attachments []evidence.Attachment) (string, error) {
	m.Calls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, attachments)
	}
	return "", errors.New("GenerateFunc not implemented")
}
