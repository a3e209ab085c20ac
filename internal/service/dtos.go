package service

import (
	"time"

	"github.com/godilite/remark-server/internal/evidence"
)

const (
	SourceSupplied  = "supplied"
	SourceGenerated = "generated"
)

type AnnotateRequest struct {
	Scores      []any
	RemarksText string
	Fallback    string
	Subject     string
	Lesson      string
}

type GenerateRequest struct {
	Scores   []any
	Subject  string
	Lesson   string
	Evidence evidence.Evidence
	Fallback string
}

type Row struct {
	Index    int
	Score    string
	Band     string
	Remark   string
	Fallback bool
}

type BandSummary struct {
	Band      string
	Rows      int
	Fallbacks int
}

type Run struct {
	ID           string
	Source       string
	Subject      string
	Lesson       string
	Fallback     string
	CreatedAt    time.Time
	Rows         []Row
	Bands        []BandSummary
	Unclassified int
	Fallbacks    int
	Leftover     int
	RawText      string
}

// Remarks returns the remark column in roster order.
func (r Run) Remarks() []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Remark
	}
	return out
}

type RunSummary struct {
	ID        string
	Source    string
	Subject   string
	Lesson    string
	CreatedAt time.Time
	Rows      int
	Fallbacks int
}
