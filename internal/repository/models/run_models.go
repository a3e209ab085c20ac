package models

import "time"

type Run struct {
	ID           string
	Subject      string
	Lesson       string
	Fallback     string
	Source       string
	RawText      string
	Unclassified int
	Leftover     int
	CreatedAt    time.Time
	Rows         []RunRow
}

type RunRow struct {
	Index    int
	Score    string
	Band     string
	Remark   string
	Fallback bool
}

type BandCount struct {
	Band      string
	Rows      int
	Fallbacks int
}

type RunSummary struct {
	ID        string
	Subject   string
	Lesson    string
	Source    string
	CreatedAt time.Time
	Rows      int
	Fallbacks int
}
