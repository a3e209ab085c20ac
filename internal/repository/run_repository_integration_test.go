package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/godilite/remark-server/internal/repository"
	"github.com/godilite/remark-server/internal/repository/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(repository.Schema)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(id string, at time.Time) models.Run {
	return models.Run{
		ID:           id,
		Subject:      "Khoa học",
		Lesson:       "Sự nảy mầm",
		Fallback:     "Hoàn thành nhiệm vụ học tập theo yêu cầu.",
		Source:       "generated",
		RawText:      "### MỨC ĐIỂM 9-10\n- Tốt.",
		Unclassified: 1,
		Leftover:     2,
		CreatedAt:    at,
		Rows: []models.RunRow{
			{Index: 0, Score: "9.5", Band: "9-10", Remark: "Tốt."},
			{Index: 1, Score: "10", Band: "9-10", Remark: "Hoàn thành nhiệm vụ học tập theo yêu cầu.", Fallback: true},
			{Index: 2, Score: "abc", Band: "unclassified", Remark: "Hoàn thành nhiệm vụ học tập theo yêu cầu.", Fallback: true},
			{Index: 3, Score: "4", Band: "<5", Remark: "Cần cố gắng.", Fallback: false},
		},
	}
}

func TestRunRepository_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewRunRepository(db)

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveRun(ctx, sampleRun("run-a", base)))
	require.NoError(t, repo.SaveRun(ctx, sampleRun("run-b", base.Add(1500*time.Millisecond))))

	t.Run("GetRun", func(t *testing.T) {
		run, err := repo.GetRun(ctx, "run-a")
		require.NoError(t, err)

		require.Equal(t, "Sự nảy mầm", run.Lesson)
		require.Equal(t, 1, run.Unclassified)
		require.Equal(t, 2, run.Leftover)
		require.True(t, run.CreatedAt.Equal(base))
		require.Len(t, run.Rows, 4)
		require.Equal(t, "Tốt.", run.Rows[0].Remark)
		require.True(t, run.Rows[1].Fallback)
		require.Equal(t, "<5", run.Rows[3].Band)
	})

	t.Run("GetRun - not found", func(t *testing.T) {
		_, err := repo.GetRun(ctx, "missing")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("GetBandCounts", func(t *testing.T) {
		counts, err := repo.GetBandCounts(ctx, "run-a")
		require.NoError(t, err)

		byBand := make(map[string]models.BandCount)
		for _, c := range counts {
			byBand[c.Band] = c
		}
		require.Len(t, byBand, 3)
		require.Equal(t, 2, byBand["9-10"].Rows)
		require.Equal(t, 1, byBand["9-10"].Fallbacks)
		require.Equal(t, 1, byBand["unclassified"].Fallbacks)
		require.Equal(t, 0, byBand["<5"].Fallbacks)
	})

	t.Run("ListRuns - newest first", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, 10)
		require.NoError(t, err)

		require.Len(t, runs, 2)
		require.Equal(t, "run-b", runs[0].ID)
		require.Equal(t, 4, runs[0].Rows)
		require.Equal(t, 2, runs[0].Fallbacks)
	})

	t.Run("ListRuns - limit", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, 1)
		require.NoError(t, err)
		require.Len(t, runs, 1)
	})

	t.Run("SaveRun - duplicate id rolls back", func(t *testing.T) {
		dup := sampleRun("run-a", base)
		dup.Rows = nil
		require.Error(t, repo.SaveRun(ctx, dup))

		run, err := repo.GetRun(ctx, "run-a")
		require.NoError(t, err)
		require.Len(t, run.Rows, 4)
	})
}
