package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/godilite/remark-server/internal/evidence"
	"github.com/godilite/remark-server/internal/roster"
	"github.com/godilite/remark-server/internal/service"
	"github.com/godilite/remark-server/internal/service/mocks"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const remarksText = `### MỨC ĐIỂM 9-10
- nắm vững kiến thức, vận dụng tốt.
- tích cực phát biểu xây dựng bài.
### MỨC ĐIỂM 7
* hoàn thành bài, cần cẩn thận hơn.
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeRoster(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"STT", "Họ tên", "Điểm"},
		{1, "An", 9.5},
		{2, "Bình", 7},
		{3, "Chi", 10},
		{4, "Dũng", 9},
		{5, "Hà", "vắng"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(dir, "lop.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func readRemarks(t *testing.T, path, column string) []string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	r, err := roster.Read(file, roster.WithSheet(roster.OutputSheet))
	require.NoError(t, err)
	idx, err := r.ColumnIndex(column)
	require.NoError(t, err)
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[idx]
	}
	return out
}

func TestBandsCmd(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "bands", "9.5", "8", "4.9", "abc")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "9-10")
	assert.Contains(t, lines[3], "<5")
	assert.Contains(t, lines[4], "unclassified")

	out, err = execute(t, "bands")
	require.NoError(t, err)
	assert.Contains(t, out, "### MỨC ĐIỂM <5")
}

func TestParseCmd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "remarks.md")
	require.NoError(t, os.WriteFile(path, []byte(remarksText), 0o600))

	out, err := execute(t, "parse", path)

	require.NoError(t, err)
	assert.Contains(t, out, "### MỨC ĐIỂM 9-10 (2)")
	assert.Contains(t, out, "  - Nắm vững kiến thức, vận dụng tốt.")
	assert.Contains(t, out, "### MỨC ĐIỂM 7 (1)")
}

func TestAssignCmd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	rosterPath := writeRoster(t, dir)
	remarksPath := filepath.Join(dir, "remarks.md")
	require.NoError(t, os.WriteFile(remarksPath, []byte(remarksText), 0o600))
	outPath := filepath.Join(dir, "out.xlsx")

	out, err := execute(t, "assign",
		"-r", rosterPath, "-s", "Điểm", "--remarks", remarksPath, "-o", outPath,
		"--db", filepath.Join(dir, "runs.db"))

	require.NoError(t, err)
	assert.Contains(t, out, "5 rows, 2 fallbacks, 1 unclassified")
	assert.Equal(t, []string{
		"Nắm vững kiến thức, vận dụng tốt.",
		"Hoàn thành bài, cần cẩn thận hơn.",
		"Tích cực phát biểu xây dựng bài.",
		"Hoàn thành nhiệm vụ học tập theo yêu cầu.",
		"Hoàn thành nhiệm vụ học tập theo yêu cầu.",
	}, readRemarks(t, outPath, defaultRemarkColumn))
}

func TestAssignCmdMissingColumn(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	rosterPath := writeRoster(t, dir)
	remarksPath := filepath.Join(dir, "remarks.md")
	require.NoError(t, os.WriteFile(remarksPath, []byte(remarksText), 0o600))

	_, err := execute(t, "assign", "-r", rosterPath, "-s", "Score", "--remarks", remarksPath)

	assert.ErrorIs(t, err, roster.ErrColumnNotFound)
}

func TestAnnotateCmd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	rosterPath := writeRoster(t, dir)
	notes := filepath.Join(dir, "anh.png")
	require.NoError(t, os.WriteFile(notes, []byte("png-bytes"), 0o600))
	outPath := filepath.Join(dir, "out.xlsx")
	textPath := filepath.Join(dir, "generated.md")

	gen := &mocks.MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string, attachments []evidence.Attachment) (string, error) {
			assert.Contains(t, prompt, "- 3 nhận xét cho mức điểm 9-10")
			assert.Contains(t, prompt, "Thí nghiệm bay hơi")
			require.Len(t, attachments, 1)
			assert.Equal(t, "image/png", attachments[0].MIMEType)
			return remarksText, nil
		},
	}
	orig := generatorFactory
	generatorFactory = func(c *cli, cmd *cobra.Command) (service.Generator, error) { return gen, nil }
	t.Cleanup(func() { generatorFactory = orig })

	out, err := execute(t, "annotate",
		"-r", rosterPath, "-s", "Điểm", "-o", outPath, "--save-text", textPath,
		"--context", "Thí nghiệm bay hơi", "-e", notes, "--remark-column", "Nhận xét")

	require.NoError(t, err)
	assert.Equal(t, 1, gen.Calls)
	assert.Contains(t, out, "9-10")

	saved, err := os.ReadFile(textPath)
	require.NoError(t, err)
	assert.Equal(t, remarksText, string(saved))

	remarks := readRemarks(t, outPath, "Nhận xét")
	assert.Equal(t, "Nắm vững kiến thức, vận dụng tốt.", remarks[0])
	assert.Equal(t, "Hoàn thành bài, cần cẩn thận hơn.", remarks[1])
}

func TestAnnotateCmdUnsupportedEvidence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	rosterPath := writeRoster(t, dir)
	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o600))

	_, err := execute(t, "annotate", "-r", rosterPath, "-s", "Điểm", "-e", bad)

	assert.ErrorIs(t, err, evidence.ErrUnsupported)
}
