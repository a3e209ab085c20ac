package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/godilite/remark-server/internal/evidence"
	"github.com/godilite/remark-server/internal/prompt"
	"github.com/godilite/remark-server/internal/roster"
	"github.com/godilite/remark-server/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRemarkColumn = "Nhận xét GV"
	defaultOutput       = "NhanXet_TheoDiem_TT27.xlsx"
)

// rosterFlags are shared by the commands that read and write a roster.
type rosterFlags struct {
	input        string
	sheet        string
	scoreColumn  string
	remarkColumn string
	output       string
	subject      string
	lesson       string
	fallback     string
}

func (f *rosterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "roster", "r", "", "Roster workbook (.xlsx)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().StringVarP(&f.scoreColumn, "score-column", "s", "", "Header of the score column")
	cmd.Flags().StringVar(&f.remarkColumn, "remark-column", defaultRemarkColumn, "Header of the remark column to write")
	cmd.Flags().StringVarP(&f.output, "out", "o", defaultOutput, "Output workbook")
	cmd.Flags().StringVar(&f.subject, "subject", prompt.DefaultSubject, "Subject name")
	cmd.Flags().StringVar(&f.lesson, "lesson", prompt.DefaultLesson, "Lesson or topic")
	cmd.Flags().StringVar(&f.fallback, "fallback", "", "Remark for rows without one (default from config)")
	_ = cmd.MarkFlagRequired("roster")
	_ = cmd.MarkFlagRequired("score-column")
}

func (f *rosterFlags) read() (*roster.Roster, []any, error) {
	file, err := os.Open(f.input)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var opts []roster.ReadOption
	if f.sheet != "" {
		opts = append(opts, roster.WithSheet(f.sheet))
	}
	r, err := roster.Read(file, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", f.input, err)
	}
	scores, err := r.Scores(f.scoreColumn)
	if err != nil {
		return nil, nil, err
	}
	return r, scores, nil
}

func (f *rosterFlags) write(r *roster.Roster, remarks []string) error {
	file, err := os.Create(f.output)
	if err != nil {
		return err
	}
	if err := roster.Write(file, r, f.remarkColumn, remarks); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", f.output, err)
	}
	return file.Close()
}

// loadEvidence reads and decodes the evidence files concurrently, keeping
// their order.
func loadEvidence(ctx context.Context, paths []string) ([]evidence.Evidence, error) {
	items := make([]evidence.Evidence, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			ev, err := evidence.Load(filepath.Base(p), data)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			items[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func printSummary(cmd *cobra.Command, run service.Run, output string) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BAND\tROWS\tFALLBACKS")
	for _, b := range run.Bands {
		fmt.Fprintf(w, "%s\t%d\t%d\n", b.Band, b.Rows, b.Fallbacks)
	}
	w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d rows, %d fallbacks, %d unclassified, %d unused remarks -> %s\n",
		run.ID, len(run.Rows), run.Fallbacks, run.Unclassified, run.Leftover, output)
}
