package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/godilite/remark-server/internal/evidence"
	"github.com/godilite/remark-server/internal/generator"
	"github.com/godilite/remark-server/internal/service"
	"github.com/spf13/cobra"
)

// generatorFactory is swapped in tests.
var generatorFactory = func(c *cli, cmd *cobra.Command) (service.Generator, error) {
	if c.cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	return generator.NewGeminiGenerator(cmd.Context(), c.cfg.GeminiAPIKey,
		generator.WithModel(c.cfg.GeminiModel),
		generator.WithLogger(c.logger),
	)
}

func newAnnotateCmd(c *cli) *cobra.Command {
	var (
		flags        rosterFlags
		contextText  string
		evidencePath []string
		saveText     string
	)

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Generate remarks for the roster's score bands and fill the remark column",
		Example: `  remarkctl annotate -r lop4a.xlsx -s "Điểm" --subject "Khoa học" --lesson "Nước" \
    -e giaoan.docx -e anh1.png -o ketqua.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, scores, err := flags.read()
			if err != nil {
				return err
			}

			items, err := loadEvidence(cmd.Context(), evidencePath)
			if err != nil {
				return fmt.Errorf("load evidence: %w", err)
			}
			items = append([]evidence.Evidence{{Text: contextText}}, items...)

			gen, err := generatorFactory(c, cmd)
			if err != nil {
				return err
			}
			svc, closeDB, err := c.newService(gen)
			if err != nil {
				return err
			}
			defer closeDB()

			run, err := svc.Generate(cmd.Context(), service.GenerateRequest{
				Scores:   scores,
				Subject:  flags.subject,
				Lesson:   flags.lesson,
				Evidence: evidence.Merge(items...),
				Fallback: flags.fallback,
			})
			if err != nil {
				return err
			}

			if saveText != "" {
				if err := os.WriteFile(saveText, []byte(run.RawText), 0o644); err != nil {
					return err
				}
			}
			if err := flags.write(r, run.Remarks()); err != nil {
				return err
			}
			printSummary(cmd, run, flags.output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&contextText, "context", "", "Extra lesson context for the generator")
	cmd.Flags().StringArrayVarP(&evidencePath, "evidence", "e", nil, "Evidence file (.docx, .pdf, .png, .jpg); repeatable")
	cmd.Flags().StringVar(&saveText, "save-text", "", "Also write the generated remark text to this file")
	return cmd
}
