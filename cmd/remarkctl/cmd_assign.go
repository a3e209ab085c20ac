package main

import (
	"os"

	"github.com/godilite/remark-server/internal/service"
	"github.com/spf13/cobra"
)

func newAssignCmd(c *cli) *cobra.Command {
	var (
		flags       rosterFlags
		remarksFile string
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Fill the remark column from a remark text file",
		Example: `  remarkctl assign -r lop4a.xlsx -s "Điểm" --remarks nhanxet.md -o ketqua.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(remarksFile)
			if err != nil {
				return err
			}
			r, scores, err := flags.read()
			if err != nil {
				return err
			}

			svc, closeDB, err := c.newService(nil)
			if err != nil {
				return err
			}
			defer closeDB()

			run, err := svc.Annotate(cmd.Context(), service.AnnotateRequest{
				Scores:      scores,
				RemarksText: string(text),
				Fallback:    flags.fallback,
				Subject:     flags.subject,
				Lesson:      flags.lesson,
			})
			if err != nil {
				return err
			}

			if err := flags.write(r, run.Remarks()); err != nil {
				return err
			}
			printSummary(cmd, run, flags.output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&remarksFile, "remarks", "", "Text file with \"### MỨC ĐIỂM <band>\" sections")
	_ = cmd.MarkFlagRequired("remarks")
	return cmd
}
