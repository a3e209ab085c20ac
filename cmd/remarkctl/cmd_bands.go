package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/godilite/remark-server/internal/remark"
	"github.com/spf13/cobra"
)

func newBandsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bands [score...]",
		Short: "Print the band of each score, or the band table when no score is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if len(args) == 0 {
				fmt.Fprintln(w, "BAND\tHEADER")
				for _, b := range remark.Bands() {
					l, _ := b.Label()
					fmt.Fprintf(w, "%s\t%s %s %s\n", l, remark.HeaderMarker, remark.HeaderPhrase, l)
				}
				return nil
			}

			fmt.Fprintln(w, "SCORE\tBAND")
			for _, a := range args {
				fmt.Fprintf(w, "%s\t%s\n", a, remark.Classify(a))
			}
			return nil
		},
	}
}
