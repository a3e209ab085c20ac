package main

import (
	"fmt"
	"os"

	"github.com/godilite/remark-server/internal/remark"
	"github.com/spf13/cobra"
)

func newParseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <remarks-file>",
		Short: "Show the remark pools parsed from a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			pools := remark.Parse(string(data))
			out := cmd.OutOrStdout()
			if len(pools.Keys()) == 0 {
				fmt.Fprintln(out, "no band sections found")
				return nil
			}
			for _, key := range pools.Keys() {
				fmt.Fprintf(out, "%s %s %s (%d)\n", remark.HeaderMarker, remark.HeaderPhrase, key, pools.Len(key))
				for _, r := range pools.Remarks(key) {
					fmt.Fprintf(out, "  - %s\n", r)
				}
			}
			return nil
		},
	}
}
