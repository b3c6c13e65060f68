package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/arloliu/statfile/format"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "statfile version: %s\n", Version)
			fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprint(out, "Formats:")
			for _, ext := range format.Extensions() {
				fmt.Fprintf(out, " %s", ext)
			}
			fmt.Fprintln(out)
		},
	}
}
