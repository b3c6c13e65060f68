package main

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configFile string
	verbose    bool
	noColor    bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "statfile",
		Short: "Resolve tabular data for Stata, SAS and SPSS file formats",
		Long: `statfile loads Parquet, Arrow IPC or CSV input through Apache Arrow and
shows the column storage types, widths, formats and value labels each
statistical file format would receive.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default: ./statfile.yaml, then $HOME/.config/statfile/statfile.yaml)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log resolution decisions with a development logger")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newPlanCmd(flags))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
