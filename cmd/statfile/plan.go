package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arloliu/statfile"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/table"
)

func newPlanCmd(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <input>",
		Short: "Show how an input file resolves for a target format",
		Long: `Load a Parquet, Arrow IPC or CSV file, resolve it for the target extension
and print the file metadata, the per-column storage plan and the value-label
sets. Nothing is written.

With --to the resolved table is retargeted to a second extension, the way
an existing table is re-exported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, global, args[0])
		},
	}

	cmd.Flags().StringP("ext", "e", "dta", "target extension: "+extList())
	cmd.Flags().String("to", "", "retarget the resolved table to this extension")
	cmd.Flags().Bool("auto-labels", true, "derive value labels from dictionary-encoded columns")
	cmd.Flags().Bool("update-width", true, "recompute string and double widths when retargeting")

	return cmd
}

func runPlan(cmd *cobra.Command, global *globalFlags, input string) error {
	cfg, err := loadConfig(cmd, global.configFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(global.verbose, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := loadTable(cmd.Context(), input, memory.NewGoAllocator())
	if err != nil {
		return err
	}
	defer data.Release()

	tbl, err := statfile.Build(data, format.Extension(cfg.Ext),
		table.WithAutoLabels(cfg.AutoLabels),
		table.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if cfg.To != "" {
		tbl, err = table.Rebuild(tbl, format.Extension(cfg.To),
			table.WithUpdateWidth(cfg.UpdateWidth),
			table.WithLogger(logger),
		)
		if err != nil {
			return err
		}
	}

	renderPlan(cmd.OutOrStdout(), tbl, cfg.NoColor)

	return nil
}

func renderPlan(w io.Writer, tbl *table.Table, noColor bool) {
	heading := color.New(color.Bold, color.FgGreen)
	if noColor {
		heading.DisableColor()
	}

	file := tbl.FileMeta()
	heading.Fprintln(w, "File")
	fmt.Fprintf(w, "  extension:  %s\n", file.Ext)
	fmt.Fprintf(w, "  version:    %d\n", file.Version)
	fmt.Fprintf(w, "  rows:       %d\n", file.RowCount)
	fmt.Fprintf(w, "  columns:    %d\n", file.ColumnCount)
	if file.FileLabel != "" {
		fmt.Fprintf(w, "  label:      %s\n", file.FileLabel)
	}
	if file.TableName != "" {
		fmt.Fprintf(w, "  table name: %s\n", file.TableName)
	}
	for _, note := range file.Notes {
		fmt.Fprintf(w, "  note:       %s\n", note)
	}
	fmt.Fprintln(w)

	heading.Fprintln(w, "Columns")
	cols := newGrid(w, noColor, "NAME", "TYPE", "WIDTH", "DISPLAY", "FORMAT", "VALUE LABEL", "MISSING", "LABEL")
	for i, name := range tbl.ColumnNames() {
		cm := tbl.ColumnMeta(i)
		cols.addRow(
			name,
			cm.Type.String(),
			strconv.Itoa(cm.StorageWidth),
			strconv.Itoa(cm.DisplayWidth),
			cm.Format,
			cm.ValueLabel,
			strconv.FormatBool(tbl.HasMissing(i)),
			cm.Label,
		)
	}
	cols.render()

	reg := tbl.Labels()
	if reg.Len() == 0 {
		return
	}
	fmt.Fprintln(w)
	heading.Fprintln(w, "Value labels")
	sets := newGrid(w, noColor, "NAME", "ENTRIES", "FIRST")
	for _, name := range reg.Names() {
		dict, _ := reg.Lookup(name)
		first := ""
		if codes := dict.Codes(); len(codes) > 0 {
			label, _ := dict.Get(codes[0])
			first = codes[0].String() + " = " + label
		}
		sets.addRow(name, strconv.Itoa(dict.Len()), first)
	}
	sets.render()
}

func extList() string {
	s := ""
	for i, ext := range format.Extensions() {
		if i > 0 {
			s += ", "
		}
		s += string(ext)
	}

	return s
}
