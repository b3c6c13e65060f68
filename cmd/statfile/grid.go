package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// grid renders left-aligned columns with a bold header and a rule.
type grid struct {
	w       io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

func newGrid(w io.Writer, noColor bool, headers ...string) *grid {
	return &grid{w: w, headers: headers, noColor: noColor}
}

func (g *grid) addRow(cells ...string) {
	g.rows = append(g.rows, cells)
}

func (g *grid) render() {
	widths := make([]int, len(g.headers))
	for i, h := range g.headers {
		widths[i] = len(h)
	}
	for _, row := range g.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if g.noColor {
		bold.DisableColor()
		gray.DisableColor()
	}

	fmt.Fprint(g.w, "  ")
	for i, h := range g.headers {
		bold.Fprint(g.w, pad(h, widths[i], i == len(g.headers)-1))
	}
	fmt.Fprintln(g.w)

	fmt.Fprint(g.w, "  ")
	for i, width := range widths {
		gray.Fprint(g.w, pad(strings.Repeat("-", width), width, i == len(widths)-1))
	}
	fmt.Fprintln(g.w)

	for _, row := range g.rows {
		fmt.Fprint(g.w, "  ")
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprint(g.w, pad(cell, widths[i], i == len(widths)-1))
		}
		fmt.Fprintln(g.w)
	}
}

// pad right-pads s to width plus a two-space gutter; the last cell is not padded.
func pad(s string, width int, last bool) string {
	if last {
		return s
	}

	return s + strings.Repeat(" ", width-len(s)+2)
}
