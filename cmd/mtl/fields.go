package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/benjaminschreck/go-mtl/pkg/providers"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)

func (a *app) newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List template fields, filters and operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			writeSection(out, "Punctuation", "Field", mtl.PunctuationHelp())
			writeSection(out, "Formatting", "Field", mtl.FormatHelp())

			all := append(providers.Default(), providers.NewExifTool(providers.ExifToolOptions{}))
			help := providers.Help(all...)
			names := make([]string, 0, len(help))
			for name := range help {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				writeSection(out, "Provider "+name, "Field", help[name])
			}

			writeSection(out, "Filters", "Filter", mtl.FilterHelp())
			writeSection(out, "Conditional operators", "Operator", mtl.OperatorHelp())
			return nil
		},
	}
}

func writeSection(w io.Writer, title, column string, entries []mtl.HelpEntry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, e.Description})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(column, "Description").
		Rows(rows...)
	fmt.Fprintln(w, sectionStyle.Render(title))
	fmt.Fprintln(w, t.String())
}
