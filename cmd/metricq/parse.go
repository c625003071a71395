// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"os"

	"github.com/korrel8r/metricq/pkg/query"
	"github.com/spf13/cobra"
)

var (
	parseCmd = &cobra.Command{
		Use:   "parse EXPRESSION",
		Short: "Parse a target expression and print its model: segments, functions and tags.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			m := newModel(&query.Target{Target: args[0], TextEditor: *textEditorFlag})
			newPrinter(os.Stdout).Print(m.View())
			if m.Error != nil {
				panic(m.Error)
			}
		},
	}
	textEditorFlag *bool
)

func init() {
	rootCmd.AddCommand(parseCmd)
	textEditorFlag = parseCmd.Flags().Bool("text-editor", false, "Treat the expression as free text, do not parse it.")
}
