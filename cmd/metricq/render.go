// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"fmt"

	"github.com/korrel8r/metricq/pkg/query"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render EXPRESSION...",
	Short: "Print each target expression in canonical form, one per line.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, expr := range args {
			m := newModel(&query.Target{Target: expr})
			if m.Error != nil {
				panic(fmt.Errorf("%v: %w", expr, m.Error))
			}
			fmt.Println(m.Render())
		}
	},
}

func init() { rootCmd.AddCommand(renderCmd) }
