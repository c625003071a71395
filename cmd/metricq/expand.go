// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"os"

	"github.com/korrel8r/metricq/pkg/api"
	"github.com/korrel8r/metricq/pkg/graph"
	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand [FILE|URL|-]",
	Short: "Expand references between targets, sets targetFull on targets that have references.",
	Long: `Read a list of targets and replace each reference #ID with the expression of the target with refId ID.
Targets are read from stdin if there is no argument.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		targets := readTargets(fileArg(args))
		if cycles := graph.New(targets).Cycles(); len(cycles) > 0 {
			log.Info("Reference cycles are partly expanded", "cycles", cycles)
		}
		targets.Expand()
		newPrinter(os.Stdout).Print(api.TargetsRequest{Targets: targets})
	},
}

func init() { rootCmd.AddCommand(expandCmd) }
