// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"fmt"
	"os"

	"github.com/korrel8r/metricq/internal/pkg/enumflag"
	"github.com/korrel8r/metricq/internal/pkg/must"
	"github.com/korrel8r/metricq/pkg/graph"
	"github.com/spf13/cobra"
)

var (
	graphCmd = &cobra.Command{
		Use:   "graph [FILE|URL|-]",
		Short: "Print the reference graph of a list of targets.",
		Long: `Print the graph of references between targets.
--format=dot prints GraphViz DOT, --format=text prints each target with the targets it refers to
followed by any reference cycles.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			g := graph.New(readTargets(fileArg(args)))
			switch graphFormatFlag.String() {
			case "text":
				fmt.Print(g.String())
				for _, c := range g.Cycles() {
					fmt.Printf("cycle: %v\n", c)
				}
			default:
				must.Must1(os.Stdout.Write(must.Must1(g.DOT())))
				fmt.Println()
			}
		},
	}
	graphFormatFlag = enumflag.New("dot", "dot", "text")
)

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Var(graphFormatFlag, "format", graphFormatFlag.DocString("Graph format"))
}
