// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/korrel8r/metricq/pkg/catalog"
	"github.com/spf13/cobra"
)

var (
	functionsCmd = &cobra.Command{
		Use:   "functions [NAME]",
		Short: "List functions in the catalog, or print the definition of function NAME.",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cat := newCatalog(configs())
			if len(args) == 1 {
				d, ok := cat.Get(args[0])
				if !ok {
					panic(fmt.Errorf("function not found: %q", args[0]))
				}
				newPrinter(os.Stdout).Print(d)
				return
			}
			var defs []*catalog.FuncDef
			for _, d := range cat.Defs() {
				if *categoryFlag == "" || strings.EqualFold(*categoryFlag, d.Category) {
					defs = append(defs, d)
				}
			}
			if *tableFlag {
				w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
				defer func() { _ = w.Flush() }()
				fmt.Fprintln(w, "NAME\tCATEGORY\tPARAMETERS")
				for _, d := range defs {
					var params []string
					for _, p := range d.Params {
						params = append(params, p.Name)
					}
					fmt.Fprintf(w, "%v\t%v\t%v\n", d.Name, d.Category, strings.Join(params, ", "))
				}
				return
			}
			newPrinter(os.Stdout).Print(defs)
		},
	}
	categoryFlag *string
	tableFlag    *bool
)

func init() {
	rootCmd.AddCommand(functionsCmd)
	categoryFlag = functionsCmd.Flags().String("category", "", "Only list functions in this category")
	tableFlag = functionsCmd.Flags().Bool("table", false, "Print a table of names, categories and parameters")
}
