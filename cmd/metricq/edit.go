// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/korrel8r/metricq/internal/pkg/must"
	"github.com/korrel8r/metricq/pkg/api"
	"github.com/korrel8r/metricq/pkg/editor"
	"github.com/korrel8r/metricq/pkg/parser"
	"github.com/korrel8r/metricq/pkg/query"
	"github.com/spf13/cobra"
)

var (
	editCmd = &cobra.Command{
		Use:   "edit [FILE|URL|-] --ref ID --op JSON...",
		Short: "Apply editor operations to a target and print the updated targets and model.",
		Long: fmt.Sprintf(`Read a list of targets, apply operations to the target with --ref, and expand references.
Each --op is a JSON object with an "op" field, one of: %v
Failed operations are reported, the remaining operations are applied.`, editor.OpTypes),
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var ops []editor.Op
			for _, s := range *opsFlag {
				ops = append(ops, must.Must1(editor.ParseOp(s)))
			}
			targets := readTargets(fileArg(args))
			c := configs()
			e := must.Must1(editor.New(targets, *refFlag, newCatalog(c), parser.Parser{}, query.NewInterpolator(variables(c))))
			err := e.Apply(ops...)
			resp := api.EditResponse{Targets: e.Targets, Model: e.Model.View()}
			var merr *multierror.Error
			if errors.As(err, &merr) {
				for _, err := range merr.Errors {
					resp.Errors = append(resp.Errors, err.Error())
				}
			}
			newPrinter(os.Stdout).Print(resp)
			must.Must(err)
		},
	}
	refFlag *string
	opsFlag *[]string
)

func init() {
	rootCmd.AddCommand(editCmd)
	refFlag = editCmd.Flags().String("ref", "A", "refId of the target to edit")
	opsFlag = editCmd.Flags().StringArray("op", nil, "Operation as JSON, may be repeated")
}
