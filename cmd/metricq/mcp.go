// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"context"

	"github.com/korrel8r/metricq/internal/pkg/must"
	"github.com/korrel8r/metricq/pkg/mcp"
	"github.com/korrel8r/metricq/pkg/parser"
	"github.com/korrel8r/metricq/pkg/query"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server on stdin and stdout.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c := configs()
		s := mcp.NewServer(newCatalog(c), parser.Parser{}, query.NewInterpolator(variables(c)))
		log.V(1).Info("MCP server on stdio")
		must.Must(s.ServeStdio(context.Background()))
	},
}

func init() { rootCmd.AddCommand(mcpCmd) }
