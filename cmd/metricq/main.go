// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// Command metricq parses, edits and renders Graphite query targets.
package main

import (
	"fmt"
	"os"

	"github.com/korrel8r/metricq/internal/pkg/must"
)

func main() {
	// Code in this package panics with an error to exit.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, r)
			if *panicFlag {
				panic(r)
			}
			os.Exit(1)
		}
		os.Exit(0)
	}()
	must.Must(rootCmd.Execute())
}
