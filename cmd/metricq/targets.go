// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/korrel8r/metricq/internal/pkg/must"
	"github.com/korrel8r/metricq/internal/pkg/source"
	"github.com/korrel8r/metricq/pkg/api"
	"github.com/korrel8r/metricq/pkg/query"
	"sigs.k8s.io/yaml"
)

// readTargets reads targets from a file, URL or "-" for stdin.
// The data is YAML or JSON, either a list of targets or an object with a "targets" field.
func readTargets(fileOrURL string) query.Targets {
	var data []byte
	if fileOrURL == "-" {
		data = must.Must1(io.ReadAll(os.Stdin))
	} else {
		data = must.Must1(source.Read(fileOrURL))
	}
	var list query.Targets
	if err := yaml.UnmarshalStrict(data, &list); err == nil {
		return list
	}
	var req api.TargetsRequest
	if err := yaml.UnmarshalStrict(data, &req); err != nil {
		panic(fmt.Errorf("%v: invalid targets: %w", fileOrURL, err))
	}
	return req.Targets
}

func fileArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}
