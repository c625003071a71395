// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package build contains build information for the metricq module.
package build

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var version string

// Version of metricq.
var Version = strings.TrimSpace(version)
