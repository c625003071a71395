// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"maps"
	"os"

	"github.com/korrel8r/metricq/internal/pkg/enumflag"
	"github.com/korrel8r/metricq/internal/pkg/logging"
	"github.com/korrel8r/metricq/internal/pkg/must"
	"github.com/korrel8r/metricq/pkg/build"
	"github.com/korrel8r/metricq/pkg/catalog"
	"github.com/korrel8r/metricq/pkg/config"
	"github.com/korrel8r/metricq/pkg/parser"
	"github.com/korrel8r/metricq/pkg/query"
	"github.com/spf13/cobra"
)

const configEnv = "METRICQ_CONFIG"

var (
	rootCmd = &cobra.Command{
		Use:     "metricq",
		Short:   "Parse, edit and render Graphite query targets",
		Version: build.Version,
	}
	log = logging.Log()

	// Global Flags
	outputFlag   = enumflag.New("yaml", "yaml", "json", "json-pretty", "template")
	templateFlag *string
	verboseFlag  *int
	configFlag   *string
	varsFlag     *map[string]string
	panicFlag    *bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.VarP(outputFlag, "output", "o", outputFlag.DocString("Output format"))
	templateFlag = pf.String("template", "", "Go template for --output=template, with sprig functions")
	verboseFlag = pf.IntP("verbose", "v", 0, "Verbosity for logging")
	configFlag = pf.StringP("config", "c", os.Getenv(configEnv), "Configuration file or URL")
	varsFlag = pf.StringToString("var", nil, "Template variable name=value, overrides configured variables")
	panicFlag = pf.Bool("panic", false, "panic on error instead of exit code 1")
	cobra.OnInitialize(func() { logging.Init(*verboseFlag) }) // After flags are parsed
}

// configs loads the configuration, if there is one.
func configs() config.Configs {
	if *configFlag == "" {
		return config.Configs{}
	}
	return must.Must1(config.Load(*configFlag))
}

// newCatalog returns the built-in catalog merged with configured catalogs.
// Catalogs that fail to load are logged and skipped.
func newCatalog(c config.Configs) *catalog.Catalog {
	cat, err := c.Catalog()
	if err != nil {
		log.Error(err, "Function catalog incomplete")
	}
	return cat
}

func variables(c config.Configs) map[string]string {
	vars := c.Variables()
	maps.Copy(vars, *varsFlag)
	return vars
}

// newModel parses a target using the configured catalog and variables.
func newModel(target *query.Target) *query.Model {
	c := configs()
	m := query.NewModel(target, newCatalog(c), parser.Parser{})
	m.Interpolate = query.NewInterpolator(variables(c))
	m.ParseTarget()
	return m
}
