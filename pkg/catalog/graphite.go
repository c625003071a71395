// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package catalog

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/korrel8r/metricq/pkg/ast"
	"sigs.k8s.io/yaml"
)

// graphiteFunc is a function definition as served by the Graphite /functions endpoint.
type graphiteFunc struct {
	Name        string          `json:"name"`
	Group       string          `json:"group"`
	Description string          `json:"description"`
	Params      []graphiteParam `json:"params"`
}

type graphiteParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Multiple    bool   `json:"multiple"`
	Default     any    `json:"default"`
	Options     []any  `json:"options"`
	Suggestions []any  `json:"suggestions"`
}

var graphiteTypes = map[string]string{
	"boolean":       TypeBoolean,
	"integer":       TypeInt,
	"float":         TypeFloat,
	"node":          TypeNode,
	"nodeOrTag":     TypeNodeOrTag,
	"intOrInterval": TypeIntOrInterval,
	"seriesList":    TypeValueOrSeries,
	"seriesLists":   TypeValueOrSeries,
	"intOrInf":      TypeIntOrInfinity,
}

// Graphite serializes infinite defaults as a bare Infinity, which is not valid JSON.
var infinityDefault = regexp.MustCompile(`("default"\s*:\s*)(-?)Infinity`)

func fixInfinity(data []byte) []byte { return infinityDefault.ReplaceAll(data, []byte(`$1"${2}inf"`)) }

func decodeGraphite(data []byte) (*Catalog, error) {
	var raw map[string]graphiteFunc
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("graphite function list: %w", err)
	}
	var defs []*FuncDef
	for name, g := range raw {
		if g.Group == "Graph" { // Rendering options, not series functions.
			continue
		}
		if g.Name == "" {
			g.Name = name
		}
		defs = append(defs, fromGraphite(g))
	}
	return New(defs...), nil
}

func fromGraphite(g graphiteFunc) *FuncDef {
	d := &FuncDef{Name: g.Name, Category: g.Group, Description: g.Description}
	params := g.Params
	// The leading series list is the input series, rendered separately.
	// Functions that take several series lists keep the parameter for the extra lists.
	if len(params) > 0 && (params[0].Type == "seriesList" || params[0].Type == "seriesLists") {
		if params[0].Multiple {
			params[0].Required = false
		} else {
			params = params[1:]
		}
	}
	for _, p := range params {
		pd := ParamDef{Name: p.Name, Type: TypeString, Optional: !p.Required, Multiple: p.Multiple}
		if t, ok := graphiteTypes[p.Type]; ok {
			pd.Type = t
		}
		options := p.Options
		if len(options) == 0 {
			options = p.Suggestions
		}
		for _, o := range options {
			pd.Options = append(pd.Options, formatValue(o))
		}
		d.Params = append(d.Params, pd)
		switch {
		case p.Default != nil:
			d.DefaultParams = append(d.DefaultParams, formatValue(p.Default))
		case len(p.Suggestions) > 0:
			d.DefaultParams = append(d.DefaultParams, formatValue(p.Suggestions[0]))
		default:
			d.DefaultParams = append(d.DefaultParams, "")
		}
	}
	return d
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return ast.FormatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
