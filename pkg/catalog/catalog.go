// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package catalog holds Graphite function definitions.
//
// A [Catalog] is immutable once created and safe to share between goroutines.
// Definitions are opaque metadata to the query engine: parameter names, types,
// arity and default parameters. Nothing in a catalog describes what a function computes.
package catalog

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/korrel8r/metricq/internal/pkg/logging"
	"github.com/korrel8r/metricq/internal/pkg/source"
	"sigs.k8s.io/yaml"
)

var log = logging.Log()

// Parameter types understood by the renderer.
const (
	TypeString        = "string"
	TypeInt           = "int"
	TypeFloat         = "float"
	TypeBoolean       = "boolean"
	TypeNode          = "node"
	TypeNodeOrTag     = "node_or_tag"
	TypeIntOrInterval = "int_or_interval"
	TypeIntOrInfinity = "int_or_infinity"
	TypeValueOrSeries = "value_or_series"
	TypeSelect        = "select"
)

var paramTypes = []string{"", TypeString, TypeInt, TypeFloat, TypeBoolean, TypeNode, TypeNodeOrTag,
	TypeIntOrInterval, TypeIntOrInfinity, TypeValueOrSeries, TypeSelect}

// ParamDef declares one function parameter.
type ParamDef struct {
	Name     string   `json:"name"`
	Type     string   `json:"type,omitempty"`
	Optional bool     `json:"optional,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// FuncDef declares a function.
type FuncDef struct {
	Name          string     `json:"name"`
	Category      string     `json:"category,omitempty"`
	Description   string     `json:"description,omitempty"`
	Params        []ParamDef `json:"params,omitempty"`
	DefaultParams []string   `json:"defaultParams,omitempty"`
	Version       string     `json:"version,omitempty"`
	// AliasFamily overrides the default alias classification, see [FuncDef.Alias].
	AliasFamily *bool `json:"alias,omitempty"`
	// Unknown is true for definitions made up for names missing from the catalog.
	Unknown bool `json:"unknown,omitempty"`
}

// Alias is true for functions that name series rather than transform them.
// Alias functions are always applied last.
func (d *FuncDef) Alias() bool {
	if d.AliasFamily != nil {
		return *d.AliasFamily
	}
	return strings.HasPrefix(d.Name, "alias")
}

// LastParam returns the last declared parameter or nil.
func (d *FuncDef) LastParam() *ParamDef {
	if len(d.Params) == 0 {
		return nil
	}
	return &d.Params[len(d.Params)-1]
}

// Param returns the declaration for parameter index.
// Indices past the end of a multiple last parameter return the last parameter.
// Returns nil if there is no such parameter.
func (d *FuncDef) Param(index int) *ParamDef {
	switch {
	case index < 0:
		return nil
	case index < len(d.Params):
		return &d.Params[index]
	case d.Variadic():
		return d.LastParam()
	}
	return nil
}

// Variadic is true if the last parameter accepts multiple values.
func (d *FuncDef) Variadic() bool {
	last := d.LastParam()
	return last != nil && last.Multiple
}

// UnknownDef returns a permissive definition for a function name missing from the catalog.
func UnknownDef(name string) *FuncDef {
	return &FuncDef{
		Name:          name,
		Params:        []ParamDef{{Name: "", Type: "", Multiple: true}},
		DefaultParams: []string{""},
		Unknown:       true,
	}
}

// Catalog is an immutable set of function definitions keyed by name.
type Catalog struct {
	defs map[string]*FuncDef
}

// New creates a catalog, later definitions replace earlier ones with the same name.
func New(defs ...*FuncDef) *Catalog {
	c := &Catalog{defs: make(map[string]*FuncDef, len(defs))}
	for _, d := range defs {
		c.defs[d.Name] = d
	}
	return c
}

// Get returns the definition for name, if present.
func (c *Catalog) Get(name string) (*FuncDef, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// Lookup returns the definition for name, or [UnknownDef] if it is missing.
// The returned definition must not be modified.
func (c *Catalog) Lookup(name string) *FuncDef {
	if d, ok := c.defs[name]; ok {
		return d
	}
	return UnknownDef(name)
}

// Names returns sorted function names.
func (c *Catalog) Names() []string { return slices.Sorted(maps.Keys(c.defs)) }

// Defs returns definitions sorted by name.
func (c *Catalog) Defs() []*FuncDef {
	defs := make([]*FuncDef, 0, len(c.defs))
	for _, name := range c.Names() {
		defs = append(defs, c.defs[name])
	}
	return defs
}

// Len is the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }

// Merge returns a new catalog containing c and others.
// Definitions in later catalogs replace earlier ones.
func (c *Catalog) Merge(others ...*Catalog) *Catalog {
	merged := New(c.Defs()...)
	for _, o := range others {
		maps.Copy(merged.defs, o.defs)
	}
	return merged
}

// Validate returns an error listing every malformed definition.
func (c *Catalog) Validate() error {
	var errs *multierror.Error
	for _, d := range c.Defs() {
		if d.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("function has no name"))
			continue
		}
		for i, p := range d.Params {
			if !slices.Contains(paramTypes, p.Type) {
				errs = multierror.Append(errs, fmt.Errorf("function %v: parameter %q has unknown type %q", d.Name, p.Name, p.Type))
			}
			if p.Multiple && i != len(d.Params)-1 {
				errs = multierror.Append(errs, fmt.Errorf("function %v: only the last parameter can be multiple, not %q", d.Name, p.Name))
			}
		}
		if len(d.DefaultParams) > len(d.Params) && !d.Variadic() {
			errs = multierror.Append(errs, fmt.Errorf("function %v: %v default parameters for %v parameters", d.Name, len(d.DefaultParams), len(d.Params)))
		}
	}
	return errs.ErrorOrNil()
}

// File is the YAML/JSON catalog file format.
type File struct {
	Functions []*FuncDef `json:"functions"`
}

//go:embed functions.yaml
var builtinYAML []byte

// Builtin returns the catalog of common Graphite functions compiled into the program.
var Builtin = sync.OnceValue(func() *Catalog {
	c, err := Decode(builtinYAML)
	if err != nil {
		panic(fmt.Errorf("builtin function catalog: %w", err))
	}
	return c
})

// Decode a catalog file, either the YAML [File] format or a Graphite /functions JSON document.
func Decode(data []byte) (*Catalog, error) {
	data = fixInfinity(data)
	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["functions"].([]any); ok {
		var f File
		if err := yaml.UnmarshalStrict(data, &f); err != nil {
			return nil, err
		}
		return New(f.Functions...), nil
	}
	return decodeGraphite(data)
}

// Load a catalog from a file or URL, see [Decode].
func Load(fileOrURL string) (*Catalog, error) {
	b, err := source.Read(fileOrURL)
	if err != nil {
		return nil, err
	}
	c, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", fileOrURL, err)
	}
	log.V(1).Info("Loaded function catalog", "source", fileOrURL, "functions", c.Len())
	return c, nil
}
