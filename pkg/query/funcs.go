// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package query

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/korrel8r/metricq/pkg/ast"
	"github.com/korrel8r/metricq/pkg/catalog"
)

// Param is a function parameter, a string or a number.
// Numbers keep their canonical decimal text.
type Param struct {
	Value  string
	Number bool
}

func StringParam(s string) Param  { return Param{Value: s} }
func NumberParam(v float64) Param { return Param{Value: ast.FormatNumber(v), Number: true} }

func (p Param) String() string { return p.Value }

// MarshalJSON writes numbers as JSON numbers.
func (p Param) MarshalJSON() ([]byte, error) {
	if p.Number {
		return []byte(p.Value), nil
	}
	return json.Marshal(p.Value)
}

func (p *Param) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*p = NumberParam(v)
	case string:
		*p = StringParam(v)
	case bool:
		*p = StringParam(strconv.FormatBool(v))
	default:
		*p = Param{}
	}
	return nil
}

// Func is a function call in a query model.
type Func struct {
	Def    *catalog.FuncDef
	Params []Param
	// Hidden functions are not rendered as part of the function chain.
	Hidden bool
	// Added is true for a function added since the target was last rendered.
	Added bool
}

// NewFunc creates a function call, optionally with the definition's default parameters.
func NewFunc(def *catalog.FuncDef, withDefaultParams bool) *Func {
	f := &Func{Def: def}
	if withDefaultParams {
		for _, v := range def.DefaultParams {
			f.Params = append(f.Params, StringParam(v))
		}
	}
	return f
}

func (f *Func) Name() string { return f.Def.Name }

// Text is the display form of a function call: name(p1, p2)
func (f *Func) Text() string {
	values := make([]string, len(f.Params))
	for i, p := range f.Params {
		values[i] = p.Value
	}
	return f.Def.Name + "(" + strings.Join(values, ", ") + ")"
}

func (f *Func) String() string { return f.Text() }

// UpdateParam sets parameter index to value.
//
// A value containing commas is split over the following parameters if they are optional
// or the function accepts multiple values.
// An empty value removes an optional or undeclared parameter.
func (f *Func) UpdateParam(value string, index int) {
	if index < 0 {
		return
	}
	if f.hasMultipleParamsInString(value, index) {
		for i, part := range strings.Split(value, ",") {
			f.UpdateParam(strings.TrimSpace(part), index+i)
		}
		return
	}
	if value == "" && (index >= len(f.Def.Params) || f.Def.Params[index].Optional) {
		if index < len(f.Params) {
			f.Params = slices.Delete(f.Params, index, index+1)
		}
		return
	}
	for len(f.Params) <= index {
		f.Params = append(f.Params, Param{})
	}
	f.Params[index] = StringParam(value)
}

func (f *Func) hasMultipleParamsInString(value string, index int) bool {
	if !strings.Contains(value, ",") {
		return false
	}
	if next := index + 1; next < len(f.Def.Params) && f.Def.Params[next].Optional {
		return true
	}
	return index+1 >= len(f.Def.Params) && f.Def.Variadic()
}

// Types of parameters that are never quoted.
var unquotedTypes = []string{
	catalog.TypeValueOrSeries, catalog.TypeBoolean, catalog.TypeInt, catalog.TypeFloat,
	catalog.TypeNode, catalog.TypeIntOrInfinity,
}

// Functions that never quote their parameters.
var unquotedFuncs = []string{"asPercent"}

// Types that are quoted unless the interpolated value is a number.
var numericUnquotedTypes = []string{catalog.TypeIntOrInterval, catalog.TypeNodeOrTag}

// Render the function call applied to metricExp.
// Parameters are quoted according to their declared type, interpolate is used to
// decide whether a parameter containing template variables is numeric.
func (f *Func) Render(metricExp string, interpolate Interpolator) string {
	params := make([]string, 0, len(f.Params)+1)
	for i, p := range f.Params {
		params = append(params, f.renderParam(i, p, interpolate))
	}
	// Blank trailing parameters are not sent.
	for len(params) > 0 && params[len(params)-1] == "" {
		params = params[:len(params)-1]
	}
	if metricExp != "" {
		params = slices.Insert(params, 0, metricExp)
	}
	return f.Def.Name + "(" + strings.Join(params, ", ") + ")"
}

func (f *Func) renderParam(index int, p Param, interpolate Interpolator) string {
	var paramType string
	if pd := f.Def.Param(index); pd != nil {
		paramType = pd.Type
	}
	if slices.Contains(unquotedTypes, paramType) || slices.Contains(unquotedFuncs, f.Def.Name) {
		return p.Value
	}
	if slices.Contains(numericUnquotedTypes, paramType) && isNumeric(interpolate.Apply(p.Value)) {
		return p.Value
	}
	return ast.Quote(p.Value)
}

// isNumeric is true for a blank string or a finite decimal number.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// MarshalJSON includes the function name and display text.
func (f *Func) MarshalJSON() ([]byte, error) {
	return json.Marshal(funcJSON{Name: f.Def.Name, Params: f.Params, Hidden: f.Hidden, Added: f.Added, Text: f.Text()})
}

type funcJSON struct {
	Name   string  `json:"name"`
	Params []Param `json:"params,omitempty"`
	Hidden bool    `json:"hidden,omitempty"`
	Added  bool    `json:"added,omitempty"`
	Text   string  `json:"text"`
}
