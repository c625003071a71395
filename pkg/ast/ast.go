// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package ast defines the syntax tree produced by parsing a Graphite target expression.
//
// A [Node] is one of [Function], [Metric], [SeriesRef], [Bool], [String], [Number] or [Error].
// Consumers switch on the concrete type, the set of types is closed.
package ast

import (
	"strconv"
	"strings"
)

// Type names the kind of a node.
type Type string

const (
	FunctionType  Type = "function"
	MetricType    Type = "metric"
	SeriesRefType Type = "series-ref"
	BoolType      Type = "bool"
	StringType    Type = "string"
	NumberType    Type = "number"
	ErrorType     Type = "error"
)

// Node is a node in the syntax tree.
type Node interface {
	Type() Type
	String() string
	node() // Closed set of implementations.
}

// Function is a call: name(params...)
type Function struct {
	Name   string
	Params []Node
}

// Metric is a dot-separated metric path.
type Metric struct {
	Segments []Segment
}

// Segment is one element of a metric path.
type Segment struct {
	Value string
}

// SeriesRef refers to another query by id, for example #A.
type SeriesRef struct {
	Value string
}

type Bool struct{ Value bool }

// String literal, Value is unquoted.
type String struct{ Value string }

type Number struct{ Value float64 }

// Error is returned in place of a tree when the input cannot be parsed.
type Error struct {
	Message string
	Pos     int
}

func (*Function) Type() Type  { return FunctionType }
func (*Metric) Type() Type    { return MetricType }
func (*SeriesRef) Type() Type { return SeriesRefType }
func (*Bool) Type() Type      { return BoolType }
func (*String) Type() Type    { return StringType }
func (*Number) Type() Type    { return NumberType }
func (*Error) Type() Type     { return ErrorType }

func (*Function) node()  {}
func (*Metric) node()    {}
func (*SeriesRef) node() {}
func (*Bool) node()      {}
func (*String) node()    {}
func (*Number) node()    {}
func (*Error) node()     {}

func (n *Function) String() string {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.String()
	}
	return n.Name + "(" + strings.Join(params, ",") + ")"
}

func (n *Metric) String() string { return n.Path() }

// Path joins the segment values with ".".
func (n *Metric) Path() string {
	values := make([]string, len(n.Segments))
	for i, s := range n.Segments {
		values[i] = s.Value
	}
	return strings.Join(values, ".")
}

func (n *SeriesRef) String() string { return n.Value }
func (n *Bool) String() string      { return strconv.FormatBool(n.Value) }
func (n *String) String() string    { return Quote(n.Value) }
func (n *Number) String() string    { return FormatNumber(n.Value) }

func (n *Error) String() string { return n.Message + " at position: " + strconv.Itoa(n.Pos) }

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Quote returns s as a single quoted string literal that parses back to s.
func Quote(s string) string { return "'" + quoteEscaper.Replace(s) + "'" }

// FormatNumber formats a number parameter the way it is rendered in a target.
func FormatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Walk calls visit for n and each node below it, depth first, parents before children.
// If visit returns false the children of that node are skipped.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	if f, ok := n.(*Function); ok {
		for _, p := range f.Params {
			Walk(p, visit)
		}
	}
}
