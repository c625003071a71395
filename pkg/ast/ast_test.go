// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var tree = &Function{Name: "asPercent", Params: []Node{
	&Function{Name: "sumSeries", Params: []Node{&Metric{Segments: []Segment{{"a"}, {"*"}, {"count"}}}}},
	&SeriesRef{Value: "#B"},
	&Number{Value: 0.5},
	&String{Value: "x y"},
	&Bool{Value: true},
}}

func TestNode_String(t *testing.T) {
	assert.Equal(t, "asPercent(sumSeries(a.*.count),#B,0.5,'x y',true)", tree.String())
	assert.Equal(t, "bad at position: 3", (&Error{Message: "bad", Pos: 3}).String())
	assert.Equal(t, ErrorType, (&Error{}).Type())
	assert.Equal(t, `'it\'s c:\\x'`, (&String{Value: `it's c:\x`}).String())
}

func TestFormatNumber(t *testing.T) {
	for _, x := range []struct {
		v    float64
		want string
	}{
		{1, "1"}, {-2.5, "-2.5"}, {1e6, "1000000"}, {0.001, "0.001"},
	} {
		t.Run(x.want, func(t *testing.T) { assert.Equal(t, x.want, FormatNumber(x.v)) })
	}
}

func TestWalk(t *testing.T) {
	var types []Type
	Walk(tree, func(n Node) bool {
		types = append(types, n.Type())
		return true
	})
	assert.Equal(t, []Type{FunctionType, FunctionType, MetricType, SeriesRefType, NumberType, StringType, BoolType}, types)

	// Skip children of nested functions.
	types = nil
	Walk(tree, func(n Node) bool {
		types = append(types, n.Type())
		return n == Node(tree)
	})
	assert.Equal(t, []Type{FunctionType, FunctionType, SeriesRefType, NumberType, StringType, BoolType}, types)
	Walk(nil, func(Node) bool { panic("not called") })
}
