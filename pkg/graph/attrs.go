// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package graph

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/graph/encoding"
)

// Attrs are attributes for graphs and nodes rendered by Graphviz.
type Attrs map[string]string

var (
	_ encoding.Attributer = Attrs{}
	_ encoding.Attributer = &Node{}
)

// Attributes in key order.
func (a Attrs) Attributes() (enc []encoding.Attribute) {
	for _, k := range slices.Sorted(maps.Keys(a)) {
		enc = append(enc, encoding.Attribute{Key: k, Value: a[k]})
	}
	return enc
}
