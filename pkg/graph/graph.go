// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// Package graph is the reference graph of a list of targets.
//
// There is an edge from target A to target B if A contains the reference #B.
// References to the target itself are ignored, they are never expanded.
package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/korrel8r/metricq/pkg/query"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Node is a target in the reference graph.
type Node struct {
	id     int64
	Target *query.Target
	// Missing lists references to targets that do not exist.
	Missing []string
	Attrs   Attrs
}

func (n *Node) ID() int64                        { return n.id }
func (n *Node) RefID() string                    { return n.Target.RefID }
func (n *Node) DOTID() string                    { return n.Target.RefID }
func (n *Node) Attributes() []encoding.Attribute { return n.Attrs.Attributes() }

// Graph is a directed graph of [Node].
// Nodes and edges carry attributes for rendering by GraphViz.
type Graph struct {
	*simple.DirectedGraph
	GraphAttrs, NodeAttrs, EdgeAttrs Attrs
	nodes                            map[string]*Node
}

// New builds the reference graph for targets.
func New(targets []*query.Target) *Graph {
	g := &Graph{
		DirectedGraph: simple.NewDirectedGraph(),
		GraphAttrs: Attrs{
			"fontname": "Helvetica",
			"fontsize": "12",
			"rankdir":  "LR",
		},
		NodeAttrs: Attrs{
			"fontname": "Helvetica",
			"fontsize": "12",
			"shape":    "box",
		},
		EdgeAttrs: Attrs{},
		nodes:     map[string]*Node{},
	}
	for i, t := range targets {
		n := &Node{id: int64(i), Target: t, Attrs: Attrs{"label": t.RefID + ": " + t.Target}}
		if t.Hide {
			n.Attrs["style"] = "dashed"
		}
		g.nodes[t.RefID] = n
		g.AddNode(n)
	}
	for _, t := range targets {
		from := g.nodes[t.RefID]
		for _, id := range query.References(t.Target) {
			to, ok := g.nodes[id]
			switch {
			case !ok:
				from.Missing = append(from.Missing, id)
			case to != from:
				g.SetEdge(g.NewEdge(from, to))
			}
		}
	}
	return g
}

// NodeFor returns the node for refID or nil.
func (g *Graph) NodeFor(refID string) *Node { return g.nodes[refID] }

// References returns the IDs of targets referenced by refID, sorted.
func (g *Graph) References(refID string) []string {
	n := g.NodeFor(refID)
	if n == nil {
		return nil
	}
	return refIDs(graph.NodesOf(g.From(n.ID())), true)
}

// Cycles returns each reference cycle, rotated to start with the lowest ID, sorted.
func (g *Graph) Cycles() [][]string {
	var cycles [][]string
	for _, c := range topo.DirectedCyclesIn(g) {
		ids := refIDs(c[:len(c)-1], false) // Last node repeats the first.
		lowest := slices.Index(ids, slices.Min(ids))
		cycles = append(cycles, append(ids[lowest:], ids[:lowest]...))
	}
	slices.SortFunc(cycles, func(a, b []string) int { return slices.Compare(a, b) })
	return cycles
}

// Order returns target IDs with referenced targets before the targets that refer to them.
// Returns an error if there are cycles.
func (g *Graph) Order() ([]string, error) {
	sorted, err := topo.SortStabilized(g, func(nodes []graph.Node) {
		slices.SortFunc(nodes, func(a, b graph.Node) int { return int(a.ID() - b.ID()) })
	})
	if err != nil {
		return nil, fmt.Errorf("reference cycle: %w", err)
	}
	ids := refIDs(sorted, false)
	slices.Reverse(ids)
	return ids, nil
}

// DOT returns the graph in GraphViz format.
func (g *Graph) DOT() ([]byte, error) { return dot.Marshal(g, "", "", "  ") }

func (g *Graph) DOTID() string { return "references" }
func (g *Graph) DOTAttributers() (graph, node, edge encoding.Attributer) {
	return g.GraphAttrs, g.NodeAttrs, g.EdgeAttrs
}

// String lists each node and its references.
func (g *Graph) String() string {
	b := &strings.Builder{}
	for _, n := range refIDs(graph.NodesOf(g.Nodes()), true) {
		fmt.Fprintf(b, "%v -> %v\n", n, g.References(n))
	}
	return b.String()
}

func refIDs(nodes []graph.Node, sorted bool) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.(*Node).RefID()
	}
	if sorted {
		slices.Sort(ids)
	}
	return ids
}
