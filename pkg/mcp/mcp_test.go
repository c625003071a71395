// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/korrel8r/metricq/internal/pkg/test"
	"github.com/korrel8r/metricq/pkg/catalog"
	"github.com/korrel8r/metricq/pkg/editor"
	"github.com/korrel8r/metricq/pkg/parser"
	"github.com/korrel8r/metricq/pkg/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTools(t *testing.T) {
	cs := newClient(t)
	tools, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, names,
		[]string{"parse_target", "render_target", "expand_targets", "list_functions", "edit_target"})
}

func TestParseTarget(t *testing.T) {
	cs := newClient(t)
	got := callTool[Model](t, cs, ParseTarget, TargetParams{Target: "aliasByNode(scaleToSeconds(test.prod.*,1),2)"})
	assert.Equal(t, Model{
		Target:   "aliasByNode(scaleToSeconds(test.prod.*,1),2)",
		Segments: []string{"test", "prod", "*"},
		Functions: []Func{
			{Name: "scaleToSeconds", Params: []string{"1"}, Text: "scaleToSeconds(1)"},
			{Name: "aliasByNode", Params: []string{"2"}, Text: "aliasByNode(2)"},
		},
	}, got)

	got = callTool[Model](t, cs, ParseTarget, TargetParams{Target: "seriesByTag('tag1=value1')"})
	assert.True(t, got.SeriesByTagUsed)
	assert.Equal(t, []query.Tag{{Key: "tag1", Operator: "=", Value: "value1"}}, got.Tags)

	got = callTool[Model](t, cs, ParseTarget, TargetParams{Target: "sumSeries(a.b"})
	assert.Contains(t, got.Error, "Expected closing parenthesis")
	assert.True(t, got.TextEditor)
}

func TestRenderTarget(t *testing.T) {
	cs := newClient(t)
	got := callTool[RenderResult](t, cs, RenderTarget, TargetParams{Target: "aliasByNode(scaleToSeconds(test.prod.*,1),2)"})
	assert.Equal(t, RenderResult{Target: "aliasByNode(scaleToSeconds(test.prod.*, 1), 2)"}, got)
}

func TestExpandTargets(t *testing.T) {
	cs := newClient(t)
	got := callTool[TargetsResult](t, cs, ExpandTargets, TargetsParams{Targets: []*query.Target{
		{RefID: "A", Target: "nested.query.count"},
		{RefID: "B", Target: "scaleToSeconds(#A,60)"},
	}})
	assert.Equal(t, "scaleToSeconds(nested.query.count,60)", got.Targets[1].TargetFull)
	assert.Empty(t, got.Targets[0].TargetFull)
}

func TestListFunctions(t *testing.T) {
	cs := newClient(t)
	got := callTool[FunctionsResult](t, cs, ListFunctions, FunctionsParams{Category: "alias"})
	require.NotEmpty(t, got.Functions)
	for _, f := range got.Functions {
		assert.Equal(t, "Alias", f.Category)
	}
	all := callTool[FunctionsResult](t, cs, ListFunctions, FunctionsParams{})
	assert.Len(t, all.Functions, catalog.Builtin().Len())
}

func TestEditTarget(t *testing.T) {
	cs := newClient(t)
	got := callTool[EditResult](t, cs, EditTarget, EditParams{
		Targets: []*query.Target{
			{RefID: "A", Target: "test.prod.*.count"},
			{RefID: "B", Target: "sumSeries(#A)"},
		},
		RefID: "A",
		Ops: []editor.Op{
			{Op: editor.AddFunction, Name: "aliasByNode"},
			{Op: editor.RemoveFunction, Func: 5},
		},
	})
	assert.Equal(t, "aliasByNode(test.prod.*.count, 2)", got.Model.Target)
	assert.Equal(t, "sumSeries(aliasByNode(test.prod.*.count, 2))", got.Targets[1].TargetFull)
	assert.Equal(t, []string{"removeFunction: no function at index 5"}, got.Errors)

	r, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      EditTarget,
		Arguments: EditParams{Targets: []*query.Target{{RefID: "A"}}, RefID: "X"},
	})
	require.NoError(t, err)
	assert.True(t, r.IsError)
}

func newClient(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	s := NewServer(catalog.Builtin(), parser.Parser{}, nil)
	ct, st := mcp.NewInMemoryTransports()

	ss, err := s.Connect(ctx, st, nil)
	require.NoError(t, err)

	c := mcp.NewClient(&mcp.Implementation{Name: "client"}, nil)
	cs, err := c.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = cs.Close(); _ = ss.Wait() })
	return cs
}

// callTool calls a tool and decodes its structured result.
func callTool[T any](t *testing.T, cs *mcp.ClientSession, name string, args any) T {
	t.Helper()
	r, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, r.IsError, test.JSONPretty(r))
	var v T
	require.NoError(t, json.Unmarshal([]byte(test.JSONString(r.StructuredContent)), &v))
	return v
}
