// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package editor

import (
	"testing"

	"github.com/korrel8r/metricq/pkg/catalog"
	"github.com/korrel8r/metricq/pkg/parser"
	"github.com/korrel8r/metricq/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T, targets ...string) *Editor {
	t.Helper()
	var ts query.Targets
	for i, s := range targets {
		ts = append(ts, &query.Target{RefID: string(rune('A' + i)), Target: s})
	}
	e, err := New(ts, "A", catalog.Builtin(), parser.Parser{}, nil)
	require.NoError(t, err)
	require.NoError(t, e.Model.Error)
	return e
}

func TestNew_notFound(t *testing.T) {
	_, err := New(query.Targets{{RefID: "A"}}, "B", catalog.Builtin(), parser.Parser{}, nil)
	assert.EqualError(t, err, `target not found: "B"`)
}

func TestEditor_Apply(t *testing.T) {
	for _, x := range []struct {
		name   string
		target string
		ops    []Op
		want   string
	}{
		{
			name:   "aliasByNode uses first wildcard",
			target: "test.prod.*.count",
			ops:    []Op{{Op: AddFunction, Name: "aliasByNode"}},
			want:   "aliasByNode(test.prod.*.count, 2)",
		},
		{
			name:   "alias stays last",
			target: "test.prod.*.count",
			ops:    []Op{{Op: AddFunction, Name: "aliasByNode"}, {Op: AddFunction, Name: "scaleToSeconds"}},
			want:   "aliasByNode(scaleToSeconds(test.prod.*.count, 1), 2)",
		},
		{
			name:   "remove function",
			target: "aliasByNode(scaleToSeconds(a.b,1),1)",
			ops:    []Op{{Op: RemoveFunction, Func: 0}},
			want:   "aliasByNode(a.b, 1)",
		},
		{
			name:   "move function",
			target: "sumSeries(scale(a.b,2))",
			ops:    []Op{{Op: MoveFunction, Func: 1, Offset: -1}},
			want:   "scale(sumSeries(a.b), 2)",
		},
		{
			name:   "update param",
			target: "scaleToSeconds(a.b,1)",
			ops:    []Op{{Op: UpdateFunctionParam, Func: 0, Index: 0, Value: "60"}},
			want:   "scaleToSeconds(a.b, 60)",
		},
		{
			name:   "add tag",
			target: "seriesByTag('name=a')",
			ops:    []Op{{Op: AddTag, Tag: &query.Tag{Key: "env", Operator: "=", Value: "prod"}}},
			want:   "seriesByTag('name=a', 'env=prod')",
		},
		{
			name:   "update tag",
			target: "seriesByTag('name=a','env=prod')",
			ops:    []Op{{Op: UpdateTag, Index: 1, Tag: &query.Tag{Key: "env", Operator: "!=", Value: "dev"}}},
			want:   "seriesByTag('name=a', 'env!=dev')",
		},
		{
			name:   "remove tag",
			target: "seriesByTag('name=a','env=prod')",
			ops:    []Op{{Op: RemoveTag, Index: 0}},
			want:   "seriesByTag('env=prod')",
		},
		{
			name:   "add seriesByTag",
			target: "",
			ops:    []Op{{Op: AddSeriesByTagFunc, Tag: &query.Tag{Key: "name", Value: "x"}}},
			want:   "seriesByTag('name!=x')",
		},
		{
			name:   "update segment truncates",
			target: "a.b.c",
			ops:    []Op{{Op: UpdateSegment, Index: 1, Value: "x"}},
			want:   "a.x",
		},
		{
			name:   "update expandable segment",
			target: "a.b.c",
			ops:    []Op{{Op: UpdateSegment, Index: 1, Value: "x", Expandable: true}},
			want:   "a.x.c",
		},
		{
			name:   "append segment",
			target: "a.b",
			ops:    []Op{{Op: AddSelectMetric}, {Op: UpdateSegment, Index: 2, Value: "c"}},
			want:   "a.b.c",
		},
		{
			name:   "select metric is not rendered",
			target: "a.b",
			ops:    []Op{{Op: AddSelectMetric}},
			want:   "a.b",
		},
		{
			name:   "function replaces placeholder",
			target: "",
			ops:    []Op{{Op: AddSelectMetric}, {Op: AddFunction, Name: "sumSeries"}},
			want:   "sumSeries()",
		},
		{
			name:   "set target",
			target: "a.b",
			ops:    []Op{{Op: SetTarget, Value: "sumSeries(c.d)"}},
			want:   "sumSeries(c.d)",
		},
	} {
		t.Run(x.name, func(t *testing.T) {
			e := newEditor(t, x.target)
			require.NoError(t, e.Apply(x.ops...))
			assert.Equal(t, x.want, e.Model.Target.Target)
			assert.NoError(t, e.Model.Error)
		})
	}
}

func TestEditor_Apply_expandsReferences(t *testing.T) {
	e := newEditor(t, "test.prod.*.count", "sumSeries(#A)")
	require.NoError(t, e.Apply(Op{Op: AddFunction, Name: "aliasByNode"}))
	assert.Equal(t, "sumSeries(aliasByNode(test.prod.*.count, 2))", e.Targets[1].TargetFull)
	assert.False(t, e.Model.Functions[0].Added)
}

func TestEditor_Apply_errors(t *testing.T) {
	e := newEditor(t, "scaleToSeconds(a.b,1)")
	var results []error
	e.OnApply = func(_ Op, err error) { results = append(results, err) }
	err := e.Apply(
		Op{Op: AddFunctionParam, Func: 0, Value: "2"},
		Op{Op: RemoveFunction, Func: 3},
		Op{Op: AddTag},
		Op{Op: "nonsense"},
		Op{Op: AddFunction, Name: "sumSeries"},
	)
	assert.ErrorContains(t, err, "addFunctionParam: too many parameters for function scaleToSeconds")
	assert.ErrorContains(t, err, "removeFunction: no function at index 3")
	assert.ErrorContains(t, err, "addTag: missing tag")
	assert.ErrorContains(t, err, `unknown operation "nonsense"`)
	assert.True(t, query.IsTooManyParamsError(err))
	require.Len(t, results, 5)
	assert.NoError(t, results[4])
	// Failed operations leave the model unchanged.
	assert.Equal(t, "sumSeries(scaleToSeconds(a.b, 1))", e.Model.Target.Target)
}

func TestEditor_textEditor(t *testing.T) {
	e := newEditor(t, "sumSeries(a.b)", "#A")
	require.NoError(t, e.Apply(Op{Op: ToggleEditorMode}))
	assert.True(t, e.Model.Target.TextEditor)
	assert.Empty(t, e.Model.Functions)

	// Text is not re-rendered in the text editor, references are still expanded.
	require.NoError(t, e.Apply(Op{Op: SetTarget, Value: "sumSeries( x.y )"}))
	assert.Equal(t, "sumSeries( x.y )", e.Model.Target.Target)
	assert.Equal(t, "sumSeries( x.y )", e.Targets[1].TargetFull)

	require.NoError(t, e.Apply(Op{Op: ToggleEditorMode}))
	assert.False(t, e.Model.Target.TextEditor)
	assert.Equal(t, "sumSeries(x.y)", e.Model.Target.Target)
}

func TestEditor_parseError(t *testing.T) {
	e := newEditor(t, "a.b", "#A")
	require.NoError(t, e.Apply(Op{Op: SetTarget, Value: "a.b"}))
	assert.Equal(t, "a.b", e.Targets[1].TargetFull)
	require.NoError(t, e.Apply(Op{Op: SetTarget, Value: "sumSeries(a.b"}))
	assert.True(t, query.IsParseError(e.Model.Error))
	assert.True(t, e.Model.Target.TextEditor)
	assert.Equal(t, "sumSeries(a.b", e.Model.Target.Target)
	assert.Equal(t, "a.b", e.Targets[1].TargetFull, "not updated while the model has an error")
}

func TestParseOp(t *testing.T) {
	op, err := ParseOp(`{"op":"updateTag","index":1,"tag":{"key":"a","operator":"=","value":"b"}}`)
	require.NoError(t, err)
	assert.Equal(t, Op{Op: UpdateTag, Index: 1, Tag: &query.Tag{Key: "a", Operator: "=", Value: "b"}}, op)
	assert.Equal(t, `{"op":"updateTag","index":1,"tag":{"key":"a","operator":"=","value":"b"}}`, op.String())

	_, err = ParseOp(`{"op":"addFunction","nme":"x"}`)
	assert.ErrorContains(t, err, "invalid operation")
}
