// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_AddFunction_aliasLast(t *testing.T) {
	m := newModel(t, "scaleToSeconds(a.b,1)")
	alias := m.NewFunc("aliasByNode", true)
	m.AddFunction(alias)
	assert.Equal(t, []string{"scaleToSeconds", "aliasByNode"}, funcNames(m.Functions))
	m.AddFunction(m.NewFunc("sumSeries", true))
	assert.Equal(t, []string{"scaleToSeconds", "sumSeries", "aliasByNode"}, funcNames(m.Functions))
	assert.Same(t, alias, m.Functions[len(m.Functions)-1])

	// A new alias function goes after existing ones.
	alias2 := m.NewFunc("alias", true)
	m.AddFunction(alias2)
	assert.Same(t, alias2, m.Functions[len(m.Functions)-1])
	assert.Equal(t, []string{"scaleToSeconds", "sumSeries", "aliasByNode", "alias"}, funcNames(m.Functions))
}

func TestModel_AddFunction_again(t *testing.T) {
	m := newModel(t, "aliasByNode(scaleToSeconds(test.prod.*,1),2)")
	f := m.NewFunc("aliasByNode", true)
	m.AddFunction(f)
	assert.Same(t, f, m.Functions[2])
	assert.Equal(t, "aliasByNode(aliasByNode(scaleToSeconds(test.prod.*, 1), 2), 3)", m.Render())
	m.RemoveFunction(f)
	assert.Equal(t, "aliasByNode(scaleToSeconds(test.prod.*, 1), 2)", m.Render())
}

func TestModel_RemoveFunction(t *testing.T) {
	m := newModel(t, "offset(scale(a.b,2),10)")
	m.RemoveFunction(m.NewFunc("scale", false)) // Not in the model
	assert.Equal(t, []string{"scale", "offset"}, funcNames(m.Functions))
	m.RemoveFunction(m.Functions[0])
	assert.Equal(t, []string{"offset"}, funcNames(m.Functions))
	assert.Equal(t, "offset(a.b, 10)", m.Render())
}

func TestModel_MoveFunction(t *testing.T) {
	m := newModel(t, "offset(scale(a.b,2),10)")
	scale := m.Functions[0]
	m.MoveFunction(scale, 1)
	assert.Equal(t, []string{"offset", "scale"}, funcNames(m.Functions))
	m.MoveFunction(scale, 5)
	assert.Equal(t, []string{"offset", "scale"}, funcNames(m.Functions))
	m.MoveFunction(scale, -10)
	assert.Equal(t, []string{"scale", "offset"}, funcNames(m.Functions))
	m.MoveFunction(m.NewFunc("scale", false), 1)
	assert.Equal(t, []string{"scale", "offset"}, funcNames(m.Functions))

	m = newModel(t, "aliasByNode(scale(a.b,2),1)")
	m.MoveFunction(m.Functions[1], -1)
	assert.Equal(t, []string{"scale", "aliasByNode"}, funcNames(m.Functions))
}

func TestModel_AddFunctionParameter(t *testing.T) {
	m := newModel(t, "scaleToSeconds(a.b,1)")
	f := m.Functions[0]
	err := m.AddFunctionParameter(f, NumberParam(2))
	require.Error(t, err)
	assert.Equal(t, TooManyParamsError{Func: "scaleToSeconds"}, err)
	assert.Equal(t, []Param{NumberParam(1)}, f.Params)

	alias := m.NewFunc("aliasByNode", true)
	for i := 0; i < 5; i++ {
		require.NoError(t, m.AddFunctionParameter(alias, NumberParam(float64(i))))
	}
	assert.Len(t, alias.Params, 6)

	nullSeries := m.NewFunc("nullSeries", false)
	assert.True(t, IsTooManyParamsError(m.AddFunctionParameter(nullSeries, StringParam("x"))))
	assert.Empty(t, nullSeries.Params)
}

func TestModel_segments(t *testing.T) {
	m := newModel(t, "a.b.c")
	assert.Equal(t, "a.b", m.SegmentPathUpTo(2))
	assert.Equal(t, "a.b.c", m.SegmentPathUpTo(10))
	assert.Equal(t, "", m.SegmentPathUpTo(0))

	m.UpdateSegmentValue("x", 1)
	assert.Equal(t, segments("a", "x", "c"), m.Segments)
	m.UpdateSegmentValue("d", 3)
	assert.Equal(t, segments("a", "x", "c", "d"), m.Segments)
	m.UpdateSegmentValue("ignored", 7)
	assert.Equal(t, segments("a", "x", "c", "d"), m.Segments)

	m.TruncateSegments(1)
	assert.Equal(t, segments("a", "x"), m.Segments)

	m.AddSelectMetricSegment()
	assert.Equal(t, Segment{Value: SelectMetric, Fake: true}, m.Segments[2])
	assert.Equal(t, "a.x", m.Render())
	m.UpdateSegmentValue("y", 2)
	assert.Equal(t, Segment{Value: "y"}, m.Segments[2])

	m.EmptySegments()
	assert.Empty(t, m.Segments)
	assert.Equal(t, "", m.Render())
}
