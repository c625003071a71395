// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package query

import (
	"slices"
	"strings"
)

// AddFunction appends f to the function list, alias functions stay last.
func (m *Model) AddFunction(f *Func) {
	m.Functions = append(m.Functions, f)
	m.MoveAliasFuncLast()
}

// RemoveFunction removes f, if present.
func (m *Model) RemoveFunction(f *Func) {
	if i := slices.Index(m.Functions, f); i >= 0 {
		m.Functions = slices.Delete(m.Functions, i, i+1)
	}
}

// MoveFunction moves f by offset positions, clamped to the ends of the list.
// Alias functions stay last.
func (m *Model) MoveFunction(f *Func, offset int) {
	i := slices.Index(m.Functions, f)
	if i < 0 {
		return
	}
	to := min(max(i+offset, 0), len(m.Functions)-1)
	m.Functions = slices.Insert(slices.Delete(m.Functions, i, i+1), to, f)
	m.MoveAliasFuncLast()
}

// MoveAliasFuncLast moves alias functions to the end of the list, keeping their order.
func (m *Model) MoveAliasFuncLast() {
	var funcs, aliases []*Func
	for _, f := range m.Functions {
		if f.Def.Alias() {
			aliases = append(aliases, f)
		} else {
			funcs = append(funcs, f)
		}
	}
	if len(aliases) > 0 {
		m.Functions = append(funcs, aliases...)
	}
}

// AddFunctionParameter appends p to the parameters of f.
// Returns [TooManyParamsError] and leaves f unchanged if f cannot take another parameter.
func (m *Model) AddFunctionParameter(f *Func, p Param) error {
	if len(f.Params) >= len(f.Def.Params) && !f.Def.Variadic() {
		return TooManyParamsError{Func: f.Def.Name}
	}
	f.Params = append(f.Params, p)
	return nil
}

// SegmentPathUpTo joins the values of segments before index with ".".
func (m *Model) SegmentPathUpTo(index int) string {
	index = min(max(index, 0), len(m.Segments))
	values := make([]string, index)
	for i, s := range m.Segments[:index] {
		values[i] = s.Value
	}
	return strings.Join(values, ".")
}

// UpdateSegmentValue sets the value of segment index.
// An index equal to the number of segments appends a segment, other out of range indices are ignored.
func (m *Model) UpdateSegmentValue(value string, index int) {
	switch {
	case index >= 0 && index < len(m.Segments):
		m.Segments[index] = Segment{Value: value}
	case index == len(m.Segments):
		m.Segments = append(m.Segments, Segment{Value: value})
	}
}

// AddSelectMetricSegment appends a placeholder for the next path element.
func (m *Model) AddSelectMetricSegment() {
	m.Segments = append(m.Segments, Segment{Value: SelectMetric, Fake: true})
}

// TruncateSegments removes segments after index.
func (m *Model) TruncateSegments(index int) {
	if index+1 < len(m.Segments) {
		m.Segments = m.Segments[:max(index+1, 0)]
	}
}

// EmptySegments removes all segments.
func (m *Model) EmptySegments() { m.Segments = nil }
