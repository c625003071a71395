// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package query

import "regexp"

var selectMetricSuffix = regexp.MustCompile(`\.?` + SelectMetric + `$`)

// Render returns the target expression for the model.
//
// The metric path is the innermost expression, or the seriesByTag function if there is one.
// Other functions wrap it in list order.
func (m *Model) Render() string {
	expr := selectMetricSuffix.ReplaceAllString(m.SegmentPathUpTo(len(m.Segments)), "")
	tagIndex := m.SeriesByTagFuncIndex()
	if tagIndex >= 0 {
		expr = m.Functions[tagIndex].Render(expr, m.Interpolate)
	}
	for i, f := range m.Functions {
		if i == tagIndex || f.Hidden {
			continue
		}
		expr = f.Render(expr, m.Interpolate)
	}
	return expr
}

// UpdateModelTarget stores the rendered model in Target.Target, unless the target is in the text editor.
// References are expanded for the target and all other targets.
func (m *Model) UpdateModelTarget(targets []*Target) {
	if !m.Target.TextEditor {
		m.Target.Target = m.Render()
	}
	UpdateRenderedTarget(m.Target, targets)
	for _, t := range targets {
		if t.RefID != m.Target.RefID {
			UpdateRenderedTarget(t, targets)
		}
	}
	for _, f := range m.Functions {
		f.Added = false
	}
}
