// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package query

import (
	"regexp"
	"slices"
)

// SeriesByTag is the function that selects series by tag expressions.
const SeriesByTag = "seriesByTag"

// RemoveTagValue as the key of an updated tag removes the tag.
const RemoveTagValue = "-- remove tag --"

// Tag is a tag expression, a parameter of the seriesByTag function.
type Tag struct {
	Key      string `json:"key"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Tag operators.
const (
	OpEqual       = "="
	OpNotEqual    = "!="
	OpMatch       = "=~"
	OpNotMatch    = "!=~"
	DefaultNewTag = OpNotEqual
)

func (t Tag) String() string { return t.Key + t.Operator + t.Value }

var tagPattern = regexp.MustCompile(`([^!=~]+)(!?=~?)(.*)`)

// ParseTag parses a tag expression "key op value".
func ParseTag(s string) (Tag, bool) {
	m := tagPattern.FindStringSubmatch(s)
	if m == nil {
		return Tag{}, false
	}
	return Tag{Key: m[1], Operator: m[2], Value: m[3]}, true
}

// splitSeriesByTagParams returns tags for params that are valid tag expressions.
func splitSeriesByTagParams(f *Func) []Tag {
	var tags []Tag
	for _, p := range f.Params {
		if t, ok := ParseTag(p.Value); ok {
			tags = append(tags, t)
		}
	}
	return tags
}

// SeriesByTagFuncIndex returns the index of the first seriesByTag function, or -1.
func (m *Model) SeriesByTagFuncIndex() int {
	return slices.IndexFunc(m.Functions, func(f *Func) bool { return f.Def.Name == SeriesByTag })
}

// SeriesByTagFunc returns the first seriesByTag function or nil.
func (m *Model) SeriesByTagFunc() *Func {
	if i := m.SeriesByTagFuncIndex(); i >= 0 {
		return m.Functions[i]
	}
	return nil
}

// tagParamIndex returns the seriesByTag parameter index of tag index, or -1.
// Parameters that are not valid tag expressions have no tag.
func tagParamIndex(f *Func, index int) int {
	n := -1
	for i, p := range f.Params {
		if _, ok := ParseTag(p.Value); ok {
			n++
			if n == index {
				return i
			}
		}
	}
	return -1
}

// AddTag adds a tag expression.
// If there is no seriesByTag function, one is created by [Model.AddSeriesByTagFunc].
func (m *Model) AddTag(tag Tag) {
	f := m.SeriesByTagFunc()
	if f == nil {
		m.AddSeriesByTagFunc(tag)
		return
	}
	f.Params = append(f.Params, StringParam(tag.String()))
	m.Tags = append(m.Tags, tag)
}

// RemoveTag removes the tag expression at index, out of range is ignored.
func (m *Model) RemoveTag(index int) {
	f := m.SeriesByTagFunc()
	if f == nil || index < 0 || index >= len(m.Tags) {
		return
	}
	if i := tagParamIndex(f, index); i >= 0 {
		f.Params = slices.Delete(f.Params, i, i+1)
	}
	m.Tags = slices.Delete(m.Tags, index, index+1)
}

// UpdateTag replaces the tag expression at index, out of range is ignored.
//
// If tag.Key is [RemoveTagValue] the tag is removed instead.
// Removing the last tag removes the seriesByTag function.
func (m *Model) UpdateTag(tag Tag, index int) {
	m.Error = nil
	if tag.Key == RemoveTagValue {
		m.RemoveTag(index)
		if len(m.Tags) == 0 {
			m.RemoveFunction(m.SeriesByTagFunc())
			m.CheckOtherSegmentsIndex = 0
			m.SeriesByTagUsed = false
		}
		return
	}
	f := m.SeriesByTagFunc()
	if f == nil || index < 0 || index >= len(m.Tags) {
		return
	}
	if i := tagParamIndex(f, index); i >= 0 {
		f.Params[i] = StringParam(tag.String())
	}
	m.Tags[index] = tag
}

// AddSeriesByTagFunc replaces the metric path with a seriesByTag function selecting tag.
// An empty tag operator defaults to "!=".
// The model is rendered and parsed again so the tags and parameters are consistent.
func (m *Model) AddSeriesByTagFunc(tag Tag) {
	if tag.Operator == "" {
		tag.Operator = DefaultNewTag
	}
	f := m.NewFunc(SeriesByTag, false)
	f.Params = []Param{StringParam(tag.String())}
	f.Added = true
	m.AddFunction(f)
	m.EmptySegments()
	if !m.Target.TextEditor {
		m.Target.Target = m.Render()
	}
	m.ParseTarget()
}

// RenderTagExpressions returns the tag expressions, except the one at excludeIndex.
// Use -1 to include all tags.
func (m *Model) RenderTagExpressions(excludeIndex int) []string {
	var exprs []string
	for i, t := range m.Tags {
		if i != excludeIndex {
			exprs = append(exprs, t.String())
		}
	}
	return exprs
}
