// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package query

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	for _, x := range []struct {
		in   string
		want Tag
		ok   bool
	}{
		{"a=b", Tag{"a", "=", "b"}, true},
		{"a!=b", Tag{"a", "!=", "b"}, true},
		{"a=~b.*", Tag{"a", "=~", "b.*"}, true},
		{"a!=~b", Tag{"a", "!=~", "b"}, true},
		{"name!=", Tag{"name", "!=", ""}, true},
		{"a=b=c", Tag{"a", "=", "b=c"}, true},
		{"junk", Tag{}, false},
		{"", Tag{}, false},
	} {
		t.Run(x.in, func(t *testing.T) {
			got, ok := ParseTag(x.in)
			assert.Equal(t, x.ok, ok)
			assert.Equal(t, x.want, got)
			if ok {
				assert.Equal(t, x.in, got.String())
			}
		})
	}
}

func TestModel_AddTag_RemoveTag(t *testing.T) {
	m := newModel(t, "seriesByTag('a=b','junk','c!=d')")
	require.NoError(t, m.Error)
	f := m.SeriesByTagFunc()
	require.NotNil(t, f)
	assert.Equal(t, []Tag{{"a", "=", "b"}, {"c", "!=", "d"}}, m.Tags)
	tags, raw := slices.Clone(m.Tags), slices.Clone(f.Params)

	m.AddTag(Tag{"e", "=~", "f"})
	assert.Equal(t, params("a=b", "junk", "c!=d", "e=~f"), f.Params)
	assert.Len(t, m.Tags, 3)
	m.RemoveTag(2)
	assert.Equal(t, tags, m.Tags)
	assert.Equal(t, raw, f.Params)

	m.RemoveTag(1)
	assert.Equal(t, []Tag{{"a", "=", "b"}}, m.Tags)
	assert.Equal(t, params("a=b", "junk"), f.Params)

	m.RemoveTag(5) // Out of range
	assert.Equal(t, params("a=b", "junk"), f.Params)
	assert.Equal(t, "seriesByTag('a=b', 'junk')", m.Render())
}

func TestModel_UpdateTag(t *testing.T) {
	m := newModel(t, "seriesByTag('a=b','junk','c!=d')")
	f := m.SeriesByTagFunc()
	m.Error = ParseError{Message: "old"}
	m.UpdateTag(Tag{"x", "=", "y"}, 1)
	assert.NoError(t, m.Error)
	assert.Equal(t, []Tag{{"a", "=", "b"}, {"x", "=", "y"}}, m.Tags)
	assert.Equal(t, params("a=b", "junk", "x=y"), f.Params)

	m.UpdateTag(Tag{"z", "=", "z"}, 2) // Out of range
	assert.Equal(t, params("a=b", "junk", "x=y"), f.Params)
}

func TestModel_UpdateTag_remove(t *testing.T) {
	m := newModel(t, "sumSeries(seriesByTag('a=b','c=d'))")
	require.NoError(t, m.Error)
	m.UpdateTag(Tag{Key: RemoveTagValue}, 0)
	assert.Equal(t, []Tag{{"c", "=", "d"}}, m.Tags)
	assert.True(t, m.SeriesByTagUsed)
	assert.Equal(t, "sumSeries(seriesByTag('c=d'))", m.Render())

	m.UpdateTag(Tag{Key: RemoveTagValue}, 0)
	assert.Empty(t, m.Tags)
	assert.False(t, m.SeriesByTagUsed)
	assert.Equal(t, 0, m.CheckOtherSegmentsIndex)
	assert.Equal(t, []string{"sumSeries"}, funcNames(m.Functions))
	assert.Nil(t, m.SeriesByTagFunc())
}

func TestModel_AddSeriesByTagFunc(t *testing.T) {
	m := newModel(t, "sumSeries(a.b)")
	m.AddSeriesByTagFunc(Tag{Key: "name"})
	require.NoError(t, m.Error)
	assert.Equal(t, "sumSeries(seriesByTag('name!='))", m.Target.Target)
	assert.Empty(t, m.Segments)
	assert.Equal(t, []Tag{{"name", "!=", ""}}, m.Tags)
	assert.True(t, m.SeriesByTagUsed)
	assert.Equal(t, []string{"seriesByTag", "sumSeries"}, funcNames(m.Functions))
	assert.True(t, m.Functions[0].Hidden)
}

func TestModel_AddTag_noSeriesByTag(t *testing.T) {
	m := newModel(t, "a.b")
	m.AddTag(Tag{"k", "=", "v"})
	assert.Equal(t, "seriesByTag('k=v')", m.Target.Target)
	assert.Equal(t, []Tag{{"k", "=", "v"}}, m.Tags)
	assert.Empty(t, m.Segments)

	m.AddTag(Tag{"j", "!=", "w"})
	assert.Equal(t, "seriesByTag('k=v', 'j!=w')", m.Render())
}

func TestModel_RenderTagExpressions(t *testing.T) {
	m := newModel(t, "seriesByTag('a=b','c!=d','e=~f')")
	assert.Equal(t, []string{"a=b", "c!=d", "e=~f"}, m.RenderTagExpressions(-1))
	assert.Equal(t, []string{"a=b", "e=~f"}, m.RenderTagExpressions(1))
}
