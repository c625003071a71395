// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package query is the editable model of a Graphite query target.
//
// A [Model] is built from a target expression by [Model.ParseTarget], modified by editor
// operations, and rendered back to an expression by [Model.UpdateModelTarget].
// Rendering also expands references to sibling targets, see [UpdateRenderedTarget].
//
// A Model is not safe for concurrent use.
package query

import (
	"fmt"
	"strconv"

	"github.com/korrel8r/metricq/internal/pkg/logging"
	"github.com/korrel8r/metricq/pkg/ast"
	"github.com/korrel8r/metricq/pkg/catalog"
)

var log = logging.Log()

// Parser parses a target expression into a syntax tree.
// Parse returns nil if there is no expression, and an [*ast.Error] if the expression is invalid.
type Parser interface {
	Parse(string) ast.Node
}

// Segment is an element of a metric path.
type Segment struct {
	Value string `json:"value"`
	// Fake is true for the "select metric" placeholder.
	Fake bool `json:"fake,omitempty"`
}

// SelectMetric is the value of the placeholder segment for a path element not yet chosen.
const SelectMetric = "select metric"

// Model is the structured form of a [Target].
type Model struct {
	Target    *Target
	Segments  []Segment
	Functions []*Func
	// Tags are the tag expressions of the seriesByTag function, if there is one.
	Tags            []Tag
	Error           error
	SeriesByTagUsed bool
	// CheckOtherSegmentsIndex is the first segment that needs to be checked against the metric tree.
	CheckOtherSegmentsIndex int

	Catalog     *catalog.Catalog
	Parser      Parser
	Interpolate Interpolator
}

// NewModel returns a model for target, call [Model.ParseTarget] to populate it.
func NewModel(target *Target, c *catalog.Catalog, p Parser) *Model {
	if target == nil {
		target = &Target{}
	}
	return &Model{Target: target, Catalog: c, Parser: p}
}

// NewFunc creates a function call using the model's catalog.
func (m *Model) NewFunc(name string, withDefaultParams bool) *Func {
	return NewFunc(m.Catalog.Lookup(name), withDefaultParams)
}

// ParseTarget rebuilds the model from Target.Target.
//
// Nothing is parsed if Target.TextEditor is set.
// If the target cannot be parsed Error is set and the target switches to the text editor.
func (m *Model) ParseTarget() {
	m.Functions = nil
	m.Segments = nil
	m.Tags = nil
	m.SeriesByTagUsed = false
	m.Error = nil
	if m.Target.TextEditor {
		return
	}
	root := m.Parser.Parse(m.Target.Target)
	switch root := root.(type) {
	case nil:
		m.CheckOtherSegmentsIndex = 0
		return
	case *ast.Error:
		m.Error = ParseError{Message: root.Message, Pos: root.Pos}
		m.Target.TextEditor = true
		log.V(1).Info("Parse failed", "refId", m.Target.RefID, "target", m.Target.Target, "error", m.Error)
		return
	}
	if err := m.build(root, nil); err != nil {
		m.Error = err
		m.Target.TextEditor = true
		log.V(1).Info("Cannot edit target", "refId", m.Target.RefID, "target", m.Target.Target, "error", err)
	}
	m.CheckOtherSegmentsIndex = len(m.Segments) - 1
}

// build adds node n to the model, f is the function that n is a parameter of.
func (m *Model) build(n ast.Node, f *Func) error {
	switch n := n.(type) {
	case *ast.Function:
		inner := m.NewFunc(n.Name, false)
		for _, p := range n.Params {
			if err := m.build(p, inner); err != nil {
				return err
			}
		}
		m.Functions = append(m.Functions, inner)
		if inner.Def.Name == SeriesByTag && !m.SeriesByTagUsed {
			m.SeriesByTagUsed = true
			inner.Hidden = true
			m.Tags = splitSeriesByTagParams(inner)
		}

	case *ast.SeriesRef:
		if len(m.Segments) > 0 || m.SeriesByTagFuncIndex() >= 0 {
			return m.addParam(f, StringParam(n.Value))
		}
		m.Segments = append(m.Segments, Segment{Value: n.Value})

	case *ast.Bool:
		return m.addParam(f, StringParam(strconv.FormatBool(n.Value)))

	case *ast.String:
		return m.addParam(f, StringParam(n.Value))

	case *ast.Number:
		return m.addParam(f, NumberParam(n.Value))

	case *ast.Metric:
		if len(m.Segments) > 0 || m.SeriesByTagFuncIndex() >= 0 {
			return m.addParam(f, StringParam(n.Path()))
		}
		for _, s := range n.Segments {
			m.Segments = append(m.Segments, Segment{Value: s.Value})
		}

	case *ast.Error:
		return ParseError{Message: n.Message, Pos: n.Pos}

	default:
		return fmt.Errorf("unexpected syntax node: %v", n)
	}
	return nil
}

func (m *Model) addParam(f *Func, p Param) error {
	if f == nil {
		return fmt.Errorf("unexpected parameter outside a function: %v", p)
	}
	return m.AddFunctionParameter(f, p)
}

// View is the JSON form of a model.
type View struct {
	Target          *Target   `json:"target"`
	Segments        []Segment `json:"segments,omitempty"`
	Functions       []*Func   `json:"functions,omitempty"`
	Tags            []Tag     `json:"tags,omitempty"`
	SeriesByTagUsed bool      `json:"seriesByTagUsed,omitempty"`
	Error           string    `json:"error,omitempty"`
}

func (m *Model) View() View {
	v := View{
		Target:          m.Target,
		Segments:        m.Segments,
		Functions:       m.Functions,
		Tags:            m.Tags,
		SeriesByTagUsed: m.SeriesByTagUsed,
	}
	if m.Error != nil {
		v.Error = m.Error.Error()
	}
	return v
}
