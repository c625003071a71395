// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package editor applies query editor operations to a target.
//
// Each [Op] is one user action, for example adding a function or changing a tag.
// After each operation the target is rendered and references in all targets are expanded.
package editor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/korrel8r/metricq/internal/pkg/logging"
	"github.com/korrel8r/metricq/pkg/catalog"
	"github.com/korrel8r/metricq/pkg/query"
)

var log = logging.Log()

// OpType names an editor operation.
type OpType string

const (
	AddFunction         OpType = "addFunction"
	RemoveFunction      OpType = "removeFunction"
	MoveFunction        OpType = "moveFunction"
	UpdateFunctionParam OpType = "updateFunctionParam"
	AddFunctionParam    OpType = "addFunctionParam"
	AddTag              OpType = "addTag"
	RemoveTag           OpType = "removeTag"
	UpdateTag           OpType = "updateTag"
	AddSeriesByTagFunc  OpType = "addSeriesByTagFunc"
	UpdateSegment       OpType = "updateSegment"
	AddSelectMetric     OpType = "addSelectMetric"
	SetTarget           OpType = "setTarget"
	ToggleEditorMode    OpType = "toggleEditorMode"
)

// OpTypes lists all operations.
var OpTypes = []OpType{
	AddFunction, RemoveFunction, MoveFunction, UpdateFunctionParam, AddFunctionParam,
	AddTag, RemoveTag, UpdateTag, AddSeriesByTagFunc,
	UpdateSegment, AddSelectMetric, SetTarget, ToggleEditorMode,
}

// Op is an editor operation. Fields not used by the operation are ignored.
type Op struct {
	Op OpType `json:"op"`
	// Name of a function to add.
	Name string `json:"name,omitempty"`
	// Func is the index of a function in the model's function list.
	Func int `json:"func,omitempty"`
	// Index of a parameter, tag or segment.
	Index  int        `json:"index,omitempty"`
	Offset int        `json:"offset,omitempty"`
	Value  string     `json:"value,omitempty"`
	Tag    *query.Tag `json:"tag,omitempty"`
	// Expandable segments keep the segments that follow them.
	Expandable bool `json:"expandable,omitempty"`
}

func (op Op) String() string {
	b, _ := json.Marshal(op)
	return string(b)
}

// ParseOp parses an operation from JSON.
func ParseOp(s string) (Op, error) {
	var op Op
	d := json.NewDecoder(strings.NewReader(s))
	d.DisallowUnknownFields()
	if err := d.Decode(&op); err != nil {
		return op, fmt.Errorf("invalid operation: %w: %v", err, s)
	}
	return op, nil
}

// Editor edits one target of a list of sibling targets.
type Editor struct {
	Model   *query.Model
	Targets query.Targets
	// OnApply, if set, is called after each operation with its result.
	OnApply func(op Op, err error)
}

// New returns an editor for the target with refID, the target is parsed.
func New(targets query.Targets, refID string, c *catalog.Catalog, p query.Parser, interpolate query.Interpolator) (*Editor, error) {
	target := targets.Get(refID)
	if target == nil {
		return nil, fmt.Errorf("target not found: %q", refID)
	}
	m := query.NewModel(target, c, p)
	m.Interpolate = interpolate
	m.ParseTarget()
	return &Editor{Model: m, Targets: targets}, nil
}

// Apply operations in order.
// A failed operation does not change the model, the remaining operations are still applied.
// Returns the errors of all failed operations.
func (e *Editor) Apply(ops ...Op) error {
	var errs *multierror.Error
	for _, op := range ops {
		err := e.apply(op)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%v: %w", op.Op, err))
			log.V(1).Info("Operation failed", "refId", e.Model.Target.RefID, "op", op, "error", err)
		} else {
			e.targetChanged()
			log.V(2).Info("Applied operation", "refId", e.Model.Target.RefID, "op", op, "target", e.Model.Target.Target)
		}
		if e.OnApply != nil {
			e.OnApply(op, err)
		}
	}
	return errs.ErrorOrNil()
}

func (e *Editor) apply(op Op) error {
	m := e.Model
	switch op.Op {
	case AddFunction:
		e.addFunction(op.Name)

	case RemoveFunction:
		f, err := e.funcAt(op.Func)
		if err != nil {
			return err
		}
		m.RemoveFunction(f)

	case MoveFunction:
		f, err := e.funcAt(op.Func)
		if err != nil {
			return err
		}
		m.MoveFunction(f, op.Offset)

	case UpdateFunctionParam:
		f, err := e.funcAt(op.Func)
		if err != nil {
			return err
		}
		f.UpdateParam(op.Value, op.Index)

	case AddFunctionParam:
		f, err := e.funcAt(op.Func)
		if err != nil {
			return err
		}
		return m.AddFunctionParameter(f, query.StringParam(op.Value))

	case AddTag, UpdateTag, AddSeriesByTagFunc:
		if op.Tag == nil {
			return fmt.Errorf("missing tag")
		}
		switch op.Op {
		case AddTag:
			m.AddTag(*op.Tag)
		case UpdateTag:
			m.UpdateTag(*op.Tag, op.Index)
		default:
			m.AddSeriesByTagFunc(*op.Tag)
		}

	case RemoveTag:
		m.RemoveTag(op.Index)

	case UpdateSegment:
		m.Error = nil
		m.UpdateSegmentValue(op.Value, op.Index)
		if !op.Expandable {
			m.TruncateSegments(op.Index)
		}

	case AddSelectMetric:
		m.AddSelectMetricSegment()

	case SetTarget:
		m.Target.Target = op.Value
		m.ParseTarget()

	case ToggleEditorMode:
		m.Target.TextEditor = !m.Target.TextEditor
		m.ParseTarget()

	default:
		return fmt.Errorf("unknown operation %q", op.Op)
	}
	return nil
}

func (e *Editor) addFunction(name string) {
	m := e.Model
	f := m.NewFunc(name, true)
	f.Added = true
	m.AddFunction(f)
	// A new aliasByNode names series by the first wildcard node.
	if f.Name() == "aliasByNode" && len(f.Params) > 0 {
		for i, s := range m.Segments {
			if strings.Contains(s.Value, "*") {
				f.Params[0] = query.NumberParam(float64(i))
				f.Added = false
				break
			}
		}
	}
	if len(m.Segments) == 1 && m.Segments[0].Fake {
		m.EmptySegments()
	}
	if f.Name() == query.SeriesByTag {
		e.targetChanged()
		m.ParseTarget()
	}
}

func (e *Editor) funcAt(i int) (*query.Func, error) {
	if i < 0 || i >= len(e.Model.Functions) {
		return nil, fmt.Errorf("no function at index %v", i)
	}
	return e.Model.Functions[i], nil
}

// targetChanged renders the model and expands references, unless the model has an error.
func (e *Editor) targetChanged() {
	if e.Model.Error != nil {
		return
	}
	e.Model.UpdateModelTarget(e.Targets)
}
