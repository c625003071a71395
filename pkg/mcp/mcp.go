// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package mcp provides an MCP server and argument structures for MCP client calls.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/korrel8r/metricq/pkg/api"
	"github.com/korrel8r/metricq/pkg/build"
	"github.com/korrel8r/metricq/pkg/catalog"
	"github.com/korrel8r/metricq/pkg/editor"
	"github.com/korrel8r/metricq/pkg/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const StreamablePath = "/mcp"

const (
	ParseTarget   = "parse_target"
	RenderTarget  = "render_target"
	ExpandTargets = "expand_targets"
	ListFunctions = "list_functions"
	EditTarget    = "edit_target"
)

type TargetParams struct {
	Target     string `json:"target" jsonschema:"Graphite target expression"`
	TextEditor bool   `json:"textEditor,omitempty" jsonschema:"If true the target is free text and is not parsed"`
}

type TargetsParams struct {
	Targets []*query.Target `json:"targets" jsonschema:"Sibling targets, a target refers to another as #REFID"`
}

type FunctionsParams struct {
	Category string `json:"category,omitempty" jsonschema:"Only list functions in this category"`
}

type EditParams struct {
	Targets []*query.Target `json:"targets" jsonschema:"Sibling targets, a target refers to another as #REFID"`
	RefID   string          `json:"refId" jsonschema:"Reference ID of the target to edit"`
	Ops     []editor.Op     `json:"ops" jsonschema:"Operations to apply in order"`
}

// Func is a function call in a [Model].
type Func struct {
	Name   string   `json:"name"`
	Params []string `json:"params,omitempty"`
	Hidden bool     `json:"hidden,omitempty"`
	Text   string   `json:"text"`
}

// Model is the editable structure of a target.
type Model struct {
	Target          string      `json:"target"`
	TextEditor      bool        `json:"textEditor,omitempty"`
	Segments        []string    `json:"segments,omitempty"`
	Functions       []Func      `json:"functions,omitempty"`
	Tags            []query.Tag `json:"tags,omitempty"`
	SeriesByTagUsed bool        `json:"seriesByTagUsed,omitempty"`
	Error           string      `json:"error,omitempty"`
}

type RenderResult = api.RenderResponse

type TargetsResult struct {
	Targets []*query.Target `json:"targets"`
}

type FunctionsResult struct {
	Functions []*catalog.FuncDef `json:"functions"`
}

type EditResult struct {
	Targets []*query.Target `json:"targets"`
	Model   Model           `json:"model"`
	Errors  []string        `json:"errors,omitempty"`
}

type Server struct {
	*mcp.Server
	Catalog     *catalog.Catalog
	Parser      query.Parser
	Interpolate query.Interpolator
}

func NewServer(c *catalog.Catalog, p query.Parser, interpolate query.Interpolator) *Server {
	s := &Server{
		Server:      mcp.NewServer(&mcp.Implementation{Name: "metricq", Title: "Graphite Query Editor MCP Server", Version: build.Version}, nil),
		Catalog:     c,
		Parser:      p,
		Interpolate: interpolate,
	}
	s.addTools()
	return s
}

func (s *Server) addTools() {
	mcp.AddTool(s.Server, &mcp.Tool{
		Name: ParseTarget,
		Description: `
Parse a Graphite target expression into its editable structure:
the metric path segments, the chain of functions applied to it, and seriesByTag tag expressions.
If the expression cannot be parsed the error field is set.`,
	},
		func(ctx context.Context, req *mcp.CallToolRequest, p TargetParams) (*mcp.CallToolResult, Model, error) {
			return nil, newModel(s.model(&query.Target{Target: p.Target, TextEditor: p.TextEditor})), nil
		})

	mcp.AddTool(s.Server, &mcp.Tool{
		Name:        RenderTarget,
		Description: `Render a Graphite target expression in canonical form.`,
	},
		func(ctx context.Context, req *mcp.CallToolRequest, p TargetParams) (*mcp.CallToolResult, RenderResult, error) {
			m := s.model(&query.Target{Target: p.Target, TextEditor: p.TextEditor})
			if m.Error != nil {
				return nil, RenderResult{Target: p.Target, Error: m.Error.Error()}, nil
			}
			return nil, RenderResult{Target: m.Render()}, nil
		})

	mcp.AddTool(s.Server, &mcp.Tool{
		Name: ExpandTargets,
		Description: `
Expand references between targets.
A reference #A in a target is replaced by the expression of the target with refId A.
The expanded expression is returned in the targetFull field, it is empty if the target has no references.`,
	},
		func(ctx context.Context, req *mcp.CallToolRequest, p TargetsParams) (*mcp.CallToolResult, TargetsResult, error) {
			query.Targets(p.Targets).Expand()
			return nil, TargetsResult{Targets: p.Targets}, nil
		})

	mcp.AddTool(s.Server, &mcp.Tool{
		Name:        ListFunctions,
		Description: `List Graphite function definitions with their parameters and default values.`,
	},
		func(ctx context.Context, req *mcp.CallToolRequest, p FunctionsParams) (*mcp.CallToolResult, FunctionsResult, error) {
			var defs []*catalog.FuncDef
			for _, d := range s.Catalog.Defs() {
				if p.Category == "" || strings.EqualFold(p.Category, d.Category) {
					defs = append(defs, d)
				}
			}
			return nil, FunctionsResult{Functions: defs}, nil
		})

	mcp.AddTool(s.Server, &mcp.Tool{
		Name: EditTarget,
		Description: fmt.Sprintf(`
Apply editor operations to the target with refId, and expand references in all targets.
Operations are JSON objects with an "op" field, one of: %v.
Failed operations are listed in errors, the remaining operations are applied.`, editor.OpTypes),
	},
		func(ctx context.Context, req *mcp.CallToolRequest, p EditParams) (*mcp.CallToolResult, EditResult, error) {
			e, err := editor.New(p.Targets, p.RefID, s.Catalog, s.Parser, s.Interpolate)
			if err != nil {
				return nil, EditResult{}, err
			}
			result := EditResult{Targets: p.Targets}
			var merr *multierror.Error
			if errors.As(e.Apply(p.Ops...), &merr) {
				for _, err := range merr.Errors {
					result.Errors = append(result.Errors, err.Error())
				}
			}
			result.Model = newModel(e.Model)
			return nil, result, nil
		})
}

func (s *Server) model(t *query.Target) *query.Model {
	m := query.NewModel(t, s.Catalog, s.Parser)
	m.Interpolate = s.Interpolate
	m.ParseTarget()
	return m
}

func newModel(m *query.Model) Model {
	r := Model{
		Target:          m.Target.Target,
		TextEditor:      m.Target.TextEditor,
		Tags:            m.Tags,
		SeriesByTagUsed: m.SeriesByTagUsed,
	}
	for _, s := range m.Segments {
		r.Segments = append(r.Segments, s.Value)
	}
	for _, f := range m.Functions {
		mf := Func{Name: f.Name(), Hidden: f.Hidden, Text: f.Text()}
		for _, p := range f.Params {
			mf.Params = append(mf.Params, p.Value)
		}
		r.Functions = append(r.Functions, mf)
	}
	if m.Error != nil {
		r.Error = m.Error.Error()
	}
	return r
}

// ServeStdio runs an MCP server, it returns when the client disconnects or the context is canceled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler a handler for the Streaming MCP protocol.
func (s *Server) HTTPHandler() http.Handler {
	// Use the same server for all requests, every call builds its own model.
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.Server }, nil)
}
