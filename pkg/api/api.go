// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package api implements a REST API for metricq.
//
// Endpoints expect JSON bodies and return JSON values.
//
// # API Base path
//
// REST API paths are prefixed with
//
//	/api/v1alpha1
//
// # GET /functions
//
// List of function definitions in the catalog, sorted by name.
//   - Response: [][catalog.FuncDef]
//
// # GET /functions/NAME
//
// Definition of function NAME.
//   - Response: [catalog.FuncDef]
//
// # POST /parse
//
// Parse a target into its editable model.
//   - Request: [ParseRequest]
//   - Response: [query.View]
//
// # POST /render
//
// Parse a target and render it again in canonical form.
//   - Request: [ParseRequest]
//   - Response: [RenderResponse]
//
// # POST /targets/expand
//
// Expand references between targets, sets the targetFull field of each target.
//   - Request: [TargetsRequest]
//   - Response: [TargetsRequest]
//
// # POST /targets/graph
//
// Reference graph of targets.
//   - Request: [TargetsRequest]
//   - Response: [GraphResponse]
//
// # POST /targets/edit
//
// Apply editor operations to one target, return all targets with references expanded.
//   - Request: [EditRequest]
//   - Response: [EditResponse]
package api

import (
	"github.com/korrel8r/metricq/pkg/editor"
	"github.com/korrel8r/metricq/pkg/query"
)

// BasePath is the versioned base path for the current version of the REST API.
const BasePath = "/api/v1alpha1"

// ParseRequest is a single target expression.
type ParseRequest struct {
	Target string `json:"target"`
	// TextEditor targets are not parsed.
	TextEditor bool `json:"textEditor,omitempty"`
}

// RenderResponse is a target in canonical form.
type RenderResponse struct {
	Target string `json:"target"`
	// Error is set if the target could not be parsed, Target is returned unchanged.
	Error string `json:"error,omitempty"`
}

// TargetsRequest is a list of sibling targets that may refer to each other.
type TargetsRequest struct {
	Targets query.Targets `json:"targets"`
}

// GraphResponse describes references between targets.
type GraphResponse struct {
	// References maps each target to the targets it refers to.
	References map[string][]string `json:"references"`
	// Missing maps targets to references that do not match any target.
	Missing map[string][]string `json:"missing,omitempty"`
	// Order lists targets with referenced targets first, empty if there are cycles.
	Order []string `json:"order,omitempty"`
	// Cycles lists reference cycles.
	Cycles [][]string `json:"cycles,omitempty"`
}

// EditRequest applies operations to the target with RefID.
type EditRequest struct {
	Targets query.Targets `json:"targets"`
	RefID   string        `json:"refId"`
	Ops     []editor.Op   `json:"ops"`
}

// EditResponse contains the updated targets and the model of the edited target.
type EditResponse struct {
	Targets query.Targets `json:"targets"`
	Model   query.View    `json:"model"`
	// Errors lists operations that failed, other operations were applied.
	Errors []string `json:"errors,omitempty"`
}
