// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"github.com/korrel8r/metricq/internal/pkg/logging"
	"github.com/korrel8r/metricq/pkg/catalog"
	"github.com/korrel8r/metricq/pkg/editor"
	"github.com/korrel8r/metricq/pkg/graph"
	"github.com/korrel8r/metricq/pkg/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logging.Log()

// Options for a new API.
type Options struct {
	Catalog   *catalog.Catalog
	Parser    query.Parser
	Variables map[string]string
	// CacheTTL and CacheCapacity configure the parse cache, zero values disable it.
	CacheTTL      time.Duration
	CacheCapacity uint64
	// Registry for API metrics. If nil a new registry is created.
	Registry *prometheus.Registry
}

type API struct {
	Catalog     *catalog.Catalog
	Parser      query.Parser
	Interpolate query.Interpolator
	Registry    *prometheus.Registry

	cache   *parseCache
	metrics *metrics
}

// New API instance, registers handlers with a gin Engine.
func New(opts Options, r *gin.Engine) (*API, error) {
	if opts.Catalog == nil || opts.Parser == nil {
		return nil, errors.New("API requires a catalog and a parser")
	}
	a := &API{
		Catalog:     opts.Catalog,
		Parser:      opts.Parser,
		Interpolate: query.NewInterpolator(opts.Variables),
		Registry:    opts.Registry,
	}
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
	}
	a.metrics = newMetrics(a.Registry)
	if opts.CacheTTL > 0 {
		a.cache = newParseCache(opts.Parser, opts.CacheTTL, opts.CacheCapacity, a.metrics)
		a.Parser = a.cache
	}
	r.Use(a.logger)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))
	v := r.Group(BasePath)
	v.GET("/functions", a.listFunctions)
	v.GET("/functions/:name", a.getFunction)
	v.POST("/parse", a.parse)
	v.POST("/render", a.render)
	v.POST("/targets/expand", a.expand)
	v.POST("/targets/graph", a.graph)
	v.POST("/targets/edit", a.edit)
	return a, nil
}

// Close cleans any persistent resources.
func (a *API) Close() {
	if a.cache != nil {
		a.cache.Stop()
	}
}

// Model parses a target and returns its model.
func (a *API) Model(target *query.Target) *query.Model {
	m := query.NewModel(target, a.Catalog, a.Parser)
	m.Interpolate = a.Interpolate
	m.ParseTarget()
	result := "ok"
	if m.Error != nil {
		result = "error"
	}
	a.metrics.parses.WithLabelValues(result).Inc()
	return m
}

// Edit applies ops to the target with refID in targets.
// Targets are modified in place. Failed operations are returned as errors, others are applied.
func (a *API) Edit(targets query.Targets, refID string, ops ...editor.Op) (*editor.Editor, []error) {
	target := targets.Get(refID)
	if target == nil {
		return nil, []error{fmt.Errorf("target not found: %q", refID)}
	}
	e := &editor.Editor{Model: a.Model(target), Targets: targets}
	e.OnApply = func(op editor.Op, err error) {
		result := "ok"
		if err != nil {
			result = "error"
		}
		a.metrics.editOps.WithLabelValues(string(op.Op), result).Inc()
	}
	var merr *multierror.Error
	if errors.As(e.Apply(ops...), &merr) {
		return e, merr.Errors
	}
	return e, nil
}

func (a *API) listFunctions(c *gin.Context) {
	c.JSON(http.StatusOK, a.Catalog.Defs())
}

func (a *API) getFunction(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	d, ok := a.Catalog.Get(name)
	if check(c, http.StatusNotFound, ok, "function not found: %q", name) {
		c.JSON(http.StatusOK, d)
	}
}

func (a *API) parse(c *gin.Context) {
	var req ParseRequest
	if check(c, http.StatusBadRequest, c.BindJSON(&req), "ParseRequest body") {
		m := a.Model(&query.Target{Target: req.Target, TextEditor: req.TextEditor})
		c.JSON(http.StatusOK, m.View())
	}
}

func (a *API) render(c *gin.Context) {
	var req ParseRequest
	if check(c, http.StatusBadRequest, c.BindJSON(&req), "ParseRequest body") {
		m := a.Model(&query.Target{Target: req.Target, TextEditor: req.TextEditor})
		if m.Error != nil {
			c.JSON(http.StatusOK, RenderResponse{Target: req.Target, Error: m.Error.Error()})
			return
		}
		c.JSON(http.StatusOK, RenderResponse{Target: m.Render()})
	}
}

func (a *API) expand(c *gin.Context) {
	var req TargetsRequest
	if check(c, http.StatusBadRequest, c.BindJSON(&req), "TargetsRequest body") &&
		check(c, http.StatusBadRequest, validTargets(req.Targets)) {
		if cycles := graph.New(req.Targets).Cycles(); len(cycles) > 0 {
			log.V(1).Info("Reference cycles are partly expanded", "cycles", cycles)
		}
		req.Targets.Expand()
		c.JSON(http.StatusOK, req)
	}
}

func (a *API) graph(c *gin.Context) {
	var req TargetsRequest
	if check(c, http.StatusBadRequest, c.BindJSON(&req), "TargetsRequest body") &&
		check(c, http.StatusBadRequest, validTargets(req.Targets)) {
		c.JSON(http.StatusOK, newGraphResponse(graph.New(req.Targets)))
	}
}

func (a *API) edit(c *gin.Context) {
	var req EditRequest
	if !check(c, http.StatusBadRequest, c.BindJSON(&req), "EditRequest body") ||
		!check(c, http.StatusBadRequest, validTargets(req.Targets)) {
		return
	}
	e, errs := a.Edit(req.Targets, req.RefID, req.Ops...)
	if !check(c, http.StatusNotFound, e != nil, "target not found: %q", req.RefID) {
		return
	}
	resp := EditResponse{Targets: req.Targets, Model: e.Model.View()}
	for _, err := range errs {
		resp.Errors = append(resp.Errors, err.Error())
	}
	c.JSON(http.StatusOK, resp)
}

func newGraphResponse(g *graph.Graph) GraphResponse {
	resp := GraphResponse{References: map[string][]string{}, Cycles: g.Cycles()}
	nodes := g.Nodes()
	for nodes.Next() {
		n := nodes.Node().(*graph.Node)
		resp.References[n.RefID()] = g.References(n.RefID())
		if len(n.Missing) > 0 {
			if resp.Missing == nil {
				resp.Missing = map[string][]string{}
			}
			resp.Missing[n.RefID()] = n.Missing
		}
	}
	resp.Order, _ = g.Order()
	return resp
}

// validTargets checks for missing or duplicate reference IDs.
func validTargets(targets query.Targets) error {
	seen := map[string]bool{}
	for i, t := range targets {
		switch {
		case t == nil:
			return fmt.Errorf("target %v is null", i)
		case t.RefID == "":
			return fmt.Errorf("target %v has no refId", i)
		case seen[t.RefID]:
			return fmt.Errorf("duplicate refId: %q", t.RefID)
		}
		seen[t.RefID] = true
	}
	return nil
}

// check aborts the request with code if v is a non-nil error or false.
// Returns true if the request can continue.
func check(c *gin.Context, code int, v any, format ...any) (ok bool) {
	var err error
	switch v := v.(type) {
	case error:
		err = v
	case bool:
		if !v {
			err = errors.New(http.StatusText(code))
			if len(format) > 0 {
				err = fmt.Errorf(format[0].(string), format[1:]...)
				format = nil
			}
		}
	}
	if err != nil {
		if len(format) > 0 {
			err = fmt.Errorf("%v: %w", fmt.Sprintf(format[0].(string), format[1:]...), err)
		}
		ginErr := c.Error(err)
		c.AbortWithStatusJSON(code, ginErr.JSON())
	}
	return err == nil
}
