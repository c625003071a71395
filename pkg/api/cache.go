// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package api

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jellydator/ttlcache/v3"
	"github.com/korrel8r/metricq/pkg/ast"
	"github.com/korrel8r/metricq/pkg/query"
)

type parsed struct {
	expr string
	node ast.Node
}

// parseCache is a [query.Parser] that keeps syntax trees for recently parsed expressions.
// Syntax trees are never modified after parsing, so they can be shared between models.
type parseCache struct {
	parser  query.Parser
	cache   *ttlcache.Cache[uint64, parsed]
	metrics *metrics
}

func newParseCache(p query.Parser, ttl time.Duration, capacity uint64, m *metrics) *parseCache {
	opts := []ttlcache.Option[uint64, parsed]{ttlcache.WithTTL[uint64, parsed](ttl)}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[uint64, parsed](capacity))
	}
	c := &parseCache{parser: p, cache: ttlcache.New(opts...), metrics: m}
	go c.cache.Start()
	return c
}

func (c *parseCache) Parse(expr string) ast.Node {
	key := xxhash.Sum64String(expr)
	if item := c.cache.Get(key); item != nil && item.Value().expr == expr {
		c.metrics.cache.WithLabelValues("hit").Inc()
		return item.Value().node
	}
	c.metrics.cache.WithLabelValues("miss").Inc()
	n := c.parser.Parse(expr)
	c.cache.Set(key, parsed{expr: expr, node: n}, ttlcache.DefaultTTL)
	return n
}

func (c *parseCache) Len() int { return c.cache.Len() }

func (c *parseCache) Stop() { c.cache.Stop() }
