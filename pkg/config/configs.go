// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package config

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/korrel8r/metricq/internal/pkg/logging"
	"github.com/korrel8r/metricq/internal/pkg/source"
	"github.com/korrel8r/metricq/pkg/catalog"
	"sigs.k8s.io/yaml"
)

var log = logging.Log()

// Defaults for [Cache] settings.
const (
	DefaultCacheTTL      = 10 * time.Minute
	DefaultCacheCapacity = 10000
)

// Configs is a map of config files by their source file/url.
type Configs map[string]*Config

// Load loads all configurations from a file or URL.
//
// If a configuration has an Include section, also loads all referenced configurations.
// Relative paths in Include and Catalogs are relative to the location of file containing them.
func Load(fileOrURL string) (Configs, error) {
	configs := Configs{}
	return configs, load(fileOrURL, configs)
}

func load(src string, configs Configs) (err error) {
	if _, ok := configs[src]; ok {
		return nil // Already loaded
	}
	log.V(2).Info("Loading configuration", "config", src)
	b, err := source.Read(src)
	if err != nil {
		return fmt.Errorf("%v: %w", src, err)
	}
	c := &Config{}
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return fmt.Errorf("%v: %w", src, err)
	}
	for i, ref := range c.Catalogs {
		c.Catalogs[i] = source.Resolve(src, ref)
	}
	configs[src] = c
	for _, s := range c.Include {
		if err := load(source.Resolve(src, s), configs); err != nil {
			return err
		}
	}
	return nil
}

// Sources returns the configuration sources in sorted order.
func (configs Configs) Sources() []string { return slices.Sorted(maps.Keys(configs)) }

// Catalog loads the catalogs of all configurations and merges them over [catalog.Builtin].
// Catalogs are merged in source order. Catalogs that fail to load are skipped,
// the returned error lists all failures.
func (configs Configs) Catalog() (*catalog.Catalog, error) {
	var (
		loaded []*catalog.Catalog
		errs   *multierror.Error
		seen   = map[string]bool{}
	)
	for _, src := range configs.Sources() {
		for _, ref := range configs[src].Catalogs {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			c, err := catalog.Load(ref)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%v: %w", src, err))
				continue
			}
			if err := c.Validate(); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%v: %v: %w", src, ref, err))
				continue
			}
			loaded = append(loaded, c)
		}
	}
	return catalog.Builtin().Merge(loaded...), errs.ErrorOrNil()
}

// Variables merges the variables of all configurations, later sources override earlier ones.
func (configs Configs) Variables() map[string]string {
	vars := map[string]string{}
	for _, src := range configs.Sources() {
		maps.Copy(vars, configs[src].Variables)
	}
	return vars
}

// Cache returns the effective cache settings, the last source that sets a value wins.
func (configs Configs) Cache() (ttl time.Duration, capacity uint64) {
	ttl, capacity = DefaultCacheTTL, DefaultCacheCapacity
	for _, src := range configs.Sources() {
		c := configs[src].Cache
		if c == nil {
			continue
		}
		if c.TTL != nil {
			ttl = c.TTL.Duration
		}
		if c.Capacity != 0 {
			capacity = c.Capacity
		}
	}
	return ttl, capacity
}
