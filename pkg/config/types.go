// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// Package config contains configuration types for metricq.
// Configuration files may be JSON or YAML.
package config

// Config is the configuration for an instance of metricq.
type Config struct {
	// Catalogs lists function catalog files or URLs.
	// A catalog is either metricq YAML or the JSON document served by a Graphite /functions endpoint.
	// Later catalogs override function definitions of earlier ones, all override the built-in catalog.
	Catalogs []string `json:"catalogs,omitempty"`

	// Variables are template variable values, used to decide how parameters are quoted.
	Variables map[string]string `json:"variables,omitempty"`

	// Cache configures the parse cache of the REST API.
	Cache *Cache `json:"cache,omitempty"`

	// Include lists additional configuration files or URLs to include.
	Include []string `json:"include,omitempty"`
}

// Cache configuration.
type Cache struct {
	// TTL is the time a parsed target is kept.
	TTL *Duration `json:"ttl,omitempty"`
	// Capacity is the maximum number of cached targets, 0 means the default.
	Capacity uint64 `json:"capacity,omitempty"`
}
