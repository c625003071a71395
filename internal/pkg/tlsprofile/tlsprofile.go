// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// Package tlsprofile builds a [tls.Config] for the https listener.
//
// Version and cipher suite names use the Kubernetes spelling, for example
// "VersionTLS12" and "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256".
package tlsprofile

import (
	"crypto/tls"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var versions = map[string]uint16{
	"VersionTLS10": tls.VersionTLS10,
	"VersionTLS11": tls.VersionTLS11,
	"VersionTLS12": tls.VersionTLS12,
	"VersionTLS13": tls.VersionTLS13,
}

// Versions lists valid minimum version names.
func Versions() []string { return slices.Sorted(maps.Keys(versions)) }

var ciphers = func() map[string]uint16 {
	m := map[string]uint16{}
	for _, cs := range append(tls.CipherSuites(), tls.InsecureCipherSuites()...) {
		m[cs.Name] = cs.ID
	}
	return m
}()

// Profile selects TLS settings for a server. Empty fields keep the Go defaults.
type Profile struct {
	MinVersion   string
	CipherSuites []string
}

// Config returns the TLS configuration for p, or nil if p is empty.
func (p Profile) Config() (*tls.Config, error) {
	if p.MinVersion == "" && len(p.CipherSuites) == 0 {
		return nil, nil
	}
	cfg := &tls.Config{}
	if p.MinVersion != "" {
		v, ok := versions[p.MinVersion]
		if !ok {
			return nil, fmt.Errorf("unknown TLS version %q, expected one of: %v", p.MinVersion, strings.Join(Versions(), ", "))
		}
		cfg.MinVersion = v
	}
	for _, name := range p.CipherSuites {
		id, ok := ciphers[name]
		if !ok {
			return nil, fmt.Errorf("unknown cipher suite %q", name)
		}
		cfg.CipherSuites = append(cfg.CipherSuites, id)
	}
	return cfg, nil
}
