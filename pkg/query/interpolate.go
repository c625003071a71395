// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package query

import "regexp"

// Interpolator replaces dashboard template variables in a string.
// A nil Interpolator leaves strings unchanged.
type Interpolator func(string) string

// Apply calls i, or returns s unchanged if i is nil.
func (i Interpolator) Apply(s string) string {
	if i == nil {
		return s
	}
	return i(s)
}

// Matches $name, ${name} and [[name]]
var variablePattern = regexp.MustCompile(`\$(\w+)|\$\{(\w+)\}|\[\[(\w+)\]\]`)

// NewInterpolator returns an Interpolator that replaces variables from vars.
// Unknown variables are left as they are.
func NewInterpolator(vars map[string]string) Interpolator {
	return func(s string) string {
		return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
			m := variablePattern.FindStringSubmatch(match)
			for _, name := range m[1:] {
				if v, ok := vars[name]; ok && name != "" {
					return v
				}
			}
			return match
		})
	}
}
