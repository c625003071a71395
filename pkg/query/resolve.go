// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package query

import (
	"regexp"
	"slices"
)

// Target is one query of a panel, in the form it is stored.
type Target struct {
	RefID  string `json:"refId"`
	Target string `json:"target"`
	// TextEditor is true if Target is edited as text and not parsed.
	TextEditor bool `json:"textEditor,omitempty"`
	// TargetFull is Target with references to other targets expanded, if different.
	TargetFull string `json:"targetFull,omitempty"`
	Hide       bool   `json:"hide,omitempty"`
}

// Expanded returns TargetFull if set, else Target.
func (t *Target) Expanded() string {
	if t.TargetFull != "" {
		return t.TargetFull
	}
	return t.Target
}

// Targets is a list of sibling targets.
type Targets []*Target

// Get returns the target with refID or nil.
func (ts Targets) Get(refID string) *Target {
	if i := slices.IndexFunc(ts, func(t *Target) bool { return t.RefID == refID }); i >= 0 {
		return ts[i]
	}
	return nil
}

// Expand sets TargetFull for every target.
func (ts Targets) Expand() {
	for _, t := range ts {
		UpdateRenderedTarget(t, ts)
	}
}

// A reference to another target is # followed by its single upper-case letter ID.
var refPattern = regexp.MustCompile(`#([A-Z])`)

// References returns the IDs of targets referenced in s, in order of appearance, without duplicates.
func References(s string) []string {
	var ids []string
	for _, m := range refPattern.FindAllStringSubmatch(s, -1) {
		if !slices.Contains(ids, m[1]) {
			ids = append(ids, m[1])
		}
	}
	return ids
}

// UnresolvedRefs returns reference tokens remaining in an expanded string.
// An unresolved reference is not an error, the token is left in place.
func UnresolvedRefs(s string) []string { return refPattern.FindAllString(s, -1) }

type candidate struct {
	target string
	budget int
}

// UpdateRenderedTarget sets t.TargetFull to t.Target with references to other targets expanded.
// TargetFull is cleared if there is nothing to expand.
//
// A target can be substituted as many times as it is referenced by t and the other targets.
// A reference with no substitutions left stays unexpanded, so cyclic references terminate.
// Only t.TargetFull is modified.
func UpdateRenderedTarget(t *Target, targets []*Target) {
	candidates := map[string]*candidate{}
	for _, o := range targets {
		if o.RefID != t.RefID {
			candidates[o.RefID] = &candidate{target: o.Target}
		}
	}
	for id, c := range candidates {
		c.budget = countRefs(t.Target, id)
		for otherID, other := range candidates {
			if otherID != id {
				c.budget += countRefs(other.target, id)
			}
		}
	}

	expanded := t.Target
	for refPattern.MatchString(expanded) {
		updated := refPattern.ReplaceAllStringFunc(expanded, func(match string) string {
			id := match[1:]
			c := candidates[id]
			if c == nil {
				return match
			}
			if c.budget <= 0 {
				delete(candidates, id)
				return match
			}
			c.budget--
			return c.target
		})
		if updated == expanded {
			break
		}
		expanded = updated
	}

	t.TargetFull = ""
	if expanded != t.Target {
		t.TargetFull = expanded
	}
}

func countRefs(s, id string) (n int) {
	for _, m := range refPattern.FindAllStringSubmatch(s, -1) {
		if m[1] == id {
			n++
		}
	}
	return n
}
