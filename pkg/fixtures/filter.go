package fixtures

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Filter selects scenarios by name. It is built from a comma-separated list
// of glob patterns; a pattern prefixed with "!" excludes. Exclusions win over
// inclusions, and a filter without inclusions selects everything not
// excluded.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles expr, e.g. "*user*,!locked*". An empty expr selects
// every scenario.
func NewFilter(expr string) (*Filter, error) {
	f := &Filter{}
	for _, part := range strings.Split(expr, ",") {
		pattern := strings.TrimSpace(part)
		if pattern == "" {
			continue
		}
		exclude := strings.HasPrefix(pattern, "!")
		pattern = strings.TrimPrefix(pattern, "!")

		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario pattern '%s': %w", pattern, err)
		}
		if exclude {
			f.exclude = append(f.exclude, g)
		} else {
			f.include = append(f.include, g)
		}
	}
	return f, nil
}

// Match reports whether the scenario called name is selected.
func (f *Filter) Match(name string) bool {
	for _, g := range f.exclude {
		if g.Match(name) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Split partitions scenarios into those the filter selects and the rest,
// keeping their order.
func (f *Filter) Split(scenarios []Scenario) (selected, excluded []Scenario) {
	for _, s := range scenarios {
		if f.Match(s.Name) {
			selected = append(selected, s)
		} else {
			excluded = append(excluded, s)
		}
	}
	return selected, excluded
}
