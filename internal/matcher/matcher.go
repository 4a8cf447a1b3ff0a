// Package matcher ranks offers and candidates by skill overlap.
package matcher

import (
	"sort"
	"strings"
)

// Result describes how a skill pool covers the skills an offer requires.
type Result struct {
	Score   float64
	Matched []string
	Missing []string
}

// Normalize trims and lower-cases a skill name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Pool builds a normalized skill set from any number of name lists.
func Pool(lists ...[]string) map[string]struct{} {
	pool := make(map[string]struct{})
	for _, list := range lists {
		for _, name := range list {
			if normalized := Normalize(name); normalized != "" {
				pool[normalized] = struct{}{}
			}
		}
	}
	return pool
}

// Match scores a pool against required skills as |matched| / |required|.
// An offer without required skills scores zero.
func Match(pool map[string]struct{}, required []string) Result {
	wanted := Pool(required)
	result := Result{Matched: []string{}, Missing: []string{}}
	if len(wanted) == 0 {
		return result
	}

	for name := range wanted {
		if _, ok := pool[name]; ok {
			result.Matched = append(result.Matched, name)
		} else {
			result.Missing = append(result.Missing, name)
		}
	}
	sort.Strings(result.Matched)
	sort.Strings(result.Missing)
	result.Score = float64(len(result.Matched)) / float64(len(wanted))
	return result
}
