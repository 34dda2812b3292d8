// Package expand materializes pattern rule tables into literal
// biome id -> value tables against a known biome universe.
package expand

import (
	"sort"
	"strings"
	"sync"

	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/rules/pattern"
)

// Expander owns the expansion caches for one biome universe. Every cache is
// append-only until Reset; concurrent first-touches converge via LoadOrStore.
type Expander struct {
	universe biome.Universe
	matcher  *pattern.Matcher

	allIDs    []string
	allTagged []string

	byPattern  sync.Map // pattern -> []string biome ids
	tagMatches sync.Map // wildcard tag pattern -> []string literal tag ids
	tagMembers sync.Map // literal tag id -> []string biome ids
}

func New(u biome.Universe, m *pattern.Matcher) *Expander {
	if m == nil {
		m = pattern.NewMatcher()
	}
	x := &Expander{universe: u, matcher: m}
	x.allIDs = append([]string(nil), u.BiomeIDs...)
	for _, id := range u.BiomeIDs {
		if len(u.BiomeTags[id]) > 0 {
			x.allTagged = append(x.allTagged, id)
		}
	}
	return x
}

func (x *Expander) Universe() biome.Universe { return x.universe }

// Reset clears every cache. Callers must hold exclusive access.
func (x *Expander) Reset() {
	for _, m := range []*sync.Map{&x.byPattern, &x.tagMatches, &x.tagMembers} {
		m.Range(func(k, _ any) bool {
			m.Delete(k)
			return true
		})
	}
}

func cached(m *sync.Map, key string, build func() []string) []string {
	if v, ok := m.Load(key); ok {
		return v.([]string)
	}
	v, _ := m.LoadOrStore(key, build())
	return v.([]string)
}

// Biomes returns the concrete biome ids p denotes, sorted.
func (x *Expander) Biomes(p string) []string {
	switch p {
	case pattern.GlobalID:
		return x.allIDs
	case pattern.GlobalTag:
		return x.allTagged
	}
	if !pattern.Valid(p) {
		return nil
	}
	return cached(&x.byPattern, p, func() []string {
		if pattern.IsTag(p) {
			return x.tagPattern(p)
		}
		return x.idPattern(p)
	})
}

func (x *Expander) idPattern(p string) []string {
	if pattern.IsLiteral(p) {
		if x.universe.Has(p) {
			return []string{p}
		}
		return []string{}
	}
	out := []string{}
	for _, id := range x.universe.BiomeIDs {
		if x.matcher.Matches(id, p) {
			out = append(out, id)
		}
	}
	return out
}

func (x *Expander) tagPattern(p string) []string {
	if pattern.IsLiteral(p) {
		return x.members(strings.TrimPrefix(p, "#"))
	}
	tags := cached(&x.tagMatches, p, func() []string {
		out := []string{}
		for _, t := range x.universe.TagIDs {
			if x.matcher.Matches("#"+t, p) {
				out = append(out, t)
			}
		}
		return out
	})
	set := map[string]struct{}{}
	for _, t := range tags {
		for _, id := range x.members(t) {
			set[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (x *Expander) members(tag string) []string {
	return cached(&x.tagMembers, tag, func() []string {
		out := []string{}
		for _, id := range x.universe.BiomeIDs {
			for _, t := range x.universe.BiomeTags[id] {
				if t == tag {
					out = append(out, id)
					break
				}
			}
		}
		return out
	})
}

// Expand overlays table onto a literal biome id -> value map. Rules are
// applied least specific first, so the later, more specific write wins.
// The result does not depend on the order of table.
func Expand[T pattern.Number](x *Expander, table pattern.RuleTable[T]) map[string]T {
	rules := append(pattern.RuleTable[T](nil), table...)
	sort.SliceStable(rules, func(i, j int) bool {
		si, sj := pattern.Specificity(rules[i].Pattern), pattern.Specificity(rules[j].Pattern)
		if si != sj {
			return si < sj
		}
		if rules[i].Value != rules[j].Value {
			return rules[i].Value < rules[j].Value
		}
		return rules[i].Pattern < rules[j].Pattern
	})
	out := map[string]T{}
	for _, r := range rules {
		for _, id := range x.Biomes(r.Pattern) {
			out[id] = r.Value
		}
	}
	return out
}
