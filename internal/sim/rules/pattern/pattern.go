// Package pattern implements the wildcard/tag matching and specificity
// ranking used to decide which biome rule applies.
//
// A pattern is "[#]namespace:path" where either side may contain '*'.
// A leading '#' makes it a tag pattern; tag patterns only match tag
// candidates ("#ns:tag") and direct patterns only match biome ids.
package pattern

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"structplace.ai/internal/sim/biome"
)

const (
	GlobalID  = "*:*"
	GlobalTag = "#*:*"

	globalIDScore  = -10
	globalTagScore = -20
	// Non-global patterns never drop to or below the global wildcards.
	minScore = -9
)

// IsTag reports whether p is a tag pattern.
func IsTag(p string) bool { return strings.HasPrefix(p, "#") }

// IsLiteral reports whether p has no wildcard.
func IsLiteral(p string) bool { return !strings.Contains(p, "*") }

func split(p string) (ns, path string, ok bool) {
	p = strings.TrimPrefix(p, "#")
	i := strings.IndexByte(p, ':')
	if i < 0 {
		return "", p, false
	}
	return p[:i], p[i+1:], true
}

// Valid reports whether p has identifier shape: one ':' with non-empty sides,
// an optional leading '#', and no whitespace. Case is not checked; matching is
// case-sensitive. Invalid patterns match nothing.
func Valid(p string) bool {
	ns, path, ok := split(p)
	if !ok || ns == "" || path == "" {
		return false
	}
	return !strings.ContainsAny(path, ":#") && !strings.ContainsAny(ns, "#") &&
		!strings.ContainsFunc(p, unicode.IsSpace)
}

func literalCount(s string) int {
	n := 0
	for _, c := range s {
		if c != '*' {
			n++
		}
	}
	return n
}

// Specificity ranks how narrowly p targets concrete biomes. Higher wins.
func Specificity(p string) int {
	switch p {
	case GlobalID:
		return globalIDScore
	case GlobalTag:
		return globalTagScore
	}
	score := 20
	if !IsTag(p) {
		score++
	}
	ns, path, _ := split(p)
	if literalCount(ns) >= 2 {
		score += 2
	}
	if literalCount(path) >= 2 {
		score += 2
	}
	score -= 5 * strings.Count(p, "*")
	if score < minScore {
		score = minScore
	}
	return score
}

// Better reports whether (specA, valA) outranks (specB, valB): higher
// specificity always wins, equal specificity falls back to the higher value.
func Better[T Number](specA int, valA T, specB int, valB T) bool {
	if specA != specB {
		return specA > specB
	}
	return valA > valB
}

func compile(p string) *regexp.Regexp {
	if !Valid(p) {
		return nil
	}
	body := strings.TrimPrefix(p, "#")
	parts := strings.Split(body, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

func matchCompiled(candidate, p string, re *regexp.Regexp) bool {
	if IsTag(candidate) != IsTag(p) {
		return false
	}
	if IsLiteral(p) {
		return Valid(p) && candidate == p
	}
	if re == nil {
		return false
	}
	return re.MatchString(strings.TrimPrefix(candidate, "#"))
}

// Matches reports whether candidate is denoted by p. It compiles p on every
// call; hot paths should go through a Matcher.
func Matches(candidate, p string) bool {
	if IsTag(candidate) != IsTag(p) {
		return false
	}
	if IsLiteral(p) {
		return Valid(p) && candidate == p
	}
	return matchCompiled(candidate, p, compile(p))
}

// Matcher memoizes compiled patterns. It is safe for concurrent use; the
// cache only grows until Reset.
type Matcher struct {
	cache sync.Map // pattern -> *entry
}

type entry struct {
	re *regexp.Regexp
}

func NewMatcher() *Matcher { return &Matcher{} }

func (m *Matcher) lookup(p string) *regexp.Regexp {
	if v, ok := m.cache.Load(p); ok {
		return v.(*entry).re
	}
	v, _ := m.cache.LoadOrStore(p, &entry{re: compile(p)})
	return v.(*entry).re
}

func (m *Matcher) Matches(candidate, p string) bool {
	if IsTag(candidate) != IsTag(p) {
		return false
	}
	if IsLiteral(p) {
		return Valid(p) && candidate == p
	}
	return matchCompiled(candidate, p, m.lookup(p))
}

// Reset drops every compiled pattern. Callers must hold exclusive access.
func (m *Matcher) Reset() {
	m.cache.Range(func(k, _ any) bool {
		m.cache.Delete(k)
		return true
	})
}

// ValueForBiome resolves the value table assigns to e: the best matching
// rule by (specificity, value), or def when no rule matches.
func ValueForBiome[T Number](m *Matcher, table RuleTable[T], e biome.Entity, def T) T {
	if m == nil {
		m = NewMatcher()
	}
	candidates := e.Candidates()
	found := false
	bestScore := 0
	var best T
	for _, r := range table {
		hit := false
		for _, c := range candidates {
			if m.Matches(c, r.Pattern) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		score := Specificity(r.Pattern)
		if !found || Better(score, r.Value, bestScore, best) {
			found = true
			bestScore = score
			best = r.Value
		}
	}
	if !found {
		return def
	}
	return best
}
