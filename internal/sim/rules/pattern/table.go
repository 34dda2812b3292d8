package pattern

import "sort"

// Number is the value type a rule table can carry: integer weights or
// real-valued frequencies.
type Number interface {
	~int | ~int32 | ~int64 | ~float64
}

type Rule[T Number] struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Value   T      `json:"value" yaml:"value"`
}

// RuleTable is an ordered pattern -> value mapping.
type RuleTable[T Number] []Rule[T]

// FromMap builds a table ordered by pattern string.
func FromMap[T Number](m map[string]T) RuleTable[T] {
	out := make(RuleTable[T], 0, len(m))
	for p, v := range m {
		out = append(out, Rule[T]{Pattern: p, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}

// AnyPositive reports whether some rule can yield a value above zero.
func (t RuleTable[T]) AnyPositive() bool {
	for _, r := range t {
		if r.Value > 0 {
			return true
		}
	}
	return false
}
