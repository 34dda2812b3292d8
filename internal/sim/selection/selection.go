// Package selection picks one structure from a weighted pool for a biome.
package selection

import (
	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/placement"
	"structplace.ai/internal/sim/rules/expand"
	"structplace.ai/internal/sim/rules/pattern"
)

// ConfiguredStructure is one pool entry. An empty ID is the "no structure"
// entry: picking it suppresses spawning in the cell.
type ConfiguredStructure struct {
	ID       string
	Weights  pattern.RuleTable[int]
	Expanded map[string]int
}

func (c *ConfiguredStructure) IsEmpty() bool { return c == nil || c.ID == "" }

// Weight resolves the entry's weight for e, preferring the expanded table.
func (c *ConfiguredStructure) Weight(m *pattern.Matcher, e biome.Entity) int {
	if c.Expanded != nil {
		if w, ok := c.Expanded[e.ID]; ok {
			return w
		}
	}
	return pattern.ValueForBiome(m, c.Weights, e, 0)
}

// Pool is an ordered weighted lottery.
type Pool []*ConfiguredStructure

// NewPool expands every entry's weights against x.
func NewPool(x *expand.Expander, entries map[string]pattern.RuleTable[int], order []string) Pool {
	out := make(Pool, 0, len(order))
	for _, id := range order {
		w := entries[id]
		out = append(out, &ConfiguredStructure{
			ID:       id,
			Weights:  w,
			Expanded: expand.Expand(x, w),
		})
	}
	return out
}

// Contains reports whether id can ever be chosen from the pool.
func (p Pool) Contains(id string) bool {
	for _, c := range p {
		if c.ID == id && c.Weights.AnyPositive() {
			return true
		}
	}
	return false
}

// IDs lists the non-empty ids in pool order.
func (p Pool) IDs() []string {
	out := make([]string, 0, len(p))
	for _, c := range p {
		if c.ID != "" {
			out = append(out, c.ID)
		}
	}
	return out
}

// Weights returns the effective per-entry weights for e; non-positive
// weights are reported as 0.
func (p Pool) Weights(m *pattern.Matcher, e biome.Entity) []int {
	out := make([]int, len(p))
	for i, c := range p {
		if w := c.Weight(m, e); w > 0 {
			out[i] = w
		}
	}
	return out
}

// Select draws exactly one NextInt(total) when any entry is eligible and
// none otherwise. It returns nil when nothing is eligible.
func Select(m *pattern.Matcher, pool Pool, r *placement.Random, e biome.Entity) *ConfiguredStructure {
	weights := pool.Weights(m, e)
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return nil
	}
	roll := r.NextInt(total)
	cumulative := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if roll < cumulative {
			return pool[i]
		}
	}
	return nil
}
