package selection

import (
	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/placement"
	"structplace.ai/internal/sim/rules/pattern"
)

// DefaultFrequency lets every cell through the frequency gate.
const DefaultFrequency = 1.0

// Lottery is the per-chunk decision: a frequency gate followed by weighted
// selection, both drawing from one generator seeded with the chunk seed.
type Lottery struct {
	Matcher           *pattern.Matcher
	Pool              Pool
	Frequency         pattern.RuleTable[float64]
	FrequencyExpanded map[string]float64
}

type Outcome struct {
	Frequency float64
	Roll      float64
	Gated     bool
	Picked    *ConfiguredStructure
}

// Spawns reports whether the outcome places a real structure.
func (o Outcome) Spawns() bool { return !o.Gated && !o.Picked.IsEmpty() }

// ID is the picked structure id, or "" when nothing spawns.
func (o Outcome) ID() string {
	if !o.Spawns() {
		return ""
	}
	return o.Picked.ID
}

// FrequencyFor resolves the gate probability for e.
func (l *Lottery) FrequencyFor(e biome.Entity) float64 {
	if l.FrequencyExpanded != nil {
		if f, ok := l.FrequencyExpanded[e.ID]; ok {
			return f
		}
	}
	return pattern.ValueForBiome(l.Matcher, l.Frequency, e, DefaultFrequency)
}

// Draw runs the gate and, if it passes, the selection for chunk c.
func (l *Lottery) Draw(seed int64, c placement.ChunkPos, e biome.Entity) Outcome {
	r := placement.NewRandom(placement.ChunkSeed(seed, c.X, c.Z))
	out := Outcome{Frequency: l.FrequencyFor(e)}
	out.Roll = r.NextDouble()
	if out.Roll >= out.Frequency {
		out.Gated = true
		return out
	}
	out.Picked = Select(l.Matcher, l.Pool, r, e)
	return out
}
