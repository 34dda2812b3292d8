// Package engine assembles one loaded structure configuration into the
// long-lived rule engine that answers decide and locate queries.
package engine

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"

	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/locate"
	"structplace.ai/internal/sim/placement"
	"structplace.ai/internal/sim/resolve"
	"structplace.ai/internal/sim/rules/expand"
	"structplace.ai/internal/sim/rules/pattern"
	"structplace.ai/internal/sim/selection"
	"structplace.ai/internal/sim/tuning"
)

type Engine struct {
	cfg      tuning.Config
	universe biome.Universe

	matcher  *pattern.Matcher
	expander *expand.Expander
	pool     selection.Pool
	lottery  *selection.Lottery
	resolved resolve.Resolved
	placer   *placement.Placer
	sampler  biome.Sampler
}

// Decision is the full outcome for one chunk.
type Decision struct {
	Chunk       placement.ChunkPos `json:"chunk"`
	Biome       string             `json:"biome"`
	Placement   bool               `json:"placement_chunk"`
	Frequency   float64            `json:"frequency"`
	Roll        float64            `json:"roll"`
	Gated       bool               `json:"gated"`
	StructureID string             `json:"structure_id,omitempty"`
}

// Spawns reports whether a real structure is placed.
func (d Decision) Spawns() bool { return d.StructureID != "" }

// Build expands every table of cfg against universe. If universe has no
// biomes, cfg.Biomes is used.
func Build(cfg tuning.Config, universe biome.Universe) (*Engine, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(universe.BiomeIDs) == 0 {
		universe = biome.NewUniverse(cfg.Biomes)
	}
	e := &Engine{cfg: cfg, universe: universe, matcher: pattern.NewMatcher()}
	e.expander = expand.New(universe, e.matcher)
	if err := e.build(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) build() error {
	e.pool = selection.NewPool(e.expander, e.cfg.Tables(), e.cfg.Order())
	freq := e.cfg.FrequencyTable()
	e.lottery = &selection.Lottery{
		Matcher:           e.matcher,
		Pool:              e.pool,
		Frequency:         freq,
		FrequencyExpanded: expand.Expand(e.expander, freq),
	}
	e.resolved = resolve.Resolve(e.cfg.StructureSet, e.cfg.Placement, e.cfg.Registry)
	p, err := placement.New(e.resolved.Strategy())
	if err != nil {
		return fmt.Errorf("structure set %s: %w", e.cfg.StructureSet, err)
	}
	e.placer = p
	s, err := NewSampler(e.cfg, e.universe)
	if err != nil {
		return err
	}
	e.sampler = s
	return nil
}

// NewSampler builds the biome source described by cfg.Sampler.
func NewSampler(cfg tuning.Config, u biome.Universe) (biome.Sampler, error) {
	switch cfg.Sampler.Kind {
	case "", "region":
		return biome.RegionSampler(u, cfg.Seed, cfg.Sampler.RegionSize), nil
	case "noise":
		return biome.NoiseSampler(u, cfg.Seed, cfg.Sampler.Bands, cfg.Sampler.Scale), nil
	case "fixed":
		if !u.Has(cfg.Sampler.Biome) {
			return nil, fmt.Errorf("sampler biome %q not in universe", cfg.Sampler.Biome)
		}
		return biome.Fixed(u.Entity(cfg.Sampler.Biome)), nil
	default:
		return nil, fmt.Errorf("unknown sampler kind %q", cfg.Sampler.Kind)
	}
}

// Rebuild clears every cache and recomputes the expanded tables. The
// caller must hold exclusive access.
func (e *Engine) Rebuild() error {
	e.matcher.Reset()
	e.expander.Reset()
	return e.build()
}

func (e *Engine) Config() tuning.Config        { return e.cfg }
func (e *Engine) Seed() int64                  { return e.cfg.Seed }
func (e *Engine) Universe() biome.Universe     { return e.universe }
func (e *Engine) Resolved() resolve.Resolved   { return e.resolved }
func (e *Engine) Placer() *placement.Placer    { return e.placer }
func (e *Engine) Pool() selection.Pool         { return e.pool }
func (e *Engine) Lottery() *selection.Lottery  { return e.lottery }
func (e *Engine) Expander() *expand.Expander   { return e.expander }
func (e *Engine) Sampler() biome.Sampler       { return e.sampler }
func (e *Engine) Matcher() *pattern.Matcher    { return e.matcher }
func (e *Engine) Warnings() []string           { return append(e.cfg.Warnings(), e.resolved.Warnings...) }
func (e *Engine) BiomeAt(x, y, z int) string   { return e.sampler(x, y, z).ID }
func (e *Engine) Weights(b biome.Entity) []int { return e.pool.Weights(e.matcher, b) }

// Decide runs the placement check, the frequency gate and the weighted
// selection for one chunk, sampling b at the chunk middle when b is empty.
// Biomes are sampled from the world of seed, not the configured one.
func (e *Engine) Decide(seed int64, chunkX, chunkZ int, b biome.Entity) Decision {
	var sampler biome.Sampler
	if b.ID == "" {
		sampler = e.SamplerFor(seed)
	}
	return e.decide(seed, placement.ChunkPos{X: chunkX, Z: chunkZ}, b, sampler)
}

func (e *Engine) decide(seed int64, c placement.ChunkPos, b biome.Entity, sampler biome.Sampler) Decision {
	if b.ID == "" {
		mid := c.Middle(e.sampleY())
		b = sampler(mid.X, mid.Y, mid.Z)
	}
	d := Decision{Chunk: c, Biome: b.ID}
	if !e.placer.IsPlacementChunk(c, seed) {
		return d
	}
	d.Placement = true
	out := e.lottery.Draw(seed, c, b)
	d.Frequency, d.Roll, d.Gated = out.Frequency, out.Roll, out.Gated
	d.StructureID = out.ID()
	return d
}

// SamplerFor returns the biome sampler of the world generated from seed.
// The configured seed reuses the sampler built at load.
func (e *Engine) SamplerFor(seed int64) biome.Sampler {
	if seed == e.cfg.Seed {
		return e.sampler
	}
	cfg := e.cfg
	cfg.Seed = seed
	s, err := NewSampler(cfg, e.universe)
	if err != nil {
		// unreachable: only the seed differs from a config that built
		return e.sampler
	}
	return s
}

// Locate searches outward from start for target. A zero maxRadius uses the
// configured default.
func (e *Engine) Locate(seed int64, target string, start placement.Vec3, maxRadius int) locate.Result {
	if maxRadius <= 0 {
		maxRadius = e.cfg.Locate.MaxRadius
	}
	return locate.Locate(locate.Query{
		Target:    target,
		Start:     start,
		Seed:      seed,
		Placer:    e.placer,
		Sampler:   e.SamplerFor(seed),
		Lottery:   e.lottery,
		MaxRadius: maxRadius,
		SampleY:   e.sampleY(),
	})
}

func (e *Engine) sampleY() int {
	if e.cfg.Locate.SampleY != 0 {
		return e.cfg.Locate.SampleY
	}
	return locate.DefaultSampleY
}

// Suggest returns pool ids close to an unknown id, nearest first.
func (e *Engine) Suggest(id string, limit int) []string {
	type cand struct {
		id   string
		dist int
	}
	var cs []cand
	for _, known := range e.pool.IDs() {
		if known == "" {
			continue
		}
		d := levenshtein.ComputeDistance(id, known)
		if d <= len(known)/2 {
			cs = append(cs, cand{known, d})
		}
	}
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].dist != cs[j].dist {
			return cs[i].dist < cs[j].dist
		}
		return cs[i].id < cs[j].id
	})
	if limit > 0 && len(cs) > limit {
		cs = cs[:limit]
	}
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.id)
	}
	return out
}
