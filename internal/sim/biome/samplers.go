package biome

import (
	"github.com/aquilax/go-perlin"

	"structplace.ai/internal/sim/mathx"
)

// RegionSampler assigns one biome per square region of regionSize blocks,
// hashed from the seed. Height is ignored.
func RegionSampler(u Universe, seed int64, regionSize int) Sampler {
	if regionSize <= 0 {
		regionSize = 1
	}
	ids := append([]string(nil), u.BiomeIDs...)
	return func(x, _, z int) Entity {
		if len(ids) == 0 {
			return Entity{}
		}
		rx := mathx.FloorDiv(x, regionSize)
		rz := mathx.FloorDiv(z, regionSize)
		id := ids[mathx.Hash2(seed, rx, rz)%uint64(len(ids))]
		return u.Entity(id)
	}
}

// NoiseSampler lays biomes out in Perlin noise bands: bands[0] where noise
// is lowest, bands[len-1] where it is highest. scale is blocks per noise unit.
func NoiseSampler(u Universe, seed int64, bands []string, scale float64) Sampler {
	if scale <= 0 {
		scale = 256
	}
	if len(bands) == 0 {
		bands = u.BiomeIDs
	}
	bands = append([]string(nil), bands...)
	p := perlin.NewPerlin(2, 2, 3, seed)
	return func(x, _, z int) Entity {
		if len(bands) == 0 {
			return Entity{}
		}
		n := p.Noise2D(float64(x)/scale, float64(z)/scale)
		idx := int((n + 1) / 2 * float64(len(bands)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(bands) {
			idx = len(bands) - 1
		}
		return u.Entity(bands[idx])
	}
}
