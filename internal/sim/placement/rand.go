package placement

import "math"

const (
	lcgMultiplier = 0x5DEECE66D
	lcgAddend     = 0xB
	lcgMask       = (1 << 48) - 1
)

// Random is the host's 48-bit linear congruential generator. Every draw
// must match the host bit for bit, so no other source may stand in for it.
type Random struct {
	seed int64

	nextGaussian     float64
	haveNextGaussian bool
}

func NewRandom(seed int64) *Random {
	r := &Random{}
	r.SetSeed(seed)
	return r
}

func (r *Random) SetSeed(seed int64) {
	r.seed = (seed ^ lcgMultiplier) & lcgMask
	r.haveNextGaussian = false
}

func (r *Random) next(bits uint) int32 {
	r.seed = (r.seed*lcgMultiplier + lcgAddend) & lcgMask
	return int32(uint64(r.seed) >> (48 - bits))
}

// NextInt32 returns a uniformly distributed 32-bit value.
func (r *Random) NextInt32() int32 { return r.next(32) }

// NextInt returns a uniform value in [0, bound). bound must be > 0.
func (r *Random) NextInt(bound int) int {
	if bound <= 0 {
		panic("placement: bound must be positive")
	}
	b := int32(bound)
	v := r.next(31)
	m := b - 1
	if b&m == 0 {
		return int((int64(b) * int64(v)) >> 31)
	}
	for u := v; ; u = r.next(31) {
		v = u % b
		if u-v+m >= 0 {
			break
		}
	}
	return int(v)
}

// NextDouble returns a uniform value in [0, 1).
func (r *Random) NextDouble() float64 {
	hi := int64(r.next(26))
	lo := int64(r.next(27))
	return float64(hi<<27+lo) * (1.0 / (1 << 53))
}

// NextGaussian returns a standard normal sample (polar method, second value cached).
func (r *Random) NextGaussian() float64 {
	if r.haveNextGaussian {
		r.haveNextGaussian = false
		return r.nextGaussian
	}
	var v1, v2, s float64
	for {
		v1 = 2*r.NextDouble() - 1
		v2 = 2*r.NextDouble() - 1
		s = v1*v1 + v2*v2
		if s < 1 && s != 0 {
			break
		}
	}
	mul := math.Sqrt(-2 * math.Log(s) / s)
	r.nextGaussian = v2 * mul
	r.haveNextGaussian = true
	return v1 * mul
}

// CellSeed is the per-cell placement seed.
func CellSeed(seed int64, cellX, cellZ int, salt int32) int64 {
	return int64(cellX)*341873128712 + int64(cellZ)*132897987541 + seed + int64(salt)
}

// ChunkSeed is the per-chunk selection seed shared by the frequency gate and
// the weighted selector.
func ChunkSeed(seed int64, chunkX, chunkZ int) int64 {
	return seed + int64(chunkX)*341873128712 + int64(chunkZ)*132897987541
}
