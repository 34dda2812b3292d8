package placement

import "iter"

// Rings returns the cell offsets of a square spiral: ring 0 is the centre,
// ring r walks the 8r cells of its perimeter. The sequence stops after
// ring maxRing and can be ranged over any number of times.
func Rings(maxRing int) iter.Seq[CellPos] {
	return func(yield func(CellPos) bool) {
		if maxRing < 0 {
			return
		}
		if !yield(CellPos{}) {
			return
		}
		for r := 1; r <= maxRing; r++ {
			for dx := -r; dx <= r; dx++ {
				if !yield(CellPos{X: dx, Z: -r}) {
					return
				}
			}
			for dz := -r + 1; dz <= r; dz++ {
				if !yield(CellPos{X: r, Z: dz}) {
					return
				}
			}
			for dx := r - 1; dx >= -r; dx-- {
				if !yield(CellPos{X: dx, Z: r}) {
					return
				}
			}
			for dz := r - 1; dz > -r; dz-- {
				if !yield(CellPos{X: -r, Z: dz}) {
					return
				}
			}
		}
	}
}

// MaxRing is the last cell ring walked for a search radius in chunks.
func (p *Placer) MaxRing(maxRadiusChunks int) int {
	if maxRadiusChunks < 0 {
		maxRadiusChunks = 0
	}
	return maxRadiusChunks/p.spacing + 1
}

// Placements yields placement chunks cell by cell, spiralling outward from
// the cell containing start. Order is by cell ring, not exact distance, so
// callers filter by chunk distance themselves.
func (p *Placer) Placements(start ChunkPos, seed int64, maxRadiusChunks int) iter.Seq[ChunkPos] {
	origin := p.CellOf(start)
	rings := Rings(p.MaxRing(maxRadiusChunks))
	return func(yield func(ChunkPos) bool) {
		for d := range rings {
			if !yield(p.ChunkForCell(origin.X+d.X, origin.Z+d.Z, seed)) {
				return
			}
		}
	}
}
