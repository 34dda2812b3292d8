package engine

import (
	"fmt"

	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/placement"
)

// MaxSurveyChunks bounds one survey rectangle.
const MaxSurveyChunks = 512 * 512

// Survey cell values. Values from CellStructure upward index Structures.
const (
	CellNone      uint16 = 0 // not a placement chunk
	CellEmpty     uint16 = 1 // placement chunk, gated or the empty entry won
	CellStructure uint16 = 2
)

// Survey is every decision inside an inclusive chunk rectangle, row-major by z.
type Survey struct {
	Seed       int64              `json:"seed"`
	Min        placement.ChunkPos `json:"min"`
	Max        placement.ChunkPos `json:"max"`
	Structures []string           `json:"structures"`
	Cells      []uint16           `json:"-"`
	Biomes     []string           `json:"biomes"`
	BiomeCells []uint16           `json:"-"`
}

func (s Survey) Width() int  { return s.Max.X - s.Min.X + 1 }
func (s Survey) Height() int { return s.Max.Z - s.Min.Z + 1 }

// At returns the decision summary for chunk c: the structure id, whether c
// is a placement chunk and the sampled biome.
func (s Survey) At(c placement.ChunkPos) (id string, placementChunk bool, biomeID string) {
	if c.X < s.Min.X || c.X > s.Max.X || c.Z < s.Min.Z || c.Z > s.Max.Z {
		return "", false, ""
	}
	i := (c.Z-s.Min.Z)*s.Width() + (c.X - s.Min.X)
	if b := s.BiomeCells[i]; int(b) < len(s.Biomes) {
		biomeID = s.Biomes[b]
	}
	switch v := s.Cells[i]; {
	case v == CellNone:
		return "", false, biomeID
	case v == CellEmpty:
		return "", true, biomeID
	default:
		return s.Structures[v-CellStructure], true, biomeID
	}
}

// Counts tallies spawned structures by id.
func (s Survey) Counts() map[string]int {
	out := map[string]int{}
	for _, v := range s.Cells {
		if v >= CellStructure {
			out[s.Structures[v-CellStructure]]++
		}
	}
	return out
}

// Survey decides every chunk in the rectangle spanned by a and b.
func (e *Engine) Survey(seed int64, a, b placement.ChunkPos) (Survey, error) {
	lo := placement.ChunkPos{X: min(a.X, b.X), Z: min(a.Z, b.Z)}
	hi := placement.ChunkPos{X: max(a.X, b.X), Z: max(a.Z, b.Z)}
	s := Survey{Seed: seed, Min: lo, Max: hi}
	n := s.Width() * s.Height()
	if n <= 0 || n > MaxSurveyChunks {
		return Survey{}, fmt.Errorf("survey of %dx%d chunks exceeds %d", s.Width(), s.Height(), MaxSurveyChunks)
	}

	sampler := e.SamplerFor(seed)
	structIdx := map[string]uint16{}
	biomeIdx := map[string]uint16{}
	s.Cells = make([]uint16, 0, n)
	s.BiomeCells = make([]uint16, 0, n)
	for z := lo.Z; z <= hi.Z; z++ {
		for x := lo.X; x <= hi.X; x++ {
			d := e.decide(seed, placement.ChunkPos{X: x, Z: z}, biome.Entity{}, sampler)
			bi, ok := biomeIdx[d.Biome]
			if !ok {
				bi = uint16(len(s.Biomes))
				biomeIdx[d.Biome] = bi
				s.Biomes = append(s.Biomes, d.Biome)
			}
			s.BiomeCells = append(s.BiomeCells, bi)

			v := CellNone
			switch {
			case d.Spawns():
				si, ok := structIdx[d.StructureID]
				if !ok {
					si = uint16(len(s.Structures))
					structIdx[d.StructureID] = si
					s.Structures = append(s.Structures, d.StructureID)
				}
				v = CellStructure + si
			case d.Placement:
				v = CellEmpty
			}
			s.Cells = append(s.Cells, v)
		}
	}
	return s, nil
}
