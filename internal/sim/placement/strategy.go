package placement

import (
	"errors"
	"fmt"

	"structplace.ai/internal/sim/mathx"
)

var (
	ErrUnsupportedStrategy = errors.New("unsupported placement strategy")
	ErrInvalidSpacing      = errors.New("invalid spacing/separation")
	ErrUnknownSpread       = errors.New("unknown spread type")
)

// Vec3 is a block-space offset or position.
type Vec3 struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

type ChunkPos struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// ChunkAt returns the chunk containing block (x, z).
func ChunkAt(x, z int) ChunkPos {
	return ChunkPos{X: mathx.FloorDiv(x, 16), Z: mathx.FloorDiv(z, 16)}
}

// Origin is the chunk's minimum block corner at y=0.
func (c ChunkPos) Origin() Vec3 { return Vec3{X: c.X * 16, Z: c.Z * 16} }

// Middle is the block column the biome is sampled from.
func (c ChunkPos) Middle(y int) Vec3 { return Vec3{X: c.X*16 + 8, Y: y, Z: c.Z*16 + 8} }

type CellPos struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Strategy is the closed set of placement variants: RandomSpread and
// ConcentricRings.
type Strategy interface {
	Kind() string
	isStrategy()
}

type RandomSpread struct {
	Spacing      int        `json:"spacing"`
	Separation   int        `json:"separation"`
	Salt         int32      `json:"salt"`
	Spread       SpreadType `json:"spread_type"`
	LocateOffset Vec3       `json:"locate_offset"`
}

func (RandomSpread) Kind() string { return "random_spread" }
func (RandomSpread) isStrategy()  {}

// ConcentricRings mirrors the host's ring placement (strongholds). It is
// recognized so configurations can name it, but it has no Placer.
type ConcentricRings struct {
	Distance int `json:"distance"`
	Spread   int `json:"spread"`
	Count    int `json:"count"`
}

func (ConcentricRings) Kind() string { return "concentric_rings" }
func (ConcentricRings) isStrategy()  {}

// Placer answers grid placement queries for one RandomSpread configuration.
// All methods are pure.
type Placer struct {
	spacing      int
	separation   int
	salt         int32
	spread       SpreadType
	locateOffset Vec3
}

// New builds a Placer. Variants that cannot be reproduced exactly fail here
// instead of being approximated.
func New(s Strategy) (*Placer, error) {
	switch v := s.(type) {
	case RandomSpread:
		return newRandomSpread(v)
	case *RandomSpread:
		if v == nil {
			return nil, fmt.Errorf("%w: nil", ErrUnsupportedStrategy)
		}
		return newRandomSpread(*v)
	case ConcentricRings, *ConcentricRings:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStrategy, s.Kind())
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedStrategy, s)
	}
}

func newRandomSpread(v RandomSpread) (*Placer, error) {
	if v.Separation < 0 || v.Spacing <= v.Separation {
		return nil, fmt.Errorf("%w: spacing=%d separation=%d", ErrInvalidSpacing, v.Spacing, v.Separation)
	}
	spread := v.Spread
	if spread == "" {
		spread = Linear
	}
	spread, err := ParseSpread(string(spread))
	if err != nil {
		return nil, err
	}
	return &Placer{
		spacing:      v.Spacing,
		separation:   v.Separation,
		salt:         v.Salt,
		spread:       spread,
		locateOffset: v.LocateOffset,
	}, nil
}

func (p *Placer) Strategy() RandomSpread {
	return RandomSpread{
		Spacing:      p.spacing,
		Separation:   p.separation,
		Salt:         p.salt,
		Spread:       p.spread,
		LocateOffset: p.locateOffset,
	}
}

func (p *Placer) Spacing() int       { return p.spacing }
func (p *Placer) LocateOffset() Vec3 { return p.locateOffset }

// MaxOffset is the exclusive upper bound of an in-cell offset.
func (p *Placer) MaxOffset() int { return p.spacing - p.separation }

// CellOf returns the grid cell owning chunk c.
func (p *Placer) CellOf(c ChunkPos) CellPos {
	return CellPos{X: mathx.FloorDiv(c.X, p.spacing), Z: mathx.FloorDiv(c.Z, p.spacing)}
}

// ChunkForCell returns the unique placement chunk of cell (cellX, cellZ).
func (p *Placer) ChunkForCell(cellX, cellZ int, seed int64) ChunkPos {
	r := NewRandom(CellSeed(seed, cellX, cellZ, p.salt))
	n := p.MaxOffset()
	ox := p.spread.offset(r, n)
	oz := p.spread.offset(r, n)
	return ChunkPos{X: cellX*p.spacing + ox, Z: cellZ*p.spacing + oz}
}

// IsPlacementChunk reports whether c is its cell's placement chunk.
func (p *Placer) IsPlacementChunk(c ChunkPos, seed int64) bool {
	cell := p.CellOf(c)
	return p.ChunkForCell(cell.X, cell.Z, seed) == c
}
