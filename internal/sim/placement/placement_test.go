package placement

import (
	"errors"
	"testing"
)

func vanilla(spread SpreadType) *Placer {
	p, err := New(RandomSpread{Spacing: 34, Separation: 8, Salt: 10387312, Spread: spread})
	if err != nil {
		panic(err)
	}
	return p
}

func TestChunkForCell_DeterministicInsideBorder(t *testing.T) {
	p := vanilla(Linear)
	const seed = 12345
	first := p.ChunkForCell(0, 0, seed)
	if first.X < 0 || first.X >= 26 || first.Z < 0 || first.Z >= 26 {
		t.Fatalf("placement chunk outside [0,26)^2: %+v", first)
	}
	for i := 0; i < 10; i++ {
		if got := p.ChunkForCell(0, 0, seed); got != first {
			t.Fatalf("non-deterministic placement: got %+v want %+v", got, first)
		}
	}
}

func TestChunkForCell_OffsetsInsideCell(t *testing.T) {
	for _, spread := range SpreadTypes() {
		p := vanilla(spread)
		for cx := -6; cx <= 6; cx++ {
			for cz := -6; cz <= 6; cz++ {
				c := p.ChunkForCell(cx, cz, 987654321)
				ox := c.X - cx*34
				oz := c.Z - cz*34
				if ox < 0 || ox >= 26 || oz < 0 || oz >= 26 {
					t.Fatalf("%s cell (%d,%d): offset (%d,%d) outside [0,26)", spread, cx, cz, ox, oz)
				}
			}
		}
	}
}

func TestChunkForCell_FixedCenter(t *testing.T) {
	p, err := New(RandomSpread{Spacing: 20, Separation: 5, Spread: FixedCenter})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for cx := -3; cx <= 3; cx++ {
		for cz := -3; cz <= 3; cz++ {
			c := p.ChunkForCell(cx, cz, int64(cx*31+cz))
			if c.X-cx*20 != 7 || c.Z-cz*20 != 7 {
				t.Fatalf("cell (%d,%d): got %+v want offset (7,7)", cx, cz, c)
			}
		}
	}
}

func TestChunkForCell_LinearMatchesManualDraws(t *testing.T) {
	p := vanilla(Linear)
	r := NewRandom(CellSeed(42, -2, 5, 10387312))
	ox := r.NextInt(26)
	oz := r.NextInt(26)
	want := ChunkPos{X: -2*34 + ox, Z: 5*34 + oz}
	if got := p.ChunkForCell(-2, 5, 42); got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestChunkForCell_SpreadsDiffer(t *testing.T) {
	seen := map[ChunkPos]bool{}
	for _, spread := range []SpreadType{Linear, Triangular, FixedCenter} {
		seen[vanilla(spread).ChunkForCell(3, 3, 7)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected spread types to produce different chunks, got %v", seen)
	}
}

func TestIsPlacementChunk_AgreesWithChunkForCell(t *testing.T) {
	for _, spread := range SpreadTypes() {
		p := vanilla(spread)
		for cx := -4; cx <= 4; cx++ {
			for cz := -4; cz <= 4; cz++ {
				c := p.ChunkForCell(cx, cz, -77)
				if !p.IsPlacementChunk(c, -77) {
					t.Fatalf("%s: %+v not recognised as placement chunk", spread, c)
				}
				if p.CellOf(c) != (CellPos{X: cx, Z: cz}) {
					t.Fatalf("%s: %+v mapped to wrong cell %+v", spread, c, p.CellOf(c))
				}
				other := ChunkPos{X: c.X + 1, Z: c.Z}
				if p.CellOf(other) == p.CellOf(c) && p.IsPlacementChunk(other, -77) {
					t.Fatalf("%s: neighbour %+v also reported as placement chunk", spread, other)
				}
			}
		}
	}
}

func TestNew_RejectsUnsupportedAndInvalid(t *testing.T) {
	if _, err := New(ConcentricRings{Distance: 32, Spread: 3, Count: 128}); !errors.Is(err, ErrUnsupportedStrategy) {
		t.Fatalf("expected ErrUnsupportedStrategy, got %v", err)
	}
	if _, err := New(RandomSpread{Spacing: 8, Separation: 8}); !errors.Is(err, ErrInvalidSpacing) {
		t.Fatalf("expected ErrInvalidSpacing, got %v", err)
	}
	if _, err := New(RandomSpread{Spacing: 8, Separation: -1}); !errors.Is(err, ErrInvalidSpacing) {
		t.Fatalf("expected ErrInvalidSpacing for negative separation, got %v", err)
	}
	if _, err := New(RandomSpread{Spacing: 8, Separation: 2, Spread: "SPIRAL"}); !errors.Is(err, ErrUnknownSpread) {
		t.Fatalf("expected ErrUnknownSpread, got %v", err)
	}
	p, err := New(&RandomSpread{Spacing: 8, Separation: 2})
	if err != nil {
		t.Fatalf("pointer variant: %v", err)
	}
	if p.Strategy().Spread != Linear {
		t.Fatalf("empty spread should default to LINEAR, got %s", p.Strategy().Spread)
	}
}

func TestParseSpread(t *testing.T) {
	got, err := ParseSpread(" corner_biased ")
	if err != nil || got != CornerBiased {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestRings_CoverEachCellOnce(t *testing.T) {
	seen := map[CellPos]int{}
	lastRing := 0
	for c := range Rings(3) {
		ring := max(absInt(c.X), absInt(c.Z))
		if ring < lastRing {
			t.Fatalf("ring order went backwards at %+v", c)
		}
		lastRing = ring
		seen[c]++
	}
	if len(seen) != 49 {
		t.Fatalf("got %d cells want 49", len(seen))
	}
	for c, n := range seen {
		if n != 1 {
			t.Fatalf("cell %+v visited %d times", c, n)
		}
	}
}

func TestPlacements_BoundedAndRestartable(t *testing.T) {
	p := vanilla(Linear)
	seq := p.Placements(ChunkPos{X: 100, Z: -40}, 1, 100)
	count := 0
	var first ChunkPos
	for c := range seq {
		if count == 0 {
			first = c
		}
		if !p.IsPlacementChunk(c, 1) {
			t.Fatalf("%+v is not a placement chunk", c)
		}
		count++
	}
	// 100/34 + 1 = 3 rings beyond the centre: 7x7 cells.
	if count != 49 {
		t.Fatalf("got %d placements want 49", count)
	}
	for c := range seq {
		if c != first {
			t.Fatalf("restart yielded %+v want %+v", c, first)
		}
		break
	}
	if first != p.ChunkForCell(2, -2, 1) {
		t.Fatalf("spiral must start at the start chunk's cell")
	}
}
