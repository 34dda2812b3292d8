package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/engine"
	"structplace.ai/internal/sim/placement"
	"structplace.ai/internal/sim/tuning"
)

func testSurvey(t *testing.T) engine.Survey {
	t.Helper()
	cfg := tuning.Defaults()
	cfg.Seed = 7
	e, err := engine.Build(cfg, biome.Universe{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s, err := e.Survey(e.Seed(), placement.ChunkPos{X: -40, Z: -20}, placement.ChunkPos{X: 40, Z: 60})
	if err != nil {
		t.Fatalf("survey: %v", err)
	}
	return s
}

func TestWriteReadSurvey(t *testing.T) {
	s := testSurvey(t)
	path := filepath.Join(t.TempDir(), "surveys", "s.survey.zst")
	h := Header{StructureSet: "minecraft:villages", ConfigDigest: "abc", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	if err := WriteSurvey(path, FromSurvey(h, s)); err != nil {
		t.Fatalf("write: %v", err)
	}

	gotH, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if gotH.Version != Version || gotH.Seed != 7 || gotH.ConfigDigest != "abc" {
		t.Fatalf("header: %+v", gotH)
	}

	snap, err := ReadSurvey(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := snap.Survey()
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if got.Min != s.Min || got.Max != s.Max {
		t.Fatalf("bounds: got %v..%v want %v..%v", got.Min, got.Max, s.Min, s.Max)
	}
	for z := s.Min.Z; z <= s.Max.Z; z++ {
		for x := s.Min.X; x <= s.Max.X; x++ {
			c := placement.ChunkPos{X: x, Z: z}
			a1, b1, c1 := s.At(c)
			a2, b2, c2 := got.At(c)
			if a1 != a2 || b1 != b2 || c1 != c2 {
				t.Fatalf("chunk %v: got (%q,%v,%q) want (%q,%v,%q)", c, a2, b2, c2, a1, b1, c1)
			}
		}
	}
}

func TestSurveyV1_RejectsBadPalette(t *testing.T) {
	s := testSurvey(t)
	v := FromSurvey(Header{}, s)
	v.Structures = nil
	if len(s.Counts()) == 0 {
		t.Skip("no structures in test rectangle")
	}
	if _, err := v.Survey(); err == nil {
		t.Fatalf("expected palette error")
	}
}

func TestReadSurvey_MissingFile(t *testing.T) {
	if _, err := ReadSurvey(filepath.Join(t.TempDir(), "nope.zst")); err == nil {
		t.Fatalf("expected error")
	}
}
