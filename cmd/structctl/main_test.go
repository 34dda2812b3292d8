package main

import (
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"structplace.ai/internal/sim/engine"
	"structplace.ai/internal/sim/placement"
)

func TestKV_RendersEveryPair(t *testing.T) {
	out := kv("chunk", "1, 2", "biome", "minecraft:plains", "dangling")
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected two rows, got %q", out)
	}
	if !strings.Contains(out, "minecraft:plains") || strings.Contains(out, "dangling") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCommonFlags_BuildsEngine(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c := commonFlags(fs)
	cfgPath := filepath.Join("..", "..", "configs", "structures.yaml")
	if err := fs.Parse([]string{"-config", cfgPath, "-seed", "5"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	e, err := c.engine()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if e.Seed() != 5 {
		t.Fatalf("seed override: got %d", e.Seed())
	}
	if e.Resolved().Spacing != 32 || e.Resolved().Separation != 8 {
		t.Fatalf("resolved: %+v", e.Resolved())
	}
}

func TestSurveyMap_OneRowPerChunkRow(t *testing.T) {
	s := engine.Survey{
		Min:        placement.ChunkPos{X: 0, Z: 0},
		Max:        placement.ChunkPos{X: 2, Z: 1},
		Structures: []string{"minecraft:village_plains"},
		Cells:      []uint16{engine.CellNone, engine.CellEmpty, engine.CellStructure, 0, 0, 0},
		Biomes:     []string{"minecraft:plains"},
		BiomeCells: make([]uint16, 6),
	}
	out := surveyMap(s)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 2 map rows and 1 legend row, got %q", out)
	}
	if !strings.Contains(lines[2], "A = minecraft:village_plains") {
		t.Fatalf("legend: %q", lines[2])
	}
	rows := surveyRows(s)
	if rows[1] != "2" || rows[2] != "minecraft:village_plains" || rows[3] != "1" {
		t.Fatalf("rows: %v", rows)
	}
}
