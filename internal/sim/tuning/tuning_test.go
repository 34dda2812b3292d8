package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "structures.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 1337 || cfg.StructureSet != "minecraft:villages" {
		t.Fatalf("unexpected header: seed=%d set=%q", cfg.Seed, cfg.StructureSet)
	}
	if got := len(cfg.Pool); got != 6 {
		t.Fatalf("pool size: got %d want 6", got)
	}
	if cfg.Pool[5].ID != "" {
		t.Fatalf("last entry should be the empty entry, got %q", cfg.Pool[5].ID)
	}
	ov, ok := cfg.Placement["minecraft:villages"]
	if !ok || ov.Spacing == nil || *ov.Spacing != 32 || ov.Separation != nil {
		t.Fatalf("placement override: %+v", ov)
	}
	if r := cfg.Registry["minecraft:pillager_outposts"]; r.Exclusion == nil || r.Exclusion.Chunks != 10 {
		t.Fatalf("registry exclusion: %+v", r)
	}
	if cfg.Sampler.Kind != "noise" || len(cfg.Sampler.Bands) != 8 {
		t.Fatalf("sampler: %+v", cfg.Sampler)
	}
	if w := cfg.Warnings(); len(w) != 0 {
		t.Fatalf("unexpected warnings: %v", w)
	}
}

func TestDefaults_Valid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.StructureSet != Defaults().StructureSet || len(cfg.Pool) != len(Defaults().Pool) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestParse_PartialKeepsOtherDefaults(t *testing.T) {
	cfg, err := Parse([]byte("seed: 42\nlocate:\n  max_radius: 12\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Seed != 42 || cfg.Locate.MaxRadius != 12 || cfg.Locate.SampleY != 64 {
		t.Fatalf("got seed=%d locate=%+v", cfg.Seed, cfg.Locate)
	}
	if len(cfg.Biomes) == 0 {
		t.Fatalf("biomes should come from defaults")
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":        "colour: red\n",
		"frequency range":    "frequency:\n  \"*:*\": 1.5\n",
		"negative weight":    "pool:\n  - id: a:b\n    weights:\n      \"*:*\": -1\n",
		"duplicate pool id":  "pool:\n  - id: a:b\n  - id: a:b\n",
		"registry spacing":   "registry:\n  x:y:\n    spacing: 4\n    separation: 4\n    salt: 1\n",
		"sampler kind":       "sampler:\n  kind: voronoi\n",
		"fixed biome":        "sampler:\n  kind: fixed\n  biome: minecraft:nowhere\n",
		"band not in biomes": "sampler:\n  kind: noise\n  bands: [\"minecraft:nowhere\"]\n",
		"bad yaml":           "pool: [\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !strings.HasPrefix(err.Error(), "structures.yaml: ") {
			t.Fatalf("%s: error not wrapped: %v", name, err)
		}
	}
}

func TestParse_PlacementOverridesLeftToResolver(t *testing.T) {
	raw := "placement:\n  minecraft:villages:\n    spacing: 4\n    separation: 9\n    spread_type: spiral\n"
	if _, err := Parse([]byte(raw)); err != nil {
		t.Fatalf("override problems are resolver warnings, not load errors: %v", err)
	}
}

func TestWarnings_MalformedPatterns(t *testing.T) {
	cfg := Defaults()
	cfg.Pool[0].Weights["minecraft:snowy plains"] = 3
	cfg.Frequency["no-colon"] = 0.5
	w := cfg.Warnings()
	if len(w) != 2 {
		t.Fatalf("expected 2 warnings, got %v", w)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestTables(t *testing.T) {
	cfg := Defaults()
	tables := cfg.Tables()
	order := cfg.Order()
	if len(tables) != len(order) {
		t.Fatalf("tables=%d order=%d", len(tables), len(order))
	}
	if got := tables[order[0]]; len(got) != 1 || got[0].Value != 10 {
		t.Fatalf("unexpected first table: %+v", got)
	}
	if ft := cfg.FrequencyTable(); len(ft) != 1 || ft[0].Pattern != "*:*" {
		t.Fatalf("frequency table: %+v", ft)
	}
}
