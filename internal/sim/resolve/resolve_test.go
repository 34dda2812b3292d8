package resolve

import (
	"strings"
	"testing"

	"structplace.ai/internal/sim/placement"
)

func intp(v int) *int       { return &v }
func saltp(v int32) *int32  { return &v }
func strp(v string) *string { return &v }

func TestResolve_DefaultsWhenMissingEverywhere(t *testing.T) {
	r := Resolve("minecraft:villages", nil, nil)
	if r.Spacing != 34 || r.Separation != 8 || r.Salt != 10387312 || r.Spread != placement.Linear {
		t.Fatalf("unexpected defaults: %+v", r)
	}
	if r.Sources.Spacing != SourceDefault || r.Sources.LocateOffset != SourceDefault {
		t.Fatalf("expected default provenance: %+v", r.Sources)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "not found in registry") {
		t.Fatalf("expected missing-registry warning, got %v", r.Warnings)
	}
}

func TestResolve_FieldByFieldPriority(t *testing.T) {
	registry := map[string]Registry{
		"minecraft:pillager_outposts": {
			Spacing:      32,
			Separation:   8,
			Salt:         165745296,
			IsTriangular: true,
			LocateOffset: placement.Vec3{X: 0, Y: 0, Z: 0},
			Exclusion:    &Exclusion{OtherSet: "minecraft:villages", Chunks: 10},
		},
	}
	overrides := map[string]Override{
		"minecraft:pillager_outposts": {
			Spacing: intp(48),
			Spread:  strp("gaussian"),
		},
	}
	r := Resolve("minecraft:pillager_outposts", overrides, registry)
	if r.Spacing != 48 || r.Sources.Spacing != SourceConfig {
		t.Fatalf("spacing: got %d (%s)", r.Spacing, r.Sources.Spacing)
	}
	if r.Separation != 8 || r.Sources.Separation != SourceRegistry {
		t.Fatalf("separation: got %d (%s)", r.Separation, r.Sources.Separation)
	}
	if r.Salt != 165745296 || r.Sources.Salt != SourceRegistry {
		t.Fatalf("salt: got %d (%s)", r.Salt, r.Sources.Salt)
	}
	if r.Spread != placement.Gaussian || r.Sources.Spread != SourceConfig {
		t.Fatalf("spread: got %s (%s)", r.Spread, r.Sources.Spread)
	}
	if r.Exclusion == nil || r.Exclusion.OtherSet != "minecraft:villages" || r.Sources.Exclusion != SourceRegistry {
		t.Fatalf("exclusion: got %+v (%s)", r.Exclusion, r.Sources.Exclusion)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", r.Warnings)
	}
}

func TestResolve_RegistryTriangularFlag(t *testing.T) {
	r := Resolve("x:set", nil, map[string]Registry{"x:set": {Spacing: 20, Separation: 4, IsTriangular: true, LocateOffset: placement.Vec3{X: 9, Z: 9}}})
	if r.Spread != placement.Triangular || r.Sources.Spread != SourceRegistry {
		t.Fatalf("got %s (%s)", r.Spread, r.Sources.Spread)
	}
	if r.LocateOffset != (placement.Vec3{X: 9, Z: 9}) || r.Sources.LocateOffset != SourceRegistry {
		t.Fatalf("locate offset: got %+v (%s)", r.LocateOffset, r.Sources.LocateOffset)
	}
}

func TestResolve_InvalidOverridesWarn(t *testing.T) {
	overrides := map[string]Override{
		"x:set": {Spacing: intp(0), Separation: intp(-2), Spread: strp("spiral"), Salt: saltp(7)},
	}
	r := Resolve("x:set", overrides, map[string]Registry{"x:set": {Spacing: 20, Separation: 4}})
	if r.Spacing != 20 || r.Separation != 4 || r.Salt != 7 {
		t.Fatalf("unexpected values: %+v", r)
	}
	if len(r.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", r.Warnings)
	}
}

func TestResolve_InvalidRegistryWarns(t *testing.T) {
	r := Resolve("x:set", nil, map[string]Registry{"x:set": {Spacing: 0, Separation: -3, Salt: 11}})
	if r.Spacing != DefaultSpacing || r.Separation != DefaultSeparation || r.Salt != 11 {
		t.Fatalf("unexpected values: %+v", r)
	}
	if r.Sources.Separation != SourceDefault {
		t.Fatalf("separation provenance: got %s", r.Sources.Separation)
	}
	if len(r.Warnings) != 2 || !strings.Contains(r.Warnings[1], "registry separation -3") {
		t.Fatalf("expected spacing and separation warnings, got %v", r.Warnings)
	}
}

func TestResolve_RepairsSeparation(t *testing.T) {
	overrides := map[string]Override{"x:set": {Spacing: intp(6), Separation: intp(10)}}
	r := Resolve("x:set", overrides, map[string]Registry{"x:set": {Spacing: 20, Separation: 4}})
	if r.Spacing != 6 || r.Separation != 5 {
		t.Fatalf("got spacing=%d separation=%d want 6/5", r.Spacing, r.Separation)
	}
	if len(r.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", r.Warnings)
	}
	if _, err := placement.New(r.Strategy()); err != nil {
		t.Fatalf("repaired placement should be valid: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	lines := Resolve("x:set", nil, nil).Describe()
	if len(lines) != 6 || lines[0] != "spacing = 34 (default)" {
		t.Fatalf("unexpected description: %v", lines)
	}
}
