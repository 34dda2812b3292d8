package tuning

import "structplace.ai/internal/sim/resolve"

// Defaults is a vanilla-like village set used when no file overrides it.
func Defaults() Config {
	return Config{
		Seed:         0,
		StructureSet: "minecraft:villages",
		Pool: []PoolEntry{
			{ID: "minecraft:village_plains", Weights: map[string]int{"#minecraft:has_structure/village_plains": 10}},
			{ID: "minecraft:village_desert", Weights: map[string]int{"#minecraft:has_structure/village_desert": 10}},
			{ID: "minecraft:village_savanna", Weights: map[string]int{"#minecraft:has_structure/village_savanna": 10}},
			{ID: "minecraft:village_snowy", Weights: map[string]int{"#minecraft:has_structure/village_snowy": 10}},
			{ID: "minecraft:village_taiga", Weights: map[string]int{"#minecraft:has_structure/village_taiga": 10}},
		},
		Frequency: map[string]float64{"*:*": 1.0},
		Registry: map[string]resolve.Registry{
			"minecraft:villages": {Spacing: 34, Separation: 8, Salt: 10387312},
		},
		Biomes: map[string][]string{
			"minecraft:plains":           {"minecraft:is_overworld", "minecraft:has_structure/village_plains"},
			"minecraft:sunflower_plains": {"minecraft:is_overworld"},
			"minecraft:meadow":           {"minecraft:is_overworld", "minecraft:has_structure/village_plains"},
			"minecraft:desert":           {"minecraft:is_overworld", "minecraft:has_structure/village_desert"},
			"minecraft:savanna":          {"minecraft:is_overworld", "minecraft:is_savanna", "minecraft:has_structure/village_savanna"},
			"minecraft:snowy_plains":     {"minecraft:is_overworld", "minecraft:has_structure/village_snowy"},
			"minecraft:taiga":            {"minecraft:is_overworld", "minecraft:is_taiga", "minecraft:has_structure/village_taiga"},
			"minecraft:forest":           {"minecraft:is_overworld", "minecraft:is_forest"},
			"minecraft:ocean":            {"minecraft:is_overworld", "minecraft:is_ocean"},
			"minecraft:deep_ocean":       {"minecraft:is_overworld", "minecraft:is_ocean", "minecraft:is_deep_ocean"},
		},
		Sampler: SamplerSpec{Kind: "region", RegionSize: 256},
		Locate:  LocateSpec{MaxRadius: 100, SampleY: 64},
	}
}
