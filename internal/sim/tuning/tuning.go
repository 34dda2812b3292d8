package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"structplace.ai/internal/sim/resolve"
	"structplace.ai/internal/sim/rules/pattern"
)

//go:embed structures.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

type Config struct {
	Seed         int64  `yaml:"seed" json:"seed"`
	StructureSet string `yaml:"structure_set" json:"structure_set"`

	Pool      []PoolEntry        `yaml:"pool" json:"pool"`
	Frequency map[string]float64 `yaml:"frequency,omitempty" json:"frequency,omitempty"`

	Placement map[string]resolve.Override `yaml:"placement,omitempty" json:"placement,omitempty"`
	Registry  map[string]resolve.Registry `yaml:"registry,omitempty" json:"registry,omitempty"`

	Biomes  map[string][]string `yaml:"biomes" json:"biomes"`
	Sampler SamplerSpec         `yaml:"sampler" json:"sampler"`
	Locate  LocateSpec          `yaml:"locate" json:"locate"`
}

// PoolEntry is one lottery ticket. An empty id is the "nothing spawns" entry.
type PoolEntry struct {
	ID      string         `yaml:"id" json:"id"`
	Weights map[string]int `yaml:"weights" json:"weights"`
}

type SamplerSpec struct {
	Kind       string   `yaml:"kind" json:"kind"` // "region", "noise", "fixed"
	RegionSize int      `yaml:"region_size,omitempty" json:"region_size,omitempty"`
	Bands      []string `yaml:"bands,omitempty" json:"bands,omitempty"`
	Scale      float64  `yaml:"scale,omitempty" json:"scale,omitempty"`
	Biome      string   `yaml:"biome,omitempty" json:"biome,omitempty"`
}

type LocateSpec struct {
	MaxRadius int `yaml:"max_radius" json:"max_radius"`
	SampleY   int `yaml:"sample_y" json:"sample_y"`
}

// Load reads a structures.yaml file on top of Defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(raw)
}

// Parse validates raw YAML against the embedded schema, then decodes it.
func Parse(raw []byte) (Config, error) {
	cfg := Defaults()
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return cfg, fmt.Errorf("structures.yaml: %w", err)
	}
	if doc != nil {
		if err := validateSchema(doc); err != nil {
			return cfg, fmt.Errorf("structures.yaml: %w", err)
		}
	}
	var parsed Config
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return cfg, fmt.Errorf("structures.yaml: %w", err)
	}
	cfg.merge(parsed)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("structures.yaml: %w", err)
	}
	return cfg, nil
}

func validateSchema(doc any) error {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("structures.schema.json", schemaJSON)
	})
	if schemaErr != nil {
		return schemaErr
	}
	// The validator expects JSON-decoded values.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}

// merge copies every section the file set over the defaults.
func (c *Config) merge(o Config) {
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.StructureSet != "" {
		c.StructureSet = o.StructureSet
	}
	if o.Pool != nil {
		c.Pool = o.Pool
	}
	if o.Frequency != nil {
		c.Frequency = o.Frequency
	}
	if o.Placement != nil {
		c.Placement = o.Placement
	}
	if o.Registry != nil {
		c.Registry = o.Registry
	}
	if o.Biomes != nil {
		c.Biomes = o.Biomes
	}
	if o.Sampler.Kind != "" {
		c.Sampler = o.Sampler
	}
	if o.Locate.MaxRadius != 0 {
		c.Locate.MaxRadius = o.Locate.MaxRadius
	}
	if o.Locate.SampleY != 0 {
		c.Locate.SampleY = o.Locate.SampleY
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.StructureSet = strings.TrimSpace(c.StructureSet)
	for i := range c.Pool {
		c.Pool[i].ID = strings.TrimSpace(c.Pool[i].ID)
	}
	c.Sampler.Kind = strings.ToLower(strings.TrimSpace(c.Sampler.Kind))
	if c.Sampler.Kind == "" {
		c.Sampler.Kind = "region"
	}
	if c.Sampler.RegionSize <= 0 {
		c.Sampler.RegionSize = 256
	}
	if c.Locate.MaxRadius <= 0 {
		c.Locate.MaxRadius = 100
	}
}

func (c Config) Validate() error {
	c.Normalize()
	if c.StructureSet == "" {
		return fmt.Errorf("structure_set must not be empty")
	}
	if len(c.Pool) == 0 {
		return fmt.Errorf("pool must not be empty")
	}
	seen := map[string]bool{}
	for i, e := range c.Pool {
		if seen[e.ID] {
			return fmt.Errorf("pool[%d] duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
	}
	for p, f := range c.Frequency {
		if f < 0 || f > 1 {
			return fmt.Errorf("frequency %q must be in [0,1], got %v", p, f)
		}
	}
	for id, r := range c.Registry {
		if r.Spacing <= r.Separation || r.Separation < 0 {
			return fmt.Errorf("registry %s spacing must be > separation >= 0", id)
		}
	}
	if len(c.Biomes) == 0 {
		return fmt.Errorf("biomes must not be empty")
	}
	switch c.Sampler.Kind {
	case "region", "noise":
	case "fixed":
		if _, ok := c.Biomes[c.Sampler.Biome]; !ok {
			return fmt.Errorf("sampler biome %q not found in biomes", c.Sampler.Biome)
		}
	default:
		return fmt.Errorf("unknown sampler kind %q", c.Sampler.Kind)
	}
	for _, b := range c.Sampler.Bands {
		if _, ok := c.Biomes[b]; !ok {
			return fmt.Errorf("sampler band %q not found in biomes", b)
		}
	}
	return nil
}

// Warnings lists patterns that can never match anything. They are kept in
// the tables and simply expand to nothing.
func (c Config) Warnings() []string {
	var out []string
	for _, e := range c.Pool {
		for p := range e.Weights {
			if !pattern.Valid(p) {
				out = append(out, fmt.Sprintf("pool %q: pattern %q is malformed and matches nothing", e.ID, p))
			}
		}
	}
	for p := range c.Frequency {
		if !pattern.Valid(p) {
			out = append(out, fmt.Sprintf("frequency: pattern %q is malformed and matches nothing", p))
		}
	}
	sort.Strings(out)
	return out
}

// Order returns pool ids in file order.
func (c Config) Order() []string {
	out := make([]string, 0, len(c.Pool))
	for _, e := range c.Pool {
		out = append(out, e.ID)
	}
	return out
}

// Tables returns each pool entry's weight table.
func (c Config) Tables() map[string]pattern.RuleTable[int] {
	out := make(map[string]pattern.RuleTable[int], len(c.Pool))
	for _, e := range c.Pool {
		out[e.ID] = pattern.FromMap(e.Weights)
	}
	return out
}

func (c Config) FrequencyTable() pattern.RuleTable[float64] {
	return pattern.FromMap(c.Frequency)
}
