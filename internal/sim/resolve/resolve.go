// Package resolve merges per-structure-set placement overrides with the
// values discovered from the host registry and hard-coded fallbacks.
package resolve

import (
	"fmt"
	"strings"

	"structplace.ai/internal/sim/placement"
)

const (
	DefaultSpacing    = 34
	DefaultSeparation = 8
	DefaultSalt       = 10387312
	DefaultSpread     = placement.Linear
)

type Source string

const (
	SourceConfig   Source = "config"
	SourceRegistry Source = "registry"
	SourceDefault  Source = "default"
)

// Exclusion references another structure set whose placements keep this
// one at a distance. It is carried through resolution only.
type Exclusion struct {
	OtherSet string `json:"other_set" yaml:"other_set"`
	Chunks   int    `json:"chunks" yaml:"chunks"`
}

// Override is the explicit per-structure-set configuration. Nil fields are unset.
type Override struct {
	Spacing    *int       `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	Separation *int       `json:"separation,omitempty" yaml:"separation,omitempty"`
	Salt       *int32     `json:"salt,omitempty" yaml:"salt,omitempty"`
	Spread     *string    `json:"spread_type,omitempty" yaml:"spread_type,omitempty"`
	Exclusion  *Exclusion `json:"exclusion_zone,omitempty" yaml:"exclusion_zone,omitempty"`
}

// Registry is what host registry introspection reports for a structure set.
type Registry struct {
	Spacing      int            `json:"spacing" yaml:"spacing"`
	Separation   int            `json:"separation" yaml:"separation"`
	Salt         int32          `json:"salt" yaml:"salt"`
	IsTriangular bool           `json:"is_triangular" yaml:"is_triangular"`
	LocateOffset placement.Vec3 `json:"locate_offset" yaml:"locate_offset"`
	Exclusion    *Exclusion     `json:"exclusion_zone,omitempty" yaml:"exclusion_zone,omitempty"`
}

type Sources struct {
	Spacing      Source `json:"spacing"`
	Separation   Source `json:"separation"`
	Salt         Source `json:"salt"`
	Spread       Source `json:"spread_type"`
	Exclusion    Source `json:"exclusion_zone"`
	LocateOffset Source `json:"locate_offset"`
}

type Resolved struct {
	StructureSet string               `json:"structure_set"`
	Spacing      int                  `json:"spacing"`
	Separation   int                  `json:"separation"`
	Salt         int32                `json:"salt"`
	Spread       placement.SpreadType `json:"spread_type"`
	LocateOffset placement.Vec3       `json:"locate_offset"`
	Exclusion    *Exclusion           `json:"exclusion_zone,omitempty"`

	Sources  Sources  `json:"sources"`
	Warnings []string `json:"warnings,omitempty"`
}

// Resolve picks every field from config, then registry, then defaults.
// Problems are reported as warnings; Resolve never fails.
func Resolve(setID string, overrides map[string]Override, registry map[string]Registry) Resolved {
	out := Resolved{
		StructureSet: setID,
		Spacing:      DefaultSpacing,
		Separation:   DefaultSeparation,
		Salt:         DefaultSalt,
		Spread:       DefaultSpread,
		Sources: Sources{
			Spacing:      SourceDefault,
			Separation:   SourceDefault,
			Salt:         SourceDefault,
			Spread:       SourceDefault,
			Exclusion:    SourceDefault,
			LocateOffset: SourceDefault,
		},
	}
	warn := func(format string, args ...any) {
		out.Warnings = append(out.Warnings, fmt.Sprintf(format, args...))
	}

	if reg, ok := registry[setID]; ok {
		if reg.Spacing > 0 {
			out.Spacing, out.Sources.Spacing = reg.Spacing, SourceRegistry
		} else {
			warn("registry spacing %d for %s is not positive; using default", reg.Spacing, setID)
		}
		if reg.Separation >= 0 {
			out.Separation, out.Sources.Separation = reg.Separation, SourceRegistry
		} else {
			warn("registry separation %d for %s is negative; using default", reg.Separation, setID)
		}
		out.Salt, out.Sources.Salt = reg.Salt, SourceRegistry
		out.Spread, out.Sources.Spread = placement.Linear, SourceRegistry
		if reg.IsTriangular {
			out.Spread = placement.Triangular
		}
		out.LocateOffset, out.Sources.LocateOffset = reg.LocateOffset, SourceRegistry
		if reg.Exclusion != nil {
			ex := *reg.Exclusion
			out.Exclusion, out.Sources.Exclusion = &ex, SourceRegistry
		}
	} else {
		warn("structure set %s not found in registry; using defaults", setID)
	}

	if ov, ok := overrides[setID]; ok {
		if ov.Spacing != nil {
			if *ov.Spacing > 0 {
				out.Spacing, out.Sources.Spacing = *ov.Spacing, SourceConfig
			} else {
				warn("configured spacing %d for %s is not positive; ignored", *ov.Spacing, setID)
			}
		}
		if ov.Separation != nil {
			if *ov.Separation >= 0 {
				out.Separation, out.Sources.Separation = *ov.Separation, SourceConfig
			} else {
				warn("configured separation %d for %s is negative; ignored", *ov.Separation, setID)
			}
		}
		if ov.Salt != nil {
			out.Salt, out.Sources.Salt = *ov.Salt, SourceConfig
		}
		if ov.Spread != nil {
			if st, err := placement.ParseSpread(*ov.Spread); err == nil {
				out.Spread, out.Sources.Spread = st, SourceConfig
			} else {
				warn("configured spread_type %q for %s is unknown; ignored", *ov.Spread, setID)
			}
		}
		if ov.Exclusion != nil {
			ex := *ov.Exclusion
			out.Exclusion, out.Sources.Exclusion = &ex, SourceConfig
		}
	}

	if out.Spacing <= out.Separation {
		fixed := out.Spacing - 1
		if fixed < 0 {
			fixed = 0
		}
		warn("separation %d (%s) must be below spacing %d (%s); lowered to %d",
			out.Separation, out.Sources.Separation, out.Spacing, out.Sources.Spacing, fixed)
		out.Separation = fixed
	}
	return out
}

// Strategy returns the placement variant described by r.
func (r Resolved) Strategy() placement.RandomSpread {
	return placement.RandomSpread{
		Spacing:      r.Spacing,
		Separation:   r.Separation,
		Salt:         r.Salt,
		Spread:       r.Spread,
		LocateOffset: r.LocateOffset,
	}
}

// Describe renders one "field = value (source)" line per field.
func (r Resolved) Describe() []string {
	ex := "none"
	if r.Exclusion != nil {
		ex = fmt.Sprintf("%s within %d chunks", r.Exclusion.OtherSet, r.Exclusion.Chunks)
	}
	off := r.LocateOffset
	lines := []string{
		fmt.Sprintf("spacing = %d (%s)", r.Spacing, r.Sources.Spacing),
		fmt.Sprintf("separation = %d (%s)", r.Separation, r.Sources.Separation),
		fmt.Sprintf("salt = %d (%s)", r.Salt, r.Sources.Salt),
		fmt.Sprintf("spread_type = %s (%s)", strings.ToLower(string(r.Spread)), r.Sources.Spread),
		fmt.Sprintf("exclusion_zone = %s (%s)", ex, r.Sources.Exclusion),
		fmt.Sprintf("locate_offset = %d,%d,%d (%s)", off.X, off.Y, off.Z, r.Sources.LocateOffset),
	}
	return lines
}
