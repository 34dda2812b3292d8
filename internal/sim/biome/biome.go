package biome

import (
	"sort"
	"strings"
)

// Entity is one classified biome: its id plus the tags it belongs to.
// Tags are stored without the leading '#'.
type Entity struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags,omitempty"`
}

// HasTag reports whether the entity carries tag (with or without '#').
func (e Entity) HasTag(tag string) bool {
	tag = strings.TrimPrefix(tag, "#")
	for _, t := range e.Tags {
		if strings.TrimPrefix(t, "#") == tag {
			return true
		}
	}
	return false
}

// Candidates returns the strings rule patterns are matched against:
// the id itself and every tag prefixed with '#'.
func (e Entity) Candidates() []string {
	out := make([]string, 0, 1+len(e.Tags))
	out = append(out, e.ID)
	for _, t := range e.Tags {
		out = append(out, "#"+strings.TrimPrefix(t, "#"))
	}
	return out
}

// Sampler classifies the biome at a world block position.
type Sampler func(x, y, z int) Entity

// Fixed returns a sampler that always reports e.
func Fixed(e Entity) Sampler {
	return func(int, int, int) Entity { return e }
}

// Universe is every biome id and tag the host knows about.
type Universe struct {
	BiomeIDs  []string
	TagIDs    []string
	BiomeTags map[string][]string
}

// NewUniverse builds a normalized universe from a biome -> tags table.
// Ids and tags are sorted so that iteration order is stable.
func NewUniverse(biomeTags map[string][]string) Universe {
	u := Universe{BiomeTags: make(map[string][]string, len(biomeTags))}
	tagSet := map[string]struct{}{}
	for id, tags := range biomeTags {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		norm := make([]string, 0, len(tags))
		seen := map[string]struct{}{}
		for _, t := range tags {
			t = strings.TrimPrefix(strings.TrimSpace(t), "#")
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			norm = append(norm, t)
			tagSet[t] = struct{}{}
		}
		sort.Strings(norm)
		u.BiomeTags[id] = norm
		u.BiomeIDs = append(u.BiomeIDs, id)
	}
	for t := range tagSet {
		u.TagIDs = append(u.TagIDs, t)
	}
	sort.Strings(u.BiomeIDs)
	sort.Strings(u.TagIDs)
	return u
}

// Entity returns the classified entity for id. Unknown ids carry no tags.
func (u Universe) Entity(id string) Entity {
	return Entity{ID: id, Tags: u.BiomeTags[id]}
}

// Has reports whether id is a known biome.
func (u Universe) Has(id string) bool {
	_, ok := u.BiomeTags[id]
	return ok
}
