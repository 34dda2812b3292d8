// Package locate answers "where is the nearest cell that would actually
// choose structure X" by walking placement cells outward from a start point.
package locate

import (
	"fmt"

	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/mathx"
	"structplace.ai/internal/sim/placement"
	"structplace.ai/internal/sim/selection"
)

const (
	DefaultMaxRadius = 100
	DefaultSampleY   = 64
)

type Query struct {
	Target    string
	Start     placement.Vec3
	Seed      int64
	Placer    *placement.Placer
	Sampler   biome.Sampler
	Lottery   *selection.Lottery
	MaxRadius int // chunks, per axis
	SampleY   int
}

type Result struct {
	Found          bool               `json:"found"`
	Target         string             `json:"target"`
	Chunk          placement.ChunkPos `json:"chunk"`
	Pos            placement.Vec3     `json:"pos"`
	Biome          string             `json:"biome,omitempty"`
	ChunksSearched int                `json:"chunks_searched"`
	Radius         int                `json:"radius"`
	Message        string             `json:"message"`
}

// Distance is the per-axis chunk distance between the result and start.
func (r Result) Distance(start placement.Vec3) int {
	return mathx.MaxAbs(r.Chunk.X-placement.ChunkAt(start.X, start.Z).X, r.Chunk.Z-placement.ChunkAt(start.X, start.Z).Z)
}

// Locate returns the first placement chunk in spiral order whose lottery
// picks q.Target. Not finding one is a normal result, never an error.
func Locate(q Query) Result {
	if q.MaxRadius <= 0 {
		q.MaxRadius = DefaultMaxRadius
	}
	res := Result{Target: q.Target, Radius: q.MaxRadius}
	if q.Lottery == nil || !q.Lottery.Pool.Contains(q.Target) {
		res.Message = fmt.Sprintf("%s is not in the structure pool", q.Target)
		return res
	}

	start := placement.ChunkAt(q.Start.X, q.Start.Z)
	for c := range q.Placer.Placements(start, q.Seed, q.MaxRadius) {
		if mathx.AbsInt(c.X-start.X) > q.MaxRadius || mathx.AbsInt(c.Z-start.Z) > q.MaxRadius {
			continue
		}
		res.ChunksSearched++

		at := c.Middle(q.SampleY)
		e := q.Sampler(at.X, at.Y, at.Z)
		out := q.Lottery.Draw(q.Seed, c, e)
		if out.ID() != q.Target {
			continue
		}
		res.Found = true
		res.Chunk = c
		res.Biome = e.ID
		res.Pos = c.Origin().Add(q.Placer.LocateOffset())
		res.Message = fmt.Sprintf("found %s at %d, %d, %d in %s after %d chunks",
			q.Target, res.Pos.X, res.Pos.Y, res.Pos.Z, e.ID, res.ChunksSearched)
		return res
	}
	res.Message = fmt.Sprintf("no %s within %d chunks (%d placement chunks examined)",
		q.Target, q.MaxRadius, res.ChunksSearched)
	return res
}
