package ws

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	plog "structplace.ai/internal/persistence/log"
	"structplace.ai/internal/protocol"
	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/engine"
	"structplace.ai/internal/sim/placement"
)

// Query answers one request message. The reply is always a protocol message,
// an ERROR when the request cannot be served.
func (s *Server) Query(msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "malformed json")
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewError(base.RequestID, protocol.ErrProtoBadRequest, "bad protocol_version")
	}
	if base.RequestID == "" {
		base.RequestID = protocol.NewRequestID()
	}
	switch base.Type {
	case protocol.TypeLocate:
		var m protocol.LocateMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return protocol.NewError(base.RequestID, protocol.ErrBadRequest, err.Error())
		}
		m.RequestID = base.RequestID
		return s.Locate(m)
	case protocol.TypeDecide:
		var m protocol.DecideMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return protocol.NewError(base.RequestID, protocol.ErrBadRequest, err.Error())
		}
		m.RequestID = base.RequestID
		return s.Decide(m)
	case protocol.TypeResolve:
		return s.Resolve(base.RequestID)
	default:
		return protocol.NewError(base.RequestID, protocol.ErrUnsupported, fmt.Sprintf("unsupported message type %q", base.Type))
	}
}

func (s *Server) Locate(m protocol.LocateMsg) any {
	target := strings.TrimSpace(m.Target)
	if target == "" {
		return protocol.NewError(m.RequestID, protocol.ErrBadRequest, "target is required")
	}
	if m.MaxRadius < 0 {
		return protocol.NewError(m.RequestID, protocol.ErrBadRequest, "max_radius must not be negative")
	}

	var (
		reply any
		entry plog.LocateEntry
	)
	s.rt.View(func(e *engine.Engine) {
		seed := e.Seed()
		if m.Seed != nil {
			seed = *m.Seed
		}
		if !e.Pool().Contains(target) {
			msg := fmt.Sprintf("%s is not in the structure pool", target)
			if sug := e.Suggest(target, 1); len(sug) > 0 {
				msg += fmt.Sprintf("; did you mean %s?", sug[0])
			}
			reply = protocol.NewError(m.RequestID, protocol.ErrNotInPool, msg)
			return
		}
		start := placement.Vec3{X: m.Start[0], Y: m.Start[1], Z: m.Start[2]}
		began := time.Now()
		res := e.Locate(seed, target, start, m.MaxRadius)
		entry = plog.LocateEntry{
			Time:           began,
			RequestID:      m.RequestID,
			Seed:           seed,
			Target:         target,
			Start:          m.Start,
			Found:          res.Found,
			Chunk:          [2]int{res.Chunk.X, res.Chunk.Z},
			Pos:            [3]int{res.Pos.X, res.Pos.Y, res.Pos.Z},
			Biome:          res.Biome,
			ChunksSearched: res.ChunksSearched,
			Radius:         res.Radius,
			Millis:         time.Since(began).Milliseconds(),
		}
		out := protocol.LocateResultMsg{
			Type:            protocol.TypeLocateResult,
			ProtocolVersion: protocol.Version,
			RequestID:       m.RequestID,
			Found:           res.Found,
			Target:          target,
			Chunk:           entry.Chunk,
			Pos:             entry.Pos,
			Biome:           res.Biome,
			ChunksSearched:  res.ChunksSearched,
			Radius:          res.Radius,
			Message:         res.Message,
		}
		if res.Found {
			out.Distance = res.Distance(start)
		}
		reply = out
	})
	if entry.Target != "" && s.opts.Recorder != nil {
		s.opts.Recorder.Locate(entry)
	}
	return reply
}

func (s *Server) Decide(m protocol.DecideMsg) any {
	var (
		reply any
		entry plog.DecisionEntry
	)
	s.rt.View(func(e *engine.Engine) {
		seed := e.Seed()
		if m.Seed != nil {
			seed = *m.Seed
		}
		var b biome.Entity
		if id := strings.TrimSpace(m.Biome); id != "" {
			if !e.Universe().Has(id) {
				reply = protocol.NewError(m.RequestID, protocol.ErrBadRequest, fmt.Sprintf("unknown biome %q", id))
				return
			}
			b = e.Universe().Entity(id)
		}
		d := e.Decide(seed, m.Chunk[0], m.Chunk[1], b)
		entry = plog.DecisionEntry{
			Time:           time.Now(),
			RequestID:      m.RequestID,
			Seed:           seed,
			Chunk:          m.Chunk,
			Biome:          d.Biome,
			PlacementChunk: d.Placement,
			Frequency:      d.Frequency,
			Roll:           d.Roll,
			Gated:          d.Gated,
			StructureID:    d.StructureID,
		}
		reply = protocol.DecideResultMsg{
			Type:            protocol.TypeDecideResult,
			ProtocolVersion: protocol.Version,
			RequestID:       m.RequestID,
			Chunk:           m.Chunk,
			Biome:           d.Biome,
			PlacementChunk:  d.Placement,
			Frequency:       d.Frequency,
			Roll:            d.Roll,
			Gated:           d.Gated,
			StructureID:     d.StructureID,
		}
	})
	if !entry.Time.IsZero() && s.opts.Recorder != nil {
		s.opts.Recorder.Decision(entry)
	}
	return reply
}

func (s *Server) Resolve(requestID string) any {
	var out protocol.ResolveResultMsg
	s.rt.View(func(e *engine.Engine) {
		r := e.Resolved()
		out = protocol.ResolveResultMsg{
			Type:            protocol.TypeResolveResult,
			ProtocolVersion: protocol.Version,
			RequestID:       requestID,
			StructureSet:    r.StructureSet,
			Strategy:        e.Placer().Strategy().Kind(),
			Spacing:         r.Spacing,
			Separation:      r.Separation,
			Salt:            r.Salt,
			SpreadType:      string(r.Spread),
			LocateOffset:    [3]int{r.LocateOffset.X, r.LocateOffset.Y, r.LocateOffset.Z},
			Sources: map[string]string{
				"spacing":        string(r.Sources.Spacing),
				"separation":     string(r.Sources.Separation),
				"salt":           string(r.Sources.Salt),
				"spread_type":    string(r.Sources.Spread),
				"exclusion_zone": string(r.Sources.Exclusion),
				"locate_offset":  string(r.Sources.LocateOffset),
			},
			Warnings: r.Warnings,
		}
		if r.Exclusion != nil {
			out.Exclusion = &protocol.ExclusionRef{OtherSet: r.Exclusion.OtherSet, Chunks: r.Exclusion.Chunks}
		}
	})
	return out
}
