package engine

import (
	"sync"

	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/locate"
	"structplace.ai/internal/sim/placement"
	"structplace.ai/internal/sim/resolve"
	"structplace.ai/internal/sim/tuning"
)

// Runtime guards the current Engine. Queries share the lock; Reload takes it
// exclusively, so no query ever sees a half-rebuilt engine.
type Runtime struct {
	mu      sync.RWMutex
	eng     *Engine
	reloads int
}

func NewRuntime(cfg tuning.Config) (*Runtime, error) {
	e, err := Build(cfg, biome.Universe{})
	if err != nil {
		return nil, err
	}
	return &Runtime{eng: e}, nil
}

// Reload rebuilds from cfg. On error the previous engine stays in place.
func (r *Runtime) Reload(cfg tuning.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := Build(cfg, biome.Universe{})
	if err != nil {
		return err
	}
	r.eng = e
	r.reloads++
	return nil
}

// Refresh drops every cache of the current engine and rebuilds it in place.
func (r *Runtime) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eng.Rebuild()
}

func (r *Runtime) Reloads() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reloads
}

// View runs fn with the shared lock held. fn must not retain e.
func (r *Runtime) View(fn func(e *Engine)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.eng)
}

func (r *Runtime) Decide(seed int64, chunkX, chunkZ int, b biome.Entity) Decision {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.eng.Decide(seed, chunkX, chunkZ, b)
}

func (r *Runtime) Locate(seed int64, target string, start placement.Vec3, maxRadius int) locate.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.eng.Locate(seed, target, start, maxRadius)
}

func (r *Runtime) Resolved() resolve.Resolved {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.eng.Resolved()
}

func (r *Runtime) Seed() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.eng.Seed()
}
