package ai

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/engine"
	"github.com/Garsondee/battlescape/internal/pathfind"
)

// Registry owns the controllers of one battle, keyed by unit id.
type Registry struct {
	b    *battle.Battle
	e    *engine.TileEngine
	pf   *pathfind.Pathfinder
	opts Options
	log  *zap.Logger

	byUnit map[int]*Controller
}

// NewRegistry builds an empty registry and hooks it to the engine so that
// reaction fire and hits reach the controllers.
func NewRegistry(b *battle.Battle, e *engine.TileEngine, pf *pathfind.Pathfinder, opts Options, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{b: b, e: e, pf: pf, opts: opts, log: log, byUnit: make(map[int]*Controller)}
	e.Aggro = func(u, target *battle.Unit) {
		if c := r.Get(u.ID); c != nil {
			c.SetAggroTarget(target)
		}
	}
	e.Hit = func(victim, attacker *battle.Unit) {
		if c := r.Get(victim.ID); c != nil {
			c.HitBy(attacker)
		}
	}
	return r
}

// Attach creates a controller for every unit not driven by the player.
func (r *Registry) Attach() {
	for _, u := range r.b.Units {
		if u.Faction != battle.FactionPlayer {
			r.For(u)
		}
	}
}

// For returns u's controller, creating it on first use.
func (r *Registry) For(u *battle.Unit) *Controller {
	if c, ok := r.byUnit[u.ID]; ok {
		return c
	}
	c := New(u, r.b, r.e, r.pf, r.opts, r.log)
	r.byUnit[u.ID] = c
	return c
}

// Get returns the controller for a unit id, or nil.
func (r *Registry) Get(id int) *Controller { return r.byUnit[id] }

// Drop forgets a unit's controller, e.g. after it is mind controlled.
func (r *Registry) Drop(id int) {
	if c, ok := r.byUnit[id]; ok && c.toNode != nil {
		c.toNode.Free()
	}
	delete(r.byUnit, id)
}

// States snapshots every controller for saving.
func (r *Registry) States() map[int]State {
	out := make(map[int]State, len(r.byUnit))
	for id, c := range r.byUnit {
		out[id] = c.State()
	}
	return out
}

// Restore recreates controllers from saved states. States of units no
// longer on the map are skipped.
func (r *Registry) Restore(states map[int]State) {
	for _, id := range slices.Sorted(maps.Keys(states)) {
		u := r.b.UnitByID(id)
		if u == nil {
			r.log.Warn("dropping controller state of unknown unit", zap.Int("unit", id))
			continue
		}
		r.For(u).Restore(states[id])
	}
}

// IDs lists the controlled unit ids in ascending order.
func (r *Registry) IDs() []int {
	return slices.Sorted(maps.Keys(r.byUnit))
}
