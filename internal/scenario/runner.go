package scenario

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/ai"
	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/config"
	"github.com/Garsondee/battlescape/internal/engine"
	"github.com/Garsondee/battlescape/internal/pathfind"
)

// maxActivations caps how often one unit may act in a single turn.
const maxActivations = 10

// Stats counts what happened while the runner drove the battle.
type Stats struct {
	Sides      int
	Decisions  map[ai.Mode]int
	Steps      int
	Shots      int
	Reactions  int
	Throws     int
	Launches   int
	Melee      int
	Psi        int
	DoorsOpen  int
	Chained    int // terrain charges set off by other blasts
	Interrupts int // walks cut short by a new sighting
}

// Runner plays a battle with every side under AI control. It is a thin
// driver for reports and the viewer, not an input loop.
type Runner struct {
	B  *battle.Battle
	E  *engine.TileEngine
	PF *pathfind.Pathfinder
	AI *ai.Registry

	cfg   *config.Config
	log   *zap.Logger
	stats Stats
}

// NewRunner wires engine, pathfinder and controllers to b, applies the
// battle rules from cfg and lights the map. Player units are auto-played
// too.
func NewRunner(b *battle.Battle, cfg *config.Config, log *zap.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg.Apply(b)
	e := engine.New(b, engine.Options{
		MaxViewDistance:       cfg.Battle.MaxViewDistance,
		MaxDarknessToSeeUnits: cfg.Battle.MaxDarknessToSeeUnits,
	}, log)
	pf := pathfind.New(b, log)
	reg := ai.NewRegistry(b, e, pf, ai.Options{
		Trace:           cfg.Log.TraceAI,
		ExplosionHeight: cfg.Battle.ExplosionHeight,
	}, log)
	for _, u := range b.Units {
		reg.For(u)
	}
	r := &Runner{
		B:     b,
		E:     e,
		PF:    pf,
		AI:    reg,
		cfg:   cfg,
		log:   log.Named("runner"),
		stats: Stats{Decisions: make(map[ai.Mode]int)},
	}
	r.Refresh()
	return r
}

// Refresh recomputes lighting and every unit's sight, e.g. after a load.
func (r *Runner) Refresh() {
	r.E.RecalculateLighting()
	for _, u := range r.B.Units {
		r.E.CalculateFOV(u)
	}
}

// Stats returns a copy of the counters.
func (r *Runner) Stats() Stats {
	s := r.stats
	s.Decisions = maps.Clone(r.stats.Decisions)
	return s
}

// Over reports whether one of the fighting sides has nobody left standing.
func (r *Runner) Over() bool {
	return len(r.B.Active(battle.FactionPlayer)) == 0 || len(r.B.Active(battle.FactionHostile)) == 0
}

// RunTurn plays every side once, player first, and hands the turn on.
// It stops early when the battle is over.
func (r *Runner) RunTurn() {
	turn := r.B.Turn
	for r.B.Turn == turn && !r.Over() {
		r.RunSide()
	}
}

// RunSide lets each unit of the active side act, then passes to the next
// side. Terrain burns and smoke drifts when a new full turn starts.
func (r *Runner) RunSide() {
	b := r.B
	side := b.Side
	if r.cfg.CheatingAt(b.Turn) && !b.Cheating {
		b.Cheating = true
		r.log.Info("ai goes omniscient", zap.Int("turn", b.Turn))
	}
	for _, u := range b.Active(side) {
		r.E.CalculateFOV(u)
	}
	for _, u := range b.Active(side) {
		c := r.AI.Get(u.ID)
		if c == nil || u.Faction != side || u.IsOut() {
			continue
		}
		r.activate(c)
		if r.Over() {
			break
		}
	}
	r.stats.Sides++
	r.log.Debug("side done", zap.Stringer("side", side), zap.Int("turn", b.Turn))

	b.NextSide()
	if b.Side == battle.FactionPlayer {
		burning := r.E.PrepareNewTurn()
		closed := r.E.CloseUFODoors()
		b.Log.Add(b.Turn, nil, "turn", "start", fmt.Sprintf("burning %d closed %d", burning, closed), float64(burning))
		r.E.RecalculateLighting()
	}
	for _, u := range b.Units {
		if u.Faction == b.Side {
			u.PrepareNewTurn()
		}
	}
	r.clearDanger()
}

// clearDanger drops danger flags; grenades here go off on landing.
func (r *Runner) clearDanger() {
	r.B.Map.Each(func(t *battle.Tile) { t.SetDangerous(false) })
}

// activate lets one unit think and act until it has nothing left to do.
func (r *Runner) activate(c *ai.Controller) {
	u := c.Unit()
	for i := 0; i < maxActivations; i++ {
		if u.IsOut() || !u.Placed() || u.Faction != r.B.Side {
			return
		}
		var a battle.Action
		c.Think(&a)
		r.stats.Decisions[c.Mode()]++
		if !r.Execute(&a) || a.FinalAction {
			return
		}
	}
}

// Execute carries out an action for its actor and reports whether anything
// happened.
func (r *Runner) Execute(a *battle.Action) bool {
	u := a.Actor
	if u == nil {
		return false
	}
	switch a.Type {
	case battle.ActionWalk:
		moved := r.walk(u, a.Target) > 0
		if a.FinalFacing != battle.DirNone && !u.IsOut() {
			u.Direction = a.FinalFacing
			r.E.CalculateFOV(u)
		}
		return moved
	case battle.ActionTurn:
		u.LookAt(a.Target)
		r.E.CalculateFOV(u)
		return false
	case battle.ActionSnapShot, battle.ActionAutoShot, battle.ActionAimedShot:
		if !r.pay(a) {
			return false
		}
		r.stats.Shots += r.E.Shoot(a)
	case battle.ActionThrow:
		if !r.pay(a) {
			return false
		}
		landing, ok := r.E.Throw(a)
		if u.Grenade == a.Weapon {
			u.Grenade = nil
		}
		r.stats.Throws++
		if ok && a.Weapon != nil {
			at := landing.ToVoxel()
			at.Z += 2
			r.E.Explode(at, a.Weapon.Power, a.Weapon.Damage, a.Weapon.ExplosionRadius(), u)
		}
	case battle.ActionLaunch:
		if !r.pay(a) {
			return false
		}
		r.E.Launch(a)
		r.stats.Launches++
	case battle.ActionHit:
		if !r.pay(a) {
			return false
		}
		r.E.Melee(a)
		r.stats.Melee++
	case battle.ActionMindControl, battle.ActionPanic:
		if !r.pay(a) {
			return false
		}
		r.stats.Psi++
		if r.E.PsiAttack(a) && a.Type == battle.ActionMindControl {
			r.switchSides(a.TargetUnit)
		}
	default:
		return false
	}
	r.stats.Chained += r.E.ResolveTerrainExplosions()
	return true
}

// pay spends the action's TU, working it out if the action came without.
func (r *Runner) pay(a *battle.Action) bool {
	tu := a.TU
	if tu == 0 {
		tu = a.Actor.ActionTU(a.Type, a.Weapon)
	}
	return a.Actor.SpendTU(tu)
}

// switchSides hands a mind-controlled unit's controller a clean slate.
func (r *Runner) switchSides(u *battle.Unit) {
	r.AI.Drop(u.ID)
	r.AI.For(u)
	r.log.Info("mind controlled", zap.Int("unit", u.ID), zap.Stringer("faction", u.Faction))
}

// walk moves u along the route to target one step at a time. Doors in
// the way are opened, the walker looks around after every step and the
// other side may react. A new sighting stops the walk. It returns the
// number of steps taken.
func (r *Runner) walk(u *battle.Unit, target battle.Position) int {
	if !r.PF.Calculate(u, target, nil, pathfind.Unlimited) {
		return 0
	}
	defer func() {
		r.PF.AbortPath()
		r.E.CalculateUnitLighting()
	}()
	m := r.B.Map
	steps := 0
	for {
		dir := r.PF.DequeuePath()
		if dir == battle.DirNone {
			break
		}
		if dir < battle.DirUp {
			u.Direction = dir
			switch r.E.UnitOpensDoor(u) {
			case battle.DoorOpened:
				r.stats.DoorsOpen++
			case battle.DoorUFOOpening:
				// sliding doors take a moment; think again next activation
				r.stats.DoorsOpen++
				return steps
			case battle.DoorNotEnoughTU:
				return steps
			}
		}
		cost, dest := r.PF.TUCost(u.Position(), dir, u, nil, false)
		if cost >= pathfind.InvalidMoveCost || cost > u.TU || cost/2 > u.Energy {
			return steps
		}
		if err := m.PlaceUnit(u, dest); err != nil {
			return steps
		}
		u.SpendTU(cost)
		u.SpendEnergy(cost / 2)
		steps++
		r.stats.Steps++
		r.B.Log.AddVerbose(r.B.Turn, u, "move", "step", dest.String(), float64(cost))
		r.E.Fall(u)

		spotted := r.E.CalculateFOV(u)
		if ra, ok := r.E.CheckReactionFire(u, true); ok {
			r.stats.Reactions++
			r.stats.Shots += r.E.Shoot(&ra)
			r.stats.Chained += r.E.ResolveTerrainExplosions()
		}
		if u.IsOut() || !u.Placed() {
			return steps
		}
		if spotted {
			r.stats.Interrupts++
			return steps
		}
	}
	return steps
}
