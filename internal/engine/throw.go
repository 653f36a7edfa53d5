package engine

import (
	"fmt"
	"math"

	"github.com/Garsondee/battlescape/internal/battle"
)

// ThrowRange is how many tiles a unit can throw.
func ThrowRange(u *battle.Unit) int {
	return min(20, max(5, u.Stats.Strength/2))
}

func (e *TileEngine) throwTargetVoxel(p battle.Position) battle.Position {
	v := p.ToVoxel()
	if t := e.m.At(p); t != nil {
		v.Z -= t.TerrainLevel()
	}
	return v
}

// ValidateThrow looks for an arc from origin that lands on the action's
// target tile, trying flatter throws first. It returns the curvature that
// works.
func (e *TileEngine) ValidateThrow(a *battle.Action, origin, target battle.Position) (float64, bool) {
	tile := e.m.At(a.Target)
	if tile == nil || a.Actor == nil {
		return 0, false
	}
	// nothing lands inside a solid object
	if o := tile.Part(battle.PartObject); o != nil && o.TUCost(battle.MoveWalk) >= 255 {
		return 0, false
	}
	if battle.Distance(a.Actor.Position(), a.Target) > ThrowRange(a.Actor) {
		return 0, false
	}
	var traj []battle.Position
	for curvature := 1.0; curvature < 5.0; curvature += 0.5 {
		traj = traj[:0]
		test := e.CalculateParabola(origin, target, true, &traj, a.Actor, curvature, 1.0)
		if test == VoxelOutOfBounds || len(traj) == 0 {
			continue
		}
		if battle.VoxelToTile(traj[len(traj)-1]) == a.Target {
			return curvature, true
		}
	}
	return 0, false
}

// Throw lobs the action's item at its target and returns the tile it comes
// to rest on. Poor throwers wander off line.
func (e *TileEngine) Throw(a *battle.Action) (battle.Position, bool) {
	if a.Actor == nil {
		return battle.Position{}, false
	}
	origin := e.SightOriginVoxel(a.Actor)
	target := e.throwTargetVoxel(a.Target)
	curvature, ok := e.ValidateThrow(a, origin, target)
	if !ok {
		return battle.Position{}, false
	}
	a.Actor.LookAt(a.Target)
	dev := (1 - math.Min(Accuracy(a), 1)) * 0.08
	accuracy := 1 + e.b.GenerateFloat(-dev, dev)

	var traj []battle.Position
	landing := a.Target
	test := e.CalculateParabola(origin, target, true, &traj, a.Actor, curvature, accuracy)
	if test != VoxelOutOfBounds && len(traj) > 0 {
		if p := battle.VoxelToTile(traj[len(traj)-1]); e.m.InBounds(p) {
			landing = p
		}
	}
	e.logEvent(a.Actor, "fire", "throw", fmt.Sprintf("at %s landed %s", a.Target, landing), curvature)
	return landing, true
}
