package engine

import (
	"fmt"
	"math"

	"github.com/Garsondee/battlescape/internal/battle"
)

// Deviation limits for a shot in degrees, at 0% and 100% accuracy.
const (
	maxDeviation = 10.0
	minDeviation = 1.0
	// a missed shot keeps flying until it leaves the map
	maxShotRange = battle.VoxelsX * 200
)

// Accuracy is the hit chance of an action as a fraction, combining the
// weapon's mode accuracy with the shooter's skill.
func Accuracy(a *battle.Action) float64 {
	w := a.Weapon
	if w == nil || a.Actor == nil {
		return 0
	}
	var mode int
	switch a.Type {
	case battle.ActionAimedShot:
		mode = w.AccuracyAimed
	case battle.ActionAutoShot:
		mode = w.AccuracyAuto
	case battle.ActionThrow:
		return float64(a.Actor.Stats.Throwing) / 100
	default:
		mode = w.AccuracySnap
	}
	return float64(mode) / 100 * float64(a.Actor.Stats.Firing) / 100
}

// targetVoxel picks the point to aim at on a tile: the unit, then the
// object, the walls and finally the floor.
func (e *TileEngine) targetVoxel(origin battle.Position, a *battle.Action) (battle.Position, bool) {
	tile := e.m.At(a.Target)
	if tile == nil {
		return battle.Position{}, false
	}
	if tile.Unit() != nil {
		if v, ok := e.CanTargetUnit(origin, tile, nil, a.Actor); ok {
			return v, true
		}
		v := a.Target.ToVoxel()
		v.Z += tile.Unit().Height/2 - tile.TerrainLevel()
		return v, true
	}
	for _, part := range []battle.PartKind{battle.PartObject, battle.PartNorthWall, battle.PartWestWall, battle.PartFloor} {
		if tile.Part(part) == nil {
			continue
		}
		if v, ok := e.CanTargetTile(origin, tile, part, a.Actor); ok {
			return v, true
		}
	}
	v := a.Target.ToVoxel()
	v.Z += battle.VoxelsZ / 2
	return v, true
}

// applyAccuracy bends the aim by a random angle that shrinks with accuracy
// and extends the line far past the target.
func (e *TileEngine) applyAccuracy(origin, target battle.Position, accuracy float64) battle.Position {
	base := maxDeviation - maxDeviation*math.Min(accuracy, 1) + minDeviation
	dRot := e.b.BoxMuller(0, 1) * base
	dTilt := e.b.BoxMuller(0, 1) * base / 10

	d := target.Sub(origin)
	rot := math.Atan2(float64(d.Y), float64(d.X))*180/math.Pi + dRot
	tilt := math.Atan2(float64(d.Z), math.Hypot(float64(d.X), float64(d.Y)))*180/math.Pi + dTilt

	sinFi, cosFi := math.Sincos(tilt * math.Pi / 180)
	sinTe, cosTe := math.Sincos(rot * math.Pi / 180)
	return battle.Position{
		X: origin.X + int(maxShotRange*cosTe*cosFi),
		Y: origin.Y + int(maxShotRange*sinTe*cosFi),
		Z: origin.Z + int(maxShotRange*sinFi),
	}
}

// Shoot fires the action's weapon at its target: once for snap and aimed
// shots, three times on auto. Each round that lands sets off the weapon's
// damage at the point of impact. It returns the number of rounds fired.
func (e *TileEngine) Shoot(a *battle.Action) int {
	if a.Actor == nil || a.Weapon == nil {
		return 0
	}
	rounds := 1
	if a.Type == battle.ActionAutoShot {
		rounds = 3
	}
	a.Actor.LookAt(a.Target)
	origin := e.SightOriginVoxel(a.Actor)
	aim, ok := e.targetVoxel(origin, a)
	if !ok {
		return 0
	}
	fired := 0
	for ; fired < rounds && a.Weapon.HasAmmo(); fired++ {
		a.Weapon.UseAmmo()
		// an accurate shot lands on the aim point
		end := aim
		if !e.b.Percent(int(Accuracy(a) * 100)) {
			end = e.applyAccuracy(origin, aim, Accuracy(a))
		}
		var traj []battle.Position
		hit := e.CalculateLine(origin, end, true, &traj, a.Actor)
		e.logEvent(a.Actor, "fire", "shot", fmt.Sprintf("%s at %s: %s", a.Type, a.Target, hit), float64(a.TU))
		if hit == VoxelOutOfBounds || hit == VoxelEmpty || len(traj) == 0 {
			continue
		}
		e.impact(traj, a.Weapon, a.Actor)
	}
	return fired
}

// impact detonates a weapon where a trajectory ends. Blasts go off in the
// last free voxel so the wall they hit doesn't swallow them.
func (e *TileEngine) impact(traj []battle.Position, w *battle.Weapon, attacker *battle.Unit) {
	at := traj[len(traj)-1]
	if w.Damage.IsArea() && len(traj) > 1 {
		at = traj[len(traj)-2]
	}
	e.Explode(at, w.Power, w.Damage, w.ExplosionRadius(), attacker)
}

// Launch flies a guided missile along the action's waypoints and blows it
// up at the first obstruction or the last waypoint.
func (e *TileEngine) Launch(a *battle.Action) bool {
	if a.Actor == nil || a.Weapon == nil || len(a.Waypoints) == 0 || !a.Weapon.HasAmmo() {
		return false
	}
	a.Weapon.UseAmmo()
	from := e.SightOriginVoxel(a.Actor)
	var traj []battle.Position
	for i, wp := range a.Waypoints {
		to := wp.ToVoxel()
		to.Z += battle.VoxelsZ / 2
		traj = traj[:0]
		hit := e.CalculateLine(from, to, true, &traj, a.Actor)
		if hit != VoxelEmpty || i == len(a.Waypoints)-1 {
			if hit == VoxelOutOfBounds || len(traj) == 0 {
				return false
			}
			e.logEvent(a.Actor, "fire", "launch", fmt.Sprintf("%d waypoints, %s at %s", len(a.Waypoints), hit, battle.VoxelToTile(traj[len(traj)-1])), float64(i))
			e.impact(traj, a.Weapon, a.Actor)
			return true
		}
		from = to
	}
	return false
}

// Melee resolves a close combat hit against the adjacent target.
func (e *TileEngine) Melee(a *battle.Action) bool {
	victim := a.TargetUnit
	if a.Actor == nil || a.Weapon == nil || victim == nil || victim.IsOut() {
		return false
	}
	a.Actor.LookAt(victim.Position())
	chance := a.Actor.Stats.Melee
	if chance == 0 {
		chance = a.Actor.Stats.Firing
	}
	if !e.b.Percent(chance) {
		e.logEvent(a.Actor, "fire", "melee_miss", battle.Label(victim), 0)
		return false
	}
	power := a.Weapon.Power
	if a.Weapon.StrengthApplied {
		power += a.Actor.Stats.Strength
	}
	center := victim.Position().ToVoxel()
	center.Z += victim.Height/2 + victim.FloatHeight - e.m.At(victim.Position()).TerrainLevel()
	center.X += battle.VoxelsX / 2 * (victim.Size - 1)
	center.Y += battle.VoxelsY / 2 * (victim.Size - 1)
	e.logEvent(a.Actor, "fire", "melee", battle.Label(victim), float64(power))
	e.Explode(center, power, a.Weapon.Damage, 0, a.Actor)
	return true
}
