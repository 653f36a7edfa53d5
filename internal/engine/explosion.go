package engine

import (
	"fmt"
	"math"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/battle"
)

// Angular sampling of blast rays in degrees.
const (
	explosionAzimuthStep   = 3
	explosionElevationStep = 10
)

// unitAtVoxel returns the unit whose silhouette covers the voxel, which may
// stand on the tile below when raised by terrain.
func (e *TileEngine) unitAtVoxel(v battle.Position) *battle.Unit {
	t := e.tileAtVoxel(v)
	if t == nil {
		return nil
	}
	if u := t.Unit(); u != nil {
		return u
	}
	if below := e.m.Below(t); below != nil {
		return below.Unit()
	}
	return nil
}

// Explode resolves a hit or blast centred on a voxel. Direct kinds hit one
// part or unit; area kinds cast rays out to maxRadius losing 10 power per
// tile plus whatever the terrain blocks. Each tile is affected once no
// matter how many rays reach it.
func (e *TileEngine) Explode(center battle.Position, power int, kind battle.DamageType, maxRadius int, attacker *battle.Unit) {
	centerTile := battle.VoxelToTile(center)
	if !kind.IsArea() {
		e.directHit(center, power, kind, attacker)
	} else {
		e.blast(center, power, kind, maxRadius, attacker)
	}
	e.removeCasualties()
	e.CalculateFOVAround(centerTile)
	e.CalculateTerrainLighting()
}

func (e *TileEngine) directHit(center battle.Position, power int, kind battle.DamageType, attacker *battle.Unit) {
	tile := e.tileAtVoxel(center)
	if tile == nil {
		return
	}
	switch hit := e.VoxelCheck(center, attacker, false); {
	case hit.IsTerrain():
		part := battle.PartKind(hit)
		dmg := e.b.Generate(power/4, power*3/4)
		if tile.DamagePart(part, dmg) {
			e.logEvent(attacker, "terrain", "destroyed", fmt.Sprintf("%s at %s", part, tile.Position()), float64(dmg))
		}
	case hit == VoxelUnit:
		victim := e.unitAtVoxel(center)
		if victim == nil {
			return
		}
		dmg := victim.Damage(e.b.Generate(0, power*2), kind)
		// conventional rounds also knock the wind out
		if kind == battle.DamageAP {
			victim.Stun(e.b.Generate(0, dmg/4))
		}
		e.notifyHit(victim, attacker)
		e.logEvent(victim, "fire", "hit", fmt.Sprintf("%s took %d", kind, dmg), float64(dmg))
	}
}

func (e *TileEngine) blast(center battle.Position, power int, kind battle.DamageType, maxRadius int, attacker *battle.Unit) {
	ct := battle.VoxelToTile(center)
	if e.m.At(ct) == nil {
		return
	}
	if kind == battle.DamageIncendiary {
		power /= 2
	}
	cx, cy, cz := float64(ct.X)+0.5, float64(ct.Y)+0.5, float64(ct.Z)+0.5

	affected := mapset.New[*battle.Tile]()
	var order []*battle.Tile
	var floors []floorHit

	elevations := []int{0}
	if e.m.Height > 1 {
		elevations = elevations[:0]
		for fi := -90; fi <= 90; fi += explosionElevationStep {
			elevations = append(elevations, fi)
		}
	}

	for _, fi := range elevations {
		sinFi, cosFi := math.Sincos(float64(fi) * math.Pi / 180)
		for te := 0; te < 360; te += explosionAzimuthStep {
			sinTe, cosTe := math.Sincos(float64(te) * math.Pi / 180)
			origin := e.m.At(ct)
			rem := power + 1
			for l := 0.0; rem > 0 && l <= float64(maxRadius); l++ {
				p := battle.Pos(
					int(math.Floor(cx+l*cosTe*cosFi)),
					int(math.Floor(cy+l*sinTe*cosFi)),
					int(math.Floor(cz+l*sinFi)),
				)
				dest := e.m.At(p)
				if dest == nil {
					break
				}
				rem -= e.HorizontalBlockage(origin, dest, kind) + e.VerticalBlockage(origin, dest, kind)
				if rem > 0 {
					if kind == battle.DamageHE {
						// terrain takes half, units between half and one and a half
						dest.SetExplosive(rem/2, battle.DamageHE, false)
					}
					if !affected.Has(dest) {
						affected.Put(dest)
						order = append(order, dest)
						e.affect(dest, rem, kind, attacker)
						if kind == battle.DamageHE {
							floors = e.floorAbove(dest, rem, floors)
						}
					}
				}
				rem -= 10
				origin = dest
			}
		}
	}

	if kind == battle.DamageHE {
		for _, t := range order {
			for _, part := range t.Detonate() {
				e.logEvent(attacker, "terrain", "destroyed", fmt.Sprintf("%s at %s", part, t.Position()), 0)
			}
		}
		for _, h := range floors {
			// already replaced by this blast's detonation
			if h.tile.Part(battle.PartFloor) != h.part {
				continue
			}
			h.tile.DestroyPart(battle.PartFloor)
			e.logEvent(attacker, "terrain", "destroyed", fmt.Sprintf("%s at %s", battle.PartFloor, h.tile.Position()), 0)
		}
	}
	e.logEvent(attacker, "explode", kind.String(), fmt.Sprintf("power %d radius %d at %s tiles %d", power, maxRadius, ct, len(order)), float64(power))
	e.log.Debug("explosion",
		zap.Stringer("kind", kind),
		zap.Int("power", power),
		zap.Int("radius", maxRadius),
		zap.Stringer("center", ct),
		zap.Int("tiles", len(order)))
}

// affect applies one blast's effect to a tile the first time a ray reaches
// it.
func (e *TileEngine) affect(dest *battle.Tile, power int, kind battle.DamageType, attacker *battle.Unit) {
	dest.SetDangerous(false)
	victim := dest.Unit()
	if victim != nil && victim.IsOut() {
		victim = nil
	}
	switch kind {
	case battle.DamageHE:
		if victim != nil {
			victim.Damage(e.b.Generate(power/2, power*3/2), kind)
			e.notifyHit(victim, attacker)
		}
	case battle.DamageStun:
		if victim != nil {
			victim.Damage(e.b.Generate(power/2, power*3/2), kind)
			e.notifyHit(victim, attacker)
		}
	case battle.DamageSmoke:
		// grenade smoke lingers six to fourteen turns
		if dest.Smoke() < 10 {
			dest.AddSmoke(e.b.Generate(power/10, 14))
		}
	case battle.DamageIncendiary:
		if dest.Fire() == 0 && dest.Ignite() {
			e.logEvent(attacker, "terrain", "ignite", dest.Position().String(), 0)
		}
		if victim != nil {
			victim.Damage(e.b.Generate(0, power/3), kind)
			victim.SetFire(e.b.Generate(1, 5))
			e.notifyHit(victim, attacker)
		}
	}
}

// floorHit is a floor knocked out from below, with the part it had when hit.
type floorHit struct {
	tile *battle.Tile
	part *battle.Terrain
}

// floorAbove records the floor over dest when half the blast beats its
// armor. The floor falls after detonation so one blast takes it only once.
func (e *TileEngine) floorAbove(dest *battle.Tile, power int, floors []floorHit) []floorHit {
	above := e.m.Above(dest)
	if above == nil {
		return floors
	}
	f := above.Part(battle.PartFloor)
	if f == nil || power/2 < f.Armor {
		return floors
	}
	for _, h := range floors {
		if h.tile == above {
			return floors
		}
	}
	return append(floors, floorHit{tile: above, part: f})
}

// removeCasualties takes units that are out off the map.
func (e *TileEngine) removeCasualties() {
	for _, u := range e.b.Units {
		if u.Placed() && u.IsOut() {
			e.m.RemoveUnit(u)
			e.logEvent(u, "unit", "out", fmt.Sprintf("health %d stun %d", u.Health, u.StunLevel), float64(u.Health))
		}
	}
}

// MarkDanger flags the tiles a primed explosive will reach so the AI keeps
// clear of them until it goes off.
func (e *TileEngine) MarkDanger(center battle.Position, radius int) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := center.Add(battle.Pos(dx, dy, 0))
			if battle.Distance(center, p) > radius {
				continue
			}
			if t := e.m.At(p); t != nil {
				t.SetDangerous(true)
			}
		}
	}
}

// CheckTerrainExplosions returns the first tile carrying an unexploded
// charge, or nil.
func (e *TileEngine) CheckTerrainExplosions() *battle.Tile {
	for i := 0; i < e.m.Size(); i++ {
		if t := e.m.TileAt(i); t.Explosive() > 0 {
			return t
		}
	}
	return nil
}

// ResolveTerrainExplosions sets off chained terrain charges until none are
// left and returns how many went off.
func (e *TileEngine) ResolveTerrainExplosions() int {
	n := 0
	for ; n < e.m.Size(); n++ {
		t := e.CheckTerrainExplosions()
		if t == nil {
			break
		}
		power, kind := t.Explosive(), t.ExplosiveKind()
		t.SetExplosive(0, kind, true)
		if !kind.IsArea() {
			kind = battle.DamageHE
		}
		center := t.Position().ToVoxel()
		center.Z += battle.VoxelsZ / 2
		e.log.Debug("chain explosion", zap.Stringer("at", t.Position()), zap.Int("power", power))
		e.Explode(center, power, kind, power/10, nil)
	}
	return n
}
