package ai

import (
	"math"

	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/pathfind"
)

// spotRange bounds who is considered a threat to a tile.
const spotRange = 20

// validTarget reports whether t is worth attacking. Enemies the unit has
// lost track of don't count; with assessDanger set, neither do units
// standing where a grenade is about to go off.
func (c *Controller) validTarget(t *battle.Unit, assessDanger, includeCivs bool) bool {
	if t == nil || t.IsOut() || !t.Placed() || t == c.unit {
		return false
	}
	if c.unit.Faction == battle.FactionHostile && !c.b.Cheating && c.intelligence() < t.TurnsSinceSpotted {
		return false
	}
	if assessDanger {
		if tile := c.b.Map.At(t.Position()); tile != nil && tile.Dangerous() {
			return false
		}
	}
	if t.Faction == c.unit.Faction {
		return false
	}
	if includeCivs {
		return true
	}
	return t.Faction == c.targetFaction
}

func (c *Controller) hostile() bool { return c.unit.Faction == battle.FactionHostile }

// countKnownTargets counts the enemies an alien remembers. Other factions
// know of nobody.
func (c *Controller) countKnownTargets() int {
	if !c.hostile() {
		return 0
	}
	n := 0
	for _, t := range c.b.Units {
		if c.validTarget(t, true, true) {
			n++
		}
	}
	return n
}

// selectNearestTarget counts the enemies in view and takes the closest one
// we can attack as the aggro target. Ranged units need a line of fire;
// melee units need somewhere to stand next to the target.
func (c *Controller) selectNearestTarget() int {
	u := c.unit
	c.aggro = nil
	c.closestDist = math.MaxInt
	visible := 0
	origin := c.e.SightOriginVoxel(u)
	for _, t := range c.b.Units {
		if !c.validTarget(t, true, c.hostile()) || !c.e.VisibleUnit(u, t) {
			continue
		}
		visible++
		dist := battle.Distance(u.Position(), t.Position())
		if dist >= c.closestDist {
			continue
		}
		if c.rifle || c.meleeWeapon() == nil {
			if _, ok := c.e.CanTargetUnit(origin, c.b.Map.At(t.Position()), nil, u); ok {
				c.closestDist = dist
				c.aggro = t
			}
		} else if _, ok := c.selectPointNearTarget(t, u.TU); ok {
			c.closestDist = dist
			c.aggro = t
		}
	}
	return visible
}

// selectClosestKnownEnemy focuses on the nearest enemy we know of, seen or
// not.
func (c *Controller) selectClosestKnownEnemy() bool {
	c.aggro = nil
	minDist := 255
	for _, t := range c.b.Units {
		if !c.validTarget(t, true, false) {
			continue
		}
		if d := battle.Distance(c.unit.Position(), t.Position()); d < minDist {
			minDist = d
			c.aggro = t
		}
	}
	return c.aggro != nil
}

// selectRandomTarget picks a known enemy, loosely preferring close ones.
func (c *Controller) selectRandomTarget() bool {
	c.aggro = nil
	best := -100
	for _, t := range c.b.Units {
		if !c.validTarget(t, true, c.hostile()) {
			continue
		}
		score := c.b.Generate(0, 20) - battle.Distance(c.unit.Position(), t.Position())
		if score > best {
			best = score
			c.aggro = t
		}
	}
	return c.aggro != nil
}

// selectPointNearTarget finds the cheapest reachable tile within maxTU from
// which the unit can strike t in melee.
func (c *Controller) selectPointNearTarget(t *battle.Unit, maxTU int) (battle.Position, bool) {
	u := c.unit
	size := max(1, u.Size)
	tsize := max(1, t.Size)
	best := math.MaxInt
	var point battle.Position
	found := false
	for z := -1; z <= 1; z++ {
		for x := -size; x <= tsize; x++ {
			for y := -size; y <= tsize; y++ {
				if x == 0 && y == 0 {
					continue
				}
				p := t.Position().Add(battle.Pos(x, y, z))
				if !c.canReach(c.reachable, p) {
					continue
				}
				dir := battle.DirectionTo(p, t.Position())
				if !c.validMeleeRange(p, dir, t) || !c.fits(p) {
					continue
				}
				if tile := c.b.Map.At(p); tile.Dangerous() {
					continue
				}
				if c.pf.Calculate(u, p, nil, maxTU) && c.pf.TotalTUCost() < best {
					point, best, found = p, c.pf.TotalTUCost(), true
				}
				c.pf.AbortPath()
			}
		}
	}
	return point, found
}

// fits reports whether the unit could stand at p.
func (c *Controller) fits(p battle.Position) bool {
	for _, cell := range battle.Footprint(p, c.unit.Size) {
		t := c.b.Map.At(cell)
		if t == nil {
			return false
		}
		if o := t.Unit(); o != nil && o != c.unit {
			return false
		}
	}
	return true
}

// validMeleeRange reports whether a unit standing at from and facing dir
// could hit t: t must occupy the tile in front and nothing solid may stand
// between them.
func (c *Controller) validMeleeRange(from battle.Position, dir battle.Direction, t *battle.Unit) bool {
	if dir < battle.DirNorth || dir > battle.DirNorthWest {
		return false
	}
	front := c.b.Map.At(from.Add(dir.Vector()))
	if front == nil || front.Unit() != t {
		return false
	}
	cost, _ := c.pf.TUCost(from, dir, c.unit, t, false)
	return cost < pathfind.InvalidMoveCost
}

// spottingUnits counts the known enemies within range that could shoot at
// the unit if it stood at pos.
func (c *Controller) spottingUnits(pos battle.Position) int {
	u := c.unit
	tile := c.b.Map.At(pos)
	if tile == nil {
		return 0
	}
	var potential *battle.Unit
	if pos != u.Position() {
		potential = u
	}
	n := 0
	for _, t := range c.b.Units {
		if !c.validTarget(t, false, false) || battle.Distance(pos, t.Position()) > spotRange {
			continue
		}
		origin := c.e.SightOriginVoxel(t)
		origin.Z -= 2
		if _, ok := c.e.CanTargetUnit(origin, tile, potential, t); ok {
			n++
		}
	}
	return n
}
