package pathfind

import "github.com/Garsondee/battlescape/internal/battle"

var (
	up   = battle.Pos(0, 0, 1)
	down = battle.Pos(0, 0, -1)
)

// mover bundles who is moving and how for one query.
type mover struct {
	u       *battle.Unit
	target  *battle.Unit
	move    battle.MovementType
	missile bool
}

func newMover(u, target *battle.Unit, missile bool) mover {
	mv := mover{u: u, target: target, move: u.Movement, missile: missile}
	if missile {
		mv.move = battle.MoveFly
	}
	return mv
}

func (mv mover) size() int { return max(1, mv.u.Size) }

func (mv mover) flying() bool { return mv.move == battle.MoveFly }

// IsBlocked reports whether a part of a tile stops u. Floors and objects
// also count other units and big walls; walls only block when impassable,
// or when closed doors stand in a missile's way.
func (p *Pathfinder) IsBlocked(t *battle.Tile, part battle.PartKind, u, missileTarget *battle.Unit) bool {
	return p.isBlocked(t, part, newMover(u, missileTarget, missileTarget != nil))
}

func (p *Pathfinder) isBlocked(t *battle.Tile, part battle.PartKind, mv mover) bool {
	if t == nil {
		return true
	}
	if part.IsWall() {
		return p.wallBlocks(t, part, mv)
	}
	if t.TUCost(part, mv.move) >= InvalidMoveCost {
		return true
	}
	if part == battle.PartObject && t.IsBigWall() {
		return true
	}
	if o := t.Unit(); o != nil && o != mv.u && o != mv.target && !o.IsOut() {
		return true
	}
	return false
}

func (p *Pathfinder) wallBlocks(t *battle.Tile, part battle.PartKind, mv mover) bool {
	if t == nil {
		return false
	}
	w := t.Part(part)
	if w == nil || t.IsUFODoorOpen(part) {
		return false
	}
	if mv.missile && w.IsDoor() {
		return true
	}
	return w.TUCost(mv.move) >= InvalidMoveCost
}

func (p *Pathfinder) wallTU(t *battle.Tile, part battle.PartKind, mv mover) int {
	if t == nil {
		return 0
	}
	w := t.Part(part)
	if w == nil || t.IsUFODoorOpen(part) {
		return 0
	}
	if w.Door == battle.DoorNormal {
		return OpenDoorCost
	}
	return w.TUCost(mv.move)
}

type wallRef struct {
	off  battle.Position
	part battle.PartKind
}

// crossedWalls lists the walls a step from a tile passes. A diagonal step
// passes the four walls meeting at the corner it cuts.
var crossedWalls = [8][]wallRef{
	battle.DirNorth: {{battle.Pos(0, 0, 0), battle.PartNorthWall}},
	battle.DirNorthEast: {
		{battle.Pos(0, 0, 0), battle.PartNorthWall}, {battle.Pos(1, -1, 0), battle.PartWestWall},
		{battle.Pos(1, 0, 0), battle.PartWestWall}, {battle.Pos(1, 0, 0), battle.PartNorthWall},
	},
	battle.DirEast: {{battle.Pos(1, 0, 0), battle.PartWestWall}},
	battle.DirSouthEast: {
		{battle.Pos(1, 1, 0), battle.PartWestWall}, {battle.Pos(1, 1, 0), battle.PartNorthWall},
		{battle.Pos(1, 0, 0), battle.PartWestWall}, {battle.Pos(0, 1, 0), battle.PartNorthWall},
	},
	battle.DirSouth: {{battle.Pos(0, 1, 0), battle.PartNorthWall}},
	battle.DirSouthWest: {
		{battle.Pos(-1, 1, 0), battle.PartNorthWall}, {battle.Pos(0, 0, 0), battle.PartWestWall},
		{battle.Pos(0, 1, 0), battle.PartWestWall}, {battle.Pos(0, 1, 0), battle.PartNorthWall},
	},
	battle.DirWest: {{battle.Pos(0, 0, 0), battle.PartWestWall}},
	battle.DirNorthWest: {
		{battle.Pos(0, 0, 0), battle.PartWestWall}, {battle.Pos(0, 0, 0), battle.PartNorthWall},
		{battle.Pos(0, -1, 0), battle.PartWestWall}, {battle.Pos(-1, 0, 0), battle.PartNorthWall},
	},
}

// wallCost returns the TU for the walls a step from s crosses, or false
// when one of them blocks.
func (p *Pathfinder) wallCost(s battle.Position, dir battle.Direction, mv mover) (int, bool) {
	cost := 0
	for _, w := range crossedWalls[dir] {
		t := p.m.At(s.Add(w.off))
		if p.wallBlocks(t, w.part, mv) {
			return 0, false
		}
		cost += p.wallTU(t, w.part, mv)
	}
	if dir.Diagonal() {
		cost /= 2
	}
	return cost, true
}

// cornerBlocked stops diagonal steps past solid objects on either side.
func (p *Pathfinder) cornerBlocked(s battle.Position, dir battle.Direction, mv mover) bool {
	v := dir.Vector()
	for _, f := range [2]battle.Position{s.Add(battle.Pos(v.X, 0, 0)), s.Add(battle.Pos(0, v.Y, 0))} {
		t := p.m.At(f)
		if t == nil {
			continue
		}
		if o := t.Part(battle.PartObject); o != nil && (o.BigWall || o.TUCost(mv.move) >= InvalidMoveCost) {
			return true
		}
	}
	return false
}

// splitFootprint reports a wall running through a large unit's footprint.
func (p *Pathfinder) splitFootprint(dest battle.Position, size int, mv mover) bool {
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			t := p.m.At(dest.Add(battle.Pos(x, y, 0)))
			if x > 0 && p.wallBlocks(t, battle.PartWestWall, mv) {
				return true
			}
			if y > 0 && p.wallBlocks(t, battle.PartNorthWall, mv) {
				return true
			}
		}
	}
	return false
}

// adjustLevel moves a horizontal step's destination up when leaving the
// top of a staircase, or down onto a staircase below an unfloored tile.
func (p *Pathfinder) adjustLevel(start, dest battle.Position, mv mover) battle.Position {
	st := p.m.At(start)
	if st != nil && st.TerrainLevel() <= -16 {
		aboveStart, aboveDest := p.m.At(start.Add(up)), p.m.At(dest.Add(up))
		if aboveStart != nil && aboveStart.Part(battle.PartFloor) == nil &&
			aboveDest != nil && !aboveDest.HasNoFloor(p.m.At(dest)) {
			return dest.Add(up)
		}
	}
	if !mv.flying() {
		if dt := p.m.At(dest); dt != nil && dt.HasNoFloor(p.m.Below(dt)) {
			if below := p.m.Below(dt); below != nil && below.TerrainLevel() <= -12 {
				return dest.Add(down)
			}
		}
	}
	return dest
}

// TUCost returns the cost of one step and where it actually ends, which
// differs from start+dir on stairs and falls. Impassable steps cost
// InvalidMoveCost. Every footprint cell of a large unit must be able to
// take the step; the dearest cell sets the price.
func (p *Pathfinder) TUCost(start battle.Position, dir battle.Direction, u, target *battle.Unit, missile bool) (int, battle.Position) {
	return p.tuCost(start, dir, newMover(u, target, missile))
}

func (p *Pathfinder) tuCost(start battle.Position, dir battle.Direction, mv mover) (int, battle.Position) {
	if dir == battle.DirUp || dir == battle.DirDown {
		return p.verticalCost(start, dir, mv)
	}
	if dir < battle.DirNorth || dir > battle.DirNorthWest || p.m.At(start) == nil {
		return InvalidMoveCost, start
	}
	size := mv.size()
	dest := p.adjustLevel(start, start.Add(dir.Vector()), mv)

	worst := 0
	burning := false
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			off := battle.Pos(x, y, 0)
			s, d := start.Add(off), dest.Add(off)
			st, dt := p.m.At(s), p.m.At(d)
			if st == nil || dt == nil {
				return InvalidMoveCost, start
			}
			if p.isBlocked(dt, battle.PartFloor, mv) || p.isBlocked(dt, battle.PartObject, mv) {
				return InvalidMoveCost, start
			}
			if !mv.flying() && dt.HasNoFloor(p.m.Below(dt)) {
				return InvalidMoveCost, start
			}
			if !mv.flying() && s.Z == d.Z && st.TerrainLevel()-dt.TerrainLevel() > maxStepUp {
				return InvalidMoveCost, start
			}
			wall, ok := p.wallCost(s, dir, mv)
			if !ok {
				return InvalidMoveCost, start
			}
			if dir.Diagonal() && p.cornerBlocked(s, dir, mv) {
				return InvalidMoveCost, start
			}
			cost := dt.TUCost(battle.PartFloor, mv.move) + dt.TUCost(battle.PartObject, mv.move) + wall
			if dt.Part(battle.PartFloor) == nil {
				cost += airCost
			}
			worst = max(worst, cost)
			if dt.Fire() > 0 {
				burning = true
			}
		}
	}
	if size > 1 && p.splitFootprint(dest, size, mv) {
		return InvalidMoveCost, start
	}
	if dir.Diagonal() {
		worst = worst * 3 / 2
	}
	// fire is costly but never a wall
	if burning && !mv.u.FireImmune && !mv.missile {
		worst += FireCost
	}
	return min(worst, InvalidMoveCost-1), dest
}

func (p *Pathfinder) verticalCost(start battle.Position, dir battle.Direction, mv mover) (int, battle.Position) {
	dest := start.Add(dir.Vector())
	cost := flyVerticalCost
	for _, c := range battle.Footprint(start, mv.size()) {
		st, dt := p.m.At(c), p.m.At(c.Add(dir.Vector()))
		if st == nil || dt == nil {
			return InvalidMoveCost, start
		}
		if dir == battle.DirUp {
			if !mv.flying() || !dt.HasNoFloor(st) {
				return InvalidMoveCost, start
			}
		} else {
			if !st.HasNoFloor(dt) {
				return InvalidMoveCost, start
			}
			if !mv.flying() {
				cost = FallCost
			}
		}
		if p.isBlocked(dt, battle.PartFloor, mv) || p.isBlocked(dt, battle.PartObject, mv) {
			return InvalidMoveCost, start
		}
	}
	return cost, dest
}

// ValidateUpDown checks a voluntary vertical move: 0 when possible, -1
// when a floor or the map edge is in the way, -2 when the unit cannot fly.
func (p *Pathfinder) ValidateUpDown(u *battle.Unit, start battle.Position, dir battle.Direction) int {
	if dir != battle.DirUp && dir != battle.DirDown {
		return -1
	}
	st, dt := p.m.At(start), p.m.At(start.Add(dir.Vector()))
	if st == nil || dt == nil {
		return -1
	}
	if u.Movement != battle.MoveFly {
		return -2
	}
	if dir == battle.DirUp && !dt.HasNoFloor(st) {
		return -1
	}
	if dir == battle.DirDown && !st.HasNoFloor(dt) {
		return -1
	}
	return 0
}
