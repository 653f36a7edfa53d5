package engine

import "github.com/Garsondee/battlescape/internal/battle"

var (
	oneNorth = battle.Pos(0, -1, 0)
	oneEast  = battle.Pos(1, 0, 0)
	oneSouth = battle.Pos(0, 1, 0)
	oneWest  = battle.Pos(-1, 0, 0)
)

// Blockage is how much of a kind of power one part of a tile stops.
// Floors only matter vertically and block everything except HE, which
// they soften by 15.
func (e *TileEngine) Blockage(t *battle.Tile, part battle.PartKind, kind battle.DamageType) int {
	if t == nil {
		return 0
	}
	p := t.Part(part)
	if p == nil {
		return 0
	}
	if part == battle.PartFloor {
		if kind == battle.DamageHE {
			return 15
		}
		return 255
	}
	if t.IsUFODoorOpen(part) {
		return 0
	}
	return p.Block.For(kind)
}

// HorizontalBlockage is the power lost moving between two neighbouring
// tiles. Diagonals average the two walls on each side of the corner and
// the objects flanking it. The start tile's own object always counts.
func (e *TileEngine) HorizontalBlockage(start, end *battle.Tile, kind battle.DamageType) int {
	if start == nil || end == nil {
		return 0
	}
	sp := start.Position()
	dir := battle.VectorToDirection(end.Position().Sub(sp))
	if dir == battle.DirNone {
		return 0
	}
	at := func(off battle.Position) *battle.Tile { return e.m.At(sp.Add(off)) }
	bl := func(t *battle.Tile, part battle.PartKind) int { return e.Blockage(t, part, kind) }

	block := 0
	switch dir {
	case battle.DirNorth:
		block = bl(start, battle.PartNorthWall)
	case battle.DirNorthEast:
		block = (bl(start, battle.PartNorthWall)+bl(end, battle.PartWestWall))/2 +
			(bl(at(oneEast), battle.PartWestWall)+bl(at(oneEast), battle.PartNorthWall))/2
		block += (bl(at(oneNorth), battle.PartObject) + bl(at(oneEast), battle.PartObject)) / 2
	case battle.DirEast:
		block = bl(end, battle.PartWestWall)
	case battle.DirSouthEast:
		block = (bl(end, battle.PartWestWall)+bl(end, battle.PartNorthWall))/2 +
			(bl(at(oneEast), battle.PartWestWall)+bl(at(oneSouth), battle.PartNorthWall))/2
		block += (bl(at(oneSouth), battle.PartObject) + bl(at(oneEast), battle.PartObject)) / 2
	case battle.DirSouth:
		block = bl(end, battle.PartNorthWall)
	case battle.DirSouthWest:
		block = (bl(end, battle.PartNorthWall)+bl(start, battle.PartWestWall))/2 +
			(bl(at(oneSouth), battle.PartWestWall)+bl(at(oneSouth), battle.PartNorthWall))/2
		block += (bl(at(oneSouth), battle.PartObject) + bl(at(oneWest), battle.PartObject)) / 2
	case battle.DirWest:
		block = bl(start, battle.PartWestWall)
	case battle.DirNorthWest:
		block = (bl(start, battle.PartWestWall)+bl(start, battle.PartNorthWall))/2 +
			(bl(at(oneNorth), battle.PartWestWall)+bl(at(oneWest), battle.PartNorthWall))/2
		block += (bl(at(oneNorth), battle.PartObject) + bl(at(oneWest), battle.PartObject)) / 2
	}
	return block + bl(start, battle.PartObject)
}

// VerticalBlockage sums the floors crossed between two tiles on different
// levels, in the start column and, when the line also moves sideways, in
// the end column.
func (e *TileEngine) VerticalBlockage(start, end *battle.Tile, kind battle.DamageType) int {
	if start == nil || end == nil {
		return 0
	}
	sp, ep := start.Position(), end.Position()
	if sp.Z == ep.Z {
		return 0
	}
	lo, hi := sp.Z+1, ep.Z // floors of the levels entered going up
	if ep.Z < sp.Z {
		lo, hi = ep.Z+1, sp.Z // floors of the levels left going down
	}
	column := func(x, y int) int {
		block := 0
		for z := lo; z <= hi; z++ {
			block += e.Blockage(e.m.At(battle.Pos(x, y, z)), battle.PartFloor, kind)
		}
		return block
	}
	block := column(sp.X, sp.Y)
	if sp.X != ep.X || sp.Y != ep.Y {
		block += column(ep.X, ep.Y)
	}
	return block
}
