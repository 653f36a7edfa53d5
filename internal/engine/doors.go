package engine

import (
	"fmt"

	"github.com/Garsondee/battlescape/internal/battle"
)

type doorSide struct {
	offset   battle.Position // tile holding the wall, relative to the unit
	part     battle.PartKind
	adjacent [2]battle.Position // neighbouring segments of a sliding door
	facing   [3]battle.Direction
}

// doorSides lists, for each wall around a unit, the facings that reach it.
var doorSides = []doorSide{
	{battle.Pos(0, 0, 0), battle.PartNorthWall, [2]battle.Position{battle.Pos(1, 0, 0), battle.Pos(-1, 0, 0)},
		[3]battle.Direction{battle.DirNorth, battle.DirNorthEast, battle.DirNorthWest}},
	{battle.Pos(1, 0, 0), battle.PartWestWall, [2]battle.Position{battle.Pos(1, -1, 0), battle.Pos(1, 1, 0)},
		[3]battle.Direction{battle.DirEast, battle.DirNorthEast, battle.DirSouthEast}},
	{battle.Pos(0, 1, 0), battle.PartNorthWall, [2]battle.Position{battle.Pos(1, 1, 0), battle.Pos(-1, 1, 0)},
		[3]battle.Direction{battle.DirSouth, battle.DirSouthEast, battle.DirSouthWest}},
	{battle.Pos(0, 0, 0), battle.PartWestWall, [2]battle.Position{battle.Pos(0, -1, 0), battle.Pos(0, 1, 0)},
		[3]battle.Direction{battle.DirWest, battle.DirSouthWest, battle.DirNorthWest}},
}

func (s doorSide) faces(d battle.Direction) bool {
	return s.facing[0] == d || s.facing[1] == d || s.facing[2] == d
}

// UnitOpensDoor opens a door in front of the unit. Hinged doors cost their
// TU and can be walked through at once; sliding doors open together with
// their neighbouring segments and take a moment.
func (e *TileEngine) UnitOpensDoor(u *battle.Unit) battle.DoorResult {
	pos := u.Position()
	for _, side := range doorSides {
		if !side.faces(u.Direction) {
			continue
		}
		t := e.m.At(pos.Add(side.offset))
		if t == nil {
			continue
		}
		part := t.Part(side.part)
		if part == nil || !part.IsDoor() || t.IsUFODoorOpen(side.part) {
			continue
		}
		if part.Door == battle.DoorNormal {
			cost := part.TUCost(u.Movement)
			if u.TU < cost {
				return battle.DoorNotEnoughTU
			}
			u.SpendTU(cost)
		}
		res := t.OpenDoor(side.part)
		if res == battle.DoorUFOOpening {
			for _, adj := range side.adjacent {
				if n := e.m.At(pos.Add(adj)); n != nil {
					if np := n.Part(side.part); np != nil && np.Door == battle.DoorUFO {
						n.OpenDoor(side.part)
					}
				}
			}
		}
		if res == battle.DoorOpened || res == battle.DoorUFOOpening {
			e.logEvent(u, "door", "open", fmt.Sprintf("%s of %s", side.part, t.Position()), float64(res))
			e.CalculateFOVAround(t.Position())
		}
		return res
	}
	return battle.DoorNoDoor
}
