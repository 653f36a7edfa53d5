package game

import (
	"image/color"

	"github.com/Garsondee/battlescape/internal/battle"
)

// Overlay selects what the tile layer shows.
type Overlay int

const (
	OverlayTerrain    Overlay = iota // parts, doors, objects
	OverlayFire                      // fire, smoke, charges, danger
	OverlayLight                     // darkness per tile
	OverlayVisibility                // discovery and sight lines
	overlayCount
)

func (o Overlay) String() string {
	switch o {
	case OverlayTerrain:
		return "terrain"
	case OverlayFire:
		return "fire/smoke"
	case OverlayLight:
		return "light"
	case OverlayVisibility:
		return "visibility"
	default:
		return "unknown"
	}
}

var (
	colVoid      = color.RGBA{R: 8, G: 8, B: 10, A: 255}
	colFloor     = color.RGBA{R: 92, G: 92, B: 86, A: 255}
	colGrass     = color.RGBA{R: 58, G: 96, B: 48, A: 255}
	colScorched  = color.RGBA{R: 40, G: 34, B: 30, A: 255}
	colRoof      = color.RGBA{R: 110, G: 78, B: 56, A: 255}
	colLamp      = color.RGBA{R: 150, G: 140, B: 90, A: 255}
	colWall      = color.RGBA{R: 200, G: 200, B: 190, A: 255}
	colWindow    = color.RGBA{R: 120, G: 180, B: 230, A: 255}
	colDoor      = color.RGBA{R: 190, G: 130, B: 60, A: 255}
	colDoorOpen  = color.RGBA{R: 190, G: 130, B: 60, A: 90}
	colUFODoor   = color.RGBA{R: 120, G: 220, B: 200, A: 255}
	colRubble    = color.RGBA{R: 120, G: 110, B: 100, A: 160}
	colTree      = color.RGBA{R: 30, G: 70, B: 30, A: 255}
	colBush      = color.RGBA{R: 60, G: 120, B: 50, A: 220}
	colCrate     = color.RGBA{R: 140, G: 100, B: 50, A: 255}
	colBarrel    = color.RGBA{R: 200, G: 50, B: 40, A: 255}
	colBigWall   = color.RGBA{R: 150, G: 150, B: 145, A: 255}
	colStairs    = color.RGBA{R: 130, G: 130, B: 160, A: 255}
	colObject    = color.RGBA{R: 160, G: 120, B: 160, A: 255}
	colFire      = color.RGBA{R: 255, G: 110, B: 20, A: 255}
	colSmoke     = color.RGBA{R: 180, G: 180, B: 180, A: 255}
	colExplosive = color.RGBA{R: 255, G: 220, B: 0, A: 200}
	colDanger    = color.RGBA{R: 220, G: 40, B: 220, A: 120}
	colHidden    = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// factionColors are the unit disc colours.
var factionColors = map[battle.Faction]color.RGBA{
	battle.FactionPlayer:  {R: 70, G: 140, B: 230, A: 255},
	battle.FactionHostile: {R: 220, G: 70, B: 70, A: 255},
	battle.FactionNeutral: {R: 220, G: 200, B: 90, A: 255},
}

// floorColor is the base fill of a tile in the terrain overlay.
func floorColor(t *battle.Tile) color.RGBA {
	f := t.Part(battle.PartFloor)
	if f == nil {
		return colVoid
	}
	switch f.Name {
	case "grass":
		return colGrass
	case "scorched":
		return colScorched
	case "roof":
		return colRoof
	case "lamp_floor":
		return colLamp
	default:
		return colFloor
	}
}

// wallColor returns the edge colour of a wall part, and false when the
// edge is empty.
func wallColor(t *battle.Tile, part battle.PartKind) (color.RGBA, bool) {
	w := t.Part(part)
	if w == nil {
		return color.RGBA{}, false
	}
	switch {
	case w.Door == battle.DoorUFO:
		if t.IsUFODoorOpen(part) {
			return colDoorOpen, true
		}
		return colUFODoor, true
	case w.Door == battle.DoorNormal:
		return colDoor, true
	case isOpenDoor(w.Name):
		return colDoorOpen, true
	case w.TUWalk == 0:
		return colRubble, true
	case w.Block.Vision == 0:
		return colWindow, true
	default:
		return colWall, true
	}
}

func isOpenDoor(name string) bool {
	return name == "door_west_open" || name == "door_north_open"
}

// objectColor returns the fill for the object part, and false when the
// tile has none.
func objectColor(t *battle.Tile) (color.RGBA, bool) {
	o := t.Part(battle.PartObject)
	if o == nil {
		return color.RGBA{}, false
	}
	switch {
	case o.Explosive > 0:
		return colBarrel, true
	case o.BigWall:
		return colBigWall, true
	case o.Stairs:
		return colStairs, true
	case o.Name == "tree" || o.Name == "stump":
		return colTree, true
	case o.Name == "bush":
		return colBush, true
	case o.Name == "crate":
		return colCrate, true
	case o.Name == "rubble":
		return colRubble, true
	default:
		return colObject, true
	}
}

// fireTint is the overlay for fire and smoke; alpha 0 means nothing to show.
// Fire beats smoke beats a primed charge beats a danger flag.
func fireTint(t *battle.Tile) color.RGBA {
	switch {
	case t.Fire() > 0:
		c := colFire
		c.A = uint8(min(255, 110+t.Fire()*30))
		return c
	case t.Smoke() > 0:
		c := colSmoke
		c.A = uint8(t.Smoke() * 15)
		return c
	case t.Explosive() > 0:
		return colExplosive
	case t.Dangerous():
		return colDanger
	default:
		return color.RGBA{}
	}
}

// shadeTint darkens a tile by its shade; alpha 0 when fully lit.
func shadeTint(t *battle.Tile) color.RGBA {
	return color.RGBA{A: uint8(t.Shade() * 15)}
}

// visibilityTint hides what the player side has not yet discovered.
func visibilityTint(t *battle.Tile) color.RGBA {
	if t.Discovered(battle.DiscoveredContent) {
		return color.RGBA{}
	}
	return colHidden
}

// tint returns the overlay colour painted over the terrain for o.
func tint(t *battle.Tile, o Overlay) color.RGBA {
	switch o {
	case OverlayFire:
		return fireTint(t)
	case OverlayLight:
		return shadeTint(t)
	case OverlayVisibility:
		return visibilityTint(t)
	default:
		return color.RGBA{}
	}
}
