package engine

import (
	"math"

	"github.com/Garsondee/battlescape/internal/battle"
)

// VoxelType is what a traced voxel runs into.
type VoxelType int

const (
	VoxelEmpty       VoxelType = -1
	VoxelFloor       VoxelType = VoxelType(battle.PartFloor)
	VoxelWestWall    VoxelType = VoxelType(battle.PartWestWall)
	VoxelNorthWall   VoxelType = VoxelType(battle.PartNorthWall)
	VoxelObject      VoxelType = VoxelType(battle.PartObject)
	VoxelUnit        VoxelType = 4
	VoxelOutOfBounds VoxelType = 5
)

func (v VoxelType) String() string {
	switch v {
	case VoxelEmpty:
		return "empty"
	case VoxelFloor:
		return "floor"
	case VoxelWestWall:
		return "west_wall"
	case VoxelNorthWall:
		return "north_wall"
	case VoxelObject:
		return "object"
	case VoxelUnit:
		return "unit"
	case VoxelOutOfBounds:
		return "out_of_bounds"
	}
	return "unknown"
}

// IsTerrain reports whether the hit is one of the four tile parts.
func (v VoxelType) IsTerrain() bool { return v >= VoxelFloor && v <= VoxelObject }

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

// VoxelCheck reports what occupies a voxel. Units other than exclude are
// tested first unless excludeAll is set; open sliding doors are see-through.
func (e *TileEngine) VoxelCheck(v battle.Position, exclude *battle.Unit, excludeAll bool) VoxelType {
	tile := e.tileAtVoxel(v)
	if tile == nil {
		return VoxelOutOfBounds
	}
	x, y, lz := mod(v.X, battle.VoxelsX), mod(v.Y, battle.VoxelsY), mod(v.Z, battle.VoxelsZ)

	if !excludeAll {
		if unitOccupies(tile, lz, x, y, exclude) {
			return VoxelUnit
		}
		// a raised unit below can poke into this tile
		if below := e.m.Below(tile); below != nil && unitOccupies(below, lz+battle.VoxelsZ, x, y, exclude) {
			return VoxelUnit
		}
	}

	for _, p := range battle.Parts {
		part := tile.Part(p)
		if part == nil || tile.IsUFODoorOpen(p) {
			continue
		}
		if battle.LoftSolid(part.Loft[lz/2], x, y) {
			return VoxelType(p)
		}
	}
	return VoxelEmpty
}

// unitOccupies tests a voxel (x, y, lz relative to tile's base) against the
// silhouette of the tile's occupant.
func unitOccupies(tile *battle.Tile, lz, x, y int, exclude *battle.Unit) bool {
	u := tile.Unit()
	if u == nil || u == exclude || u.IsOut() {
		return false
	}
	bottom := -tile.TerrainLevel() + u.FloatHeight
	if lz < bottom || lz >= bottom+u.Height {
		return false
	}
	loft := uint8(battle.LoftPillar)
	if u.Size > 1 {
		loft = battle.LoftFull
	}
	return battle.LoftSolid(loft, x, y)
}

// bresenham walks a 3-D line from origin to target inclusive, stopping
// early when visit returns false.
func bresenham(origin, target battle.Position, visit func(p battle.Position) bool) {
	x0, y0, z0 := origin.X, origin.Y, origin.Z
	x1, y1, z1 := target.X, target.Y, target.Z

	swapXY := abs(y1-y0) > abs(x1-x0)
	if swapXY {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	swapXZ := abs(z1-z0) > abs(x1-x0)
	if swapXZ {
		x0, z0 = z0, x0
		x1, z1 = z1, x1
	}

	dx, dy, dz := abs(x1-x0), abs(y1-y0), abs(z1-z0)
	driftXY, driftXZ := dx/2, dx/2
	stepX, stepY, stepZ := 1, 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}
	if z0 > z1 {
		stepZ = -1
	}

	y, z := y0, z0
	for x := x0; ; x += stepX {
		cx, cy, cz := x, y, z
		if swapXZ {
			cx, cz = cz, cx
		}
		if swapXY {
			cx, cy = cy, cx
		}
		if !visit(battle.Position{X: cx, Y: cy, Z: cz}) || x == x1 {
			return
		}
		driftXY -= dy
		driftXZ -= dz
		if driftXY < 0 {
			y += stepY
			driftXY += dx
		}
		if driftXZ < 0 {
			z += stepZ
			driftXZ += dx
		}
	}
}

// CalculateLine traces a voxel line and returns the first obstruction.
// With store set the whole trajectory is appended to traj; otherwise only
// the point of impact is.
func (e *TileEngine) CalculateLine(origin, target battle.Position, store bool, traj *[]battle.Position, exclude *battle.Unit) VoxelType {
	result := VoxelEmpty
	bresenham(origin, target, func(p battle.Position) bool {
		if store && traj != nil {
			*traj = append(*traj, p)
		}
		if r := e.VoxelCheck(p, exclude, false); r != VoxelEmpty {
			if !store && traj != nil {
				*traj = append(*traj, p)
			}
			result = r
			return false
		}
		return true
	})
	return result
}

// TileLine traces between tile centres summing wall and floor blockage to
// vision. Every tile passed before the line is blocked is discovered, along
// with the east and south walls that face it.
func (e *TileEngine) TileLine(origin, target battle.Position) int {
	last := e.m.At(origin)
	blocked := 0
	bresenham(origin, target, func(p battle.Position) bool {
		t := e.m.At(p)
		if t == nil {
			return false
		}
		if b := e.HorizontalBlockage(last, t, battle.DamageNone) + e.VerticalBlockage(last, t, battle.DamageNone); b != 0 {
			blocked = b
			return false
		}
		t.SetDiscovered(battle.DiscoveredContent)
		if east := e.m.At(p.Add(battle.Pos(1, 0, 0))); east != nil {
			east.SetDiscovered(battle.DiscoveredWestWall)
		}
		if south := e.m.At(p.Add(battle.Pos(0, 1, 0))); south != nil {
			south.SetDiscovered(battle.DiscoveredNorthWall)
		}
		last = t
		return true
	})
	return blocked
}

// CalculateParabola traces a thrown arc. Curvature 1 is almost flat, 3 is
// a lob over a fence. Accuracy 1 is a perfect throw.
func (e *TileEngine) CalculateParabola(origin, target battle.Position, store bool, traj *[]battle.Position, exclude *battle.Unit, curvature, accuracy float64) VoxelType {
	d := target.Sub(origin)
	ro := math.Sqrt(float64(d.X*d.X + d.Y*d.Y + d.Z*d.Z))
	if ro == 0 {
		return e.VoxelCheck(origin, exclude, false)
	}
	fi := math.Acos(float64(d.Z)/ro) * accuracy
	te := math.Atan2(float64(d.Y), float64(d.X)) * accuracy

	zA := math.Sqrt(ro) * curvature
	zK := 4.0 * zA / ro / ro

	z := origin.Z
	// the arc must come down within a few times its length
	limit := int(ro)*4 + 64
	for i := 8; z > 0 && i < limit; i++ {
		fi64 := float64(i)
		p := battle.Position{
			X: int(float64(origin.X) + fi64*math.Cos(te)*math.Sin(fi)),
			Y: int(float64(origin.Y) + fi64*math.Sin(te)*math.Sin(fi)),
			Z: int(float64(origin.Z) + fi64*math.Cos(fi) - zK*(fi64-ro/2)*(fi64-ro/2) + zA),
		}
		if p.Z < 0 {
			// a steep fall can skip the ground layer
			p.Z = 0
		}
		z = p.Z
		if store && traj != nil {
			*traj = append(*traj, p)
		}
		if r := e.VoxelCheck(p, exclude, false); r != VoxelEmpty {
			if !store && traj != nil {
				*traj = append(*traj, p)
			}
			return r
		}
	}
	return VoxelEmpty
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
