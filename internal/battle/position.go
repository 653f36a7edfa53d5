package battle

import (
	"fmt"
	"math"
)

// Voxel dimensions of one tile.
const (
	VoxelsX = 16
	VoxelsY = 16
	VoxelsZ = 24
)

// Position is a tile (or voxel) coordinate.
type Position struct {
	X, Y, Z int
}

// Pos is shorthand for building a Position.
func Pos(x, y, z int) Position { return Position{X: x, Y: y, Z: z} }

func (p Position) Add(o Position) Position { return Position{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }
func (p Position) Sub(o Position) Position { return Position{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }

// Scale multiplies each axis independently.
func (p Position) Scale(o Position) Position { return Position{p.X * o.X, p.Y * o.Y, p.Z * o.Z} }

func (p Position) String() string { return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z) }

// ToVoxel returns the voxel at the centre of the tile's floor.
func (p Position) ToVoxel() Position {
	return Position{p.X*VoxelsX + VoxelsX/2, p.Y*VoxelsY + VoxelsY/2, p.Z * VoxelsZ}
}

// Distance is the rounded horizontal distance between two tiles.
func Distance(a, b Position) int {
	return int(math.Floor(math.Sqrt(float64(DistanceSq(a, b, false))) + 0.5))
}

// DistanceSq is the squared distance, optionally counting levels.
func DistanceSq(a, b Position, withZ bool) int {
	d := a.Sub(b)
	sq := d.X*d.X + d.Y*d.Y
	if withZ {
		sq += d.Z * d.Z
	}
	return sq
}

// VoxelToTile converts a voxel coordinate to the tile containing it.
func VoxelToTile(v Position) Position {
	return Position{floorDiv(v.X, VoxelsX), floorDiv(v.Y, VoxelsY), floorDiv(v.Z, VoxelsZ)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Direction of a single step. 0 is north (-Y) and values run clockwise;
// 8 and 9 are the vertical steps.
type Direction int

const (
	DirNorth Direction = iota
	DirNorthEast
	DirEast
	DirSouthEast
	DirSouth
	DirSouthWest
	DirWest
	DirNorthWest
	DirUp
	DirDown
	DirNone Direction = -1
)

var (
	dirX = [10]int{0, 1, 1, 1, 0, -1, -1, -1, 0, 0}
	dirY = [10]int{-1, -1, 0, 1, 1, 1, 0, -1, 0, 0}
	dirZ = [10]int{0, 0, 0, 0, 0, 0, 0, 0, 1, -1}
)

// Diagonal reports whether the direction is one of the four diagonals.
func (d Direction) Diagonal() bool { return d >= 0 && d < 8 && d%2 == 1 }

// Vector returns the unit step for the direction.
func (d Direction) Vector() Position {
	if d < 0 || d > DirDown {
		return Position{}
	}
	return Position{dirX[d], dirY[d], dirZ[d]}
}

// VectorToDirection maps a horizontal unit vector back to its direction,
// or DirNone if it isn't one.
func VectorToDirection(v Position) Direction {
	for i := 0; i < 8; i++ {
		if dirX[i] == v.X && dirY[i] == v.Y {
			return Direction(i)
		}
	}
	return DirNone
}

// DirectionTo returns the horizontal direction that best points from a to b.
func DirectionTo(a, b Position) Direction {
	dx, dy := sign(b.X-a.X), sign(b.Y-a.Y)
	if dx == 0 && dy == 0 {
		return DirNone
	}
	// Prefer the dominant axis when the offset is far from a true diagonal.
	ax, ay := abs(b.X-a.X), abs(b.Y-a.Y)
	if ax > 2*ay {
		dy = 0
	} else if ay > 2*ax {
		dx = 0
	}
	return VectorToDirection(Position{dx, dy, 0})
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
