package engine

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/Garsondee/battlescape/internal/battle"
)

// SightOriginVoxel is the voxel a unit looks and shoots from: a little
// below the top of its head, never poking through the ceiling.
func (e *TileEngine) SightOriginVoxel(u *battle.Unit) battle.Position {
	p := u.Position()
	o := battle.Position{
		X: p.X*battle.VoxelsX + battle.VoxelsX/2*u.Size,
		Y: p.Y*battle.VoxelsY + battle.VoxelsY/2*u.Size,
		Z: p.Z*battle.VoxelsZ + u.Height + u.FloatHeight - 4,
	}
	if t := e.m.At(p); t != nil {
		o.Z -= t.TerrainLevel()
	}
	top := (p.Z + 1) * battle.VoxelsZ
	if o.Z >= top {
		if above := e.m.At(p.Add(battle.Pos(0, 0, 1))); above == nil || !above.HasNoFloor(nil) {
			o.Z = top - 1
		}
	}
	return o
}

// eyeVoxel is the unscaled head-top origin used for spotting.
func (e *TileEngine) eyeVoxel(u *battle.Unit) battle.Position {
	p := u.Position()
	o := p.ToVoxel()
	o.X += battle.VoxelsX / 2 * (u.Size - 1)
	o.Y += battle.VoxelsY / 2 * (u.Size - 1)
	o.Z += u.Height + u.FloatHeight
	if t := e.m.At(p); t != nil {
		o.Z -= t.TerrainLevel()
	}
	return o
}

// canSpot applies the faction rules of spotting: players look for hostiles,
// hostiles for anyone else, civilians watch everybody.
func canSpot(viewer, other *battle.Unit) bool {
	switch viewer.Faction {
	case battle.FactionPlayer:
		return other.Faction == battle.FactionHostile
	case battle.FactionHostile:
		return other.Faction != battle.FactionHostile
	default:
		return other.Faction != battle.FactionNeutral
	}
}

// VisibleUnit checks whether viewer can see other and, if so, records the
// sighting on the viewer. The check is one-way: a taller or smoke-free
// viewer may see a unit that cannot see it back.
func (e *TileEngine) VisibleUnit(viewer, other *battle.Unit) bool {
	if other == nil || other == viewer || other.IsOut() || !other.Placed() || !canSpot(viewer, other) {
		return false
	}
	otherTile := e.m.At(other.Position())
	if otherTile == nil {
		return false
	}
	// alien eyes work in the dark
	if viewer.Faction == battle.FactionPlayer && otherTile.Shade() > e.opts.MaxDarknessToSeeUnits {
		return false
	}
	if battle.Distance(viewer.Position(), other.Position()) > e.opts.MaxViewDistance {
		return false
	}

	origin := e.eyeVoxel(viewer)
	var seenAt battle.Position
	seen := false
	base := other.Position()
	minH := base.Z*battle.VoxelsZ - otherTile.TerrainLevel() + other.FloatHeight
	maxH := minH + other.Height

	var traj []battle.Position
scan:
	for h := maxH; h > minH; h -= 2 {
		for _, cell := range battle.Footprint(base, other.Size) {
			target := cell.ToVoxel()
			target.Z = h
			traj = traj[:0]
			switch e.CalculateLine(origin, target, false, &traj, viewer) {
			case VoxelUnit:
				if len(traj) > 0 && e.occupiedBy(battle.VoxelToTile(traj[0]), other) {
					seen, seenAt = true, target
					break scan
				}
			case VoxelEmpty:
				seen, seenAt = true, target
				break scan
			}
		}
	}
	if !seen {
		return false
	}

	// Smoke thins sight by half its density for every tile the ray crosses.
	traj = traj[:0]
	e.CalculateLine(origin, seenAt, true, &traj, viewer)
	t := e.m.At(viewer.Position())
	maxView := e.opts.MaxViewDistance - t.Smoke()/2
	for _, v := range traj {
		if next := e.tileAtVoxel(v); next != nil && next != t {
			t = next
			maxView -= t.Smoke() / 2
		}
	}
	if battle.Distance(viewer.Position(), other.Position()) > maxView {
		return false
	}
	viewer.AddToVisible(other)
	return true
}

func (e *TileEngine) occupiedBy(p battle.Position, u *battle.Unit) bool {
	t := e.m.At(p)
	return t != nil && t.Unit() == u
}

// inSector reports whether an offset lies in the 90° cone a unit facing
// dir can see.
func inSector(dir battle.Direction, dx, dy int) bool {
	v := dir.Vector()
	if dir.Diagonal() {
		return dx*v.X >= 0 && dy*v.Y >= 0
	}
	along := dx*v.X + dy*v.Y
	perp := abs(dx*v.Y - dy*v.X)
	return along >= perp
}

// CalculateFOV rebuilds the unit's visible list and, for player units,
// discovers the terrain in view. It reports whether someone new came into
// view, which interrupts movement.
func (e *TileEngine) CalculateFOV(u *battle.Unit) bool {
	before := mapset.New[*battle.Unit]()
	for _, v := range u.VisibleUnits() {
		before.Put(v)
	}
	u.ClearVisible()
	if u.IsOut() || !u.Placed() {
		return false
	}
	center := u.Position()
	r := e.opts.MaxViewDistance
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r+r {
				continue
			}
			if !u.Turret360 && !inSector(u.Direction, dx, dy) {
				continue
			}
			for z := 0; z < e.m.Height; z++ {
				test := battle.Pos(center.X+dx, center.Y+dy, z)
				tile := e.m.At(test)
				if tile == nil {
					continue
				}
				if other := tile.Unit(); other != nil && !u.Sees(other) {
					e.VisibleUnit(u, other)
				}
				if u.Faction == battle.FactionPlayer {
					e.TileLine(center, test)
				}
			}
		}
	}
	spotted := false
	for _, v := range u.VisibleUnits() {
		switch u.Faction {
		case battle.FactionPlayer:
			v.Visible = true
		case battle.FactionHostile:
			v.TurnsSinceSpotted = 0
		}
		if !before.Has(v) {
			spotted = true
		}
	}
	return spotted
}

// CalculateFOVAround refreshes the current side's units near a changed
// spot, such as a door that just opened or a wall that was blown away.
func (e *TileEngine) CalculateFOVAround(p battle.Position) {
	for _, u := range e.b.Units {
		if u.Faction != e.b.Side || u.IsOut() || !u.Placed() {
			continue
		}
		if battle.Distance(p, u.Position()) < e.opts.MaxViewDistance {
			e.CalculateFOV(u)
		}
	}
}

// CanTargetUnit looks for a voxel on the unit at tile that a line from
// origin reaches unobstructed. With potential set the check is
// hypothetical: would potential be hittable if it stood on tile.
func (e *TileEngine) CanTargetUnit(origin battle.Position, tile *battle.Tile, potential, exclude *battle.Unit) (battle.Position, bool) {
	if tile == nil {
		return battle.Position{}, false
	}
	target := potential
	if target == nil {
		target = tile.Unit()
	}
	if target == nil {
		return battle.Position{}, false
	}
	hypothetical := potential != nil && tile.Unit() != potential
	base := tile.Position()
	minH := base.Z*battle.VoxelsZ - tile.TerrainLevel() + target.FloatHeight
	maxH := minH + target.Height
	center := (minH + maxH) / 2

	heights := []int{center}
	for h := maxH - 2; h > minH; h -= 4 {
		if h != center {
			heights = append(heights, h)
		}
	}
	offsets := []battle.Position{{}, {X: 0, Y: -3}, {X: 0, Y: 3}, {X: -3, Y: 0}, {X: 3, Y: 0}}
	mid := battle.Position{
		X: base.X*battle.VoxelsX + battle.VoxelsX/2*target.Size,
		Y: base.Y*battle.VoxelsY + battle.VoxelsY/2*target.Size,
	}

	var traj []battle.Position
	for _, h := range heights {
		for _, off := range offsets {
			scan := battle.Position{X: mid.X + off.X*target.Size, Y: mid.Y + off.Y*target.Size, Z: h}
			traj = traj[:0]
			switch e.CalculateLine(origin, scan, false, &traj, exclude) {
			case VoxelUnit:
				hit := battle.VoxelToTile(traj[0])
				for _, cell := range battle.Footprint(base, target.Size) {
					if cell == hit {
						return scan, true
					}
				}
			case VoxelEmpty:
				if hypothetical {
					return scan, true
				}
			}
		}
	}
	return battle.Position{}, false
}

// CanTargetTile looks for a voxel of one part of a tile reachable from
// origin.
func (e *TileEngine) CanTargetTile(origin battle.Position, tile *battle.Tile, part battle.PartKind, exclude *battle.Unit) (battle.Position, bool) {
	if tile == nil || tile.Part(part) == nil {
		return battle.Position{}, false
	}
	base := tile.Position().ToVoxel()
	base.X -= battle.VoxelsX / 2
	base.Y -= battle.VoxelsY / 2

	var candidates []battle.Position
	switch part {
	case battle.PartFloor:
		for _, xy := range [][2]int{{8, 8}, {4, 4}, {12, 12}, {4, 12}, {12, 4}} {
			candidates = append(candidates, base.Add(battle.Pos(xy[0], xy[1], 0)))
		}
	case battle.PartWestWall:
		for z := 2; z < battle.VoxelsZ; z += 4 {
			for _, y := range []int{8, 4, 12} {
				candidates = append(candidates, base.Add(battle.Pos(0, y, z)))
			}
		}
	case battle.PartNorthWall:
		for z := 2; z < battle.VoxelsZ; z += 4 {
			for _, x := range []int{8, 4, 12} {
				candidates = append(candidates, base.Add(battle.Pos(x, 0, z)))
			}
		}
	default:
		for z := 2; z < battle.VoxelsZ; z += 4 {
			for _, xy := range [][2]int{{8, 8}, {6, 6}, {10, 10}} {
				candidates = append(candidates, base.Add(battle.Pos(xy[0], xy[1], z)))
			}
		}
	}

	var traj []battle.Position
	for _, c := range candidates {
		if e.VoxelCheck(c, nil, true) != VoxelType(part) {
			continue
		}
		traj = traj[:0]
		if e.CalculateLine(origin, c, false, &traj, exclude) == VoxelType(part) && e.tileAtVoxel(traj[0]) == tile {
			return c, true
		}
	}
	return battle.Position{}, false
}

// InViewSector reports whether p lies inside the cone u is facing.
func InViewSector(u *battle.Unit, p battle.Position) bool {
	if u.Turret360 {
		return true
	}
	d := p.Sub(u.Position())
	return inSector(u.Direction, d.X, d.Y)
}

// FaceWindow returns the direction of a see-through wall bordering p, or
// DirNone when there is none.
func (e *TileEngine) FaceWindow(p battle.Position) battle.Direction {
	sides := []struct {
		tile *battle.Tile
		part battle.PartKind
		dir  battle.Direction
	}{
		{e.m.At(p), battle.PartNorthWall, battle.DirNorth},
		{e.m.At(p.Add(battle.Pos(1, 0, 0))), battle.PartWestWall, battle.DirEast},
		{e.m.At(p.Add(battle.Pos(0, 1, 0))), battle.PartNorthWall, battle.DirSouth},
		{e.m.At(p), battle.PartWestWall, battle.DirWest},
	}
	for _, s := range sides {
		if s.tile == nil {
			continue
		}
		w := s.tile.Part(s.part)
		if w != nil && !w.IsDoor() && w.TUCost(battle.MoveWalk) >= 255 && w.Block.Vision == 0 {
			return s.dir
		}
	}
	return battle.DirNone
}
