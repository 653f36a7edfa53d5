package pathfind

import (
	"github.com/zyedidia/generic/heap"

	"github.com/Garsondee/battlescape/internal/battle"
)

// searchNode is the per-tile bookkeeping of a search, indexed by tile.
type searchNode struct {
	g      int
	prev   int
	dir    battle.Direction
	seen   bool
	closed bool
}

type openEntry struct {
	idx int
	g   int
	f   int
}

func lessOpen(a, b openEntry) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.g > b.g
}

func (p *Pathfinder) resetNodes() {
	clear(p.nodes)
}

// heuristic is the cheapest possible walk between two tiles ignoring the
// level: four per straight step, six per diagonal.
func heuristic(a, b battle.Position) int {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	return 4*max(dx, dy) + 2*min(dx, dy)
}

// search runs A* over all ten directions.
func (p *Pathfinder) search(start, dest battle.Position, mv mover, maxTU int) bool {
	p.resetNodes()
	si, di := p.m.Index(start), p.m.Index(dest)
	if si < 0 || di < 0 {
		return false
	}
	p.nodes[si] = searchNode{prev: -1, seen: true}
	open := heap.New[openEntry](lessOpen)
	open.Push(openEntry{idx: si, f: heuristic(start, dest)})

	for open.Size() > 0 {
		e, _ := open.Pop()
		n := &p.nodes[e.idx]
		if n.closed || e.g > n.g {
			continue
		}
		n.closed = true
		if e.idx == di {
			break
		}
		cur := p.m.Coords(e.idx)
		for dir := battle.DirNorth; dir <= battle.DirDown; dir++ {
			cost, next := p.tuCost(cur, dir, mv)
			if cost >= InvalidMoveCost {
				continue
			}
			g := e.g + cost
			if maxTU != Unlimited && g > maxTU {
				continue
			}
			ni := p.m.Index(next)
			if ni < 0 {
				continue
			}
			nn := &p.nodes[ni]
			if nn.closed || (nn.seen && g >= nn.g) {
				continue
			}
			*nn = searchNode{g: g, prev: e.idx, dir: dir, seen: true}
			open.Push(openEntry{idx: ni, g: g, f: g + heuristic(next, dest)})
		}
	}
	if !p.nodes[di].closed {
		return false
	}

	var steps []battle.Direction
	for i := di; i != si; i = p.nodes[i].prev {
		steps = append(steps, p.nodes[i].dir)
	}
	for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
		steps[l], steps[r] = steps[r], steps[l]
	}
	p.path = steps
	p.totalTU = p.nodes[di].g
	return true
}

// directPath tries the straight line on one level. It gives up as soon as
// a step is impassable, lands off the line or costs something different
// from the steps before it, leaving those cases to the full search.
func (p *Pathfinder) directPath(start, dest battle.Position, mv mover, maxTU int) bool {
	var steps []battle.Direction
	total, base := 0, -1
	cur := start
	for _, next := range line2D(start, dest)[1:] {
		dir := battle.VectorToDirection(next.Sub(cur))
		cost, landed := p.tuCost(cur, dir, mv)
		if cost >= InvalidMoveCost || landed != next {
			return false
		}
		b := cost
		if dir.Diagonal() {
			b = cost * 2 / 3
		}
		if base != -1 && b != base {
			return false
		}
		base = b
		total += cost
		steps = append(steps, dir)
		cur = next
	}
	if maxTU != Unlimited && total > maxTU {
		return false
	}
	p.path = steps
	p.totalTU = total
	return true
}

// line2D lists the tiles of a Bresenham line on a's level, both ends
// included.
func line2D(a, b battle.Position) []battle.Position {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	out := []battle.Position{a}
	x, y, err := a.X, a.Y, dx+dy
	for x != b.X || y != b.Y {
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
		out = append(out, battle.Pos(x, y, a.Z))
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
