package pathfind

import (
	"cmp"
	"slices"

	"github.com/zyedidia/generic/heap"

	"github.com/Garsondee/battlescape/internal/battle"
)

// FindReachable returns the indices of every tile u can reach with at most
// tuMax TU and its current energy, cheapest first, ties by index. The
// unit's own tile is always first.
func (p *Pathfinder) FindReachable(u *battle.Unit, tuMax int) []int {
	if u == nil || !u.Placed() {
		return nil
	}
	mv := newMover(u, nil, false)
	p.resetNodes()
	si := p.m.Index(u.Position())
	p.nodes[si] = searchNode{prev: -1, seen: true}
	open := heap.New[openEntry](lessOpen)
	open.Push(openEntry{idx: si})

	var found []openEntry
	for open.Size() > 0 {
		e, _ := open.Pop()
		n := &p.nodes[e.idx]
		if n.closed || e.g > n.g {
			continue
		}
		n.closed = true
		found = append(found, e)
		cur := p.m.Coords(e.idx)
		for dir := battle.DirNorth; dir <= battle.DirDown; dir++ {
			cost, next := p.tuCost(cur, dir, mv)
			if cost >= InvalidMoveCost {
				continue
			}
			g := e.g + cost
			// walking burns half its TU in energy
			if g > tuMax || g/2 > u.Energy {
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
			open.Push(openEntry{idx: ni, g: g, f: g})
		}
	}

	slices.SortFunc(found, func(a, b openEntry) int {
		if c := cmp.Compare(a.g, b.g); c != 0 {
			return c
		}
		return cmp.Compare(a.idx, b.idx)
	})
	out := make([]int, len(found))
	for i, e := range found {
		out[i] = e.idx
	}
	return out
}

// PreviewPath marks the current path on the map for u: each tile gets the
// step direction and the TU left on arrival, negative once the unit runs
// out of TU or energy.
func (p *Pathfinder) PreviewPath(u *battle.Unit) bool {
	p.RemovePreview()
	if u == nil || len(p.path) == 0 {
		return false
	}
	mv := newMover(u, nil, false)
	pos := u.Position()
	tu, energy := u.TU, u.Energy
	for _, dir := range p.path {
		cost, next := p.tuCost(pos, dir, mv)
		tu -= cost
		energy -= cost / 2
		left := tu
		if energy < 0 && left >= 0 {
			left = -1
		}
		for _, c := range battle.Footprint(next, mv.size()) {
			if t := p.m.At(c); t != nil {
				t.SetPreview(dir, left)
				p.preview = append(p.preview, c)
			}
		}
		pos = next
	}
	return true
}

// RemovePreview clears the markers left by PreviewPath.
func (p *Pathfinder) RemovePreview() bool {
	if len(p.preview) == 0 {
		return false
	}
	for _, c := range p.preview {
		if t := p.m.At(c); t != nil {
			t.SetPreview(battle.DirNone, 0)
		}
	}
	p.preview = nil
	return true
}
