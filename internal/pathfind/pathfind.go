// Package pathfind plans unit movement on the battle map: step costs,
// shortest routes, the set of tiles a unit can reach and path previews.
package pathfind

import (
	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/battle"
)

const (
	// InvalidMoveCost marks a step that cannot be taken.
	InvalidMoveCost = 255
	// OpenDoorCost is what walking through a closed hinged door costs.
	OpenDoorCost = 4
	// FireCost is added for stepping into a burning tile.
	FireCost = 32
	// FallCost is the cost of dropping a level with nothing underfoot.
	FallCost = 0
	// Unlimited disables the TU cap of a path query.
	Unlimited = -1

	flyVerticalCost = 8
	airCost         = 4
	maxStepUp       = 8
)

// Pathfinder computes routes for one battle. It keeps the last computed
// path, which the caller drains step by step.
type Pathfinder struct {
	m   *battle.Map
	log *zap.Logger

	path    []battle.Direction
	totalTU int
	nodes   []searchNode
	preview []battle.Position
}

// New returns a pathfinder for b. A nil logger disables logging.
func New(b *battle.Battle, log *zap.Logger) *Pathfinder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pathfinder{
		m:     b.Map,
		log:   log.Named("pathfind"),
		nodes: make([]searchNode, b.Map.Size()),
	}
}

// Calculate plans a route for u to dest and keeps it as the current path.
// With a target unit and no TU cap the route is for a guided missile: it
// flies, ignores the target's own tile and cannot pass closed doors. A
// positive maxTU rejects anything dearer. It reports whether a path was
// found; on failure the previous path is cleared and nothing else changes.
func (p *Pathfinder) Calculate(u *battle.Unit, dest battle.Position, target *battle.Unit, maxTU int) bool {
	p.AbortPath()
	if u == nil || !u.Placed() || !p.m.InBounds(dest) {
		return false
	}
	mv := newMover(u, target, target != nil && maxTU == Unlimited)
	start := u.Position()

	// walkers land on the first floor below the requested tile
	if mv.move != battle.MoveFly {
		for dest.Z > 0 {
			t := p.m.At(dest)
			if !t.HasNoFloor(p.m.Below(t)) {
				break
			}
			dest.Z--
		}
	}
	for _, c := range battle.Footprint(dest, mv.size()) {
		t := p.m.At(c)
		if p.isBlocked(t, battle.PartFloor, mv) || p.isBlocked(t, battle.PartObject, mv) {
			return false
		}
	}
	if dest == start {
		return false
	}

	solver := "direct"
	ok := start.Z == dest.Z && !mv.missile && p.directPath(start, dest, mv, maxTU)
	if !ok {
		solver = "search"
		ok = p.search(start, dest, mv, maxTU)
	}
	if !ok {
		p.AbortPath()
		p.log.Debug("no path", zap.Int("unit", u.ID), zap.Stringer("from", start), zap.Stringer("to", dest), zap.Int("max_tu", maxTU))
		return false
	}
	p.log.Debug("path",
		zap.Int("unit", u.ID),
		zap.String("solver", solver),
		zap.Stringer("to", dest),
		zap.Int("steps", len(p.path)),
		zap.Int("tu", p.totalTU))
	return true
}

// DequeuePath pops the next step of the current path, or DirNone when it
// is exhausted.
func (p *Pathfinder) DequeuePath() battle.Direction {
	if len(p.path) == 0 {
		return battle.DirNone
	}
	d := p.path[0]
	p.path = p.path[1:]
	return d
}

// StartDirection is the first step of the current path.
func (p *Pathfinder) StartDirection() battle.Direction {
	if len(p.path) == 0 {
		return battle.DirNone
	}
	return p.path[0]
}

// TotalTUCost is the cost of the path as computed.
func (p *Pathfinder) TotalTUCost() int { return p.totalTU }

// PathLength is the number of steps left.
func (p *Pathfinder) PathLength() int { return len(p.path) }

// Path returns a copy of the remaining steps.
func (p *Pathfinder) Path() []battle.Direction {
	out := make([]battle.Direction, len(p.path))
	copy(out, p.path)
	return out
}

// AbortPath drops the current path.
func (p *Pathfinder) AbortPath() {
	p.path = nil
	p.totalTU = 0
}
