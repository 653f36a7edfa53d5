package ai

import (
	"math"

	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/pathfind"
)

const patrolTries = 5

// setupPatrol proposes walking to the next node of the patrol graph.
// Arriving at the goal makes it the new starting point.
func (c *Controller) setupPatrol() {
	u := c.unit
	c.patrol = newProposal(ModePatrol, u)

	if c.toNode != nil && u.Position() == c.toNode.Position {
		c.log.Debug("patrol node reached", zap.Int("node", c.toNode.ID))
		c.fromNode = c.toNode
		c.toNode.Free()
		c.toNode = nil
		if dir := c.e.FaceWindow(u.Position()); dir != battle.DirNone {
			u.Direction = dir
		}
	}
	if c.fromNode == nil {
		c.fromNode = c.closestNode()
	}

	for tries := patrolTries; c.toNode == nil && tries > 0; tries-- {
		scout := true
		if !c.b.BaseDefense {
			here := c.b.Map.At(u.Position())
			scout = c.b.Cheating || c.fromNode == nil || c.fromNode.Rank == 0 || (here != nil && here.Fire() > 0)
		} else if w := c.attack.Action.Weapon; u.Size == 1 && w != nil && w.Class == battle.ClassFirearm && !w.Damage.IsArea() {
			c.toNode = c.closestTargetNode()
		}
		if c.toNode == nil {
			c.toNode = c.b.PatrolNode(scout, u, c.fromNode)
			if c.toNode == nil {
				c.toNode = c.b.PatrolNode(!scout, u, c.fromNode)
			}
		}
		if c.toNode != nil {
			if !c.pf.Calculate(u, c.toNode.Position, nil, pathfind.Unlimited) {
				c.toNode = nil
			}
			c.pf.AbortPath()
		}
	}

	if c.toNode != nil {
		c.toNode.Allocate()
		c.patrol.Action.Type = battle.ActionWalk
		c.patrol.Action.Target = c.toNode.Position
	}
}

// closestNode is the nearest usable node on the unit's level.
func (c *Controller) closestNode() *battle.Node {
	u := c.unit
	var best *battle.Node
	bestDist := math.MaxInt
	for _, n := range c.b.Nodes {
		if n.Dummy || n.Position.Z != u.Position().Z || (u.Size > 1 && n.Small) {
			continue
		}
		if d := battle.DistanceSq(n.Position, u.Position(), false); d < bestDist {
			bestDist = d
			best = n
		}
	}
	return best
}

// closestTargetNode finds the nearest free base-defence target node.
func (c *Controller) closestTargetNode() *battle.Node {
	u := c.unit
	var best *battle.Node
	bestDist := math.MaxInt
	for _, n := range c.b.Nodes {
		if !n.IsTarget() || n.Allocated() || n.Dummy {
			continue
		}
		if t := c.b.Map.At(n.Position); t == nil || (t.Unit() != nil && t.Unit() != u) {
			continue
		}
		if d := battle.DistanceSq(n.Position, u.Position(), true); d < bestDist {
			bestDist = d
			best = n
		}
	}
	return best
}
