package ai

import (
	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/pathfind"
)

const (
	ambushRange     = 10
	ambushGoodScore = 80
	windowBonus     = 25
)

// setupAmbush looks for a node near the unit that the closest known enemy
// can't see but will likely walk past, and the direction to face there.
func (c *Controller) setupAmbush() {
	u := c.unit
	c.ambush = newProposal(ModeAmbush, u)
	c.ambushTU = 0
	if !c.selectClosestKnownEnemy() {
		return
	}
	enemy := c.aggro
	enemyEye := c.e.SightOriginVoxel(enemy)

	best := 0
	var route []battle.Direction
	for _, n := range c.b.Nodes {
		pos := n.Position
		tile := c.b.Map.At(pos)
		if n.Dummy || tile == nil || pos.Z != u.Position().Z ||
			battle.Distance(pos, u.Position()) > ambushRange || tile.Dangerous() ||
			!c.canReach(c.reachableWithAttack, pos) {
			continue
		}
		if _, seen := c.e.CanTargetUnit(enemyEye, tile, u, enemy); seen || c.spottingUnits(pos) > 0 {
			continue
		}
		if !c.pf.Calculate(u, pos, nil, pathfind.Unlimited) {
			continue
		}
		tu := c.pf.TotalTUCost()
		score := 100 - tu
		// the enemy has to be able to get here too
		if !c.pf.Calculate(enemy, pos, nil, pathfind.Unlimited) {
			continue
		}
		if c.e.FaceWindow(pos) != battle.DirNone {
			score += windowBonus
		}
		if score > best {
			best = score
			route = c.pf.Path()
			c.ambushTU = tu
			c.ambush.Action.Target = pos
			if best > ambushGoodScore {
				break
			}
		}
	}
	c.pf.AbortPath()
	if best <= 0 {
		c.ambushTU = 0
		return
	}
	c.ambush.Action.Type = battle.ActionWalk

	// Walk the enemy along its route until it comes into our sights from
	// the ambush spot, and face that way.
	origin := c.ambush.Action.Target.ToVoxel()
	origin.Z += u.Height + u.FloatHeight - 4 - c.b.Map.At(c.ambush.Action.Target).TerrainLevel()
	cur := enemy.Position()
	for _, dir := range route {
		_, next := c.pf.TUCost(cur, dir, enemy, nil, false)
		if next == cur {
			break
		}
		cur = next
		if _, ok := c.e.CanTargetUnit(origin, c.b.Map.At(cur), enemy, u); ok {
			c.ambush.Action.FinalFacing = battle.DirectionTo(c.ambush.Action.Target, cur)
			break
		}
	}
}
