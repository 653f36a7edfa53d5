package ai

import (
	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/pathfind"
)

const (
	escapeTries     = 150
	noEscape        = -100000
	coverScore      = 100
	desperateScore  = 110
	unseenBonus     = 15
	spotterPenalty  = 10
	firePenalty     = 40
	dangerPenalty   = 100
	escapeDistScale = 10
)

// setupEscape looks for a reachable tile away from the nearest enemy and
// out of sight of as many enemies as possible. It first scans the square
// around the unit, then tries random tiles further out.
func (c *Controller) setupEscape() {
	u := c.unit
	here := u.Position()
	spottedBy := c.spottingUnits(here)
	c.selectNearestTarget()
	threat := c.aggro
	c.escapeTU = 0

	dist := 0
	if threat != nil {
		dist = battle.Distance(here, threat.Position())
	}

	search := c.b.TileSearch()
	bestScore := noEscape
	best := here
	for try := 0; try < escapeTries && bestScore <= coverScore; try++ {
		target := here
		var score int
		if try < len(search) {
			target = target.Add(search[try])
			score = coverScore
			if target == here {
				if spottedBy > 0 {
					// standing still is no good; try somewhere random
					target.X += c.b.Generate(-20, 20)
					target.Y += c.b.Generate(-20, 20)
				} else {
					score += unseenBonus
				}
			}
		} else {
			score = desperateScore
			target.X += c.b.Generate(-10, 10)
			target.Y += c.b.Generate(-10, 10)
			target.Z = min(max(0, target.Z+c.b.Generate(-1, 1)), c.b.Map.Height-1)
		}

		tile := c.b.Map.At(target)
		if tile == nil || !c.canReach(c.reachable, target) {
			continue
		}
		if threat != nil {
			score += (battle.Distance(target, threat.Position()) - dist) * escapeDistScale
		}
		spotters := c.spottingUnits(target)
		if c.spottingEnemies > 0 || spotters > 0 {
			if c.spottingEnemies <= spotters {
				score -= (1 + spotters - c.spottingEnemies) * spotterPenalty
			} else {
				score += (c.spottingEnemies - spotters) * spotterPenalty
			}
		}
		if tile.Fire() > 0 {
			score -= firePenalty
		}
		if tile.Dangerous() {
			score -= dangerPenalty
		}
		if score <= bestScore {
			continue
		}
		if target == here {
			bestScore, best, c.escapeTU = score, target, 1
		} else if c.pf.Calculate(u, target, nil, pathfind.Unlimited) {
			bestScore, best, c.escapeTU = score, target, c.pf.TotalTUCost()
		}
		c.pf.AbortPath()
	}

	c.escape = newProposal(ModeEscape, u)
	c.escape.Action.Target = best
	if bestScore > noEscape {
		c.escape.Action.Type = battle.ActionWalk
	}
}
