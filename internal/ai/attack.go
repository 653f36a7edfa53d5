package ai

import (
	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/engine"
	"github.com/Garsondee/battlescape/internal/pathfind"
)

const (
	firePointGood   = 125
	firePointEnough = 70
	closeRange      = 4
	longRange       = 12
	maxSnapRange    = 20
	meleeScanRange  = 20
	nodeThrowRange  = 20
	primeHandling   = 4
)

// setupAttack proposes the best attack available: psi first, then guided
// missiles, then grenades, melee or gunfire at the nearest visible enemy.
// Failing those it looks for a spot to shoot from.
func (c *Controller) setupAttack() {
	u := c.unit
	if c.knownEnemies > 0 {
		if c.psiAction() {
			return
		}
		if c.blaster {
			c.wayPointAction()
		}
	}

	if c.selectNearestTarget() > 0 {
		if c.melee && c.rifle {
			c.selectMeleeOrRanged()
		}
		if u.Grenade != nil {
			c.grenadeAction()
		}
		if c.melee {
			c.meleeAction()
		}
		if c.rifle {
			c.projectileAction()
		}
	}

	if c.attack.Valid() {
		return
	}
	if c.spottingEnemies > 0 || u.Aggression < c.b.Generate(0, 3) {
		c.findFirePoint()
	}
}

// psiAction proposes panicking or mind controlling the weakest-willed
// known enemy.
func (c *Controller) psiAction() bool {
	u := c.unit
	amp := u.PsiAmp
	if amp == nil || u.Stats.PsiSkill <= 0 {
		return false
	}
	cost := u.ActionTU(battle.ActionPanic, amp)
	if u.OriginalFaction != u.Faction || u.TU <= c.escapeTU+cost || c.didPsi {
		return false
	}

	strength := u.Stats.PsiSkill * u.Stats.PsiStrength / 50
	bestChance := 0
	var victim *battle.Unit
	for _, t := range c.b.Units {
		if t.Size != 1 || t.OriginalFaction != c.targetFaction || !c.validTarget(t, true, false) {
			continue
		}
		if amp.LOSRequired && !u.Sees(t) {
			continue
		}
		chance := strength - battle.Distance(u.Position(), t.Position()) - t.Stats.PsiStrength + c.b.Generate(55, 105)
		if t.Stats.PsiSkill > 0 {
			chance -= int(float64(t.Stats.PsiSkill) * 0.4)
		}
		if chance > bestChance {
			bestChance = chance
			victim = t
		}
	}
	if victim == nil {
		return false
	}

	if w := c.attack.Action.Weapon; c.visibleEnemies > 0 && w.HasAmmo() {
		if w.Power >= bestChance {
			return false
		}
	} else if c.b.Generate(35, 155) >= bestChance {
		return false
	}

	kind := battle.ActionPanic
	if bestChance >= 30 {
		odds := 40
		bravery := (110 - victim.Stats.Bravery) / 10
		if bravery > 6 {
			odds -= 15
		}
		if bravery < 4 {
			odds += 15
		}
		if victim.Morale >= 40 {
			if victim.Morale-10*bravery < 50 {
				odds -= 15
			}
		} else {
			odds += 15
		}
		if victim.Morale == 0 {
			odds = 100
		}
		if c.b.Percent(odds) {
			kind = battle.ActionMindControl
		}
	}

	c.aggro = victim
	c.psi.Action.Type = kind
	c.psi.Action.Target = victim.Position()
	c.psi.Action.TargetUnit = victim
	c.psi.Action.Weapon = amp
	c.psi.Action.TU = cost
	return true
}

// wayPointAction plots a guided missile at the first known enemy that is
// worth the blast, placing a waypoint wherever the flight path turns out
// of sight of the previous one.
func (c *Controller) wayPointAction() {
	u := c.unit
	w := c.attack.Action.Weapon
	cost := u.ActionTU(battle.ActionLaunch, w)
	if w == nil || u.TU < cost {
		return
	}
	radius := w.Power/20 + 1

	c.aggro = nil
	for _, t := range c.b.Units {
		if !c.validTarget(t, true, c.hostile()) {
			continue
		}
		ok := c.pf.Calculate(u, t.Position(), t, pathfind.Unlimited) &&
			c.explosiveEfficacy(t.Position(), u, radius, c.b.Difficulty, false)
		c.pf.AbortPath()
		if ok {
			c.aggro = t
			break
		}
	}
	if c.aggro == nil {
		return
	}
	target := c.aggro.Position()

	limit := w.Waypoints
	if limit < 0 {
		limit = 6 + 2*c.b.Difficulty
	}
	limit = max(1, limit)

	c.pf.Calculate(u, target, c.aggro, pathfind.Unlimited)
	var waypoints []battle.Position
	cur, last, lastWaypoint := u.Position(), u.Position(), u.Position()
	var traj []battle.Position
	for dir := c.pf.DequeuePath(); dir != battle.DirNone && len(waypoints) < limit; dir = c.pf.DequeuePath() {
		last = cur
		cur = cur.Add(dir.Vector())
		from, to := cur.ToVoxel(), lastWaypoint.ToVoxel()
		from.Z += 16
		to.Z += 16
		traj = traj[:0]
		hit := c.e.CalculateLine(from, to, false, &traj, u)
		switch {
		case hit.IsTerrain():
			waypoints = append(waypoints, last)
			lastWaypoint = last
		case hit == engine.VoxelUnit:
			if t := c.b.Map.At(cur); t != nil && t.Unit() == c.aggro {
				waypoints = append(waypoints, cur)
				lastWaypoint = cur
			}
		}
	}
	c.pf.AbortPath()

	if len(waypoints) == 0 || lastWaypoint != target {
		c.log.Debug("missile route rejected", zap.Int("waypoints", len(waypoints)))
		return
	}
	c.attack.Action.Type = battle.ActionLaunch
	c.attack.Action.Target = waypoints[0]
	c.attack.Action.TargetUnit = c.aggro
	c.attack.Action.Waypoints = waypoints
	c.attack.Action.TU = cost
}

// meleeAction strikes an adjacent target, or charges one close enough to
// reach with TU left for the blow.
func (c *Controller) meleeAction() {
	u := c.unit
	w := c.meleeWeapon()
	cost := u.ActionTU(battle.ActionHit, w)
	if w == nil || u.TU < cost {
		return
	}
	if t := c.aggro; t != nil && !t.IsOut() &&
		c.validMeleeRange(u.Position(), battle.DirectionTo(u.Position(), t.Position()), t) {
		c.meleeAttack()
		return
	}

	reserve := u.TU - cost
	reach := reserve/4 + 1
	c.aggro = nil
	for _, t := range c.b.Units {
		d := battle.Distance(u.Position(), t.Position())
		if d > meleeScanRange || !c.validTarget(t, true, c.hostile()) {
			continue
		}
		if d >= reach && d != 1 {
			continue
		}
		if d == 1 && c.validMeleeRange(u.Position(), battle.DirectionTo(u.Position(), t.Position()), t) {
			c.aggro = t
			u.Charging = nil
			reach = d
			continue
		}
		if p, ok := c.selectPointNearTarget(t, reserve); ok {
			c.aggro = t
			u.Charging = t
			reach = d
			c.attack.Action.Type = battle.ActionWalk
			c.attack.Action.Target = p
			c.attack.Action.TargetUnit = t
		}
	}
	if t := c.aggro; t != nil &&
		c.validMeleeRange(u.Position(), battle.DirectionTo(u.Position(), t.Position()), t) {
		c.meleeAttack()
	}
}

func (c *Controller) meleeAttack() {
	u := c.unit
	u.LookAt(c.aggro.Position())
	c.attack.Action.Type = battle.ActionHit
	c.attack.Action.Target = c.aggro.Position()
	c.attack.Action.TargetUnit = c.aggro
	c.attack.Action.Weapon = c.meleeWeapon()
}

// grenadeAction throws a grenade at the aggro target, or at whichever node
// would catch the most enemies.
func (c *Controller) grenadeAction() {
	u := c.unit
	g := u.Grenade
	tu := primeHandling + u.ActionTU(battle.ActionPrime, g) + u.ActionTU(battle.ActionThrow, g)
	if tu > u.TU || c.aggro == nil {
		return
	}
	throw := battle.Action{Type: battle.ActionThrow, Actor: u, Weapon: g, FinalFacing: battle.DirNone}
	if c.explosiveEfficacy(c.aggro.Position(), u, g.ExplosionRadius(), c.b.Difficulty, true) {
		throw.Target = c.aggro.Position()
	} else if !c.nodeOfBestEfficacy(&throw) {
		return
	}

	origin := c.e.SightOriginVoxel(u)
	target := throw.Target.ToVoxel()
	target.Z += 2 - c.b.Map.At(throw.Target).TerrainLevel()
	if _, ok := c.e.ValidateThrow(&throw, origin, target); !ok {
		return
	}
	c.attack.Action.Type = battle.ActionThrow
	c.attack.Action.Weapon = g
	c.attack.Action.Target = throw.Target
	c.attack.Action.TargetUnit = c.b.Map.At(throw.Target).Unit()
	c.attack.Action.TU = tu
	c.rifle = false
	c.melee = false
}

// projectileAction fires at the aggro target unless the round would hurt
// us more than them.
func (c *Controller) projectileAction() {
	t := c.aggro
	w := c.attack.Action.Weapon
	if t == nil || w == nil {
		return
	}
	c.attack.Action.Target = t.Position()
	c.attack.Action.TargetUnit = t
	radius := w.ExplosionRadius()
	if radius == 0 || c.explosiveEfficacy(t.Position(), c.unit, radius, c.b.Difficulty, false) {
		c.selectFireMethod()
	}
}

// selectFireMethod picks a firing mode by range and what the unit can
// afford: bursts up close, aimed shots far away.
func (c *Controller) selectFireMethod() {
	u := c.unit
	w := c.attack.Action.Weapon
	c.attack.Action.Type = battle.ActionRethink
	afford := func(kind battle.ActionType) bool {
		var has bool
		switch kind {
		case battle.ActionAutoShot:
			has = w.TUAuto > 0
		case battle.ActionSnapShot:
			has = w.TUSnap > 0
		case battle.ActionAimedShot:
			has = w.TUAimed > 0
		}
		return has && u.TU >= u.ActionTU(kind, w)
	}

	dist := battle.Distance(u.Position(), c.attack.Action.Target)
	var order []battle.ActionType
	switch {
	case dist < closeRange:
		order = []battle.ActionType{battle.ActionAutoShot, battle.ActionSnapShot, battle.ActionAimedShot}
	case dist > longRange:
		order = []battle.ActionType{battle.ActionAimedShot}
		if dist < maxSnapRange {
			order = append(order, battle.ActionSnapShot)
		}
	default:
		order = []battle.ActionType{battle.ActionSnapShot, battle.ActionAimedShot, battle.ActionAutoShot}
	}
	for _, kind := range order {
		if afford(kind) {
			c.attack.Action.Type = kind
			return
		}
	}
}

// selectMeleeOrRanged settles units carrying both a gun and a blade on one
// of them for this activation.
func (c *Controller) selectMeleeOrRanged() {
	u := c.unit
	mw := c.meleeWeapon()
	if mw == nil || c.aggro == nil {
		c.melee = false
		return
	}
	if u.TU < u.ActionTU(battle.ActionHit, mw) {
		c.melee = false
		return
	}
	if w := u.MainWeapon; w == nil || !w.HasAmmo() {
		c.rifle = false
		return
	}

	odds := 10
	dmg := mw.Power
	if mw.StrengthApplied {
		dmg += u.Stats.Strength
	}
	dmg -= c.aggro.Armor
	odds += (dmg - 50) / 2
	odds -= 20 * (c.visibleEnemies - 1)
	switch u.Aggression {
	case 0:
		odds -= 20
	case 2:
		odds += 20
	}
	if odds > 0 && c.b.Percent(odds) {
		c.rifle = false
		c.reachableWithAttack = c.findReachable(u.TU - u.ActionTU(battle.ActionHit, mw))
		return
	}
	c.melee = false
}

// findFirePoint looks around for a reachable tile from which the aggro
// target can be shot, preferring unwatched spots outside its field of view
// that leave TU to fire.
func (c *Controller) findFirePoint() bool {
	u := c.unit
	if !c.selectClosestKnownEnemy() {
		return false
	}
	enemy := c.aggro
	enemyTile := c.b.Map.At(enemy.Position())

	best := 0
	for _, off := range c.b.TileSearch() {
		pos := u.Position().Add(off)
		tile := c.b.Map.At(pos)
		if tile == nil || !c.canReach(c.reachableWithAttack, pos) {
			continue
		}
		origin := pos.ToVoxel()
		origin.Z += u.Height + u.FloatHeight - tile.TerrainLevel() - 4
		if _, ok := c.e.CanTargetUnit(origin, enemyTile, nil, u); !ok {
			continue
		}
		if !c.pf.Calculate(u, pos, nil, pathfind.Unlimited) {
			continue
		}
		score := 100 - c.spottingUnits(pos)*10 + u.TU - c.pf.TotalTUCost()
		if !engine.InViewSector(enemy, pos) {
			score += 10
		}
		if score > best {
			best = score
			c.attack.Action.Target = pos
			c.attack.Action.FinalFacing = battle.DirectionTo(pos, enemy.Position())
			if score > firePointGood {
				break
			}
		}
	}
	c.pf.AbortPath()

	if best > firePointEnough {
		c.attack.Action.Type = battle.ActionWalk
		c.attack.Action.TargetUnit = enemy
		return true
	}
	return false
}

// explosiveEfficacy judges whether a blast of the given radius at target
// is worth it for attacker: enemies caught count for it, friends and
// attacker's own skin against. Desperate attackers care less.
func (c *Controller) explosiveEfficacy(target battle.Position, attacker *battle.Unit, radius, diff int, grenade bool) bool {
	if grenade && c.b.Turn < c.b.TurnAIUseGrenade {
		return false
	}
	if !grenade && c.b.Turn < c.b.TurnAIUseBlaster {
		return false
	}
	tt := c.b.Map.At(target)
	if tt == nil {
		return false
	}
	// grenades are no use against flyers
	if grenade && target.Z > 0 && tt.HasNoFloor(c.b.Map.Below(tt)) {
		return false
	}

	height := c.opts.ExplosionHeight
	dist := battle.Distance(attacker.Position(), target)
	injury := attacker.Stats.Health - attacker.Health
	desperation := (100 - attacker.Morale) / 10
	if injury > attacker.Stats.Health/3*2 {
		desperation += 3
	}

	efficacy := desperation
	affected := 0
	if abs(attacker.Position().Z-target.Z) <= height && dist <= radius {
		efficacy -= 4
	}
	efficacy += diff / 2

	victim := tt.Unit()
	if victim != nil && !tt.Dangerous() {
		affected++
		efficacy++
	}

	for _, o := range c.b.Units {
		if o.IsOut() || !o.Placed() || o == attacker || o == victim {
			continue
		}
		if abs(o.Position().Z-target.Z) > height || battle.Distance(o.Position(), target) > radius {
			continue
		}
		if t := c.b.Map.At(o.Position()); t != nil && t.Dangerous() {
			continue
		}
		if o.Faction == c.targetFaction && o.TurnsSinceSpotted > c.intelligence() {
			continue
		}
		from, to := target.ToVoxel(), o.Position().ToVoxel()
		from.Z += 12
		to.Z += 12
		var traj []battle.Position
		if c.e.CalculateLine(from, to, false, &traj, victim) != engine.VoxelUnit ||
			battle.VoxelToTile(traj[0]) != o.Position() {
			continue
		}
		switch {
		case o.Faction == c.targetFaction:
			affected++
			efficacy++
		case o.Faction == attacker.Faction,
			attacker.Faction == battle.FactionNeutral && o.Faction == battle.FactionPlayer:
			efficacy -= 2
		}
	}

	if grenade && desperation < 6 && affected < 2 {
		return false
	}
	return efficacy > 0 || affected >= 10
}

// nodeOfBestEfficacy looks for a node to throw at that would catch more
// enemies than friends, setting the throw's target.
func (c *Controller) nodeOfBestEfficacy(a *battle.Action) bool {
	if c.b.Turn < c.b.TurnAIUseGrenade {
		return false
	}
	u := c.unit
	radius := a.Weapon.ExplosionRadius()
	origin := c.e.SightOriginVoxel(u)
	best := 2
	for _, n := range c.b.Nodes {
		if n.Dummy {
			continue
		}
		d := battle.Distance(n.Position, u.Position())
		if d > nodeThrowRange || d <= radius {
			continue
		}
		tile := c.b.Map.At(n.Position)
		if _, ok := c.e.CanTargetTile(origin, tile, battle.PartFloor, u); !ok {
			continue
		}
		points := 0
		for _, o := range c.b.Units {
			if o.IsOut() || !o.Placed() || battle.Distance(n.Position, o.Position()) >= radius {
				continue
			}
			if _, ok := c.e.CanTargetTile(c.e.SightOriginVoxel(o), tile, battle.PartFloor, o); !ok {
				continue
			}
			enemy := (u.Faction == battle.FactionHostile && o.Faction != battle.FactionHostile) ||
				(u.Faction == battle.FactionNeutral && o.Faction == battle.FactionHostile)
			if !enemy {
				points -= 2
			} else if o.TurnsSinceSpotted <= c.intelligence() {
				points++
			}
		}
		if points > best {
			best = points
			a.Target = n.Position
		}
	}
	return best > 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
