// Package ai drives computer-controlled units. Each unit has a Controller
// that, once per activation, proposes what patrolling, ambushing, fighting
// and escaping would look like, weighs the four modes and fills in the
// action of the winner.
package ai

import (
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/engine"
	"github.com/Garsondee/battlescape/internal/pathfind"
)

// Options tune a controller.
type Options struct {
	// Trace logs every proposal and the mode odds at debug level.
	Trace bool
	// ExplosionHeight is how many levels an explosion reaches up and down
	// when the AI judges who it would catch.
	ExplosionHeight int
}

// Controller decides what one unit does.
type Controller struct {
	unit *battle.Unit
	b    *battle.Battle
	e    *engine.TileEngine
	pf   *pathfind.Pathfinder
	opts Options
	log  *zap.Logger

	mode     Mode
	fromNode *battle.Node
	toNode   *battle.Node
	aggro    *battle.Unit
	wasHitBy []int

	knownEnemies    int
	visibleEnemies  int
	spottingEnemies int
	closestDist     int

	escapeTU int
	ambushTU int
	reserve  battle.ActionType

	rifle   bool
	melee   bool
	blaster bool
	didPsi  bool

	reachable           mapset.Set[int]
	reachableWithAttack mapset.Set[int]
	targetFaction       battle.Faction

	escape Proposal
	ambush Proposal
	attack Proposal
	patrol Proposal
	psi    Proposal

	odds Odds
}

// New builds a controller for u. The pathfinder is shared scratch space:
// Think leaves no path behind.
func New(u *battle.Unit, b *battle.Battle, e *engine.TileEngine, pf *pathfind.Pathfinder, opts Options, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		unit:                u,
		b:                   b,
		e:                   e,
		pf:                  pf,
		opts:                opts,
		log:                 log.Named("ai").With(zap.Int("unit", u.ID)),
		mode:                ModePatrol,
		targetFaction:       battle.FactionPlayer,
		reachable:           mapset.New[int](),
		reachableWithAttack: mapset.New[int](),
	}
	// civilians and auto-played soldiers both go after the aliens
	if u.Faction != battle.FactionHostile {
		c.targetFaction = battle.FactionHostile
	}
	c.escape = newProposal(ModeEscape, u)
	c.ambush = newProposal(ModeAmbush, u)
	c.attack = newProposal(ModeCombat, u)
	c.patrol = newProposal(ModePatrol, u)
	c.psi = newProposal(ModeCombat, u)
	c.fromNode = b.NearestNode(u)
	return c
}

// Unit returns the controlled unit.
func (c *Controller) Unit() *battle.Unit { return c.unit }

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Odds returns the weights of the last mode evaluation.
func (c *Controller) Odds() Odds { return c.odds }

// Reserve is the shot type a patrolling unit keeps TU back for.
func (c *Controller) Reserve() battle.ActionType { return c.reserve }

// AggroTarget returns the unit the controller is focused on, if any.
func (c *Controller) AggroTarget() *battle.Unit { return c.aggro }

// SetAggroTarget focuses the controller on t, typically after reaction
// fire.
func (c *Controller) SetAggroTarget(t *battle.Unit) { c.aggro = t }

// HitBy records an attacker of another faction.
func (c *Controller) HitBy(attacker *battle.Unit) {
	if attacker == nil || attacker.Faction == c.unit.Faction || c.WasHitBy(attacker.ID) {
		return
	}
	c.wasHitBy = append(c.wasHitBy, attacker.ID)
}

// WasHitBy reports whether the unit with the given id has hit us since we
// last acted.
func (c *Controller) WasHitBy(id int) bool {
	for _, h := range c.wasHitBy {
		if h == id {
			return true
		}
	}
	return false
}

// KnownEnemies is the number of enemies counted at the last Think.
func (c *Controller) KnownEnemies() int { return c.knownEnemies }

// State captures what a save needs to resume the controller.
func (c *Controller) State() State {
	s := State{Mode: c.mode, FromNode: -1, ToNode: -1}
	if c.fromNode != nil {
		s.FromNode = c.fromNode.ID
	}
	if c.toNode != nil {
		s.ToNode = c.toNode.ID
	}
	s.WasHitBy = append(s.WasHitBy, c.wasHitBy...)
	return s
}

// Restore resumes from a saved state. Unknown node ids are dropped.
func (c *Controller) Restore(s State) {
	c.mode = s.Mode
	c.fromNode = c.b.NodeByID(s.FromNode)
	c.toNode = c.b.NodeByID(s.ToNode)
	if c.toNode != nil {
		c.toNode.Allocate()
	}
	c.wasHitBy = append(c.wasHitBy[:0], s.WasHitBy...)
}

func (c *Controller) intelligence() int { return c.unit.Intelligence }

func (c *Controller) meleeWeapon() *battle.Weapon {
	if c.unit.MeleeWeapon != nil {
		return c.unit.MeleeWeapon
	}
	if w := c.unit.MainWeapon; w != nil && w.Class == battle.ClassMelee {
		return w
	}
	return nil
}

func (c *Controller) findReachable(tu int) mapset.Set[int] {
	s := mapset.New[int]()
	for _, i := range c.pf.FindReachable(c.unit, tu) {
		s.Put(i)
	}
	return s
}

func (c *Controller) canReach(set mapset.Set[int], p battle.Position) bool {
	i := c.b.Map.Index(p)
	return i >= 0 && set.Has(i)
}

// Think fills a with what the unit should do next. It returns with
// ActionRethink when nothing useful was found, and ActionNone when the
// best move is to stay put.
func (c *Controller) Think(a *battle.Action) {
	u := c.unit
	a.Reset()
	a.Actor = u
	a.Type = battle.ActionRethink
	a.Diff = c.b.Difficulty

	c.attack = newProposal(ModeCombat, u)
	c.attack.Action.Weapon = u.MainWeapon
	c.attack.Action.Diff = c.b.Difficulty
	c.psi = newProposal(ModeCombat, u)
	c.psi.Action.Type = battle.ActionNone
	c.wasHitBy = c.wasHitBy[:0]

	if u.Charging != nil && u.Charging.IsOut() {
		u.Charging = nil
	}

	c.knownEnemies = c.countKnownTargets()
	c.visibleEnemies = c.selectNearestTarget()
	c.spottingEnemies = c.spottingUnits(u.Position())
	c.melee = c.meleeWeapon() != nil
	c.rifle = false
	c.blaster = false
	c.reachable = c.findReachable(u.TU)
	c.reachableWithAttack = c.reachable

	if w := u.MainWeapon; w != nil && w.HasAmmo() {
		switch w.Class {
		case battle.ClassLauncher:
			c.blaster = true
			c.reachableWithAttack = c.findReachable(u.TU - u.ActionTU(battle.ActionLaunch, w))
		case battle.ClassFirearm:
			c.rifle = true
			c.reachableWithAttack = c.findReachable(u.TU - u.ActionTU(battle.ActionSnapShot, w))
		case battle.ClassMelee:
			c.reachableWithAttack = c.findReachable(u.TU - u.ActionTU(battle.ActionHit, w))
		}
	} else if w != nil && w.Class != battle.ClassMelee {
		c.attack.Action.Weapon = nil
	}

	if c.spottingEnemies > 0 && c.escapeTU == 0 {
		c.setupEscape()
	}
	if c.knownEnemies > 0 && !c.melee && c.ambushTU == 0 {
		c.setupAmbush()
	}
	c.setupAttack()
	c.setupPatrol()
	if c.opts.Trace {
		c.traceProposals()
	}

	// a psi attack doesn't use up the activation
	if c.psi.Valid() && !c.didPsi {
		c.didPsi = true
		*a = c.psi.Action
		a.Number = int(c.mode)
		c.log.Debug("psi", zap.Stringer("type", a.Type), zap.Int("target", a.TargetUnit.ID))
		c.b.Log.Add(c.b.Turn, u, "ai", "psi", battle.Label(a.TargetUnit), 0)
		return
	}
	c.didPsi = false

	if c.needsEvaluation() {
		c.evaluateMode()
	}

	c.reserve = battle.ActionNone
	switch c.mode {
	case ModeEscape:
		u.Charging = nil
		c.fill(a, c.escape)
		a.FinalAction = true
		a.Desperate = true
	case ModePatrol:
		u.Charging = nil
		switch u.Aggression {
		case 0:
			c.reserve = battle.ActionAimedShot
		case 1:
			c.reserve = battle.ActionAutoShot
		case 2:
			c.reserve = battle.ActionSnapShot
		}
		c.fill(a, c.patrol)
	case ModeCombat:
		c.fill(a, c.attack)
		switch a.Type {
		case battle.ActionThrow:
			// priming happens in hand before the throw
			u.SpendTU(4 + u.ActionTU(battle.ActionPrime, a.Weapon))
			a.TU = u.ActionTU(battle.ActionThrow, a.Weapon)
		case battle.ActionWalk:
			a.TU = 0
		default:
			a.TU = u.ActionTU(a.Type, a.Weapon)
		}
	case ModeAmbush:
		u.Charging = nil
		c.fill(a, c.ambush)
		a.FinalAction = true
	}

	if a.Type == battle.ActionWalk {
		if a.Target == u.Position() {
			a.Type = battle.ActionNone
		} else {
			c.escapeTU = 0
			c.ambushTU = 0
		}
	}
	a.Number = int(c.mode)

	c.log.Debug("decision",
		zap.Stringer("mode", c.mode),
		zap.Stringer("action", a.Type),
		zap.Stringer("target", a.Target))
	c.b.Log.Add(c.b.Turn, u, "ai", "decision", c.mode.String()+"/"+a.Type.String(), float64(a.TU))
}

// fill copies a proposal into the outgoing action.
func (c *Controller) fill(a *battle.Action, p Proposal) {
	act := p.Action
	act.Actor = c.unit
	act.Diff = c.b.Difficulty
	if act.Waypoints != nil {
		act.Waypoints = append([]battle.Position(nil), act.Waypoints...)
	}
	*a = act
}

// needsEvaluation decides whether the current mode should be reconsidered.
func (c *Controller) needsEvaluation() bool {
	u := c.unit
	evaluate := false
	switch c.mode {
	case ModePatrol:
		evaluate = c.spottingEnemies > 0 || c.visibleEnemies > 0 || c.knownEnemies > 0 || c.b.Percent(10)
	case ModeAmbush:
		evaluate = !c.rifle || c.ambushTU == 0 || c.visibleEnemies > 0
	case ModeCombat:
		evaluate = !c.attack.Valid()
	case ModeEscape:
		evaluate = c.spottingEnemies == 0 || c.knownEnemies == 0
	}
	if c.spottingEnemies > 2 || u.Health < 2*u.Stats.Health/3 ||
		(c.aggro != nil && c.aggro.TurnsSinceSpotted > c.intelligence()) {
		evaluate = true
	}
	if c.b.Cheating && c.mode != ModeCombat {
		evaluate = true
	}
	return evaluate
}

func (c *Controller) evaluateMode() {
	u := c.unit
	if u.Charging != nil && c.attack.Valid() {
		c.mode = ModeCombat
		return
	}

	if c.spottingEnemies > 0 && c.escapeTU == 0 {
		c.setupEscape()
	}
	escapePossible := true
	if c.knownEnemies > 0 && c.escapeTU == 0 {
		if c.selectClosestKnownEnemy() {
			c.setupEscape()
		} else {
			escapePossible = false
		}
	}

	s := situation{
		Current:        c.mode,
		Hostile:        u.Faction == battle.FactionHostile,
		Melee:          c.melee,
		Rifle:          c.rifle,
		Armed:          c.rifle || c.melee || c.blaster || u.Grenade != nil || (u.PsiAmp != nil && u.Stats.PsiSkill > 0),
		Fresh:          u.TU > u.Stats.TU/2 || u.Charging != nil,
		Spotting:       c.spottingEnemies,
		Visible:        c.visibleEnemies,
		Known:          c.knownEnemies,
		Closest:        c.closestDist,
		Health:         u.Health,
		MaxHP:          u.Stats.Health,
		Aggression:     u.Aggression,
		AmbushReady:    c.ambushTU > 0,
		EscapePossible: escapePossible,
		BaseDefense:    c.b.BaseDefense,
	}
	c.odds = evaluateOdds(s)
	roll := c.b.Generate(1, max(1, c.odds.Total()))
	c.mode = c.odds.Pick(roll)

	if (s.Hostile && c.b.Cheating) || u.Charging != nil {
		c.mode = ModeCombat
	}
	if c.opts.Trace {
		c.log.Debug("odds",
			zap.Int("patrol", c.odds.Patrol),
			zap.Int("ambush", c.odds.Ambush),
			zap.Int("combat", c.odds.Combat),
			zap.Int("escape", c.odds.Escape),
			zap.Int("roll", roll))
	}
	c.fallBack()
}

// fallBack walks the chain combat, patrol, ambush, escape until a mode has
// a usable proposal.
func (c *Controller) fallBack() {
	if c.mode == ModeCombat {
		if c.attack.Valid() {
			return
		}
		if c.findFirePoint() {
			return
		}
		if c.selectRandomTarget() && c.findFirePoint() {
			return
		}
		c.mode = ModePatrol
	}
	if c.mode == ModePatrol {
		if c.toNode != nil {
			return
		}
		c.mode = ModeAmbush
	}
	if c.mode == ModeAmbush {
		if c.ambushTU != 0 {
			return
		}
		c.mode = ModeEscape
	}
}

func (c *Controller) traceProposals() {
	for _, p := range []Proposal{c.escape, c.ambush, c.attack, c.patrol, c.psi} {
		c.log.Debug("proposal",
			zap.Stringer("mode", p.Mode),
			zap.Stringer("action", p.Action.Type),
			zap.Stringer("target", p.Action.Target))
	}
}
