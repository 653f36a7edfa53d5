package engine

import (
	"fmt"

	"github.com/Garsondee/battlescape/internal/battle"
)

// CheckReactionFire finds the best placed enemy to snap-shoot at a unit of
// the active side. The reactor must see the unit and beat its reaction
// score; now and then nobody reacts at all. The returned action has its TU
// already paid.
//
// Aggro is one-sided: a hostile unit that gets shot at turns on the
// shooter, a hostile shooter fixes on its victim, and player units keep no
// such memory.
func (e *TileEngine) CheckReactionFire(u *battle.Unit, recalculateFOV bool) (battle.Action, bool) {
	if u.Faction != e.b.Side || u.IsOut() {
		return battle.Action{}, false
	}
	if e.b.Generate(0, 4) == 1 {
		return battle.Action{}, false
	}

	var actor *battle.Unit
	best := 0.0
	for _, r := range e.b.Units {
		if r.Faction == e.b.Side || r.IsOut() || !r.Placed() {
			continue
		}
		if battle.Distance(u.Position(), r.Position()) >= ReactionRange {
			continue
		}
		if recalculateFOV {
			e.CalculateFOV(r)
		}
		if r.Sees(u) && r.ReactionScore() > best {
			best = r.ReactionScore()
			actor = r
		}
	}
	if actor == nil || best <= u.ReactionScore() {
		return battle.Action{}, false
	}

	w := actor.MainWeapon
	if !w.HasAmmo() || w.Class != battle.ClassFirearm {
		return battle.Action{}, false
	}
	tu := actor.ActionTU(battle.ActionSnapShot, w)
	if tu == 0 || !actor.SpendTU(tu) {
		return battle.Action{}, false
	}

	if e.Aggro != nil {
		if u.Faction == battle.FactionHostile {
			e.Aggro(u, actor)
		}
		if actor.Faction == battle.FactionHostile {
			e.Aggro(actor, u)
		}
	}
	actor.LookAt(u.Position())
	e.logEvent(actor, "fire", "reaction", fmt.Sprintf("at %s score %.1f", battle.Label(u), best), best)
	return battle.Action{
		Type:        battle.ActionSnapShot,
		Actor:       actor,
		Target:      u.Position(),
		TargetUnit:  u,
		Weapon:      w,
		TU:          tu,
		FinalFacing: battle.DirNone,
	}, true
}
