package engine

import (
	"fmt"

	"github.com/Garsondee/battlescape/internal/battle"
)

// PsiAttack resolves a mind control or panic attempt. Strong, skilled
// attackers win more often; the victim's own psi strength and the distance
// count against them.
func (e *TileEngine) PsiAttack(a *battle.Action) bool {
	victim := a.TargetUnit
	if a.Actor == nil || victim == nil || victim.IsOut() {
		return false
	}
	attack := a.Actor.Stats.PsiStrength * a.Actor.Stats.PsiSkill / 50
	defense := victim.Stats.PsiStrength + victim.Stats.PsiSkill/5
	chance := attack - defense + 50 - battle.Distance(a.Actor.Position(), victim.Position())/2
	success := e.b.Percent(chance)
	e.logEvent(a.Actor, "psi", a.Type.String(), fmt.Sprintf("%s chance %d ok=%t", battle.Label(victim), chance, success), float64(chance))
	if !success {
		return false
	}
	switch a.Type {
	case battle.ActionMindControl:
		victim.Faction = a.Actor.Faction
		victim.TU = 0
	case battle.ActionPanic:
		victim.Morale = 0
		victim.TU = 0
	}
	e.notifyHit(victim, a.Actor)
	return true
}
