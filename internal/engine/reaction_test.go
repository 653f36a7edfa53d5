package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/battlescape/internal/battle"
)

type aggroCall struct{ u, target *battle.Unit }

// reactUntil retries past the random one-in-five skip.
func reactUntil(e *TileEngine, u *battle.Unit) (battle.Action, bool) {
	for i := 0; i < 40; i++ {
		if a, ok := e.CheckReactionFire(u, true); ok {
			return a, true
		}
	}
	return battle.Action{}, false
}

func reactionArena(t *testing.T) (*battle.Battle, *TileEngine, *battle.Unit, *battle.Unit) {
	t.Helper()
	b, e := newArena(t, 6, 9, 1)
	e.RecalculateLighting()
	soldier := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(2, 2, 0))
	soldier.Direction = battle.DirSouth
	soldier.MainWeapon = rifle()
	alien := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(2, 6, 0))
	alien.Direction = battle.DirNorth
	alien.MainWeapon = rifle()
	return b, e, soldier, alien
}

func TestCheckReactionFire_HostileReactsToMover(t *testing.T) {
	b, e, soldier, alien := reactionArena(t)
	soldier.Stats.Reactions = 10
	alien.Stats.Reactions = 80
	var calls []aggroCall
	e.Aggro = func(u, target *battle.Unit) { calls = append(calls, aggroCall{u, target}) }

	a, ok := reactUntil(e, soldier)
	require.True(t, ok)
	assert.Equal(t, battle.ActionSnapShot, a.Type)
	assert.Same(t, alien, a.Actor)
	assert.Same(t, soldier, a.TargetUnit)
	assert.Equal(t, 15, a.TU)
	assert.Equal(t, 45, alien.TU)
	assert.Equal(t, []aggroCall{{alien, soldier}}, calls, "the alien fixes on its victim")
	assert.Equal(t, 1, b.Log.Count("fire", "reaction"))
}

func TestCheckReactionFire_ShotAlienTurnsOnShooter(t *testing.T) {
	b, e, soldier, alien := reactionArena(t)
	b.Side = battle.FactionHostile
	soldier.Stats.Reactions = 80
	alien.Stats.Reactions = 10
	var calls []aggroCall
	e.Aggro = func(u, target *battle.Unit) { calls = append(calls, aggroCall{u, target}) }

	a, ok := reactUntil(e, alien)
	require.True(t, ok)
	assert.Same(t, soldier, a.Actor)
	assert.Equal(t, []aggroCall{{alien, soldier}}, calls)
}

func TestCheckReactionFire_SlowerReactorsHoldFire(t *testing.T) {
	_, e, soldier, alien := reactionArena(t)
	soldier.Stats.Reactions = 90
	alien.Stats.Reactions = 50

	_, ok := reactUntil(e, soldier)
	assert.False(t, ok)
	assert.Equal(t, 60, alien.TU)
}

func TestCheckReactionFire_NeedsALoadedFirearm(t *testing.T) {
	_, e, soldier, alien := reactionArena(t)
	soldier.Stats.Reactions = 10
	alien.Stats.Reactions = 80
	alien.MainWeapon.Ammo = 0

	_, ok := reactUntil(e, soldier)
	assert.False(t, ok)

	alien.MainWeapon = &battle.Weapon{Name: "claw", Class: battle.ClassMelee, Damage: battle.DamageMelee, Power: 40, TUMelee: 20, Ammo: -1}
	_, ok = reactUntil(e, soldier)
	assert.False(t, ok)
}
