package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/battlescape/internal/battle"
)

func grenade() *battle.Weapon {
	return &battle.Weapon{Name: "grenade", Class: battle.ClassGrenade, Damage: battle.DamageHE, Power: 50, TUPrime: 50, TUThrow: 25, Ammo: 1}
}

func TestThrowRange(t *testing.T) {
	u := battle.NewUnit(1, "u", battle.FactionPlayer, battle.Stats{Strength: 40})
	assert.Equal(t, 20, ThrowRange(u))
	u.Stats.Strength = 4
	assert.Equal(t, 5, ThrowRange(u))
	u.Stats.Strength = 100
	assert.Equal(t, 20, ThrowRange(u))
}

func TestThrow_PerfectThrowLandsOnTarget(t *testing.T) {
	b, e := newArena(t, 10, 5, 1)
	u := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(2, 2, 0))
	u.Stats.Throwing = 100
	a := &battle.Action{Type: battle.ActionThrow, Actor: u, Target: battle.Pos(6, 2, 0), Weapon: grenade()}

	landing, ok := e.Throw(a)
	require.True(t, ok)
	assert.Equal(t, a.Target, landing)
	assert.Equal(t, battle.DirEast, u.Direction)
	assert.Equal(t, 1, b.Log.Count("fire", "throw"))
}

func TestValidateThrow_Rejects(t *testing.T) {
	b, e := newArena(t, 20, 5, 1)
	u := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(2, 2, 0))
	u.Stats.Strength = 10
	origin := e.SightOriginVoxel(u)

	far := &battle.Action{Type: battle.ActionThrow, Actor: u, Target: battle.Pos(9, 2, 0)}
	_, ok := e.ValidateThrow(far, origin, e.throwTargetVoxel(far.Target))
	assert.False(t, ok, "beyond the unit's reach")

	b.Map.SetTerrain(battle.Pos(5, 2, 0), battle.PartObject, "crate")
	into := &battle.Action{Type: battle.ActionThrow, Actor: u, Target: battle.Pos(5, 2, 0)}
	_, ok = e.ValidateThrow(into, origin, e.throwTargetVoxel(into.Target))
	assert.False(t, ok, "nothing lands inside a crate")

	near := &battle.Action{Type: battle.ActionThrow, Actor: u, Target: battle.Pos(4, 3, 0)}
	_, ok = e.ValidateThrow(near, origin, e.throwTargetVoxel(near.Target))
	assert.True(t, ok)
}
