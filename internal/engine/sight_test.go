package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/battlescape/internal/battle"
)

func TestCalculateFOV_FacingMakesSightOneWay(t *testing.T) {
	b, e := newArena(t, 6, 8, 1)
	e.RecalculateLighting()
	soldier := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(2, 5, 0))
	soldier.Direction = battle.DirNorth
	alien := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(2, 1, 0))
	alien.Direction = battle.DirNorth

	require.True(t, e.CalculateFOV(soldier), "a new sighting is reported")
	assert.True(t, soldier.Sees(alien))
	assert.True(t, alien.Visible)

	assert.False(t, e.CalculateFOV(alien))
	assert.False(t, alien.Sees(soldier), "the alien has its back turned")

	alien.Direction = battle.DirSouth
	e.CalculateFOV(alien)
	assert.True(t, alien.Sees(soldier))
	assert.Zero(t, soldier.TurnsSinceSpotted)
}

func TestCalculateFOV_ReportsArrivalWhenAnotherLeaves(t *testing.T) {
	b, e := newArena(t, 6, 8, 1)
	e.RecalculateLighting()
	soldier := addUnit(t, b, 20, battle.FactionPlayer, battle.Pos(2, 5, 0))
	soldier.Direction = battle.DirNorth
	big := addUnit(t, b, 9, battle.FactionHostile, battle.Pos(2, 1, 0))
	small := addUnit(t, b, 1, battle.FactionHostile, battle.Pos(2, 7, 0))

	require.True(t, e.CalculateFOV(soldier))
	require.True(t, soldier.Sees(big))
	require.False(t, soldier.Sees(small), "behind the soldier")

	require.NoError(t, b.Map.PlaceUnit(big, battle.Pos(1, 7, 0)))
	require.NoError(t, b.Map.PlaceUnit(small, battle.Pos(3, 2, 0)))

	assert.True(t, e.CalculateFOV(soldier), "a lower id in view still counts as new")
	assert.True(t, soldier.Sees(small))
	assert.False(t, soldier.Sees(big))
	assert.False(t, e.CalculateFOV(soldier), "nothing new on a second look")
}

func TestCalculateFOVAround_UsesConfiguredViewDistance(t *testing.T) {
	b, _ := newArena(t, 12, 4, 1)
	e := New(b, Options{MaxViewDistance: 3, MaxDarknessToSeeUnits: MaxDarknessToSeeUnits}, nil)
	e.RecalculateLighting()
	soldier := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(1, 1, 0))
	soldier.Direction = battle.DirEast
	addUnit(t, b, 2, battle.FactionHostile, battle.Pos(3, 1, 0))

	e.CalculateFOVAround(battle.Pos(10, 1, 0))
	assert.Empty(t, soldier.VisibleUnits(), "nine tiles is past the configured range")

	e.CalculateFOVAround(battle.Pos(3, 2, 0))
	assert.Len(t, soldier.VisibleUnits(), 1)
}

func TestVisibleUnit_DarknessOnlyBlindsPlayers(t *testing.T) {
	b, e := newArena(t, 6, 8, 1)
	b.GlobalShade = 15
	e.RecalculateLighting()
	soldier := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(2, 5, 0))
	alien := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(2, 1, 0))
	require.Greater(t, b.Map.At(alien.Position()).Shade(), MaxDarknessToSeeUnits)

	assert.False(t, e.VisibleUnit(soldier, alien))
	assert.True(t, e.VisibleUnit(alien, soldier))

	// a flare next to the alien lets the soldier see it
	e.AddLight(alien.Position(), 12, battle.LightStatic)
	assert.True(t, e.VisibleUnit(soldier, alien))
}

func TestVisibleUnit_WallHidesUnit(t *testing.T) {
	b, e := newArena(t, 6, 8, 1)
	e.RecalculateLighting()
	for x := 0; x < 6; x++ {
		b.Map.SetTerrain(battle.Pos(x, 3, 0), battle.PartNorthWall, "wall_north")
	}
	soldier := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(2, 5, 0))
	alien := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(2, 1, 0))

	assert.False(t, e.VisibleUnit(soldier, alien))
	assert.False(t, e.VisibleUnit(alien, soldier))
}

func TestVisibleUnit_FactionRules(t *testing.T) {
	b, e := newArena(t, 6, 8, 1)
	e.RecalculateLighting()
	a := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(2, 5, 0))
	c := addUnit(t, b, 2, battle.FactionNeutral, battle.Pos(2, 2, 0))
	p := addUnit(t, b, 3, battle.FactionPlayer, battle.Pos(4, 5, 0))

	assert.False(t, e.VisibleUnit(a, c), "players only track hostiles")
	assert.False(t, e.VisibleUnit(a, p))
	assert.True(t, e.VisibleUnit(c, a), "civilians watch everyone else")
}

func TestCanTargetUnit(t *testing.T) {
	b, e := newArena(t, 8, 4, 1)
	shooter := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(1, 1, 0))
	target := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(6, 1, 0))
	origin := e.SightOriginVoxel(shooter)

	v, ok := e.CanTargetUnit(origin, b.Map.At(target.Position()), nil, shooter)
	require.True(t, ok)
	assert.Equal(t, target.Position(), battle.VoxelToTile(v))

	// nobody stands here but the alien could
	empty := b.Map.At(battle.Pos(6, 2, 0))
	_, ok = e.CanTargetUnit(origin, empty, target, shooter)
	assert.True(t, ok)
	_, ok = e.CanTargetUnit(origin, empty, nil, shooter)
	assert.False(t, ok)

	b.Map.SetTerrain(battle.Pos(4, 1, 0), battle.PartWestWall, "wall_west")
	_, ok = e.CanTargetUnit(origin, b.Map.At(target.Position()), nil, shooter)
	assert.False(t, ok)
}

func TestShoot_AccurateSnapShotHits(t *testing.T) {
	b, e := newArena(t, 8, 6, 1)
	shooter := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(1, 3, 0))
	shooter.Stats.Firing = 100
	target := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(6, 3, 0))
	w := rifle()
	w.AccuracySnap = 100

	var hits int
	e.Hit = func(victim, attacker *battle.Unit) {
		assert.Same(t, target, victim)
		assert.Same(t, shooter, attacker)
		hits++
	}
	a := &battle.Action{Type: battle.ActionSnapShot, Actor: shooter, Target: target.Position(), TargetUnit: target, Weapon: w}
	assert.Equal(t, 1, e.Shoot(a))
	assert.Equal(t, 9, w.Ammo)
	assert.Equal(t, 1, hits)
	assert.Equal(t, battle.DirEast, shooter.Direction)
	assert.Equal(t, 1, b.Log.Count("fire", "shot"))

	a.Type = battle.ActionAutoShot
	w.Ammo = 2
	assert.Equal(t, 2, e.Shoot(a), "auto stops when the clip runs dry")
}

func TestFaceWindow(t *testing.T) {
	b, e := newArena(t, 4, 4, 1)
	b.Map.SetTerrain(battle.Pos(2, 1, 0), battle.PartWestWall, "window_west")
	b.Map.SetTerrain(battle.Pos(1, 2, 0), battle.PartNorthWall, "wall_north")

	assert.Equal(t, battle.DirEast, e.FaceWindow(battle.Pos(1, 1, 0)))
	assert.Equal(t, battle.DirWest, e.FaceWindow(battle.Pos(2, 1, 0)))
	assert.Equal(t, battle.DirNone, e.FaceWindow(battle.Pos(1, 2, 0)), "solid walls are not windows")
	assert.Equal(t, battle.DirNone, e.FaceWindow(battle.Pos(3, 3, 0)))
}

func TestInViewSector(t *testing.T) {
	b, _ := newArena(t, 8, 8, 1)
	u := addUnit(t, b, 1, battle.FactionHostile, battle.Pos(4, 4, 0))
	u.Direction = battle.DirNorth

	assert.True(t, InViewSector(u, battle.Pos(4, 1, 0)))
	assert.True(t, InViewSector(u, battle.Pos(6, 2, 0)))
	assert.False(t, InViewSector(u, battle.Pos(4, 6, 0)))
	u.Turret360 = true
	assert.True(t, InViewSector(u, battle.Pos(4, 6, 0)))
}
