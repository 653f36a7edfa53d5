package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/battlescape/internal/battle"
)

func centreVoxel(p battle.Position) battle.Position {
	v := p.ToVoxel()
	v.Z += battle.VoxelsZ / 2
	return v
}

func TestExplode_HEDamagesUnitsAndClearsDanger(t *testing.T) {
	b, e := newArena(t, 9, 9, 1)
	center := battle.Pos(4, 4, 0)
	thrower := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(0, 0, 0))
	victim := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(5, 4, 0))

	e.MarkDanger(center, 2)
	require.True(t, b.Map.At(center).Dangerous())
	require.True(t, b.Map.At(battle.Pos(4, 6, 0)).Dangerous())
	require.False(t, b.Map.At(battle.Pos(6, 6, 0)).Dangerous())

	var hitBy *battle.Unit
	e.Hit = func(v, a *battle.Unit) {
		if v == victim {
			hitBy = a
		}
	}
	e.Explode(centreVoxel(center), 50, battle.DamageHE, 2, thrower)

	assert.Less(t, victim.Health, 81, "one tile out the blast still carries 41")
	assert.Same(t, thrower, hitBy)
	for _, d := range []battle.Position{{}, {X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Y: 2}} {
		assert.False(t, b.Map.At(center.Add(d)).Dangerous(), "%s still flagged", center.Add(d))
	}
	assert.Equal(t, 1, b.Log.Count("explode", "he"))
	assert.Equal(t, 100, thrower.Health)
}

func TestExplode_RemovesCasualtiesFromMap(t *testing.T) {
	b, e := newArena(t, 9, 9, 1)
	victim := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(5, 4, 0))
	victim.Health = 5

	e.Explode(centreVoxel(battle.Pos(4, 4, 0)), 50, battle.DamageHE, 2, nil)

	assert.True(t, victim.IsOut())
	assert.False(t, victim.Placed())
	assert.Nil(t, b.Map.At(battle.Pos(5, 4, 0)).Unit())
	assert.Equal(t, 1, b.Log.Count("unit", "out"))
}

func TestExplode_DestroysEachPartOnce(t *testing.T) {
	b, e := newArena(t, 9, 9, 1)
	crate := battle.Pos(4, 4, 0)
	b.Map.SetTerrain(crate, battle.PartObject, "crate")

	e.Explode(centreVoxel(crate), 100, battle.DamageHE, 1, nil)

	assert.Nil(t, b.Map.At(crate).Part(battle.PartObject))
	n := 0
	for _, ev := range b.Log.Filter("terrain", "destroyed") {
		if strings.HasPrefix(ev.Value, "object") {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.Zero(t, b.Map.At(crate).Explosive(), "charge is spent")
}

func TestExplode_WallShieldsTheFarSide(t *testing.T) {
	b, e := newArena(t, 9, 9, 1)
	for y := 0; y < 9; y++ {
		b.Map.SetTerrain(battle.Pos(6, y, 0), battle.PartWestWall, "ufo_wall_west")
	}
	behind := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(6, 4, 0))

	e.Explode(centreVoxel(battle.Pos(4, 4, 0)), 50, battle.DamageHE, 4, nil)

	assert.Equal(t, 100, behind.Health)
	assert.Equal(t, "ufo_wall_west", b.Map.At(battle.Pos(6, 4, 0)).Part(battle.PartWestWall).Name)
}

func TestExplode_SmokeAndIncendiary(t *testing.T) {
	b, e := newArena(t, 9, 9, 1)
	center := battle.Pos(4, 4, 0)

	e.Explode(centreVoxel(center), 60, battle.DamageSmoke, 1, nil)
	assert.GreaterOrEqual(t, b.Map.At(center).Smoke(), 6)

	b.Map.SetTerrain(battle.Pos(2, 2, 0), battle.PartFloor, "grass")
	u := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(2, 3, 0))
	e.Explode(centreVoxel(battle.Pos(2, 2, 0)), 60, battle.DamageIncendiary, 1, nil)
	assert.Equal(t, 3, b.Map.At(battle.Pos(2, 2, 0)).Fire())
	assert.Positive(t, u.FireTurns)
	assert.Zero(t, b.Map.At(battle.Pos(2, 3, 0)).Fire(), "stone floors don't burn")
}

func TestResolveTerrainExplosions_ChainsBarrels(t *testing.T) {
	b, e := newArena(t, 12, 5, 1)
	b.Map.SetTerrain(battle.Pos(3, 2, 0), battle.PartObject, "fuel_barrel")
	b.Map.SetTerrain(battle.Pos(5, 2, 0), battle.PartObject, "fuel_barrel")

	e.Explode(centreVoxel(battle.Pos(2, 2, 0)), 40, battle.DamageHE, 1, nil)
	require.NotNil(t, e.CheckTerrainExplosions(), "the first barrel is armed")

	n := e.ResolveTerrainExplosions()
	assert.GreaterOrEqual(t, n, 2)
	assert.Nil(t, b.Map.At(battle.Pos(5, 2, 0)).Part(battle.PartObject))
	assert.Nil(t, e.CheckTerrainExplosions())
}

func TestExplode_FloorAboveFallsOnce(t *testing.T) {
	b, e := newArena(t, 7, 7, 2)
	upper := battle.Pos(3, 3, 1)
	b.Map.SetTerrain(upper, battle.PartFloor, "grass")

	e.Explode(centreVoxel(battle.Pos(3, 3, 0)), 100, battle.DamageHE, 3, nil)

	f := b.Map.At(upper).Part(battle.PartFloor)
	require.NotNil(t, f, "the scorched replacement survives the same blast")
	assert.Equal(t, "scorched", f.Name)
}

func TestExplode_HeavySmokeThinsEveryTurn(t *testing.T) {
	b, e := newArena(t, 5, 5, 1)
	center := battle.Pos(2, 2, 0)

	e.Explode(centreVoxel(center), 300, battle.DamageSmoke, 1, nil)
	tile := b.Map.At(center)
	require.Equal(t, battle.MaxSmoke, tile.Smoke())

	prev := tile.Smoke()
	for prev > 0 {
		tile.DiluteSmoke()
		require.Less(t, tile.Smoke(), prev)
		prev = tile.Smoke()
	}
}
