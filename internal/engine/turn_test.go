package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/battlescape/internal/battle"
)

func maxSmoke(m *battle.Map) int {
	peak := 0
	m.Each(func(t *battle.Tile) { peak = max(peak, t.Smoke()) })
	return peak
}

func TestPrepareNewTurn_SmokeThinsOut(t *testing.T) {
	b, e := newArena(t, 9, 9, 1)
	b.Map.At(battle.Pos(4, 4, 0)).SetSmoke(10)

	prev := maxSmoke(b.Map)
	for turn := 0; prev > 0 && turn < 30; turn++ {
		e.PrepareNewTurn()
		cur := maxSmoke(b.Map)
		require.Less(t, cur, prev, "turn %d", turn)
		prev = cur
	}
	assert.Zero(t, prev)
}

func TestPrepareNewTurn_SmokeStunsWhenEnabled(t *testing.T) {
	b, e := newArena(t, 9, 9, 1)
	u := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(4, 4, 0))
	b.Map.At(u.Position()).SetSmoke(10)

	e.PrepareNewTurn()
	assert.Zero(t, u.StunLevel)

	b.SmokeStun = true
	b.Map.At(u.Position()).SetSmoke(10)
	e.PrepareNewTurn()
	assert.Equal(t, 3, u.StunLevel)
}

func TestPrepareNewTurn_FireBurnsDown(t *testing.T) {
	b, e := newArena(t, 9, 9, 1)
	p := battle.Pos(4, 4, 0)
	b.Map.SetTerrain(p, battle.PartFloor, "grass")
	tile := b.Map.At(p)
	require.True(t, tile.Ignite())
	require.Equal(t, 3, tile.Fire())
	smoke := tile.Smoke()
	u := addUnit(t, b, 1, battle.FactionHostile, p)

	assert.Equal(t, 1, e.PrepareNewTurn())
	assert.Equal(t, 2, tile.Fire())
	assert.Equal(t, smoke, tile.Smoke(), "a burning tile keeps its smoke")
	assert.Less(t, u.Health, 100)

	assert.Equal(t, 1, e.PrepareNewTurn())
	assert.Equal(t, 1, tile.Fire())
	assert.Zero(t, e.PrepareNewTurn())
	assert.Zero(t, tile.Fire())
	assert.Equal(t, "scorched", tile.Part(battle.PartFloor).Name)
	assert.Equal(t, 1, b.Log.Count("terrain", "burnt_out"))

	for _, d := range cardinals {
		assert.Zero(t, b.Map.At(p.Add(d.Vector())).Fire(), "stone floors don't catch")
	}
}

func TestCloseUFODoors_SkipsOccupiedTiles(t *testing.T) {
	b, e := newArena(t, 4, 3, 1)
	for x := 0; x < 3; x++ {
		b.Map.SetTerrain(battle.Pos(x, 1, 0), battle.PartNorthWall, "ufo_door_north")
	}
	u := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(1, 1, 0))
	u.Direction = battle.DirNorth

	require.Equal(t, battle.DoorUFOOpening, e.UnitOpensDoor(u))
	for x := 0; x < 3; x++ {
		assert.True(t, b.Map.At(battle.Pos(x, 1, 0)).IsUFODoorOpen(battle.PartNorthWall), "segment %d", x)
	}
	assert.Equal(t, 60, u.TU, "sliding doors are free")

	assert.Equal(t, 2, e.CloseUFODoors())
	assert.True(t, b.Map.At(battle.Pos(1, 1, 0)).IsUFODoorOpen(battle.PartNorthWall))
}

func TestUnitOpensDoor_HingedDoorCostsTU(t *testing.T) {
	b, e := newArena(t, 4, 3, 1)
	b.Map.SetTerrain(battle.Pos(2, 1, 0), battle.PartWestWall, "door_west")
	u := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(1, 1, 0))
	u.Direction = battle.DirEast

	u.TU = 2
	assert.Equal(t, battle.DoorNotEnoughTU, e.UnitOpensDoor(u))
	assert.Equal(t, "door_west", b.Map.At(battle.Pos(2, 1, 0)).Part(battle.PartWestWall).Name)

	u.TU = 60
	assert.Equal(t, battle.DoorOpened, e.UnitOpensDoor(u))
	assert.Equal(t, 56, u.TU)
	assert.Equal(t, "door_west_open", b.Map.At(battle.Pos(2, 1, 0)).Part(battle.PartWestWall).Name)
	assert.Equal(t, battle.DoorNoDoor, e.UnitOpensDoor(u))

	u.Direction = battle.DirSouth
	assert.Equal(t, battle.DoorNoDoor, e.UnitOpensDoor(u))
}

func TestFall(t *testing.T) {
	b, e := newArena(t, 3, 3, 3)
	u := addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(1, 1, 2))

	assert.True(t, e.Fall(u))
	assert.Equal(t, battle.Pos(1, 1, 0), u.Position())
	assert.False(t, e.Fall(u))

	flyer := addUnit(t, b, 2, battle.FactionHostile, battle.Pos(2, 2, 2))
	flyer.Movement = battle.MoveFly
	assert.False(t, e.Fall(flyer))
}

func TestLighting(t *testing.T) {
	b, e := newArena(t, 14, 3, 2)
	b.Map.SetTerrain(battle.Pos(0, 0, 0), battle.PartFloor, "lamp_floor")
	b.Map.SetTerrain(battle.Pos(1, 1, 1), battle.PartFloor, "roof")
	b.GlobalShade = 3
	addUnit(t, b, 1, battle.FactionPlayer, battle.Pos(5, 1, 0))
	e.RecalculateLighting()
	at := func(x, y, z int) *battle.Tile { return b.Map.At(battle.Pos(x, y, z)) }

	assert.Equal(t, 12, at(0, 0, 0).Light(battle.LightStatic))
	assert.Equal(t, 9, at(3, 0, 0).Light(battle.LightStatic))
	assert.Equal(t, 1, at(11, 0, 0).Light(battle.LightStatic))
	assert.Zero(t, at(12, 0, 0).Light(battle.LightStatic))
	assert.Equal(t, 9, at(3, 0, 1).Light(battle.LightStatic), "light reaches every level")

	assert.Equal(t, 12, at(0, 2, 0).Light(battle.LightAmbient))
	assert.Equal(t, 10, at(1, 1, 0).Light(battle.LightAmbient), "under the roof")
	assert.Equal(t, 12, at(1, 1, 1).Light(battle.LightAmbient))

	assert.Equal(t, 15, at(5, 1, 0).Light(battle.LightDynamic))
	assert.Equal(t, 12, at(8, 1, 0).Light(battle.LightDynamic))
	assert.Zero(t, at(5, 1, 0).Shade())
}
