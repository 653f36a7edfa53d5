package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/battlescape/internal/ai"
	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/config"
)

func soldier(id int, name string) *battle.Unit {
	return battle.NewUnit(id, name, battle.FactionPlayer, battle.Stats{
		TU: 60, Stamina: 60, Health: 40, Bravery: 50, Reactions: 40,
		Firing: 60, Throwing: 100, Strength: 40, Melee: 50,
	})
}

// openGround returns rows of plain floor.
func openGround(w, l int) []Option {
	opts := []Option{WithMapSize(w, l, 1)}
	for y := 0; y < l; y++ {
		opts = append(opts, WithTerrainRow(0, y, strings.Repeat(".", w)))
	}
	return opts
}

func TestBuiltinSkirmish(t *testing.T) {
	f, err := Builtin("skirmish")
	require.NoError(t, err)
	w, l, h := f.Size()
	assert.Equal(t, [3]int{24, 16, 1}, [3]int{w, l, h})

	b, err := f.Build()
	require.NoError(t, err)
	assert.Len(t, b.Units, 9)
	assert.Len(t, b.Nodes, 8)
	assert.EqualValues(t, 42, f.Seed)

	m := b.Map
	assert.Equal(t, "door_west", m.At(battle.Pos(8, 5, 0)).Part(battle.PartWestWall).Name)
	assert.Equal(t, "door_north", m.At(battle.Pos(11, 8, 0)).Part(battle.PartNorthWall).Name)
	assert.Equal(t, "window_west", m.At(battle.Pos(15, 4, 0)).Part(battle.PartWestWall).Name)
	assert.Equal(t, "crate", m.At(battle.Pos(10, 3, 0)).Part(battle.PartObject).Name)
	assert.Equal(t, "grass", m.At(battle.Pos(0, 0, 0)).Part(battle.PartFloor).Name)
	corner := m.At(battle.Pos(8, 2, 0))
	assert.NotNil(t, corner.Part(battle.PartWestWall))
	assert.NotNil(t, corner.Part(battle.PartNorthWall))

	harper := b.UnitByID(1)
	require.NotNil(t, harper)
	assert.Equal(t, "rifle", harper.MainWeapon.Name)
	assert.Equal(t, "grenade", harper.Grenade.Name)

	reyes := b.UnitByID(4)
	assert.Equal(t, "pistol", reyes.MainWeapon.Name)
	assert.Equal(t, "stun_rod", reyes.MeleeWeapon.Name)
	assert.Equal(t, "smoke_grenade", reyes.Grenade.Name)

	leader := b.UnitByID(10)
	assert.Equal(t, battle.FactionHostile, leader.Faction)
	assert.Equal(t, battle.DirSouth, leader.Direction)
	assert.Equal(t, 3, leader.Intelligence)
	assert.Equal(t, "psi_amp", leader.PsiAmp.Name)
	assert.Equal(t, battle.FactionNeutral, b.UnitByID(20).Faction)

	assert.True(t, b.NodeByID(7).Small)
	assert.True(t, b.NodeByID(0).LinksTo(2))
}

func TestBuildTwiceGivesSeparateBattles(t *testing.T) {
	f, err := Builtin("skirmish")
	require.NoError(t, err)
	a, err := f.Build()
	require.NoError(t, err)
	b, err := f.Build()
	require.NoError(t, err)

	assert.NotSame(t, a.UnitByID(1), b.UnitByID(1))
	assert.NotSame(t, a.UnitByID(1).MainWeapon, b.UnitByID(1).MainWeapon)
	a.NodeByID(0).Allocate()
	assert.False(t, b.NodeByID(0).Allocated())
}

func TestUnknownBuiltin(t *testing.T) {
	_, err := Builtin("nope")
	require.ErrorIs(t, err, ErrUnknownScenario)
	assert.Contains(t, err.Error(), "skirmish")
	assert.Contains(t, BuiltinNames(), "skirmish")
}

func TestResolveFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "alley.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
name: alley
seed: 5
levels:
  - ["..D..", "....."]
units:
  - {id: 1, faction: player, at: [0, 0], weapons: [rifle]}
  - {id: 2, faction: alien, at: [4, 1, 0]}
`), 0o600))

	f, err := Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, "alley", f.Name)
	b, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, 5, b.Map.Width)
	assert.Equal(t, battle.Pos(4, 1, 0), b.UnitByID(2).Position())
	assert.Equal(t, "player-1", b.UnitByID(1).Name)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"no levels":      "name: x\n",
		"bad faction":    "levels: [[\"..\"]]\nunits: [{id: 1, faction: martian, at: [0, 0]}]\n",
		"bad weapon":     "levels: [[\"..\"]]\nunits: [{id: 1, at: [0, 0], weapons: [spoon]}]\n",
		"short position": "levels: [[\"..\"]]\nunits: [{id: 1, at: [0]}]\n",
		"bad facing":     "levels: [[\"..\"]]\nunits: [{id: 1, at: [0, 0], facing: 9}]\n",
		"bad node":       "levels: [[\"..\"]]\nnodes: [{id: 1, at: []}]\n",
		"not yaml":       "levels: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestBuildRejects(t *testing.T) {
	_, err := Build(WithMapSize(3, 1, 1), WithTerrainRow(0, 0, ".?."))
	assert.ErrorContains(t, err, "unknown symbol")

	_, err = Build(WithMapSize(3, 1, 1), WithTerrainRow(0, 0, "...."))
	assert.ErrorContains(t, err, "off the")

	_, err = Build(WithMapSize(3, 1, 1), WithUnit(soldier(1, "a"), battle.Pos(0, 0, 0)), WithUnit(soldier(1, "b"), battle.Pos(1, 0, 0)))
	assert.ErrorContains(t, err, "duplicate unit")

	_, err = Build(WithMapSize(3, 1, 1), WithUnit(soldier(1, "a"), battle.Pos(5, 0, 0)))
	assert.ErrorIs(t, err, battle.ErrOutOfBounds)

	_, err = Build(WithMapSize(3, 1, 1), WithNode(battle.Node{ID: 1, Position: battle.Pos(0, 3, 0)}))
	assert.Error(t, err)

	_, err = Build(WithShade(16))
	assert.Error(t, err)
}

func TestBuildAppliesPassesInOrder(t *testing.T) {
	u := soldier(1, "a")
	// units listed before the map they stand on
	b, err := Build(
		WithUnit(u, battle.Pos(2, 1, 0)),
		WithTerrainRow(0, 1, "..D.."),
		WithMapSize(5, 3, 1),
		WithShade(12),
		WithCheating(true),
		WithSeed(9),
	)
	require.NoError(t, err)
	assert.Equal(t, 5, b.Map.Width)
	assert.Equal(t, 12, b.GlobalShade)
	assert.True(t, b.Cheating)
	assert.Same(t, u, b.Map.At(battle.Pos(2, 1, 0)).Unit())
	assert.Equal(t, "door_west", b.Map.At(battle.Pos(2, 1, 0)).Part(battle.PartWestWall).Name)
	assert.Nil(t, b.Map.At(battle.Pos(0, 0, 0)).Part(battle.PartFloor), "rows not given stay empty")
}

func TestEquip(t *testing.T) {
	u := soldier(1, "a")
	require.NoError(t, Equip(u, "claws", "rifle", "grenade"))
	assert.Equal(t, "rifle", u.MainWeapon.Name)
	assert.Equal(t, "claws", u.MeleeWeapon.Name)
	assert.Equal(t, "grenade", u.Grenade.Name)

	assert.Error(t, Equip(u, "spoon"))
	assert.Contains(t, WeaponNames(), "blaster")
}

func TestRunnerWalkOpensDoor(t *testing.T) {
	u := soldier(1, "a")
	b, err := Build(WithMapSize(5, 1, 1), WithTerrainRow(0, 0, "..D.."), WithUnit(u, battle.Pos(0, 0, 0)))
	require.NoError(t, err)
	r := NewRunner(b, config.Default(), nil)

	moved := r.Execute(&battle.Action{Type: battle.ActionWalk, Actor: u, Target: battle.Pos(4, 0, 0), FinalFacing: battle.DirWest})
	assert.True(t, moved)
	assert.Equal(t, battle.Pos(4, 0, 0), u.Position())
	assert.Equal(t, battle.DirWest, u.Direction)
	assert.Equal(t, "door_west_open", b.Map.At(battle.Pos(2, 0, 0)).Part(battle.PartWestWall).Name)
	assert.Less(t, u.TU, 60)
	assert.Less(t, u.Energy, 60)

	s := r.Stats()
	assert.Equal(t, 4, s.Steps)
	assert.Equal(t, 1, s.DoorsOpen)
	assert.Zero(t, s.Interrupts)
}

func TestRunnerThrowExplodes(t *testing.T) {
	u := soldier(1, "a")
	require.NoError(t, Equip(u, "grenade"))
	b, err := Build(append(openGround(10, 5), WithUnit(u, battle.Pos(2, 2, 0)))...)
	require.NoError(t, err)
	r := NewRunner(b, config.Default(), nil)

	ok := r.Execute(&battle.Action{Type: battle.ActionThrow, Actor: u, Weapon: u.Grenade, Target: battle.Pos(6, 2, 0)})
	assert.True(t, ok)
	assert.Nil(t, u.Grenade, "grenade leaves the hand")
	assert.Equal(t, 60-15, u.TU)
	assert.Equal(t, 1, r.Stats().Throws)
	assert.Equal(t, 1, b.Log.Count("explode", ""))
}

func TestRunnerRefusesWhatItCannotAfford(t *testing.T) {
	u := soldier(1, "a")
	require.NoError(t, Equip(u, "rifle"))
	b, err := Build(append(openGround(6, 6), WithUnit(u, battle.Pos(1, 1, 0)))...)
	require.NoError(t, err)
	r := NewRunner(b, config.Default(), nil)

	u.TU = 5
	assert.False(t, r.Execute(&battle.Action{Type: battle.ActionAimedShot, Actor: u, Weapon: u.MainWeapon, Target: battle.Pos(4, 4, 0)}))
	assert.Equal(t, 5, u.TU)
	assert.Equal(t, 20, u.MainWeapon.Ammo)
	assert.False(t, r.Execute(&battle.Action{Type: battle.ActionNone, Actor: u}))
	assert.False(t, r.Execute(&battle.Action{Type: battle.ActionRethink, Actor: u}))
}

func TestRunTurnPlaysEverySide(t *testing.T) {
	f, err := Builtin("skirmish")
	require.NoError(t, err)
	b, err := f.Build()
	require.NoError(t, err)
	r := NewRunner(b, config.Default(), nil)

	// every unit, soldiers included, gets a controller
	assert.Len(t, r.AI.IDs(), len(b.Units))

	r.RunTurn()
	if r.Over() {
		t.Skip("battle ended inside the first turn")
	}
	assert.Equal(t, 2, b.Turn)
	assert.Equal(t, battle.FactionPlayer, b.Side)

	s := r.Stats()
	assert.Equal(t, 3, s.Sides)
	total := 0
	for _, n := range s.Decisions {
		total += n
	}
	assert.Positive(t, total)
	assert.GreaterOrEqual(t, total, b.Log.Count("ai", "decision"))
	assert.Positive(t, b.Log.Count("turn", "start"))

	for _, u := range b.Active(battle.FactionPlayer) {
		assert.Equal(t, u.Stats.TU, u.TU, "%s starts the turn rested", u.Name)
	}

	rep := r.Report()
	assert.Equal(t, 2, rep.Turn)
	assert.Equal(t, "none", rep.Winner())
	assert.Contains(t, rep.String(), "modes:")
}

func TestReportWinner(t *testing.T) {
	rep := Report{Over: true, Standing: map[battle.Faction]int{battle.FactionHostile: 2}}
	assert.Equal(t, "hostile", rep.Winner())
	rep.Standing = map[battle.Faction]int{battle.FactionPlayer: 1, battle.FactionNeutral: 1}
	assert.Equal(t, "player", rep.Winner())
	rep.Standing = map[battle.Faction]int{battle.FactionNeutral: 1}
	assert.Equal(t, "draw", rep.Winner())
	assert.Equal(t, ai.ModeCombat.String(), "combat")
}
