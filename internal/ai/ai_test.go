package ai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/engine"
	"github.com/Garsondee/battlescape/internal/pathfind"
)

type field struct {
	b  *battle.Battle
	e  *engine.TileEngine
	pf *pathfind.Pathfinder
}

// newField builds a floored single-level w×l map with a fixed seed.
func newField(t *testing.T, w, l int) field {
	t.Helper()
	m := battle.NewMap(w, l, 1, nil)
	for y := 0; y < l; y++ {
		for x := 0; x < w; x++ {
			m.SetTerrain(battle.Pos(x, y, 0), battle.PartFloor, "floor")
		}
	}
	b := battle.New(m, 3)
	return field{b: b, e: engine.New(b, engine.DefaultOptions(), nil), pf: pathfind.New(b, nil)}
}

func (f field) unit(t *testing.T, id int, faction battle.Faction, p battle.Position) *battle.Unit {
	t.Helper()
	u := battle.NewUnit(id, fmt.Sprintf("u%d", id), faction, battle.Stats{
		TU: 60, Stamina: 60, Health: 50, Bravery: 50, Reactions: 30,
		Firing: 60, Throwing: 60, Strength: 40, Melee: 60,
	})
	require.NoError(t, f.b.AddUnit(u, p))
	return u
}

func (f field) controller(u *battle.Unit) *Controller {
	return New(u, f.b, f.e, f.pf, Options{}, nil)
}

func rifle() *battle.Weapon {
	return &battle.Weapon{
		Name: "rifle", Class: battle.ClassFirearm, Damage: battle.DamageAP, Power: 30,
		TUSnap: 25, TUAimed: 50, TUAuto: 35, Ammo: 20,
	}
}

func grenade() *battle.Weapon {
	return &battle.Weapon{Name: "grenade", Class: battle.ClassGrenade, Damage: battle.DamageHE, Power: 50, TUPrime: 10, TUThrow: 20}
}

func quiet() situation {
	return situation{
		Current: ModePatrol, Hostile: true, Rifle: true, Armed: true,
		Health: 50, MaxHP: 50, Aggression: 1, EscapePossible: true,
	}
}

func TestEvaluateOdds_QuietUnitPatrols(t *testing.T) {
	o := evaluateOdds(quiet())
	assert.Zero(t, o.Escape)
	assert.Zero(t, o.Combat)
	assert.Zero(t, o.Ambush)
	assert.Equal(t, 33, o.Patrol)
	for roll := 1; roll <= o.Total(); roll++ {
		assert.Equal(t, ModePatrol, o.Pick(roll))
	}
}

func TestEvaluateOdds_WoundedUnderFireWantsOut(t *testing.T) {
	s := quiet()
	s.Current = ModeCombat
	s.Spotting = 2
	s.Visible = 1
	s.Known = 1
	s.Closest = 8
	s.Health = 10
	s.Aggression = 0

	o := evaluateOdds(s)
	assert.Zero(t, o.Patrol, "watched units don't patrol")
	assert.Zero(t, o.Ambush, "no ambush spot")
	assert.Equal(t, 42, o.Escape)
	assert.Equal(t, 12, o.Combat)
}

func TestEvaluateOdds_WoundBandsRoundThirdsFirst(t *testing.T) {
	under := func(hp int) Odds {
		s := quiet()
		s.Current = ModeCombat
		s.Spotting = 2
		s.Visible = 1
		s.Known = 1
		s.Closest = 8
		s.Health = hp
		return evaluateOdds(s)
	}
	// 50 max health: the heavy wound line sits at 2*(50/3) = 32, not 33
	assert.Equal(t, under(49), under(32))
	assert.NotEqual(t, under(32).Escape, under(31).Escape)
}

func TestEvaluateOdds_Unarmed(t *testing.T) {
	s := quiet()
	s.Armed = false
	s.Known = 2
	s.AmbushReady = true
	o := evaluateOdds(s)
	assert.Zero(t, o.Combat)
	assert.Zero(t, o.Ambush)
	assert.Positive(t, o.Escape)
}

func TestEvaluateOdds_CloseEnemySpoilsAmbush(t *testing.T) {
	s := quiet()
	s.Known = 1
	s.Visible = 1
	s.AmbushReady = true
	s.Closest = 9
	assert.Positive(t, evaluateOdds(s).Ambush)
	s.Closest = 3
	assert.Zero(t, evaluateOdds(s).Ambush)
}

func TestOddsPick(t *testing.T) {
	o := Odds{Escape: 10, Ambush: 5, Combat: 5, Patrol: 10}
	assert.Equal(t, ModeEscape, o.Pick(1))
	assert.Equal(t, ModeEscape, o.Pick(10))
	assert.Equal(t, ModeAmbush, o.Pick(11))
	assert.Equal(t, ModeCombat, o.Pick(16))
	assert.Equal(t, ModePatrol, o.Pick(21))
	assert.Equal(t, ModePatrol, o.Pick(30))
}

func TestThink_PatrolsWhenQuiet(t *testing.T) {
	f := newField(t, 12, 12)
	u := f.unit(t, 1, battle.FactionHostile, battle.Pos(1, 1, 0))
	u.MainWeapon = rifle()
	f.b.Nodes = []*battle.Node{
		{ID: 0, Position: battle.Pos(1, 1, 0), Links: []int{1, 2}},
		{ID: 1, Position: battle.Pos(9, 9, 0), Links: []int{0, 2}},
		{ID: 2, Position: battle.Pos(9, 1, 0), Links: []int{0, 1}},
	}
	c := f.controller(u)

	var a battle.Action
	c.Think(&a)
	require.Equal(t, battle.ActionWalk, a.Type)
	assert.Equal(t, ModePatrol, c.Mode())
	assert.Equal(t, battle.ActionAutoShot, c.Reserve())
	assert.Contains(t, []battle.Position{battle.Pos(9, 9, 0), battle.Pos(9, 1, 0)}, a.Target)
	assert.Equal(t, 0, f.pf.PathLength(), "no path left behind")

	first := a.Target
	goal := f.b.Nodes[1]
	if first == f.b.Nodes[2].Position {
		goal = f.b.Nodes[2]
	}
	assert.True(t, goal.Allocated())

	// arriving frees the goal and picks another node
	require.NoError(t, f.b.Map.PlaceUnit(u, first))
	for i := 0; i < 10; i++ {
		c.Think(&a)
		assert.NotEqual(t, ModeEscape, c.Mode())
		assert.NotEqual(t, ModeCombat, c.Mode())
	}
	assert.False(t, goal.Allocated())
	assert.Equal(t, goal.ID, c.State().FromNode)
	assert.NotEqual(t, first, a.Target)
}

func TestFallBack(t *testing.T) {
	f := newField(t, 6, 6)
	u := f.unit(t, 1, battle.FactionHostile, battle.Pos(1, 1, 0))
	c := f.controller(u)

	c.mode = ModeCombat
	c.fallBack()
	assert.Equal(t, ModeEscape, c.mode, "nothing else works")

	c.mode = ModeCombat
	c.toNode = &battle.Node{ID: 4, Position: battle.Pos(4, 4, 0)}
	c.fallBack()
	assert.Equal(t, ModePatrol, c.mode)

	c.toNode = nil
	c.ambushTU = 12
	c.mode = ModePatrol
	c.fallBack()
	assert.Equal(t, ModeAmbush, c.mode)
}

func TestKnownEnemies(t *testing.T) {
	f := newField(t, 10, 10)
	u := f.unit(t, 1, battle.FactionHostile, battle.Pos(1, 1, 0))
	p := f.unit(t, 2, battle.FactionPlayer, battle.Pos(8, 8, 0))
	civ := f.unit(t, 3, battle.FactionNeutral, battle.Pos(8, 1, 0))
	c := f.controller(u)

	assert.Zero(t, c.countKnownTargets(), "never spotted")
	p.TurnsSinceSpotted = 2
	civ.TurnsSinceSpotted = 0
	assert.Equal(t, 2, c.countKnownTargets())
	assert.True(t, c.selectClosestKnownEnemy())
	assert.Same(t, p, c.AggroTarget(), "civilians are not the enemy")

	p.TurnsSinceSpotted = 3
	assert.False(t, c.validTarget(p, false, false), "forgotten")
	f.b.Cheating = true
	assert.True(t, c.validTarget(p, false, false))

	f.b.Map.At(p.Position()).SetDangerous(true)
	assert.False(t, c.validTarget(p, true, false))
	assert.True(t, c.validTarget(p, false, false))
}

func TestSelectFireMethod(t *testing.T) {
	f := newField(t, 24, 24)
	u := f.unit(t, 1, battle.FactionHostile, battle.Pos(1, 1, 0))
	u.MainWeapon = rifle()
	c := f.controller(u)
	c.attack.Action.Weapon = u.MainWeapon

	cases := []struct {
		name   string
		target battle.Position
		tu     int
		want   battle.ActionType
	}{
		{"close burst", battle.Pos(3, 1, 0), 60, battle.ActionAutoShot},
		{"close snap when short", battle.Pos(3, 1, 0), 20, battle.ActionSnapShot},
		{"mid snap", battle.Pos(9, 1, 0), 60, battle.ActionSnapShot},
		{"mid aimed when no snap", battle.Pos(9, 1, 0), 60, battle.ActionAimedShot},
		{"far aimed", battle.Pos(16, 1, 0), 60, battle.ActionAimedShot},
		{"far snap when short", battle.Pos(16, 1, 0), 20, battle.ActionSnapShot},
		{"too far for snap", battle.Pos(22, 1, 0), 20, battle.ActionRethink},
		{"broke", battle.Pos(9, 1, 0), 10, battle.ActionRethink},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u.MainWeapon.TUSnap = 25
			if tc.name == "mid aimed when no snap" {
				u.MainWeapon.TUSnap = 0
			}
			u.TU = tc.tu
			c.attack.Action.Target = tc.target
			c.selectFireMethod()
			assert.Equal(t, tc.want, c.attack.Action.Type)
		})
	}
}

func TestExplosiveEfficacy(t *testing.T) {
	f := newField(t, 12, 6)
	f.b.Turn = 5
	u := f.unit(t, 1, battle.FactionHostile, battle.Pos(2, 2, 0))
	target := f.unit(t, 2, battle.FactionPlayer, battle.Pos(7, 2, 0))
	target.TurnsSinceSpotted = 0
	c := f.controller(u)
	radius := grenade().ExplosionRadius()
	require.Equal(t, 2, radius)

	assert.False(t, c.explosiveEfficacy(target.Position(), u, radius, 0, true), "one soldier isn't worth a grenade")
	assert.True(t, c.explosiveEfficacy(target.Position(), u, radius, 0, false), "but a blaster bomb will do")

	u.Morale = 30
	assert.True(t, c.explosiveEfficacy(target.Position(), u, radius, 0, true), "desperate")
	u.Morale = 100

	second := f.unit(t, 3, battle.FactionPlayer, battle.Pos(7, 3, 0))
	second.TurnsSinceSpotted = 0
	assert.True(t, c.explosiveEfficacy(target.Position(), u, radius, 0, true), "two in the blast")

	f.b.Turn = 1
	assert.False(t, c.explosiveEfficacy(target.Position(), u, radius, 0, true), "too early for grenades")
}

func TestMeleeAgainstAdjacentEnemy(t *testing.T) {
	f := newField(t, 8, 8)
	u := f.unit(t, 1, battle.FactionHostile, battle.Pos(3, 3, 0))
	u.MeleeWeapon = &battle.Weapon{Name: "claw", Class: battle.ClassMelee, Damage: battle.DamageMelee, Power: 40, TUMelee: 20, FlatRate: true}
	p := f.unit(t, 2, battle.FactionPlayer, battle.Pos(4, 3, 0))
	p.TurnsSinceSpotted = 0
	c := f.controller(u)

	var a battle.Action
	c.Think(&a)
	assert.Equal(t, battle.ActionHit, c.attack.Action.Type)
	assert.Same(t, p, c.attack.Action.TargetUnit)
	assert.Equal(t, battle.DirEast, u.Direction)
}

func TestSetupAmbush(t *testing.T) {
	f := newField(t, 12, 12)
	for y := 0; y <= 8; y++ {
		f.b.Map.SetTerrain(battle.Pos(6, y, 0), battle.PartWestWall, "wall_west")
	}
	u := f.unit(t, 1, battle.FactionHostile, battle.Pos(2, 6, 0))
	u.MainWeapon = rifle()
	enemy := f.unit(t, 2, battle.FactionPlayer, battle.Pos(10, 6, 0))
	enemy.TurnsSinceSpotted = 0
	f.b.Nodes = []*battle.Node{{ID: 0, Position: battle.Pos(5, 5, 0)}}
	c := f.controller(u)
	c.reachable = c.findReachable(u.TU)
	c.reachableWithAttack = c.findReachable(u.TU - u.ActionTU(battle.ActionSnapShot, u.MainWeapon))

	c.setupAmbush()
	require.True(t, c.ambush.Valid())
	assert.Equal(t, battle.Pos(5, 5, 0), c.ambush.Action.Target)
	assert.Positive(t, c.ambushTU)
	assert.NotEqual(t, battle.DirNone, c.ambush.Action.FinalFacing)
}

func TestHitByAndRegistry(t *testing.T) {
	f := newField(t, 6, 6)
	u := f.unit(t, 1, battle.FactionHostile, battle.Pos(1, 1, 0))
	friend := f.unit(t, 2, battle.FactionHostile, battle.Pos(2, 1, 0))
	p := f.unit(t, 3, battle.FactionPlayer, battle.Pos(4, 4, 0))

	r := NewRegistry(f.b, f.e, f.pf, Options{}, nil)
	r.Attach()
	assert.Equal(t, []int{1, 2}, r.IDs())

	f.e.Hit(u, p)
	f.e.Hit(u, p)
	f.e.Hit(u, friend)
	assert.Equal(t, []int{3}, r.Get(1).State().WasHitBy)
	assert.True(t, r.Get(1).WasHitBy(3))
	assert.False(t, r.Get(1).WasHitBy(2))

	f.e.Aggro(friend, p)
	assert.Same(t, p, r.Get(2).AggroTarget())

	states := r.States()
	states[99] = State{}
	r2 := NewRegistry(f.b, f.e, f.pf, Options{}, nil)
	r2.Restore(states)
	assert.Equal(t, []int{1, 2}, r2.IDs())
	assert.Equal(t, []int{3}, r2.Get(1).State().WasHitBy)
}
