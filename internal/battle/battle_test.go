package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBattle_GenerateStaysInRange(t *testing.T) {
	b := New(flatMap(2, 2, 1), 7)
	for i := 0; i < 500; i++ {
		v := b.Generate(3, 6)
		require.GreaterOrEqual(t, v, 3)
		require.LessOrEqual(t, v, 6)
	}
	assert.Equal(t, 4, b.Generate(4, 4))
}

func TestBattle_TileSearchCoversSquare(t *testing.T) {
	b := New(flatMap(2, 2, 1), 1)
	offsets := b.TileSearch()
	require.Len(t, offsets, 121)
	seen := map[Position]bool{}
	for _, o := range offsets {
		seen[o] = true
	}
	assert.Len(t, seen, 121)
	assert.True(t, seen[Pos(-5, 5, 0)])
	assert.True(t, seen[Pos(0, 0, 0)])
}

func TestBattle_NextSideBumpsTurnAfterNeutrals(t *testing.T) {
	b := New(flatMap(2, 2, 1), 1)
	b.NextSide()
	assert.Equal(t, FactionHostile, b.Side)
	b.NextSide()
	b.NextSide()
	assert.Equal(t, FactionPlayer, b.Side)
	assert.Equal(t, 2, b.Turn)
}

func TestBattle_PatrolNodeFollowsLinks(t *testing.T) {
	b := New(flatMap(10, 10, 1), 3)
	b.Nodes = []*Node{
		{ID: 0, Position: Pos(0, 0, 0), Links: []int{1, 2}},
		{ID: 1, Position: Pos(5, 0, 0), Priority: 2, Rank: 0},
		{ID: 2, Position: Pos(0, 5, 0), Priority: 5, Rank: 0},
		{ID: 3, Position: Pos(9, 9, 0), Priority: 9, Rank: 0},
		{ID: 4, Position: Pos(9, 0, 0), Dummy: true},
	}
	u := NewUnit(1, "h", FactionHostile, Stats{TU: 50})

	got := b.PatrolNode(false, u, b.Nodes[0])
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ID, "highest priority linked node for the rank")

	b.Nodes[2].Allocate()
	got = b.PatrolNode(false, u, b.Nodes[0])
	require.NotNil(t, got)
	assert.Equal(t, 1, got.ID)

	for i := 0; i < 20; i++ {
		got = b.PatrolNode(true, u, b.Nodes[0])
		require.NotNil(t, got)
		assert.NotEqual(t, 0, got.ID)
		assert.False(t, got.Dummy)
		assert.False(t, got.Allocated())
	}
}

func TestBattle_NearestNodeSameLevel(t *testing.T) {
	b := New(flatMap(10, 10, 2), 3)
	b.Nodes = []*Node{
		{ID: 0, Position: Pos(1, 1, 1)},
		{ID: 1, Position: Pos(6, 6, 0)},
		{ID: 2, Position: Pos(3, 2, 0), Dummy: true},
	}
	u := NewUnit(1, "h", FactionHostile, Stats{})
	require.NoError(t, b.AddUnit(u, Pos(2, 2, 0)))
	assert.Equal(t, 1, b.NearestNode(u).ID)
}

func TestEventLog_FilterAndSummary(t *testing.T) {
	l := NewEventLog(false)
	u := NewUnit(3, "h", FactionHostile, Stats{Health: 10})
	l.Add(1, u, "ai", "mode", "patrol → combat", 2)
	l.Add(1, nil, "explode", "he", "power 60 at (1,1,0)", 60)
	l.AddVerbose(1, u, "move", "step", "(1,1,0)", 0)

	assert.Len(t, l.Entries(), 2)
	assert.Equal(t, 1, l.Count("ai", "mode"))
	assert.True(t, l.HasEntry("ai", "", "combat"))
	assert.Len(t, l.FilterUnit("H3"), 1)
	last, ok := l.LastOf("explode", "")
	require.True(t, ok)
	assert.Equal(t, "--", last.Unit)

	u.Health = 0
	s := l.Summary(1, []*Unit{u})
	assert.Contains(t, s, "hostile  alive=0 out=1")
	assert.Contains(t, s, "explosions=1")
}
