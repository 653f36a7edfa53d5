package game

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/config"
	"github.com/Garsondee/battlescape/internal/scenario"
)

var testRows = []string{
	"........",
	".c..|...",
	".B..D...",
	"~~~~-d--",
	"~T~~~~~~",
}

func newViewer(t *testing.T) *Game {
	t.Helper()
	opts := []scenario.Option{scenario.WithMapSize(8, 5, 1)}
	for y, row := range testRows {
		opts = append(opts, scenario.WithTerrainRow(0, y, row))
	}
	soldier := battle.NewUnit(1, "Harper", battle.FactionPlayer, battle.Stats{TU: 60, Stamina: 60, Health: 30, Reactions: 40, Firing: 60})
	alien := battle.NewUnit(2, "sectoid", battle.FactionHostile, battle.Stats{TU: 54, Stamina: 90, Health: 30, Reactions: 60, Firing: 50})
	opts = append(opts,
		scenario.WithUnit(soldier, battle.Position{X: 0, Y: 0}),
		scenario.WithUnit(alien, battle.Position{X: 7, Y: 4}),
	)
	b, err := scenario.Build(opts...)
	require.NoError(t, err)
	r := scenario.NewRunner(b, config.Default(), nil)
	return New(r, nil)
}

func TestNewSizesWindowToMap(t *testing.T) {
	g := newViewer(t)

	assert.Equal(t, 8*cellSize, g.gameWidth)
	assert.Equal(t, 5*cellSize, g.gameHeight)
	w, h := g.WindowSize()
	assert.Equal(t, borderWidth*2+8*cellSize+logPanelWidth, w)
	assert.GreaterOrEqual(t, h, 480)
	assert.Equal(t, OverlayTerrain, g.overlay)
}

func TestStepLevelClamps(t *testing.T) {
	g := newViewer(t)

	g.stepLevel(1)
	assert.Equal(t, 0, g.level, "single-level map")
	g.stepLevel(-3)
	assert.Equal(t, 0, g.level)
}

func TestInspectorClickSelectsUnit(t *testing.T) {
	g := newViewer(t)

	hit := g.handleInspectorClick(g.offX+7*cellSize+3, g.offY+4*cellSize+3)
	require.True(t, hit)
	assert.Equal(t, 2, g.inspector.selected.ID)

	assert.False(t, g.handleInspectorClick(g.offX+3*cellSize+3, g.offY+3), "empty floor clears the selection")
	assert.Nil(t, g.inspector.selected)

	assert.False(t, g.handleInspectorClick(2, 2), "border")
}

func TestInspectorLines(t *testing.T) {
	g := newViewer(t)
	u := g.r.B.UnitByID(2)

	curated := strings.Join(g.inspectorLines(u), "\n")
	assert.Contains(t, curated, "HOSTILE H2 sectoid")
	assert.Contains(t, curated, "TU 54/54")
	assert.Contains(t, curated, "mode: ")

	g.inspector.rawView = true
	raw := strings.Join(g.inspectorLines(u), "\n")
	assert.Contains(t, raw, "view: RAW")
	assert.Contains(t, raw, fmt.Sprintf("pos=%s", u.Position()))
	assert.Contains(t, raw, "ai: ")
}

func TestDumpLevel(t *testing.T) {
	g := newViewer(t)

	want := strings.Join([]string{
		"P.......",
		".c..|...",
		".B..D...",
		"....-D--",
		".T.....H",
	}, "\n") + "\n"
	assert.Equal(t, want, DumpLevel(g.r.B.Map, 0))
}

func TestGlyphShowsFireAndSmoke(t *testing.T) {
	g := newViewer(t)
	m := g.r.B.Map

	burning := m.At(battle.Position{X: 2, Y: 4})
	burning.SetFire(2)
	assert.Equal(t, '*', glyph(burning))

	smoky := m.At(battle.Position{X: 6, Y: 0})
	smoky.SetSmoke(5)
	assert.Equal(t, ':', glyph(smoky))

	g.r.B.UnitByID(1).Health = 0
	assert.Equal(t, '.', glyph(m.At(battle.Position{})), "fallen units drop out of the dump")
}

func TestDumpListsUnitsAndReport(t *testing.T) {
	g := newViewer(t)

	d := Dump(g.r, 0)
	assert.Contains(t, d, "turn=1 side=player level=0")
	assert.Contains(t, d, "P1   Harper")
	assert.Contains(t, d, "H2   sectoid")
	assert.Contains(t, d, "mode=")
	assert.Contains(t, d, "winner=none")
}

func TestTints(t *testing.T) {
	g := newViewer(t)
	m := g.r.B.Map

	plain := m.At(battle.Position{X: 6, Y: 1})
	assert.Zero(t, tint(plain, OverlayTerrain).A)
	assert.Zero(t, tint(plain, OverlayFire).A)

	plain.SetSmoke(4)
	assert.Equal(t, uint8(60), tint(plain, OverlayFire).A)
	plain.SetFire(1)
	assert.Equal(t, colFire.R, tint(plain, OverlayFire).R, "fire beats smoke")

	barrel := m.At(battle.Position{X: 1, Y: 2})
	barrel.SetExplosive(40, battle.DamageHE, true)
	assert.Equal(t, colExplosive, tint(barrel, OverlayFire))

	dark := m.At(battle.Position{X: 3, Y: 3})
	assert.Equal(t, uint8(dark.Shade()*15), tint(dark, OverlayLight).A)

	dark.ClearDiscovered()
	assert.Equal(t, colHidden, tint(dark, OverlayVisibility))
	dark.SetDiscovered(battle.DiscoveredContent)
	assert.Zero(t, tint(dark, OverlayVisibility).A)
}

func TestTerrainColours(t *testing.T) {
	g := newViewer(t)
	m := g.r.B.Map

	assert.Equal(t, colGrass, floorColor(m.At(battle.Position{X: 0, Y: 3})))
	assert.Equal(t, colFloor, floorColor(m.At(battle.Position{X: 0, Y: 0})))

	c, ok := objectColor(m.At(battle.Position{X: 1, Y: 2}))
	require.True(t, ok)
	assert.Equal(t, colBarrel, c)
	_, ok = objectColor(m.At(battle.Position{X: 0, Y: 0}))
	assert.False(t, ok)

	door := m.At(battle.Position{X: 4, Y: 2})
	c, ok = wallColor(door, battle.PartWestWall)
	require.True(t, ok)
	assert.Equal(t, colDoor, c)
	door.OpenDoor(battle.PartWestWall)
	c, _ = wallColor(door, battle.PartWestWall)
	assert.Equal(t, colDoorOpen, c)

	c, ok = wallColor(m.At(battle.Position{X: 4, Y: 1}), battle.PartWestWall)
	require.True(t, ok)
	assert.Equal(t, colWall, c)
}

func TestEventPanelKeepsNewest(t *testing.T) {
	p := NewEventPanel()
	log := battle.NewEventLog(false)
	for i := 0; i < logMaxEntries+5; i++ {
		log.Add(1, nil, "turn", "tick", fmt.Sprint(i), 0)
	}
	p.Sync(log)

	got := p.Recent()
	require.Len(t, got, logMaxEntries)
	assert.Equal(t, "5", got[0].Value)
	assert.Equal(t, fmt.Sprint(logMaxEntries+4), got[len(got)-1].Value)

	log.Add(2, nil, "turn", "start", "next", 0)
	p.Sync(log)
	got = p.Recent()
	assert.Equal(t, "next", got[len(got)-1].Value)
	assert.Equal(t, "6", got[0].Value)
}

func TestEventPanelResetsOnNewLog(t *testing.T) {
	p := NewEventPanel()
	old := battle.NewEventLog(false)
	old.Add(1, nil, "a", "b", "old-1", 0)
	old.Add(1, nil, "a", "b", "old-2", 0)
	p.Sync(old)

	fresh := battle.NewEventLog(false)
	fresh.Add(1, nil, "a", "b", "fresh", 0)
	p.Sync(fresh)

	got := p.Recent()
	assert.Equal(t, "fresh", got[len(got)-1].Value)
}

func TestRunTurnAdvancesAndReports(t *testing.T) {
	g := newViewer(t)
	if g.r.Over() {
		t.Skip("battle decided before the first turn")
	}
	g.runTurn()
	assert.Equal(t, 2, g.r.B.Turn)
	assert.Equal(t, "turn 2", g.status)
	assert.Equal(t, statusFrames, g.statusTimer)

	g.panel.Sync(g.r.B.Log)
	assert.NotEmpty(t, g.panel.Recent())

	for _, id := range g.r.AI.IDs() {
		assert.NotNil(t, g.r.AI.Get(id))
	}
}

func TestSaveWithoutStore(t *testing.T) {
	g := newViewer(t)
	g.save()
	assert.Equal(t, "no save store", g.status)
}
