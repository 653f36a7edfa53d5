// Package game is an ebiten debug viewer for a battle driven by the
// scenario runner.
package game

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/savestate"
	"github.com/Garsondee/battlescape/internal/scenario"
)

// borderWidth is the pixel gap between the window edge and the map.
const borderWidth = 24

// cellSize is the on-screen size of one tile in pixels.
const cellSize = 28

// statusFrames is how long a status message stays up (60 per second).
const statusFrames = 180

type Game struct {
	r   *scenario.Runner
	log *zap.Logger

	width      int
	height     int
	gameWidth  int // map area width (log panel takes the rest)
	gameHeight int // map area height
	offX       int // pixel offset from window left to the map
	offY       int // pixel offset from window top to the map

	face  text.Face
	panel *EventPanel

	level    int
	overlay  Overlay
	showHUD  bool
	prevKeys map[ebiten.Key]bool

	inspector     Inspector
	prevMouseLeft bool

	status      string
	statusTimer int

	store    *savestate.Store
	saveName string
}

// Option configures the viewer.
type Option func(*Game)

// WithStore lets F5 write the battle to the save store under name.
func WithStore(s *savestate.Store, name string) Option {
	return func(g *Game) {
		g.store = s
		g.saveName = name
	}
}

// New builds a viewer over a runner that is ready to play.
func New(r *scenario.Runner, log *zap.Logger, opts ...Option) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	m := r.B.Map
	gw := m.Width * cellSize
	gh := m.Length * cellSize
	g := &Game{
		r:          r,
		log:        log.Named("viewer"),
		gameWidth:  gw,
		gameHeight: gh,
		offX:       borderWidth,
		offY:       borderWidth,
		width:      borderWidth + gw + borderWidth + logPanelWidth,
		height:     max(borderWidth+gh+borderWidth, 480),
		face:       text.NewGoXFace(basicfont.Face7x13),
		panel:      NewEventPanel(),
		showHUD:    true,
		prevKeys:   make(map[ebiten.Key]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.panel.Sync(r.B.Log)
	return g
}

// WindowSize is the preferred outer window size.
func (g *Game) WindowSize() (int, int) { return g.width, g.height }

func (g *Game) Update() error {
	g.handleInput()
	g.panel.Sync(g.r.B.Log)
	if g.statusTimer > 0 {
		g.statusTimer--
	}
	return nil
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusTimer = statusFrames
}

// stepLevel moves the shown level by delta, clamped to the map.
func (g *Game) stepLevel(delta int) {
	g.level = min(max(g.level+delta, 0), g.r.B.Map.Height-1)
}

// runTurn plays one full turn unless the battle is already decided.
func (g *Game) runTurn() {
	if g.r.Over() {
		g.setStatus("battle over: " + g.r.Report().Winner())
		return
	}
	g.r.RunTurn()
	g.setStatus(fmt.Sprintf("turn %d", g.r.B.Turn))
	g.log.Debug("turn played", zap.Int("turn", g.r.B.Turn))
}

// runSide plays only the side whose turn it is.
func (g *Game) runSide() {
	if g.r.Over() {
		g.setStatus("battle over: " + g.r.Report().Winner())
		return
	}
	side := g.r.B.Side
	g.r.RunSide()
	g.setStatus(fmt.Sprintf("%s done", side))
}

func (g *Game) copyDump() {
	if err := copyToClipboard(Dump(g.r, g.level)); err != nil {
		g.log.Warn("clipboard copy failed", zap.Error(err))
		g.setStatus("copy failed")
		return
	}
	g.setStatus("dump copied")
}

func (g *Game) save() {
	if g.store == nil {
		g.setStatus("no save store")
		return
	}
	id, err := g.store.Save(context.Background(), fmt.Sprintf("%s-turn%d", g.saveName, g.r.B.Turn), g.r.B, g.r.AI)
	if err != nil {
		g.log.Warn("save failed", zap.Error(err))
		g.setStatus("save failed")
		return
	}
	g.setStatus("saved " + id[:8])
}

// handleInput processes key presses (edge-triggered).
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	// Overlays: 1-4.
	overlayKeys := [overlayCount]ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4}
	for i, k := range overlayKeys {
		if pressed(k) {
			g.overlay = Overlay(i)
		}
	}

	if pressed(ebiten.KeyPageUp) {
		g.stepLevel(1)
	}
	if pressed(ebiten.KeyPageDown) {
		g.stepLevel(-1)
	}
	if pressed(ebiten.KeySpace) {
		g.runTurn()
	}
	if pressed(ebiten.KeyN) {
		g.runSide()
	}
	if pressed(ebiten.KeyC) {
		g.copyDump()
	}
	if pressed(ebiten.KeyF5) {
		g.save()
	}
	if pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if pressed(ebiten.KeyI) {
		g.inspector.rawView = !g.inspector.rawView
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && !g.prevMouseLeft {
		mx, my := ebiten.CursorPosition()
		g.handleInspectorClick(mx, my)
	}
	g.prevMouseLeft = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	g.prevKeys = currentKeys
}

// cellOrigin is the top-left pixel of a tile.
func (g *Game) cellOrigin(p battle.Position) (float32, float32) {
	return float32(g.offX + p.X*cellSize), float32(g.offY + p.Y*cellSize)
}

func (g *Game) cellCentre(p battle.Position) (float32, float32) {
	x, y := g.cellOrigin(p)
	return x + cellSize/2, y + cellSize/2
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	g.drawTiles(screen)
	g.drawUnits(screen)
	if g.overlay == OverlayVisibility {
		g.drawSightLines(screen)
	}

	ox, oy := float32(g.offX), float32(g.offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)

	g.panel.Draw(screen, g.face, g.offX+g.gameWidth+g.offX, g.height)

	top := fmt.Sprintf("turn %d  side %s  level %d/%d  overlay %s", g.r.B.Turn, g.r.B.Side, g.level, g.r.B.Map.Height-1, g.overlay)
	drawText(screen, g.face, top, g.offX, 5, color.White)
	if g.showHUD {
		g.drawHUD(screen)
	}
	g.drawInspector(screen)
}

func (g *Game) drawTiles(screen *ebiten.Image) {
	m := g.r.B.Map
	for y := 0; y < m.Length; y++ {
		for x := 0; x < m.Width; x++ {
			t := m.At(battle.Position{X: x, Y: y, Z: g.level})
			px, py := g.cellOrigin(t.Position())
			vector.FillRect(screen, px, py, cellSize, cellSize, floorColor(t), false)
			if c, ok := objectColor(t); ok {
				vector.FillRect(screen, px+4, py+4, cellSize-8, cellSize-8, c, false)
			}
			if c, ok := wallColor(t, battle.PartWestWall); ok {
				vector.StrokeLine(screen, px+1, py, px+1, py+cellSize, 3, c, false)
			}
			if c, ok := wallColor(t, battle.PartNorthWall); ok {
				vector.StrokeLine(screen, px, py+1, px+cellSize, py+1, 3, c, false)
			}
			if c := tint(t, g.overlay); c.A > 0 {
				vector.FillRect(screen, px, py, cellSize, cellSize, c, false)
			}
		}
	}
}

func (g *Game) drawUnits(screen *ebiten.Image) {
	for _, u := range g.r.B.Units {
		if !u.Placed() || u.Position().Z != g.level {
			continue
		}
		span := float32(u.Size * cellSize)
		x, y := g.cellOrigin(u.Position())
		cx, cy := x+span/2, y+span/2
		if u.IsOut() {
			c := color.RGBA{R: 90, G: 90, B: 90, A: 255}
			vector.StrokeLine(screen, cx-6, cy-6, cx+6, cy+6, 2, c, true)
			vector.StrokeLine(screen, cx-6, cy+6, cx+6, cy-6, 2, c, true)
			continue
		}
		col := factionColors[u.Faction]
		vector.FillCircle(screen, cx, cy, span/2-4, col, true)
		dv := u.Direction.Vector()
		vector.StrokeLine(screen, cx, cy, cx+float32(dv.X)*span/2, cy+float32(dv.Y)*span/2, 2, color.White, true)
		if u.FireTurns > 0 {
			vector.StrokeCircle(screen, cx, cy, span/2-2, 2, colFire, true)
		}
	}
}

// drawSightLines links every standing unit to the enemies it sees.
func (g *Game) drawSightLines(screen *ebiten.Image) {
	for _, u := range g.r.B.Units {
		if u.IsOut() || !u.Placed() || u.Position().Z != g.level {
			continue
		}
		col := factionColors[u.Faction]
		col.A = 120
		ux, uy := g.cellCentre(u.Position())
		for _, v := range u.VisibleUnits() {
			if v.Position().Z != g.level {
				continue
			}
			vx, vy := g.cellCentre(v.Position())
			vector.StrokeLine(screen, ux, uy, vx, vy, 1, col, true)
		}
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{}
	for o := Overlay(0); o < overlayCount; o++ {
		on := " "
		if g.overlay == o {
			on = "*"
		}
		lines = append(lines, fmt.Sprintf("[%d]%s %s", o+1, on, o))
	}
	lines = append(lines,
		"PgUp/PgDn level",
		"Space turn  N side",
		"C copy dump  F5 save",
		"H hud",
		"click=inspect  I raw",
	)
	if g.statusTimer > 0 {
		lines = append(lines, "> "+g.status)
	}

	const padX, padY = 5, 4
	boxW := float32(180)
	boxH := float32(len(lines)*inspLineH + padY*2)
	bx := float32(g.offX + 4)
	by := float32(g.offY+g.gameHeight) - boxH - 4

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, line := range lines {
		drawText(screen, g.face, line, int(bx)+padX, int(by)+padY+i*inspLineH, color.White)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
