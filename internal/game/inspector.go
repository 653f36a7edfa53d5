package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/battlescape/internal/battle"
)

const (
	inspW     = 300
	inspH     = 250
	inspPad   = 6
	inspLineH = 14
)

// Inspector holds the selected unit and view toggle state.
type Inspector struct {
	selected *battle.Unit
	rawView  bool // false = curated, true = raw dump
}

// tileUnder maps a screen position to the map tile on the shown level.
func (g *Game) tileUnder(mx, my int) (battle.Position, bool) {
	x := (mx - g.offX) / cellSize
	y := (my - g.offY) / cellSize
	if mx < g.offX || my < g.offY {
		return battle.Position{}, false
	}
	p := battle.Position{X: x, Y: y, Z: g.level}
	return p, g.r.B.Map.InBounds(p)
}

// handleInspectorClick selects the unit on the clicked tile, or clears the
// selection. Returns true if a unit was hit.
func (g *Game) handleInspectorClick(mx, my int) bool {
	p, ok := g.tileUnder(mx, my)
	if !ok {
		g.inspector.selected = nil
		return false
	}
	u := g.r.B.Map.At(p).Unit()
	g.inspector.selected = u
	return u != nil
}

// inspectorLines builds the text for the selected unit.
func (g *Game) inspectorLines(u *battle.Unit) []string {
	side := strings.ToUpper(u.Faction.String())
	lines := []string{fmt.Sprintf("[ %s %s %s ]", side, battle.Label(u), u.Name)}
	view := "CURATED"
	if g.inspector.rawView {
		view = "RAW"
	}
	lines = append(lines, fmt.Sprintf("view: %s  [I] toggle", view), "")

	c := g.r.AI.Get(u.ID)
	if g.inspector.rawView {
		lines = append(lines,
			fmt.Sprintf("id=%d rank=%d size=%d", u.ID, u.Rank, u.Size),
			fmt.Sprintf("pos=%s dir=%d placed=%t", u.Position(), u.Direction, u.Placed()),
			fmt.Sprintf("tu=%d energy=%d hp=%d stun=%d", u.TU, u.Energy, u.Health, u.StunLevel),
			fmt.Sprintf("morale=%d fire=%d aggr=%d int=%d", u.Morale, u.FireTurns, u.Aggression, u.Intelligence),
			fmt.Sprintf("spotted_ago=%d visible=%t", u.TurnsSinceSpotted, u.Visible),
			fmt.Sprintf("orig=%s kills=%d", u.OriginalFaction, u.Kills),
		)
		if c != nil {
			st := c.State()
			lines = append(lines,
				fmt.Sprintf("ai: %s from=%d to=%d", st.Mode, st.FromNode, st.ToNode),
				fmt.Sprintf("hit_by=%v reserve=%s", st.WasHitBy, c.Reserve()),
			)
		}
		return lines
	}

	lines = append(lines,
		fmt.Sprintf("TU %d/%d  HP %d/%d", u.TU, u.Stats.TU, u.Health, u.Stats.Health),
		fmt.Sprintf("morale %d  stun %d", u.Morale, u.StunLevel),
	)
	for _, w := range []*battle.Weapon{u.MainWeapon, u.MeleeWeapon, u.Grenade, u.PsiAmp} {
		if w != nil {
			lines = append(lines, "  "+w.Name)
		}
	}
	seen := make([]string, 0, len(u.VisibleUnits()))
	for _, v := range u.VisibleUnits() {
		seen = append(seen, battle.Label(v))
	}
	lines = append(lines, "sees: "+strings.Join(seen, " "))
	if c != nil {
		o := c.Odds()
		lines = append(lines,
			fmt.Sprintf("mode: %s  known: %d", c.Mode(), c.KnownEnemies()),
			fmt.Sprintf("odds p%d a%d c%d e%d", o.Patrol, o.Ambush, o.Combat, o.Escape),
		)
		if t := c.AggroTarget(); t != nil {
			lines = append(lines, "aggro: "+battle.Label(t))
		}
	}
	return lines
}

// drawInspector renders the panel for the selected unit in the bottom
// right of the map area.
func (g *Game) drawInspector(screen *ebiten.Image) {
	u := g.inspector.selected
	if u == nil {
		return
	}
	px := float32(g.offX + g.gameWidth - inspW - 8)
	py := float32(g.offY + g.gameHeight - inspH - 8)
	if px < 0 {
		px = 0
	}
	if py < 0 {
		py = 0
	}
	border := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(screen, px, py, inspW, inspH, color.RGBA{R: 14, G: 16, B: 14, A: 230}, false)
	vector.StrokeRect(screen, px, py, inspW, inspH, 1.0, border, false)
	vector.StrokeLine(screen, px+1, py+1, px+inspW-1, py+1, 1.0, color.RGBA{R: 70, G: 110, B: 70, A: 60}, false)

	ly := int(py) + inspPad
	for _, line := range g.inspectorLines(u) {
		if ly+inspLineH > int(py)+inspH {
			break
		}
		drawText(screen, g.face, line, int(px)+inspPad, ly, color.White)
		ly += inspLineH
	}

	// ring the selected unit on the map
	if u.Placed() && u.Position().Z == g.level {
		cx, cy := g.cellCentre(u.Position())
		vector.StrokeCircle(screen, cx, cy, cellSize/2, 2, color.White, true)
	}
}
