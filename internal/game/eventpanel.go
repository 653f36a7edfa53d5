package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/battlescape/internal/battle"
)

const (
	logPanelWidth = 420
	logMaxEntries = 80
	logLineHeight = 14
)

// EventPanel is a ring buffer of the latest battle log entries rendered
// beside the map.
type EventPanel struct {
	entries []battle.Event
	head    int
	count   int
	seen    int // entries of the battle log already pulled in
}

// NewEventPanel creates a panel with a fixed capacity.
func NewEventPanel() *EventPanel {
	return &EventPanel{
		entries: make([]battle.Event, logMaxEntries),
	}
}

// Add appends an entry, dropping the oldest once full.
func (p *EventPanel) Add(e battle.Event) {
	p.entries[p.head] = e
	p.head = (p.head + 1) % logMaxEntries
	if p.count < logMaxEntries {
		p.count++
	}
}

// Sync pulls every entry added to l since the last call.
func (p *EventPanel) Sync(l *battle.EventLog) {
	all := l.Entries()
	if len(all) < p.seen {
		// log was replaced, e.g. after a load
		p.seen = 0
	}
	for _, e := range all[p.seen:] {
		p.Add(e)
	}
	p.seen = len(all)
}

// Recent returns entries in chronological order (oldest first).
func (p *EventPanel) Recent() []battle.Event {
	result := make([]battle.Event, p.count)
	for i := 0; i < p.count; i++ {
		idx := (p.head - p.count + i + logMaxEntries) % logMaxEntries
		result[i] = p.entries[idx]
	}
	return result
}

func eventColor(e battle.Event) color.RGBA {
	switch e.Faction {
	case battle.FactionPlayer.String():
		return factionColors[battle.FactionPlayer]
	case battle.FactionHostile.String():
		return factionColors[battle.FactionHostile]
	case battle.FactionNeutral.String():
		return factionColors[battle.FactionNeutral]
	default:
		return color.RGBA{R: 150, G: 150, B: 150, A: 255}
	}
}

// Draw renders the panel at panelX, newest entry at the bottom.
func (p *EventPanel) Draw(screen *ebiten.Image, face text.Face, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 18, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	drawText(screen, face, "BATTLE LOG", panelX+8, 3, color.White)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+logPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := p.Recent()
	maxVisible := (panelH - 26) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	const recent = 3

	y := 22
	for i, e := range entries {
		if i >= len(entries)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, eventColor(e), false)
		line := fmt.Sprintf("%2d %-4s %-8s %s", e.Turn, e.Unit, e.Key, e.Value)
		drawText(screen, face, line, panelX+12, y, color.RGBA{R: 210, G: 220, B: 210, A: 255})
		y += logLineHeight
	}
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}
