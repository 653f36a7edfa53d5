package game

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/scenario"
)

// glyph is the one-character picture of a tile used in text dumps. Units
// win over fire, fire over objects, objects over walls.
func glyph(t *battle.Tile) rune {
	if u := t.Unit(); u != nil && !u.IsOut() {
		switch u.Faction {
		case battle.FactionPlayer:
			return 'P'
		case battle.FactionHostile:
			return 'H'
		default:
			return 'N'
		}
	}
	if t.Fire() > 0 {
		return '*'
	}
	if o := t.Part(battle.PartObject); o != nil {
		switch {
		case o.BigWall:
			return '#'
		case o.Explosive > 0:
			return 'B'
		case o.Stairs:
			return 'S'
		case o.Name == "tree":
			return 'T'
		case o.Name == "bush":
			return 'b'
		case o.Name == "crate":
			return 'c'
		default:
			return 'o'
		}
	}
	west, north := t.Part(battle.PartWestWall), t.Part(battle.PartNorthWall)
	switch {
	case west != nil && west.IsDoor(), north != nil && north.IsDoor():
		return 'D'
	case west != nil && north != nil:
		return '+'
	case west != nil:
		return '|'
	case north != nil:
		return '-'
	}
	if t.Smoke() > 0 {
		return ':'
	}
	if t.Part(battle.PartFloor) == nil {
		return ' '
	}
	return '.'
}

// DumpLevel draws one level of the map as text, one row per line.
func DumpLevel(m *battle.Map, z int) string {
	var sb strings.Builder
	for y := 0; y < m.Length; y++ {
		for x := 0; x < m.Width; x++ {
			sb.WriteRune(glyph(m.At(battle.Position{X: x, Y: y, Z: z})))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Dump is the clipboard report: the current level, every unit with its
// AI state, and the battle report.
func Dump(r *scenario.Runner, z int) string {
	b := r.B
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- battlescape dump ---\n")
	fmt.Fprintf(&sb, "turn=%d side=%s level=%d shade=%d cheating=%t\n\n", b.Turn, b.Side, z, b.GlobalShade, b.Cheating)
	sb.WriteString(DumpLevel(b.Map, z))
	sb.WriteByte('\n')

	for _, u := range b.Units {
		state := "out"
		if !u.IsOut() {
			state = u.Position().String()
		}
		fmt.Fprintf(&sb, "%-4s %-16s %-10s tu=%d/%d hp=%d/%d stun=%d morale=%d sees=%d",
			battle.Label(u), u.Name, state, u.TU, u.Stats.TU, u.Health, u.Stats.Health, u.StunLevel, u.Morale, len(u.VisibleUnits()))
		if c := r.AI.Get(u.ID); c != nil {
			fmt.Fprintf(&sb, " mode=%s known=%d", c.Mode(), c.KnownEnemies())
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	sb.WriteString(r.Report().String())
	return sb.String()
}

// copyToClipboard puts text on the system clipboard.
func copyToClipboard(text string) error {
	if text == "" {
		text = " "
	}
	return clipboard.WriteAll(text)
}
