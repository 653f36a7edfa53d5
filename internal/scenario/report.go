package scenario

import (
	"fmt"
	"strings"

	"github.com/Garsondee/battlescape/internal/ai"
	"github.com/Garsondee/battlescape/internal/battle"
)

// Report sums up a finished (or interrupted) run.
type Report struct {
	Turn       int
	Over       bool
	Casualties map[battle.Faction]int
	Standing   map[battle.Faction]int
	Explosions int
	Fires      int
	Destroyed  int
	Stats
}

// Report tallies casualties from the units and terrain events from the
// battle log.
func (r *Runner) Report() Report {
	rep := Report{
		Turn:       r.B.Turn,
		Over:       r.Over(),
		Casualties: make(map[battle.Faction]int),
		Standing:   make(map[battle.Faction]int),
		Explosions: r.B.Log.Count("explode", ""),
		Fires:      r.B.Log.Count("terrain", "ignite"),
		Destroyed:  r.B.Log.Count("terrain", "destroyed"),
		Stats:      r.Stats(),
	}
	for _, u := range r.B.Units {
		if u.IsOut() {
			rep.Casualties[u.OriginalFaction]++
		} else {
			rep.Standing[u.OriginalFaction]++
		}
	}
	return rep
}

// Winner names the side still standing once the battle is over.
func (rep Report) Winner() string {
	switch {
	case !rep.Over:
		return "none"
	case rep.Standing[battle.FactionPlayer] > 0:
		return battle.FactionPlayer.String()
	case rep.Standing[battle.FactionHostile] > 0:
		return battle.FactionHostile.String()
	default:
		return "draw"
	}
}

// String formats the report as a short block of text.
func (rep Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "turn=%d over=%t winner=%s\n", rep.Turn, rep.Over, rep.Winner())
	for _, f := range []battle.Faction{battle.FactionPlayer, battle.FactionHostile, battle.FactionNeutral} {
		if rep.Casualties[f]+rep.Standing[f] == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  %-8s standing=%d out=%d\n", f, rep.Standing[f], rep.Casualties[f])
	}
	fmt.Fprintf(&sb, "  shots=%d reactions=%d throws=%d launches=%d melee=%d psi=%d\n",
		rep.Shots, rep.Reactions, rep.Throws, rep.Launches, rep.Melee, rep.Psi)
	fmt.Fprintf(&sb, "  explosions=%d chained=%d fires=%d destroyed=%d doors=%d\n",
		rep.Explosions, rep.Chained, rep.Fires, rep.Destroyed, rep.DoorsOpen)
	fmt.Fprintf(&sb, "  steps=%d interrupts=%d modes:", rep.Steps, rep.Interrupts)
	for _, m := range []ai.Mode{ai.ModePatrol, ai.ModeAmbush, ai.ModeCombat, ai.ModeEscape} {
		fmt.Fprintf(&sb, " %s=%d", m, rep.Decisions[m])
	}
	sb.WriteByte('\n')
	return sb.String()
}
