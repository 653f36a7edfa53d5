package battle

import (
	"fmt"
	"strings"
)

// Event is one recorded gameplay event.
type Event struct {
	Turn     int
	Unit     string // label e.g. "H3", or "--" for map events
	Faction  string
	Category string // ai, move, fire, explode, terrain, door, turn
	Key      string
	Value    string
	Num      float64
}

// String formats the entry as a fixed-width log line.
//
//	[T=04] H3   ai        mode            patrol → combat
func (e Event) String() string {
	return fmt.Sprintf("[T=%02d] %-4s %-9s %-16s %s",
		e.Turn, e.Unit, e.Category, e.Key, e.Value)
}

// EventLog collects events for reports and tests. It is unbounded.
type EventLog struct {
	entries []Event
	verbose bool
}

// NewEventLog creates a log. Verbose keeps per-step movement entries too.
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose}
}

// Label is the short tag used for a unit in log lines.
func Label(u *Unit) string {
	if u == nil {
		return "--"
	}
	prefix := "P"
	switch u.Faction {
	case FactionHostile:
		prefix = "H"
	case FactionNeutral:
		prefix = "N"
	}
	return fmt.Sprintf("%s%d", prefix, u.ID)
}

// Add records an event for u (nil for map events).
func (l *EventLog) Add(turn int, u *Unit, category, key, value string, num float64) {
	if l == nil {
		return
	}
	faction := "--"
	if u != nil {
		faction = u.Faction.String()
	}
	l.entries = append(l.entries, Event{
		Turn:     turn,
		Unit:     Label(u),
		Faction:  faction,
		Category: category,
		Key:      key,
		Value:    value,
		Num:      num,
	})
}

// AddVerbose records only in verbose mode.
func (l *EventLog) AddVerbose(turn int, u *Unit, category, key, value string, num float64) {
	if l == nil || !l.verbose {
		return
	}
	l.Add(turn, u, category, key, value, num)
}

func (l *EventLog) Entries() []Event { return l.entries }

// Filter returns entries matching category and key; empty matches any.
func (l *EventLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries for one unit label.
func (l *EventLog) FilterUnit(label string) []Event {
	var out []Event
	for _, e := range l.entries {
		if e.Unit == label {
			out = append(out, e)
		}
	}
	return out
}

func (l *EventLog) Count(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the latest entry matching category and key.
func (l *EventLog) LastOf(category, key string) (Event, bool) {
	entries := l.Filter(category, key)
	if len(entries) == 0 {
		return Event{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether an entry matches category, key and a value
// substring.
func (l *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the whole log, one line per entry.
func (l *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary is a short tally of unit states and event counts.
func (l *EventLog) Summary(turn int, units []*Unit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%02d ---\n", turn)
	for _, f := range []Faction{FactionPlayer, FactionHostile, FactionNeutral} {
		alive, out := 0, 0
		for _, u := range units {
			if u.OriginalFaction != f {
				continue
			}
			if u.IsOut() {
				out++
			} else {
				alive++
			}
		}
		if alive+out == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%-8s alive=%d out=%d\n", f, alive, out)
	}
	fmt.Fprintf(&sb, "shots=%d explosions=%d fires=%d reactions=%d\n",
		l.Count("fire", "shot"), l.Count("explode", ""), l.Count("terrain", "ignite"), l.Count("fire", "reaction"))
	return sb.String()
}
