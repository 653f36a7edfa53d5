package ai

// Odds are the weights of each mode in the random pick.
type Odds struct {
	Patrol int
	Ambush int
	Combat int
	Escape int
}

// Total is the sum of all weights.
func (o Odds) Total() int { return o.Patrol + o.Ambush + o.Combat + o.Escape }

// Pick maps a roll in [1, Total] to a mode. Escape is checked first, then
// ambush, combat and patrol.
func (o Odds) Pick(roll int) Mode {
	switch {
	case roll <= o.Escape:
		return ModeEscape
	case roll <= o.Escape+o.Ambush:
		return ModeAmbush
	case roll <= o.Escape+o.Ambush+o.Combat:
		return ModeCombat
	default:
		return ModePatrol
	}
}

// situation is what the mode weighting looks at.
type situation struct {
	Current  Mode
	Hostile  bool
	Melee    bool
	Rifle    bool
	Armed    bool // carries a usable weapon or can use psi
	Fresh    bool // more than half TU left, or charging
	Spotting int
	Visible  int
	Known    int
	Closest  int
	Health   int
	MaxHP    int

	Aggression     int
	AmbushReady    bool
	EscapePossible bool
	BaseDefense    bool
}

func scale(v int, f float64) int { return int(float64(v) * f) }

// evaluateOdds weighs the four modes against the unit's situation.
func evaluateOdds(s situation) Odds {
	// --- Base weights.
	o := Odds{Escape: 15, Ambush: 12, Combat: 20, Patrol: 30}
	if s.Melee {
		o.Escape = 12
	}
	if s.Hostile && s.Fresh {
		o.Escape = 5
	}
	if s.Visible > 0 {
		o.Patrol = 15
	}

	// Being watched makes patrolling pointless.
	if s.Spotting > 0 {
		o.Patrol = 0
	}

	// Melee units don't lie in wait.
	if !s.Rifle || !s.AmbushReady {
		o.Ambush = 0
		if s.Melee {
			o.Combat = scale(o.Combat, 1.3)
		}
	}

	if s.Known > 0 {
		if s.Known == 1 {
			o.Combat = scale(o.Combat, 1.2)
		}
		if !s.EscapePossible {
			o.Escape = 0
		}
	} else if s.Hostile {
		o.Combat = 0
		o.Escape = 0
	}

	// Some inertia toward what we were doing.
	switch s.Current {
	case ModePatrol:
		o.Patrol = scale(o.Patrol, 1.1)
	case ModeAmbush:
		o.Ambush = scale(o.Ambush, 1.1)
	case ModeCombat:
		o.Combat = scale(o.Combat, 1.1)
	case ModeEscape:
		o.Escape = scale(o.Escape, 1.1)
	}

	// --- Wounds.
	switch {
	case s.Health < s.MaxHP/3:
		o.Escape = scale(o.Escape, 1.7)
		o.Combat = scale(o.Combat, 0.6)
		o.Ambush = scale(o.Ambush, 0.75)
	case s.Health < 2*(s.MaxHP/3):
		o.Escape = scale(o.Escape, 1.4)
		o.Combat = scale(o.Combat, 0.8)
		o.Ambush = scale(o.Ambush, 0.8)
	case s.Health < s.MaxHP:
		o.Escape = scale(o.Escape, 1.1)
	}

	// --- Temperament.
	switch s.Aggression {
	case 0:
		o.Escape = scale(o.Escape, 1.4)
		o.Combat = scale(o.Combat, 0.7)
	case 1:
		o.Ambush = scale(o.Ambush, 1.1)
	case 2:
		o.Combat = scale(o.Combat, 1.4)
		o.Escape = scale(o.Escape, 0.7)
	default:
		a := float64(s.Aggression)
		o.Combat = scale(o.Combat, min(2.0, 1.2+a/10))
		o.Escape = scale(o.Escape, max(0.1, 0.9-a/10))
	}

	if s.Current == ModeCombat {
		o.Ambush = scale(o.Ambush, 1.5)
	}

	// --- Contact.
	if s.Spotting > 0 {
		o.Escape = 10 * o.Escape * (s.Spotting + 10) / 100
		o.Combat = 5 * o.Combat * (s.Spotting + 20) / 100
	} else {
		o.Escape /= 2
	}
	if s.Visible > 0 {
		o.Combat = 10 * o.Combat * (s.Visible + 10) / 100
		if s.Closest < 5 {
			o.Ambush = 0
		}
	}

	if s.AmbushReady {
		o.Ambush = scale(o.Ambush, 1.7)
	} else {
		o.Ambush = 0
	}

	// Defenders hold the base.
	if s.BaseDefense {
		o.Escape = scale(o.Escape, 0.75)
		o.Ambush = scale(o.Ambush, 0.6)
	}

	if !s.Armed {
		o.Combat = 0
		o.Ambush = 0
	}
	return o
}
