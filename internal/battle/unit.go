package battle

// Faction is the side a unit fights for.
type Faction uint8

const (
	FactionPlayer Faction = iota
	FactionHostile
	FactionNeutral
)

func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "player"
	case FactionHostile:
		return "hostile"
	case FactionNeutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// Stats are a unit's base attributes.
type Stats struct {
	TU          int
	Stamina     int
	Health      int
	Bravery     int
	Reactions   int
	Firing      int
	Throwing    int
	Strength    int
	PsiSkill    int
	PsiStrength int
	Melee       int
}

// Unit is a combatant on the battle map. The map owns the unit's position
// through PlaceUnit; everything else here is plain state.
type Unit struct {
	ID              int
	Name            string
	Faction         Faction
	OriginalFaction Faction
	Rank            int

	pos       Position
	placed    bool
	Direction Direction

	Size        int
	Movement    MovementType
	Height      int // standing height in voxels
	FloatHeight int
	Armor       int
	Turret360   bool // sees all around regardless of facing
	FireImmune  bool

	Stats     Stats
	TU        int
	Energy    int
	Health    int
	StunLevel int
	Morale    int
	FireTurns int

	Aggression   int
	Intelligence int

	// TurnsSinceSpotted counts turns since the opposing AI last saw this unit.
	TurnsSinceSpotted int
	// Visible is set when any enemy currently sees this unit.
	Visible bool

	Charging *Unit

	MainWeapon  *Weapon
	MeleeWeapon *Weapon
	Grenade     *Weapon
	PsiAmp      *Weapon

	visibleUnits []*Unit
	Kills        int
}

// NewUnit builds a unit with full TU, energy and health.
func NewUnit(id int, name string, faction Faction, stats Stats) *Unit {
	return &Unit{
		ID:                id,
		Name:              name,
		Faction:           faction,
		OriginalFaction:   faction,
		Size:              1,
		Height:            22,
		Stats:             stats,
		TU:                stats.TU,
		Energy:            stats.Stamina,
		Health:            stats.Health,
		Morale:            100,
		Aggression:        1,
		Intelligence:      2,
		TurnsSinceSpotted: 255,
		Direction:         DirNorth,
	}
}

// Position returns the north-west tile of the unit's footprint.
func (u *Unit) Position() Position { return u.pos }

// Placed reports whether the unit currently stands on the map.
func (u *Unit) Placed() bool { return u.placed }

// IsOut reports whether the unit is dead or unconscious.
func (u *Unit) IsOut() bool { return u.Health <= 0 || u.StunLevel >= u.Health }

// Damage applies a hit after armor and returns the damage dealt.
func (u *Unit) Damage(power int, kind DamageType) int {
	if kind != DamageStun && kind != DamageSmoke {
		power -= u.Armor
	}
	if power <= 0 {
		return 0
	}
	if kind == DamageStun {
		u.StunLevel += power
		return power
	}
	u.Health = max(0, u.Health-power)
	u.Morale = max(0, u.Morale-10)
	return power
}

// Stun adds non-lethal damage.
func (u *Unit) Stun(power int) {
	if power > 0 {
		u.StunLevel += power
	}
}

// SetFire sets the unit burning for the given turns unless it can't burn.
func (u *Unit) SetFire(turns int) {
	if u.FireImmune {
		return
	}
	u.FireTurns = max(u.FireTurns, turns)
}

// SpendTU deducts time units if the unit can afford them.
func (u *Unit) SpendTU(tu int) bool {
	if tu > u.TU {
		return false
	}
	u.TU -= tu
	return true
}

// SpendEnergy deducts stamina if the unit can afford it.
func (u *Unit) SpendEnergy(e int) bool {
	if e > u.Energy {
		return false
	}
	u.Energy -= e
	return true
}

// ReactionScore weighs reactions by the share of TU left.
func (u *Unit) ReactionScore() float64 {
	if u.Stats.TU == 0 {
		return 0
	}
	return float64(u.Stats.Reactions) * float64(u.TU) / float64(u.Stats.TU)
}

// ActionTU returns the TU cost of an action with the given weapon.
func (u *Unit) ActionTU(kind ActionType, w *Weapon) int {
	if w == nil {
		return 0
	}
	var cost int
	switch kind {
	case ActionPrime:
		cost = w.TUPrime
	case ActionThrow:
		cost = w.TUThrow
		if cost == 0 {
			cost = 25
		}
	case ActionAutoShot:
		cost = w.TUAuto
	case ActionSnapShot:
		cost = w.TUSnap
	case ActionAimedShot:
		cost = w.TUAimed
	case ActionHit:
		cost = w.TUMelee
	case ActionLaunch:
		cost = w.TULaunch
	case ActionMindControl, ActionPanic, ActionUse:
		cost = w.TUUse
	default:
		return 0
	}
	if cost == 0 {
		return 0
	}
	if w.FlatRate {
		return cost
	}
	return u.Stats.TU * cost / 100
}

// LookAt turns the unit to face the given tile.
func (u *Unit) LookAt(p Position) {
	if d := DirectionTo(u.pos, p); d != DirNone {
		u.Direction = d
	}
}

// VisibleUnits returns the enemies this unit currently sees.
func (u *Unit) VisibleUnits() []*Unit { return u.visibleUnits }

// Sees reports whether other is in the visible list.
func (u *Unit) Sees(other *Unit) bool {
	for _, v := range u.visibleUnits {
		if v == other {
			return true
		}
	}
	return false
}

// AddToVisible records a sighting once.
func (u *Unit) AddToVisible(other *Unit) bool {
	if u.Sees(other) {
		return false
	}
	u.visibleUnits = append(u.visibleUnits, other)
	return true
}

func (u *Unit) ClearVisible() { u.visibleUnits = u.visibleUnits[:0] }

// HostileTo reports whether the two units are on opposing sides. Neutrals
// count as enemies of hostiles only.
func (u *Unit) HostileTo(o *Unit) bool {
	switch u.Faction {
	case FactionPlayer:
		return o.Faction == FactionHostile
	case FactionHostile:
		return o.Faction != FactionHostile
	default:
		return o.Faction == FactionHostile
	}
}

// PrepareNewTurn restores TU and energy and ages enemy knowledge.
func (u *Unit) PrepareNewTurn() {
	if u.IsOut() {
		return
	}
	u.TU = u.Stats.TU
	u.Energy = min(u.Stats.Stamina, u.Energy+u.Stats.Stamina/3+1)
	if u.StunLevel > 0 {
		u.StunLevel--
	}
	if u.TurnsSinceSpotted < 255 {
		u.TurnsSinceSpotted++
	}
	if u.FireTurns > 0 {
		u.FireTurns--
	}
	u.Charging = nil
}
