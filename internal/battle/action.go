package battle

// WeaponClass groups items by how they are used.
type WeaponClass uint8

const (
	ClassFirearm WeaponClass = iota
	ClassMelee
	ClassGrenade
	ClassLauncher // fires a guided missile along waypoints
	ClassPsiAmp
	ClassFlare
)

// Weapon is an item with its loaded ammunition folded in.
type Weapon struct {
	Name   string
	Class  WeaponClass
	Damage DamageType
	Power  int
	Radius int // explosion radius in tiles; 0 means a single hit

	TUAimed  int
	TUSnap   int
	TUAuto   int
	TUMelee  int
	TUPrime  int
	TUThrow  int
	TULaunch int
	TUUse    int
	FlatRate bool

	AccuracyAimed int
	AccuracySnap  int
	AccuracyAuto  int

	Waypoints       int // -1 scales with difficulty
	Ammo            int // rounds left; -1 is unlimited
	StrengthApplied bool
	LOSRequired     bool
}

// HasAmmo reports whether the weapon can still fire.
func (w *Weapon) HasAmmo() bool { return w != nil && w.Ammo != 0 }

// UseAmmo spends one round.
func (w *Weapon) UseAmmo() {
	if w.Ammo > 0 {
		w.Ammo--
	}
}

// ExplosionRadius is the blast radius, or 0 for direct-hit weapons.
func (w *Weapon) ExplosionRadius() int {
	if w == nil || !w.Damage.IsArea() {
		return 0
	}
	if w.Radius > 0 {
		return w.Radius
	}
	return w.Power / 20
}

// ActionType is what a battle action does.
type ActionType uint8

const (
	ActionNone ActionType = iota
	ActionTurn
	ActionWalk
	ActionPrime
	ActionThrow
	ActionAutoShot
	ActionSnapShot
	ActionAimedShot
	ActionHit
	ActionLaunch
	ActionMindControl
	ActionPanic
	ActionRethink
	ActionUse
)

func (a ActionType) String() string {
	switch a {
	case ActionTurn:
		return "turn"
	case ActionWalk:
		return "walk"
	case ActionPrime:
		return "prime"
	case ActionThrow:
		return "throw"
	case ActionAutoShot:
		return "auto_shot"
	case ActionSnapShot:
		return "snap_shot"
	case ActionAimedShot:
		return "aimed_shot"
	case ActionHit:
		return "hit"
	case ActionLaunch:
		return "launch"
	case ActionMindControl:
		return "mind_control"
	case ActionPanic:
		return "panic"
	case ActionRethink:
		return "rethink"
	case ActionUse:
		return "use"
	default:
		return "none"
	}
}

// IsShot reports whether the action fires a weapon at a target.
func (a ActionType) IsShot() bool {
	return a == ActionAutoShot || a == ActionSnapShot || a == ActionAimedShot
}

// Action is a request for a unit to do something this activation.
type Action struct {
	Type        ActionType
	Actor       *Unit
	Target      Position
	TargetUnit  *Unit
	Weapon      *Weapon
	TU          int
	Waypoints   []Position
	Run         bool
	FinalFacing Direction
	FinalAction bool
	Number      int // AI mode that produced it, for display
	Desperate   bool
	Diff        int
	Description string
}

// Reset clears the action for reuse by the same actor.
func (a *Action) Reset() {
	actor, diff := a.Actor, a.Diff
	*a = Action{Actor: actor, Diff: diff, FinalFacing: DirNone}
}
