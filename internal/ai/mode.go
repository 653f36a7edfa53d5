package ai

import "github.com/Garsondee/battlescape/internal/battle"

// Mode is the high-level posture a controller is in.
type Mode int

const (
	ModePatrol Mode = iota // walk the node graph looking for trouble
	ModeAmbush             // wait out of sight where an enemy will walk into view
	ModeCombat             // attack, or move somewhere to attack from
	ModeEscape             // get away from whoever can see us
)

func (m Mode) String() string {
	switch m {
	case ModePatrol:
		return "patrol"
	case ModeAmbush:
		return "ambush"
	case ModeCombat:
		return "combat"
	case ModeEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// Proposal is the action one mode would take this activation.
type Proposal struct {
	Mode   Mode
	Action battle.Action
}

// Valid reports whether the mode found something to do.
func (p Proposal) Valid() bool {
	return p.Action.Type != battle.ActionRethink && p.Action.Type != battle.ActionNone
}

func newProposal(m Mode, u *battle.Unit) Proposal {
	return Proposal{Mode: m, Action: battle.Action{
		Type:        battle.ActionRethink,
		Actor:       u,
		FinalFacing: battle.DirNone,
	}}
}

// State is the part of a controller that survives a save.
type State struct {
	Mode     Mode  `json:"mode" yaml:"mode"`
	FromNode int   `json:"from_node" yaml:"from_node"`
	ToNode   int   `json:"to_node" yaml:"to_node"`
	WasHitBy []int `json:"was_hit_by,omitempty" yaml:"was_hit_by,omitempty"`
}
