// Package engine traces lines through the voxel grid and resolves what
// happens on the battle map: sight, explosions, fire and smoke, lighting,
// doors and reaction fire.
package engine

import (
	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/battle"
)

const (
	// MaxViewDistance is how far units see in tiles.
	MaxViewDistance = 20
	// MaxDarknessToSeeUnits is the darkest shade a player unit can spot in.
	MaxDarknessToSeeUnits = 9
	// ReactionRange bounds who can react to a moving unit.
	ReactionRange = 19
	// FireLightPower is the light a burning tile gives off.
	FireLightPower = 15
	// PersonalLightPower is the light carried by player units.
	PersonalLightPower = 15
)

// Options tune the engine.
type Options struct {
	MaxViewDistance       int
	MaxDarknessToSeeUnits int
}

// DefaultOptions returns the stock sight limits.
func DefaultOptions() Options {
	return Options{
		MaxViewDistance:       MaxViewDistance,
		MaxDarknessToSeeUnits: MaxDarknessToSeeUnits,
	}
}

// TileEngine operates on one battle's map and units.
type TileEngine struct {
	b    *battle.Battle
	m    *battle.Map
	opts Options
	log  *zap.Logger

	// Aggro is called when reaction fire makes an AI unit take notice of
	// someone. It may be nil.
	Aggro func(u, target *battle.Unit)
	// Hit is called whenever a unit takes damage from an attributed source.
	Hit func(victim, attacker *battle.Unit)
}

// New builds an engine for b. A nil logger disables logging.
func New(b *battle.Battle, opts Options, log *zap.Logger) *TileEngine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxViewDistance <= 0 {
		opts.MaxViewDistance = MaxViewDistance
	}
	if opts.MaxDarknessToSeeUnits <= 0 {
		opts.MaxDarknessToSeeUnits = MaxDarknessToSeeUnits
	}
	return &TileEngine{b: b, m: b.Map, opts: opts, log: log.Named("engine")}
}

// Battle returns the battle the engine works on.
func (e *TileEngine) Battle() *battle.Battle { return e.b }

// Options returns the active tuning.
func (e *TileEngine) Options() Options { return e.opts }

func (e *TileEngine) tileAtVoxel(v battle.Position) *battle.Tile {
	return e.m.At(battle.VoxelToTile(v))
}

func (e *TileEngine) notifyHit(victim, attacker *battle.Unit) {
	if e.Hit != nil && victim != nil && attacker != nil && victim != attacker {
		e.Hit(victim, attacker)
	}
}

func (e *TileEngine) logEvent(u *battle.Unit, category, key, value string, num float64) {
	e.b.Log.Add(e.b.Turn, u, category, key, value, num)
}
