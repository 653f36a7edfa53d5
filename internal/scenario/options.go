package scenario

import (
	"fmt"

	"github.com/Garsondee/battlescape/internal/battle"
)

// optionKind controls the pass in which an option is applied.
type optionKind int

const (
	optInfra   optionKind = iota // map size, seed, light, rules; applied first
	optTerrain                   // terrain rows; applied once the map exists
	optUnit                      // units and nodes; applied once the battle exists
)

// Option is a builder step applied to a battle during Build.
type Option struct {
	kind optionKind
	fn   func(*builder) error
}

type builder struct {
	width, length, height int
	seed                  int64
	shade                 int
	cheating              bool
	verbose               bool
	catalogue             battle.Catalogue

	m *battle.Map
	b *battle.Battle
}

// piece is one terrain part a legend symbol places.
type piece struct {
	part battle.PartKind
	name string
}

// legend maps a map symbol to the parts it stands for. A space leaves the
// tile empty, which on upper levels means open air.
var legend = map[rune][]piece{
	' ': nil,
	'.': {{battle.PartFloor, "floor"}},
	'r': {{battle.PartFloor, "roof"}},
	'L': {{battle.PartFloor, "lamp_floor"}},
	'~': {{battle.PartFloor, "grass"}},
	'#': {{battle.PartFloor, "floor"}, {battle.PartObject, "big_wall"}},
	'|': {{battle.PartFloor, "floor"}, {battle.PartWestWall, "wall_west"}},
	'-': {{battle.PartFloor, "floor"}, {battle.PartNorthWall, "wall_north"}},
	'+': {{battle.PartFloor, "floor"}, {battle.PartWestWall, "wall_west"}, {battle.PartNorthWall, "wall_north"}},
	'w': {{battle.PartFloor, "floor"}, {battle.PartWestWall, "window_west"}},
	'D': {{battle.PartFloor, "floor"}, {battle.PartWestWall, "door_west"}},
	'd': {{battle.PartFloor, "floor"}, {battle.PartNorthWall, "door_north"}},
	'U': {{battle.PartFloor, "floor"}, {battle.PartWestWall, "ufo_door_west"}},
	'u': {{battle.PartFloor, "floor"}, {battle.PartNorthWall, "ufo_door_north"}},
	'T': {{battle.PartFloor, "grass"}, {battle.PartObject, "tree"}},
	'b': {{battle.PartFloor, "grass"}, {battle.PartObject, "bush"}},
	'c': {{battle.PartFloor, "floor"}, {battle.PartObject, "crate"}},
	'B': {{battle.PartFloor, "grass"}, {battle.PartObject, "fuel_barrel"}},
	'S': {{battle.PartFloor, "floor"}, {battle.PartObject, "stairs_high"}},
	's': {{battle.PartFloor, "floor"}, {battle.PartObject, "stairs_low"}},
}

// WithMapSize sets the grid dimensions.
func WithMapSize(w, l, h int) Option {
	return Option{optInfra, func(bd *builder) error {
		if w <= 0 || l <= 0 || h <= 0 {
			return fmt.Errorf("map size %dx%dx%d must be positive", w, l, h)
		}
		bd.width, bd.length, bd.height = w, l, h
		return nil
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return Option{optInfra, func(bd *builder) error {
		bd.seed = seed
		return nil
	}}
}

// WithShade sets the sun darkness, 0 day to 15 night.
func WithShade(shade int) Option {
	return Option{optInfra, func(bd *builder) error {
		if shade < 0 || shade > battle.MaxLight {
			return fmt.Errorf("shade %d out of range 0-%d", shade, battle.MaxLight)
		}
		bd.shade = shade
		return nil
	}}
}

// WithCheating starts the battle with an omniscient AI.
func WithCheating(on bool) Option {
	return Option{optInfra, func(bd *builder) error {
		bd.cheating = on
		return nil
	}}
}

// WithVerbose keeps per-step movement entries in the event log.
func WithVerbose(v bool) Option {
	return Option{optInfra, func(bd *builder) error {
		bd.verbose = v
		return nil
	}}
}

// WithCatalogue swaps the terrain set the legend resolves against.
func WithCatalogue(cat battle.Catalogue) Option {
	return Option{optInfra, func(bd *builder) error {
		bd.catalogue = cat
		return nil
	}}
}

// WithTerrainRow lays out row y of level z from legend symbols, starting
// at x = 0. Symbols replace whatever the tile held.
func WithTerrainRow(z, y int, row string) Option {
	return Option{optTerrain, func(bd *builder) error {
		x := 0
		for _, sym := range row {
			pieces, ok := legend[sym]
			if !ok {
				return fmt.Errorf("level %d row %d: unknown symbol %q at x=%d", z, y, sym, x)
			}
			t := bd.m.At(battle.Pos(x, y, z))
			if t == nil {
				return fmt.Errorf("level %d row %d: x=%d is off the %dx%dx%d map", z, y, x, bd.width, bd.length, bd.height)
			}
			for _, p := range battle.Parts {
				t.SetPart(p, nil)
			}
			for _, pc := range pieces {
				terrain := bd.m.Catalogue().Get(pc.name)
				if terrain == nil {
					return fmt.Errorf("symbol %q: terrain %q missing from catalogue", sym, pc.name)
				}
				t.SetPart(pc.part, terrain)
			}
			x++
		}
		return nil
	}}
}

// WithUnit places a unit. The unit itself is not copied, so an option
// list holding it builds one battle only.
func WithUnit(u *battle.Unit, p battle.Position) Option {
	return Option{optUnit, func(bd *builder) error {
		if bd.b.UnitByID(u.ID) != nil {
			return fmt.Errorf("duplicate unit id %d", u.ID)
		}
		if err := bd.b.AddUnit(u, p); err != nil {
			return fmt.Errorf("place %s at %s: %w", u.Name, p, err)
		}
		return nil
	}}
}

// WithNode adds a patrol node.
func WithNode(n battle.Node) Option {
	return Option{optUnit, func(bd *builder) error {
		if !bd.m.InBounds(n.Position) {
			return fmt.Errorf("node %d at %s is off the map", n.ID, n.Position)
		}
		if bd.b.NodeByID(n.ID) != nil {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		node := n
		bd.b.Nodes = append(bd.b.Nodes, &node)
		return nil
	}}
}

// Build constructs a battle from options in three ordered passes:
//  1. Infrastructure (size, seed, shade, cheating, verbose, catalogue)
//  2. Terrain rows
//  3. Units and nodes
func Build(opts ...Option) (*battle.Battle, error) {
	bd := &builder{width: 20, length: 20, height: 1, seed: 1}
	for _, kind := range []optionKind{optInfra, optTerrain, optUnit} {
		switch kind {
		case optTerrain:
			bd.m = battle.NewMap(bd.width, bd.length, bd.height, bd.catalogue)
		case optUnit:
			bd.b = battle.New(bd.m, bd.seed)
			bd.b.GlobalShade = bd.shade
			bd.b.Cheating = bd.cheating
			bd.b.Log = battle.NewEventLog(bd.verbose)
		}
		for _, o := range opts {
			if o.kind != kind {
				continue
			}
			if err := o.fn(bd); err != nil {
				return nil, err
			}
		}
	}
	return bd.b, nil
}
