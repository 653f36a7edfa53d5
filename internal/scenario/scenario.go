// Package scenario builds battles from YAML files or code and plays them
// out turn by turn with every side under AI control.
package scenario

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/battlescape/internal/battle"
)

//go:embed builtin/*.yaml
var builtin embed.FS

// ErrUnknownScenario is returned by Builtin for a name it doesn't ship.
var ErrUnknownScenario = errors.New("unknown scenario")

// File is a scenario as written in YAML. Levels hold the map bottom up,
// one string per row of legend symbols.
type File struct {
	Name     string     `yaml:"name"`
	Seed     int64      `yaml:"seed"`
	Shade    int        `yaml:"shade"`
	Cheating bool       `yaml:"cheating"`
	Levels   [][]string `yaml:"levels"`
	Units    []UnitSpec `yaml:"units"`
	Nodes    []NodeSpec `yaml:"nodes"`
}

// UnitSpec describes one combatant.
type UnitSpec struct {
	ID           int       `yaml:"id"`
	Name         string    `yaml:"name"`
	Faction      string    `yaml:"faction"`
	At           []int     `yaml:"at"`
	Facing       int       `yaml:"facing"`
	Rank         int       `yaml:"rank"`
	Size         int       `yaml:"size"`
	Fly          bool      `yaml:"fly"`
	Turret360    bool      `yaml:"turret360"`
	FireImmune   bool      `yaml:"fire_immune"`
	Armor        int       `yaml:"armor"`
	Aggression   *int      `yaml:"aggression"`
	Intelligence *int      `yaml:"intelligence"`
	Stats        StatsSpec `yaml:"stats"`
	Weapons      []string  `yaml:"weapons"`
}

// StatsSpec mirrors battle.Stats with YAML names.
type StatsSpec struct {
	TU          int `yaml:"tu"`
	Stamina     int `yaml:"stamina"`
	Health      int `yaml:"health"`
	Bravery     int `yaml:"bravery"`
	Reactions   int `yaml:"reactions"`
	Firing      int `yaml:"firing"`
	Throwing    int `yaml:"throwing"`
	Strength    int `yaml:"strength"`
	PsiSkill    int `yaml:"psi_skill"`
	PsiStrength int `yaml:"psi_strength"`
	Melee       int `yaml:"melee"`
}

// NodeSpec describes one patrol node.
type NodeSpec struct {
	ID       int   `yaml:"id"`
	At       []int `yaml:"at"`
	Rank     int   `yaml:"rank"`
	Priority int   `yaml:"priority"`
	Target   bool  `yaml:"target"`
	Small    bool  `yaml:"small"`
	Dummy    bool  `yaml:"dummy"`
	Links    []int `yaml:"links"`
}

// Parse decodes and checks a scenario.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", f.Name, err)
	}
	return &f, nil
}

// LoadFile reads a scenario from disk.
func LoadFile(p string) (*File, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", p, err)
	}
	return Parse(data)
}

// Builtin returns a scenario shipped with the binary.
func Builtin(name string) (*File, error) {
	data, err := builtin.ReadFile(path.Join("builtin", name+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownScenario, name, strings.Join(BuiltinNames(), ", "))
		}
		return nil, err
	}
	return Parse(data)
}

// BuiltinNames lists the shipped scenarios.
func BuiltinNames() []string {
	entries, _ := builtin.ReadDir("builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names
}

// Resolve treats ref as a built-in name first and a file path otherwise.
func Resolve(ref string) (*File, error) {
	f, err := Builtin(ref)
	if errors.Is(err, ErrUnknownScenario) && strings.HasSuffix(ref, ".yaml") {
		return LoadFile(ref)
	}
	return f, err
}

// Size is the map size the levels describe.
func (f *File) Size() (w, l, h int) {
	h = len(f.Levels)
	for _, level := range f.Levels {
		l = max(l, len(level))
		for _, row := range level {
			w = max(w, len([]rune(row)))
		}
	}
	return w, l, h
}

func (f *File) validate() error {
	w, l, h := f.Size()
	if w == 0 || l == 0 || h == 0 {
		return errors.New("no map levels")
	}
	for i, u := range f.Units {
		if _, err := parseFaction(u.Faction); err != nil {
			return fmt.Errorf("unit %d: %w", i, err)
		}
		if len(u.At) < 2 || len(u.At) > 3 {
			return fmt.Errorf("unit %d: at needs [x, y] or [x, y, z], got %v", i, u.At)
		}
		if u.Facing < 0 || u.Facing > 7 {
			return fmt.Errorf("unit %d: facing %d out of range 0-7", i, u.Facing)
		}
		for _, name := range u.Weapons {
			if _, ok := armory[name]; !ok {
				return fmt.Errorf("unit %d: unknown weapon %q", i, name)
			}
		}
	}
	for i, n := range f.Nodes {
		if len(n.At) < 2 || len(n.At) > 3 {
			return fmt.Errorf("node %d: at needs [x, y] or [x, y, z], got %v", i, n.At)
		}
	}
	return nil
}

func parseFaction(s string) (battle.Faction, error) {
	switch strings.ToLower(s) {
	case "player", "":
		return battle.FactionPlayer, nil
	case "hostile", "alien":
		return battle.FactionHostile, nil
	case "neutral", "civilian":
		return battle.FactionNeutral, nil
	}
	return 0, fmt.Errorf("unknown faction %q", s)
}

func toPosition(at []int) battle.Position {
	p := battle.Pos(at[0], at[1], 0)
	if len(at) == 3 {
		p.Z = at[2]
	}
	return p
}

// Options turns the file into builder options. Units are created afresh
// each time the options are built.
func (f *File) Options() []Option {
	w, l, h := f.Size()
	opts := []Option{
		WithMapSize(w, l, h),
		WithSeed(f.Seed),
		WithShade(f.Shade),
		WithCheating(f.Cheating),
	}
	for z, level := range f.Levels {
		for y, row := range level {
			opts = append(opts, WithTerrainRow(z, y, row))
		}
	}
	for _, spec := range f.Units {
		opts = append(opts, withUnitSpec(spec))
	}
	for _, n := range f.Nodes {
		node := battle.Node{
			ID:       n.ID,
			Position: toPosition(n.At),
			Rank:     n.Rank,
			Priority: n.Priority,
			Links:    append([]int(nil), n.Links...),
			Small:    n.Small,
			Dummy:    n.Dummy,
		}
		if n.Target {
			node.Flags |= battle.NodeFlagTarget
		}
		opts = append(opts, WithNode(node))
	}
	return opts
}

// Build constructs the battle, applying extra options after the file's.
func (f *File) Build(extra ...Option) (*battle.Battle, error) {
	b, err := Build(append(f.Options(), extra...)...)
	if err != nil {
		return nil, fmt.Errorf("build scenario %q: %w", f.Name, err)
	}
	return b, nil
}

func withUnitSpec(spec UnitSpec) Option {
	return Option{optUnit, func(bd *builder) error {
		u, err := spec.unit()
		if err != nil {
			return err
		}
		return WithUnit(u, toPosition(spec.At)).fn(bd)
	}}
}

func (spec UnitSpec) unit() (*battle.Unit, error) {
	faction, err := parseFaction(spec.Faction)
	if err != nil {
		return nil, err
	}
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("%s-%d", faction, spec.ID)
	}
	s := spec.Stats
	u := battle.NewUnit(spec.ID, name, faction, battle.Stats{
		TU: s.TU, Stamina: s.Stamina, Health: s.Health, Bravery: s.Bravery,
		Reactions: s.Reactions, Firing: s.Firing, Throwing: s.Throwing, Strength: s.Strength,
		PsiSkill: s.PsiSkill, PsiStrength: s.PsiStrength, Melee: s.Melee,
	})
	u.Direction = battle.Direction(spec.Facing)
	u.Rank = spec.Rank
	u.Armor = spec.Armor
	u.Turret360 = spec.Turret360
	u.FireImmune = spec.FireImmune
	if spec.Size > 1 {
		u.Size = spec.Size
	}
	if spec.Fly {
		u.Movement = battle.MoveFly
	}
	if spec.Aggression != nil {
		u.Aggression = *spec.Aggression
	}
	if spec.Intelligence != nil {
		u.Intelligence = *spec.Intelligence
	}
	if err := Equip(u, spec.Weapons...); err != nil {
		return nil, err
	}
	return u, nil
}
