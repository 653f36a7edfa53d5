package battle

import (
	"math"
	"math/rand"
)

// SearchRadius is the half-width of the square the AI scans around itself
// when looking for escape and firing positions.
const SearchRadius = 5

// Battle is the mission state shared by the engine, pathfinder and AI.
type Battle struct {
	Map   *Map
	Units []*Unit
	Nodes []*Node

	Turn int
	Side Faction

	// GlobalShade is the sun darkness, 0 day to 15 night.
	GlobalShade int
	Difficulty  int
	// Cheating makes the AI omniscient; it switches on late in a mission.
	Cheating    bool
	BaseDefense bool

	TurnAIUseGrenade int
	TurnAIUseBlaster int
	SmokeStun        bool

	Log *EventLog

	rng        *rand.Rand
	tileSearch []Position
}

// New builds a battle over m with a seeded RNG.
func New(m *Map, seed int64) *Battle {
	b := &Battle{
		Map:              m,
		Turn:             1,
		Side:             FactionPlayer,
		TurnAIUseGrenade: 3,
		TurnAIUseBlaster: 3,
		Log:              NewEventLog(false),
		rng:              rand.New(rand.NewSource(seed)), // #nosec G404 -- game only
	}
	for y := -SearchRadius; y <= SearchRadius; y++ {
		for x := -SearchRadius; x <= SearchRadius; x++ {
			b.tileSearch = append(b.tileSearch, Position{x, y, 0})
		}
	}
	return b
}

// Reseed replaces the RNG, used when restoring a saved battle.
func (b *Battle) Reseed(seed int64) {
	b.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- game only
}

// Generate returns a uniform integer in [lo, hi].
func (b *Battle) Generate(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + b.rng.Intn(hi-lo+1)
}

// GenerateFloat returns a uniform float in [lo, hi).
func (b *Battle) GenerateFloat(lo, hi float64) float64 {
	return lo + b.rng.Float64()*(hi-lo)
}

// Percent succeeds with the given chance out of 100.
func (b *Battle) Percent(chance int) bool {
	return b.Generate(0, 99) < chance
}

// BoxMuller samples a normal distribution.
func (b *Battle) BoxMuller(mean, sd float64) float64 {
	u1 := b.rng.Float64()
	for u1 == 0 {
		u1 = b.rng.Float64()
	}
	u2 := b.rng.Float64()
	return mean + sd*math.Sqrt(-2*math.Log(u1))*math.Cos(2*math.Pi*u2)
}

// Shuffle permutes n elements through swap.
func (b *Battle) Shuffle(n int, swap func(i, j int)) { b.rng.Shuffle(n, swap) }

// TileSearch returns a shuffled copy of the 11×11 offset square.
func (b *Battle) TileSearch() []Position {
	out := make([]Position, len(b.tileSearch))
	copy(out, b.tileSearch)
	b.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// AddUnit places u on the map and registers it.
func (b *Battle) AddUnit(u *Unit, p Position) error {
	if err := b.Map.PlaceUnit(u, p); err != nil {
		return err
	}
	b.Units = append(b.Units, u)
	return nil
}

// UnitByID looks a unit up, or returns nil.
func (b *Battle) UnitByID(id int) *Unit {
	for _, u := range b.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// NodeByID looks a node up, or returns nil.
func (b *Battle) NodeByID(id int) *Node {
	if id < 0 {
		return nil
	}
	for _, n := range b.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Active returns the units of a faction that are still standing.
func (b *Battle) Active(f Faction) []*Unit {
	var out []*Unit
	for _, u := range b.Units {
		if u.Faction == f && !u.IsOut() && u.Placed() {
			out = append(out, u)
		}
	}
	return out
}

// NextSide hands the turn to the next faction; a full round bumps the turn
// counter.
func (b *Battle) NextSide() {
	switch b.Side {
	case FactionPlayer:
		b.Side = FactionHostile
	case FactionHostile:
		b.Side = FactionNeutral
	default:
		b.Side = FactionPlayer
		b.Turn++
	}
}

// PatrolNode picks the next patrol goal for u. Scouts wander to any free
// node; others follow links from the current node, favouring the highest
// priority node meant for their rank.
func (b *Battle) PatrolNode(scout bool, u *Unit, from *Node) *Node {
	if len(b.Nodes) == 0 {
		return nil
	}
	var candidates []*Node
	var preferred *Node
	for _, n := range b.Nodes {
		if n == from || !n.fits(u) {
			continue
		}
		if from == nil || scout {
			candidates = append(candidates, n)
			continue
		}
		if !from.LinksTo(n.ID) {
			continue
		}
		candidates = append(candidates, n)
		if n.Priority > 0 && n.Rank == u.Rank && (preferred == nil || n.Priority > preferred.Priority) {
			preferred = n
		}
	}
	if preferred != nil {
		return preferred
	}
	if len(candidates) == 0 {
		return nil
	}
	if !scout && from != nil {
		// no node for our rank; take the busiest link
		best := candidates[0]
		for _, n := range candidates[1:] {
			if n.Priority > best.Priority {
				best = n
			}
		}
		return best
	}
	return candidates[b.Generate(0, len(candidates)-1)]
}

// NearestNode returns the closest non-dummy node on the unit's level.
func (b *Battle) NearestNode(u *Unit) *Node {
	var best *Node
	bestDist := math.MaxInt
	for _, n := range b.Nodes {
		if n.Dummy || n.Position.Z != u.pos.Z {
			continue
		}
		d := n.Position.Sub(u.pos)
		dist := d.X*d.X + d.Y*d.Y
		if dist < bestDist {
			bestDist = dist
			best = n
		}
	}
	return best
}
