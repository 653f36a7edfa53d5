package battle

// Light layers.
const (
	LightAmbient = iota // sun
	LightStatic         // terrain sources, fires, flares
	LightDynamic        // units
	LightLayers
)

// Discovery layers. Seeing a tile's content marks all three.
const (
	DiscoveredWestWall = iota
	DiscoveredNorthWall
	DiscoveredContent
	discoveryLayers
)

// MaxSmoke and MaxLight cap the per-tile counters.
const (
	MaxSmoke = 15
	MaxLight = 15
)

// DoorResult is the outcome of trying to open a door.
type DoorResult int

const (
	DoorNoDoor      DoorResult = -1 // nothing to open
	DoorOpened      DoorResult = 0  // hinged door swung open, walk through
	DoorUFOOpening  DoorResult = 1  // sliding door started opening, wait
	DoorNotEnoughTU DoorResult = 4
)

// Tile is one cell of the battle grid. All mutation goes through the
// methods below so the clamps and replacement rules stay in one place.
type Tile struct {
	m   *Map
	pos Position

	parts   [partCount]*Terrain
	ufoOpen [partCount]bool

	fire     int
	smoke    int
	overlaps int

	light      [LightLayers]int
	discovered [discoveryLayers]bool
	dangerous  bool

	explosive     int
	explosiveKind DamageType

	preview  Direction
	tuMarker int

	unit *Unit
}

func (t *Tile) Position() Position { return t.pos }

// Part returns the terrain in a slot, or nil.
func (t *Tile) Part(p PartKind) *Terrain {
	if p >= partCount {
		return nil
	}
	return t.parts[p]
}

// SetPart places terrain in a slot; nil clears it.
func (t *Tile) SetPart(p PartKind, terrain *Terrain) {
	if p >= partCount {
		return
	}
	t.parts[p] = terrain
	t.ufoOpen[p] = false
}

// IsVoid reports whether the tile holds no terrain at all.
func (t *Tile) IsVoid() bool {
	for _, p := range t.parts {
		if p != nil {
			return false
		}
	}
	return true
}

// TUCost returns the cost of crossing one part; open sliding doors are free.
func (t *Tile) TUCost(p PartKind, m MovementType) int {
	part := t.Part(p)
	if part == nil || t.IsUFODoorOpen(p) {
		return 0
	}
	return part.TUCost(m)
}

// HasNoFloor reports whether a unit standing here would fall. A stair top
// one level down counts as support.
func (t *Tile) HasNoFloor(below *Tile) bool {
	if below != nil && below.TerrainLevel() <= -VoxelsZ {
		return false
	}
	if f := t.parts[PartFloor]; f != nil {
		return f.NoFloor
	}
	return true
}

// IsBigWall reports whether the content fills the whole tile.
func (t *Tile) IsBigWall() bool {
	o := t.parts[PartObject]
	return o != nil && o.BigWall
}

// TerrainLevel is the height offset of the walkable surface (negative is up).
func (t *Tile) TerrainLevel() int {
	level := 0
	if f := t.parts[PartFloor]; f != nil {
		level = f.TerrainLevel
	}
	if o := t.parts[PartObject]; o != nil && o.TerrainLevel < level {
		level = o.TerrainLevel
	}
	return level
}

// IsUFODoorOpen reports whether a sliding door in the slot is open.
func (t *Tile) IsUFODoorOpen(p PartKind) bool {
	part := t.Part(p)
	return part != nil && part.Door == DoorUFO && t.ufoOpen[p]
}

// OpenDoor opens the door in a wall slot. Hinged doors are swapped for
// their open variant; sliding doors are flagged open until closed.
func (t *Tile) OpenDoor(p PartKind) DoorResult {
	part := t.Part(p)
	if part == nil || !part.IsDoor() {
		return DoorNoDoor
	}
	if part.Door == DoorUFO {
		if t.ufoOpen[p] {
			return DoorNoDoor
		}
		t.ufoOpen[p] = true
		return DoorUFOOpening
	}
	t.parts[p] = t.m.catalogue.Get(part.AltAs)
	return DoorOpened
}

// CloseUFODoor shuts every open sliding door and reports how many closed.
func (t *Tile) CloseUFODoor() int {
	closed := 0
	for i := range t.ufoOpen {
		if t.ufoOpen[i] {
			t.ufoOpen[i] = false
			closed++
		}
	}
	return closed
}

// DestroyPart replaces the part with its ruin. A part carrying explosives
// arms the tile for a chain explosion. Reports whether anything was there.
func (t *Tile) DestroyPart(p PartKind) bool {
	part := t.Part(p)
	if part == nil {
		return false
	}
	t.parts[p] = t.m.catalogue.Get(part.DieAs)
	t.ufoOpen[p] = false
	if part.Explosive > 0 {
		t.SetExplosive(part.Explosive, part.ExplosiveKind, true)
	}
	if p == PartFloor && t.parts[PartFloor] == nil && t.pos.Z == 0 {
		t.parts[PartFloor] = t.m.catalogue.Get("scorched")
	}
	return true
}

// DamagePart destroys the part when power reaches its armor.
func (t *Tile) DamagePart(p PartKind, power int) bool {
	part := t.Part(p)
	if part == nil || power < part.Armor {
		return false
	}
	return t.DestroyPart(p)
}

// SetExplosive arms the tile; the strongest pending blast wins unless forced.
func (t *Tile) SetExplosive(power int, kind DamageType, force bool) {
	if force || power > t.explosive {
		t.explosive = power
		t.explosiveKind = kind
	}
}

func (t *Tile) Explosive() int             { return t.explosive }
func (t *Tile) ExplosiveKind() DamageType { return t.explosiveKind }

// Detonate applies the pending explosive to each part once and clears it.
// It returns the parts that were destroyed.
func (t *Tile) Detonate() []PartKind {
	power := t.explosive
	if power == 0 {
		return nil
	}
	t.explosive = 0
	var destroyed []PartKind
	for _, p := range Parts {
		part := t.parts[p]
		if part == nil || power < part.Armor {
			continue
		}
		// a chain blast re-arms the tile from inside DestroyPart
		t.DestroyPart(p)
		destroyed = append(destroyed, p)
	}
	if len(destroyed) > 0 {
		t.SetSmoke(max(t.smoke, 2))
	}
	return destroyed
}

// Flammability is the lowest (most flammable) value among the parts.
func (t *Tile) Flammability() int {
	flam := never
	for _, p := range t.parts {
		if p != nil && p.Flammable < flam {
			flam = p.Flammable
		}
	}
	return flam
}

// Fuel is the longest burn among flammable parts.
func (t *Tile) Fuel() int {
	fuel := 0
	for _, p := range t.parts {
		if p != nil && p.Flammable != never && p.Fuel > fuel {
			fuel = p.Fuel
		}
	}
	return fuel
}

// Ignite sets the tile burning for its fuel if anything here can burn.
func (t *Tile) Ignite() bool {
	flam := t.Flammability()
	fuel := t.Fuel()
	if flam == never || fuel == 0 {
		return false
	}
	if t.fire == 0 {
		t.smoke = MaxSmoke - clamp(flam/10, 1, 12)
		t.overlaps = 1
	}
	if fuel > t.fire {
		t.fire = fuel
	}
	return true
}

// SetFire overrides the remaining burn turns.
func (t *Tile) SetFire(turns int) { t.fire = max(0, turns) }
func (t *Tile) Fire() int         { return t.fire }

// BurnDown consumes one turn of fuel and reports whether the fire went out
// this turn. Flammable parts do not survive a fire that burns out.
func (t *Tile) BurnDown() bool {
	if t.fire == 0 {
		return false
	}
	t.fire--
	if t.fire > 0 {
		return false
	}
	for _, p := range Parts {
		if part := t.parts[p]; part != nil && part.Flammable != never {
			t.DestroyPart(p)
		}
	}
	return true
}

// AddSmoke accumulates smoke from one source this turn.
func (t *Tile) AddSmoke(amount int) {
	if amount <= 0 {
		return
	}
	if t.overlaps == 0 && t.smoke > 0 {
		t.overlaps = 1
	}
	t.smoke = clamp(t.smoke+amount, 0, MaxSmoke)
	t.overlaps++
}

// SetSmoke overrides the density without counting a source.
func (t *Tile) SetSmoke(amount int) { t.smoke = clamp(amount, 0, MaxSmoke) }
func (t *Tile) Smoke() int           { return t.smoke }

// DiluteSmoke averages the smoke received this turn and thins it by one.
// A burning tile keeps its smoke until the fire is out.
func (t *Tile) DiluteSmoke() {
	if t.smoke == 0 || t.fire > 0 {
		t.overlaps = 0
		return
	}
	n := max(t.overlaps, 1)
	t.smoke = clamp(t.smoke/n-1, 0, MaxSmoke)
	t.overlaps = 0
}

func (t *Tile) ResetLight(layer int) { t.light[layer] = 0 }

// AddLight raises the layer to the given power; the brightest source wins.
func (t *Tile) AddLight(power, layer int) {
	if power > t.light[layer] {
		t.light[layer] = min(power, MaxLight)
	}
}

func (t *Tile) Light(layer int) int { return t.light[layer] }

// Shade is the darkness of the tile: 0 fully lit, 15 pitch black.
func (t *Tile) Shade() int {
	light := 0
	for _, l := range t.light {
		light = max(light, l)
	}
	return max(0, MaxLight-light)
}

func (t *Tile) SetDangerous(v bool) { t.dangerous = v }
func (t *Tile) Dangerous() bool     { return t.dangerous }

// SetDiscovered flags a discovery layer; discovering the content reveals
// both walls as well.
func (t *Tile) SetDiscovered(layer int) {
	if layer == DiscoveredContent {
		for i := range t.discovered {
			t.discovered[i] = true
		}
		return
	}
	t.discovered[layer] = true
}

func (t *Tile) Discovered(layer int) bool { return t.discovered[layer] }

// ClearDiscovered forgets all discovery, used after loading a save.
func (t *Tile) ClearDiscovered() { t.discovered = [discoveryLayers]bool{} }

// SetPreview stores a path preview marker.
func (t *Tile) SetPreview(dir Direction, tu int) {
	t.preview = dir
	t.tuMarker = tu
}

func (t *Tile) Preview() (Direction, int) { return t.preview, t.tuMarker }

// Unit returns the occupant, which may be standing on any tile of its
// footprint.
func (t *Tile) Unit() *Unit { return t.unit }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
