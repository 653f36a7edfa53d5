package battle

// PartKind identifies one of the four terrain slots of a tile.
type PartKind uint8

const (
	PartFloor     PartKind = iota // Walkable surface
	PartWestWall                  // Wall on the tile's west edge
	PartNorthWall                 // Wall on the tile's north edge
	PartObject                    // Content sitting in the tile
	partCount                     // sentinel
)

// Parts lists every slot in detonation order.
var Parts = [partCount]PartKind{PartFloor, PartWestWall, PartNorthWall, PartObject}

func (p PartKind) String() string {
	switch p {
	case PartFloor:
		return "floor"
	case PartWestWall:
		return "west_wall"
	case PartNorthWall:
		return "north_wall"
	case PartObject:
		return "object"
	default:
		return "unknown"
	}
}

// IsWall reports whether the part is one of the two wall faces.
func (p PartKind) IsWall() bool { return p == PartWestWall || p == PartNorthWall }

// DamageType is the kind of harm a hit or explosion does.
type DamageType uint8

const (
	DamageNone DamageType = iota
	DamageAP
	DamageIncendiary
	DamageHE
	DamageLaser
	DamagePlasma
	DamageStun
	DamageMelee
	DamageAcid
	DamageSmoke
)

func (d DamageType) String() string {
	switch d {
	case DamageAP:
		return "ap"
	case DamageIncendiary:
		return "incendiary"
	case DamageHE:
		return "he"
	case DamageLaser:
		return "laser"
	case DamagePlasma:
		return "plasma"
	case DamageStun:
		return "stun"
	case DamageMelee:
		return "melee"
	case DamageAcid:
		return "acid"
	case DamageSmoke:
		return "smoke"
	default:
		return "none"
	}
}

// IsArea reports whether the damage spreads as an explosion rather than a
// single voxel hit.
func (d DamageType) IsArea() bool {
	switch d {
	case DamageHE, DamageIncendiary, DamageSmoke, DamageStun:
		return true
	default:
		return false
	}
}

// MovementType is how a unit gets around.
type MovementType uint8

const (
	MoveWalk MovementType = iota
	MoveFly
	MoveSlide
)

// DoorKind distinguishes hinged doors from sliding UFO doors.
type DoorKind uint8

const (
	DoorNone DoorKind = iota
	DoorNormal
	DoorUFO
)

// Blockage holds how strongly a part stops each kind of propagation.
type Blockage struct {
	Light  int
	Vision int
	HE     int
	Smoke  int
	Fire   int
}

// For returns the blockage applied to the given damage kind. DamageNone
// stands for sight.
func (b Blockage) For(kind DamageType) int {
	switch kind {
	case DamageNone:
		return b.Vision
	case DamageHE, DamageStun:
		return b.HE
	case DamageIncendiary:
		return b.Fire
	case DamageSmoke:
		return b.Smoke
	default:
		return 0
	}
}

// LoftLayers is the number of two-voxel occlusion layers in a tile.
const LoftLayers = VoxelsZ / 2

// Terrain is the static description of a tile part.
type Terrain struct {
	Name          string
	Kind          PartKind
	TUWalk        int // 255 = impassable
	TUFly         int
	TUSlide       int
	Armor         int
	Flammable     int // 255 = never burns
	Fuel          int // turns a fire lasts
	Block         Blockage
	Door          DoorKind
	NoFloor       bool
	Stairs        bool
	BigWall       bool
	TerrainLevel  int // negative raises units standing on it
	LightSource   int
	Explosive     int
	ExplosiveKind DamageType
	DieAs         string // replacement after destruction, "" removes the part
	AltAs         string // open variant of a hinged door
	Loft          [LoftLayers]uint8
}

// TUCost returns the cost to cross this part with the given movement.
func (t *Terrain) TUCost(m MovementType) int {
	switch m {
	case MoveFly:
		return t.TUFly
	case MoveSlide:
		return t.TUSlide
	default:
		return t.TUWalk
	}
}

// IsDoor reports whether the part is any kind of door.
func (t *Terrain) IsDoor() bool { return t.Door != DoorNone }

// Loft template indices.
const (
	LoftEmpty = iota
	LoftFull
	LoftWestSlab
	LoftNorthSlab
	LoftPillar
	LoftPost
	loftCount
)

// loftTemplates are 16x16 occlusion bitmaps. Row index is voxel y within
// the tile (0 = north edge); bit (15 - x) is voxel x (0 = west edge).
var loftTemplates = buildLoftTemplates()

func buildLoftTemplates() [loftCount][VoxelsY]uint16 {
	var t [loftCount][VoxelsY]uint16
	for y := 0; y < VoxelsY; y++ {
		t[LoftFull][y] = 0xFFFF
		t[LoftWestSlab][y] = 0xC000
		if y < 2 {
			t[LoftNorthSlab][y] = 0xFFFF
		}
		if y >= 4 && y < 12 {
			t[LoftPillar][y] = 0x0FF0
		}
		if y >= 6 && y < 10 {
			t[LoftPost][y] = 0x03C0
		}
	}
	return t
}

// LoftSolid reports whether the template covers voxel (x, y) of a layer.
func LoftSolid(loft uint8, x, y int) bool {
	if int(loft) >= loftCount || x < 0 || y < 0 || x >= VoxelsX || y >= VoxelsY {
		return false
	}
	bit := uint16(1) << uint(15-x)
	return loftTemplates[loft][y]&bit != 0
}

func loftAll(idx uint8) (l [LoftLayers]uint8) {
	for i := range l {
		l[i] = idx
	}
	return l
}

func loftBelow(idx uint8, layers int) (l [LoftLayers]uint8) {
	for i := 0; i < layers && i < LoftLayers; i++ {
		l[i] = idx
	}
	return l
}

// Catalogue resolves terrain parts by name.
type Catalogue map[string]*Terrain

// Get returns the named terrain or nil.
func (c Catalogue) Get(name string) *Terrain {
	if name == "" {
		return nil
	}
	return c[name]
}

const never = 255

var solid = Blockage{Light: 255, Vision: 255, HE: 60, Smoke: 255, Fire: 255}

// DefaultCatalogue returns the stock terrain set used by scenarios and
// tests.
func DefaultCatalogue() Catalogue {
	parts := []*Terrain{
		{Name: "floor", Kind: PartFloor, TUWalk: 4, TUFly: 4, TUSlide: 4, Armor: 40, Flammable: never, Loft: loftBelow(LoftFull, 1)},
		{Name: "grass", Kind: PartFloor, TUWalk: 4, TUFly: 4, TUSlide: 4, Armor: 10, Flammable: 20, Fuel: 3, DieAs: "scorched", Loft: loftBelow(LoftFull, 1)},
		{Name: "scorched", Kind: PartFloor, TUWalk: 4, TUFly: 4, TUSlide: 4, Armor: 10, Flammable: never, Loft: loftBelow(LoftFull, 1)},
		{Name: "roof", Kind: PartFloor, TUWalk: 4, TUFly: 4, TUSlide: 4, Armor: 20, Flammable: 60, Fuel: 2, Loft: loftBelow(LoftFull, 1)},
		{Name: "lamp_floor", Kind: PartFloor, TUWalk: 4, TUFly: 4, TUSlide: 4, Armor: 40, Flammable: never, LightSource: 12, Loft: loftBelow(LoftFull, 1)},
		{Name: "wall_west", Kind: PartWestWall, TUWalk: never, TUFly: never, TUSlide: never, Armor: 50, Flammable: never, Block: solid, DieAs: "rubble_west", Loft: loftAll(LoftWestSlab)},
		{Name: "wall_north", Kind: PartNorthWall, TUWalk: never, TUFly: never, TUSlide: never, Armor: 50, Flammable: never, Block: solid, DieAs: "rubble_north", Loft: loftAll(LoftNorthSlab)},
		{Name: "ufo_wall_west", Kind: PartWestWall, TUWalk: never, TUFly: never, TUSlide: never, Armor: 255, Flammable: never, Block: solid, Loft: loftAll(LoftWestSlab)},
		{Name: "rubble_west", Kind: PartWestWall, TUWalk: 0, TUFly: 0, TUSlide: 0, Armor: 5, Flammable: never, Loft: loftBelow(LoftWestSlab, 2)},
		{Name: "rubble_north", Kind: PartNorthWall, TUWalk: 0, TUFly: 0, TUSlide: 0, Armor: 5, Flammable: never, Loft: loftBelow(LoftNorthSlab, 2)},
		{Name: "window_west", Kind: PartWestWall, TUWalk: never, TUFly: never, TUSlide: never, Armor: 10, Flammable: never,
			Block: Blockage{Light: 0, Vision: 0, HE: 10, Smoke: 255, Fire: 255}, DieAs: "rubble_west",
			Loft: [LoftLayers]uint8{LoftWestSlab, LoftWestSlab, LoftWestSlab, LoftWestSlab, LoftWestSlab, 0, 0, 0, 0, LoftWestSlab, LoftWestSlab, LoftWestSlab}},
		{Name: "door_west", Kind: PartWestWall, TUWalk: 4, TUFly: 4, TUSlide: 4, Armor: 20, Flammable: 50, Fuel: 2, Door: DoorNormal,
			Block: solid, DieAs: "rubble_west", AltAs: "door_west_open", Loft: loftAll(LoftWestSlab)},
		{Name: "door_west_open", Kind: PartWestWall, TUWalk: 0, TUFly: 0, TUSlide: 0, Armor: 20, Flammable: 50, Fuel: 2, DieAs: "rubble_west", Loft: loftAll(LoftEmpty)},
		{Name: "door_north", Kind: PartNorthWall, TUWalk: 4, TUFly: 4, TUSlide: 4, Armor: 20, Flammable: 50, Fuel: 2, Door: DoorNormal,
			Block: solid, DieAs: "rubble_north", AltAs: "door_north_open", Loft: loftAll(LoftNorthSlab)},
		{Name: "door_north_open", Kind: PartNorthWall, TUWalk: 0, TUFly: 0, TUSlide: 0, Armor: 20, Flammable: 50, Fuel: 2, DieAs: "rubble_north", Loft: loftAll(LoftEmpty)},
		{Name: "ufo_door_west", Kind: PartWestWall, TUWalk: 0, TUFly: 0, TUSlide: 0, Armor: 255, Flammable: never, Door: DoorUFO, Block: solid, Loft: loftAll(LoftWestSlab)},
		{Name: "ufo_door_north", Kind: PartNorthWall, TUWalk: 0, TUFly: 0, TUSlide: 0, Armor: 255, Flammable: never, Door: DoorUFO, Block: solid, Loft: loftAll(LoftNorthSlab)},
		{Name: "crate", Kind: PartObject, TUWalk: never, TUFly: never, TUSlide: never, Armor: 30, Flammable: 30, Fuel: 4,
			Block: Blockage{Light: 0, Vision: 0, HE: 20, Smoke: 0, Fire: 0}, Loft: loftBelow(LoftFull, 6)},
		{Name: "tree", Kind: PartObject, TUWalk: never, TUFly: never, TUSlide: never, Armor: 40, Flammable: 25, Fuel: 5,
			Block: Blockage{Light: 2, Vision: 0, HE: 20}, DieAs: "stump", Loft: loftAll(LoftPillar)},
		{Name: "stump", Kind: PartObject, TUWalk: 6, TUFly: 4, TUSlide: 6, Armor: 10, Flammable: 40, Fuel: 2, Loft: loftBelow(LoftPost, 2)},
		{Name: "bush", Kind: PartObject, TUWalk: 6, TUFly: 4, TUSlide: 6, Armor: 5, Flammable: 10, Fuel: 2,
			Block: Blockage{Vision: 1}, Loft: loftBelow(LoftPillar, 5)},
		{Name: "fuel_barrel", Kind: PartObject, TUWalk: never, TUFly: never, TUSlide: never, Armor: 10, Flammable: 5, Fuel: 1,
			Explosive: 60, ExplosiveKind: DamageHE, Block: Blockage{HE: 10}, Loft: loftBelow(LoftPillar, 5)},
		{Name: "big_wall", Kind: PartObject, TUWalk: never, TUFly: never, TUSlide: never, Armor: 80, Flammable: never, BigWall: true,
			Block: solid, DieAs: "rubble", Loft: loftAll(LoftFull)},
		{Name: "rubble", Kind: PartObject, TUWalk: 6, TUFly: 4, TUSlide: 6, Armor: 10, Flammable: never, Loft: loftBelow(LoftFull, 1)},
		{Name: "stairs_low", Kind: PartObject, TUWalk: 4, TUFly: 4, TUSlide: 4, Armor: 30, Flammable: never, Stairs: true, TerrainLevel: -8, Loft: loftBelow(LoftFull, 4)},
		{Name: "stairs_high", Kind: PartObject, TUWalk: 4, TUFly: 4, TUSlide: 4, Armor: 30, Flammable: never, Stairs: true, TerrainLevel: -16, Loft: loftBelow(LoftFull, 8)},
	}
	c := make(Catalogue, len(parts))
	for _, p := range parts {
		c[p.Name] = p
	}
	return c
}
