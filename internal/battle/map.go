package battle

import "errors"

var (
	// ErrOutOfBounds is returned when a footprint leaves the map.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrOccupied is returned when another unit holds a footprint cell.
	ErrOccupied = errors.New("tile occupied")
)

// Map is the 3-D tile grid. Tiles are stored level by level, row-major.
type Map struct {
	Width, Length, Height int

	tiles     []Tile
	catalogue Catalogue
}

// NewMap builds an empty grid of w×l×h tiles.
func NewMap(w, l, h int, cat Catalogue) *Map {
	if cat == nil {
		cat = DefaultCatalogue()
	}
	m := &Map{Width: w, Length: l, Height: h, catalogue: cat}
	m.tiles = make([]Tile, w*l*h)
	for i := range m.tiles {
		m.tiles[i] = Tile{m: m, pos: m.Coords(i), preview: DirNone}
	}
	return m
}

// Catalogue returns the terrain set the map resolves parts from.
func (m *Map) Catalogue() Catalogue { return m.catalogue }

// Size is the number of tiles.
func (m *Map) Size() int { return len(m.tiles) }

// InBounds reports whether the position lies on the grid.
func (m *Map) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.Z >= 0 && p.X < m.Width && p.Y < m.Length && p.Z < m.Height
}

// Index returns the flat index of a position, or -1 when out of bounds.
func (m *Map) Index(p Position) int {
	if !m.InBounds(p) {
		return -1
	}
	return p.Z*m.Width*m.Length + p.Y*m.Width + p.X
}

// Coords is the inverse of Index.
func (m *Map) Coords(i int) Position {
	z := i / (m.Width * m.Length)
	rem := i % (m.Width * m.Length)
	return Position{rem % m.Width, rem / m.Width, z}
}

// At returns the tile at p, or nil outside the grid.
func (m *Map) At(p Position) *Tile {
	i := m.Index(p)
	if i < 0 {
		return nil
	}
	return &m.tiles[i]
}

// TileAt returns the tile at a flat index.
func (m *Map) TileAt(i int) *Tile {
	if i < 0 || i >= len(m.tiles) {
		return nil
	}
	return &m.tiles[i]
}

// Below returns the tile one level down, or nil.
func (m *Map) Below(t *Tile) *Tile { return m.At(t.pos.Add(Position{0, 0, -1})) }

// Above returns the tile one level up, or nil.
func (m *Map) Above(t *Tile) *Tile { return m.At(t.pos.Add(Position{0, 0, 1})) }

// Each calls fn for every tile in index order.
func (m *Map) Each(fn func(t *Tile)) {
	for i := range m.tiles {
		fn(&m.tiles[i])
	}
}

// SetTerrain resolves a part by name and places it; unknown names clear it.
func (m *Map) SetTerrain(p Position, part PartKind, name string) {
	if t := m.At(p); t != nil {
		t.SetPart(part, m.catalogue.Get(name))
	}
}

// Footprint lists the tiles a unit of the given size covers at p.
func Footprint(p Position, size int) []Position {
	out := make([]Position, 0, size*size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			out = append(out, Position{p.X + x, p.Y + y, p.Z})
		}
	}
	return out
}

// PlaceUnit moves a unit to p, keeping the tile→unit and unit→position
// references in step. Every footprint cell must be on the map and free of
// other units; on failure nothing changes.
func (m *Map) PlaceUnit(u *Unit, p Position) error {
	cells := Footprint(p, u.Size)
	for _, c := range cells {
		t := m.At(c)
		if t == nil {
			return ErrOutOfBounds
		}
		if t.unit != nil && t.unit != u {
			return ErrOccupied
		}
	}
	m.clearFootprint(u)
	for _, c := range cells {
		m.At(c).unit = u
	}
	u.pos = p
	u.placed = true
	return nil
}

// RemoveUnit clears the unit from the grid (death, evacuation).
func (m *Map) RemoveUnit(u *Unit) {
	m.clearFootprint(u)
	u.placed = false
}

func (m *Map) clearFootprint(u *Unit) {
	if !u.placed {
		return
	}
	for _, c := range Footprint(u.pos, u.Size) {
		if t := m.At(c); t != nil && t.unit == u {
			t.unit = nil
		}
	}
}
