package world

// Cell-based spatial index, one instance per entity kind. Cell size is chosen
// so a small neighbourhood of cells covers the view range (Chebyshev 32).
// Accessed only from the game loop goroutine — no locks.

// CellSize is the grid cell edge in tiles.
const CellSize = 16

// View radii are fixed world constants, not per-query parameters.
const (
	ViewRadius     = 32 // players and NPCs
	ItemViewRadius = 32 // ground items
)

type cellKey struct {
	level int16
	cx    int32
	cy    int32
}

func toCellCoord(v int32) int32 {
	if v < 0 {
		return (v - CellSize + 1) / CellSize
	}
	return v / CellSize
}

// Entry is the minimal positional projection the index owns. The authoritative
// record lives in the state store; the index is the single source of truth
// only for "where is this entity right now". Owner carries the kind-specific
// visibility filter for ground items (0 = visible to everyone).
type Entry struct {
	ID    int32
	Level int16
	X, Y  int32
	Owner int32
}

// Grid indexes entries by cell for near-O(1) radius queries.
type Grid struct {
	cells   map[cellKey]map[int32]struct{}
	entries map[int32]Entry
}

func NewGrid() *Grid {
	return &Grid{
		cells:   make(map[cellKey]map[int32]struct{}),
		entries: make(map[int32]Entry),
	}
}

func key(level int16, x, y int32) cellKey {
	return cellKey{level: level, cx: toCellCoord(x), cy: toCellCoord(y)}
}

// Insert places an entry into the grid. Inserting an id that is already
// indexed behaves as an update, never as a duplicate entry.
func (g *Grid) Insert(e Entry) {
	if old, ok := g.entries[e.ID]; ok {
		g.removeFromCell(old)
	}
	g.entries[e.ID] = e
	k := key(e.Level, e.X, e.Y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[int32]struct{})
		g.cells[k] = cell
	}
	cell[e.ID] = struct{}{}
}

// Update moves an indexed entry to a new position, changing cells only when
// needed. Updating an unknown id inserts it.
func (g *Grid) Update(id int32, level int16, x, y int32) {
	old, ok := g.entries[id]
	if !ok {
		g.Insert(Entry{ID: id, Level: level, X: x, Y: y})
		return
	}
	next := old
	next.Level = level
	next.X = x
	next.Y = y
	if key(old.Level, old.X, old.Y) != key(level, x, y) {
		g.removeFromCell(old)
		k := key(level, x, y)
		cell := g.cells[k]
		if cell == nil {
			cell = make(map[int32]struct{})
			g.cells[k] = cell
		}
		cell[id] = struct{}{}
	}
	g.entries[id] = next
}

// SetOwner updates the visibility-owner filter field in place.
func (g *Grid) SetOwner(id, owner int32) {
	if e, ok := g.entries[id]; ok {
		e.Owner = owner
		g.entries[id] = e
	}
}

// Remove takes an entry out of the grid and returns it. Removing an absent id
// is a no-op returning nil, never an error.
func (g *Grid) Remove(id int32) *Entry {
	e, ok := g.entries[id]
	if !ok {
		return nil
	}
	g.removeFromCell(e)
	delete(g.entries, id)
	return &e
}

// Get returns the indexed entry for id, or nil if absent.
func (g *Grid) Get(id int32) *Entry {
	if e, ok := g.entries[id]; ok {
		return &e
	}
	return nil
}

func (g *Grid) Len() int {
	return len(g.entries)
}

func (g *Grid) removeFromCell(e Entry) {
	k := key(e.Level, e.X, e.Y)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, e.ID)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// QueryRadius returns all entries on the given level whose Chebyshev distance
// to (x, y) is at most r. Entries on other levels are excluded regardless of
// coordinate proximity.
func (g *Grid) QueryRadius(level int16, x, y, r int32) []Entry {
	return g.QueryRadiusInto(level, x, y, r, nil)
}

// QueryRadiusInto appends results to buf (reused across ticks by the state
// store to avoid per-query allocations, as with the AOI scan buffers).
func (g *Grid) QueryRadiusInto(level int16, x, y, r int32, buf []Entry) []Entry {
	buf = buf[:0]
	if r < 0 {
		return buf
	}
	minCX := toCellCoord(x - r)
	maxCX := toCellCoord(x + r)
	minCY := toCellCoord(y - r)
	maxCY := toCellCoord(y + r)
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			for id := range g.cells[cellKey{level: level, cx: cx, cy: cy}] {
				e := g.entries[id]
				if chebyshev(e.X, e.Y, x, y) <= r {
					buf = append(buf, e)
				}
			}
		}
	}
	return buf
}

// chebyshev is the board-style distance used for every range check.
func chebyshev(ax, ay, bx, by int32) int32 {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		return dy
	}
	return dx
}
