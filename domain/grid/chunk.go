package grid

import (
	"fmt"
	"strings"
)

// Chunk dimensions in tiles.
const (
	SizeX = 14
	SizeZ = 40
)

// Tile is the content of a single grid cell.
type Tile uint8

const (
	Ground Tile = iota
	Block
	Empty
)

func (t Tile) String() string {
	switch t {
	case Ground:
		return "ground"
	case Block:
		return "block"
	case Empty:
		return "empty"
	}
	return fmt.Sprintf("tile(%d)", uint8(t))
}

// Rune is the character used for t in the text arena format.
func (t Tile) Rune() rune {
	switch t {
	case Block:
		return '#'
	case Empty:
		return '_'
	}
	return '.'
}

// ChunkCoordinate addresses a chunk in the world.
type ChunkCoordinate struct {
	X, Z int
}

// ChunkFromWorld returns the chunk containing world position p.
func ChunkFromWorld(p Point) ChunkCoordinate {
	return TileFromWorld(p).Chunk()
}

// WorldSize is the extent of one chunk in world units.
func WorldSize() Point {
	return Point{X: SizeX * SpacingX, Z: SizeZ * SpacingZ}
}

// Start is the world position of the chunk origin.
func (c ChunkCoordinate) Start() Point {
	size := WorldSize()
	return Point{X: float64(c.X) * size.X, Z: float64(c.Z) * size.Z}
}

// End is the world position of the corner opposite to Start.
func (c ChunkCoordinate) End() Point {
	return c.Start().Add(WorldSize())
}

// Center is the midpoint of the chunk. The combat camera looks at it.
func (c ChunkCoordinate) Center() Point {
	start, end := c.Start(), c.End()
	return Point{X: (start.X + end.X) / 2, Z: (start.Z + end.Z) / 2}
}

func (c ChunkCoordinate) String() string {
	return fmt.Sprintf("chunk(%d,%d)", c.X, c.Z)
}

// Chunk is a SizeX x SizeZ block of tiles, indexed [z][x]. The zero value is
// all Ground.
type Chunk struct {
	Coordinate ChunkCoordinate
	tiles      [SizeZ][SizeX]Tile
}

// NewChunk returns a chunk at c filled with fill.
func NewChunk(c ChunkCoordinate, fill Tile) *Chunk {
	ch := &Chunk{Coordinate: c}
	for z := range ch.tiles {
		for x := range ch.tiles[z] {
			ch.tiles[z][x] = fill
		}
	}
	return ch
}

// ParseChunk reads a chunk from text rows: '.' is ground, '#' is block and
// ' ' or '_' is empty. Row i is z=i and column j is x=j. Missing rows and
// columns are left empty.
func ParseChunk(c ChunkCoordinate, rows []string) (*Chunk, error) {
	if len(rows) > SizeZ {
		return nil, fmt.Errorf("arena has %d rows, at most %d allowed", len(rows), SizeZ)
	}
	ch := NewChunk(c, Empty)
	for z, row := range rows {
		row = strings.TrimRight(row, "\r")
		if len(row) > SizeX {
			return nil, fmt.Errorf("row %d has %d columns, at most %d allowed", z, len(row), SizeX)
		}
		for x, r := range row {
			switch r {
			case '.':
				ch.tiles[z][x] = Ground
			case '#':
				ch.tiles[z][x] = Block
			case ' ', '_':
				ch.tiles[z][x] = Empty
			default:
				return nil, fmt.Errorf("row %d column %d: unknown tile %q", z, x, r)
			}
		}
	}
	return ch, nil
}

// Tile returns the tile at l. ok is false when l lies outside the chunk.
func (ch *Chunk) Tile(l LocalCoordinate) (t Tile, ok bool) {
	if !l.InBounds() {
		if debugAssertions {
			panic(fmt.Sprintf("grid: %v outside chunk bounds", l))
		}
		return Empty, false
	}
	return ch.tiles[l.Z][l.X], true
}

// Set replaces the tile at l. It reports false when l lies outside the chunk.
func (ch *Chunk) Set(l LocalCoordinate, t Tile) bool {
	if !l.InBounds() {
		if debugAssertions {
			panic(fmt.Sprintf("grid: %v outside chunk bounds", l))
		}
		return false
	}
	ch.tiles[l.Z][l.X] = t
	return true
}

// At returns the tile at absolute coordinate t. ok is false when t belongs to
// another chunk.
func (ch *Chunk) At(t TileCoordinate) (Tile, bool) {
	if t.Chunk() != ch.Coordinate {
		return Empty, false
	}
	return ch.tiles[euclidMod(t.Z, SizeZ)][euclidMod(t.X, SizeX)], true
}

// Contains reports whether the absolute tile t lies in this chunk.
func (ch *Chunk) Contains(t TileCoordinate) bool {
	return t.Chunk() == ch.Coordinate
}

// GroundTiles lists every ground tile in the chunk, row by row.
func (ch *Chunk) GroundTiles() []TileCoordinate {
	var out []TileCoordinate
	for z := range ch.tiles {
		for x, t := range ch.tiles[z] {
			if t == Ground {
				out = append(out, LocalCoordinate{X: x, Z: z}.Absolute(ch.Coordinate))
			}
		}
	}
	return out
}

// Rows renders the chunk back into the text format read by ParseChunk.
func (ch *Chunk) Rows() []string {
	rows := make([]string, SizeZ)
	var b strings.Builder
	for z := range ch.tiles {
		b.Reset()
		for _, t := range ch.tiles[z] {
			b.WriteRune(t.Rune())
		}
		rows[z] = b.String()
	}
	return rows
}
