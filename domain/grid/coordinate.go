package grid

import (
	"fmt"
	"math"
)

// World spacing between tile centres.
const (
	SpacingX = 2.0
	SpacingZ = 1.0
)

// Point is a position in world space. Y is the vertical axis and is ignored by
// the tile transforms.
type Point struct {
	X, Y, Z float64
}

func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Z)
}

// TileCoordinate is an absolute tile position in the world grid.
type TileCoordinate struct {
	X, Z int
}

// LocalCoordinate is a tile position relative to the origin of its chunk.
type LocalCoordinate struct {
	X, Z int
}

// rowOffset is the half-column shift applied to odd rows. It follows the sign
// of z, so odd negative rows shift the other way; both directions of the
// transform use it, which keeps them inverse of each other.
func rowOffset(z int) float64 {
	return float64(z%2) * SpacingX / 2
}

// TileFromWorld returns the tile whose centre is nearest to p. It is the exact
// inverse of TileCoordinate.World and is used for pointer hit-testing.
func TileFromWorld(p Point) TileCoordinate {
	z := int(math.Round(p.Z / SpacingX * 2))
	x := int(math.Round((p.X - rowOffset(z)) / SpacingX))
	return TileCoordinate{X: x, Z: z}
}

// World returns the centre of the tile in world space.
func (t TileCoordinate) World() Point {
	return Point{
		X: float64(t.X)*SpacingX + rowOffset(t.Z),
		Z: float64(t.Z) * SpacingZ,
	}
}

// Chunk returns the chunk the tile belongs to.
func (t TileCoordinate) Chunk() ChunkCoordinate {
	return ChunkCoordinate{X: floorDiv(t.X, SizeX), Z: floorDiv(t.Z, SizeZ)}
}

// Local returns the tile position inside its chunk. The result is always
// non-negative, negative chunks included.
func (t TileCoordinate) Local() LocalCoordinate {
	return LocalCoordinate{X: euclidMod(t.X, SizeX), Z: euclidMod(t.Z, SizeZ)}
}

// Neighbours returns the four orthogonally adjacent tiles in index space.
func (t TileCoordinate) Neighbours() [4]TileCoordinate {
	return [4]TileCoordinate{
		{t.X + 1, t.Z}, {t.X - 1, t.Z}, {t.X, t.Z + 1}, {t.X, t.Z - 1},
	}
}

func (t TileCoordinate) String() string {
	return fmt.Sprintf("%d,%d", t.X, t.Z)
}

// Absolute places the local coordinate inside chunk c.
func (l LocalCoordinate) Absolute(c ChunkCoordinate) TileCoordinate {
	return TileCoordinate{X: c.X*SizeX + l.X, Z: c.Z*SizeZ + l.Z}
}

// InBounds reports whether l lies inside a chunk.
func (l LocalCoordinate) InBounds() bool {
	return l.X >= 0 && l.X < SizeX && l.Z >= 0 && l.Z < SizeZ
}

// Neighbours returns the four orthogonally adjacent local positions. Some of
// them may be out of bounds.
func (l LocalCoordinate) Neighbours() [4]LocalCoordinate {
	return [4]LocalCoordinate{
		{l.X + 1, l.Z}, {l.X - 1, l.Z}, {l.X, l.Z + 1}, {l.X, l.Z - 1},
	}
}

func (l LocalCoordinate) String() string {
	return fmt.Sprintf("local(%d,%d)", l.X, l.Z)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func euclidMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
