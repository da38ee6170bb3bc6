package reach

import "github.com/luca-patrignani/tactical-duel/domain/grid"

// MovementTile is a destination offered to the unit standing on the origin.
type MovementTile struct {
	Tile grid.TileCoordinate
	Cost uint8
}

// MovementTiles lists the ground tiles of ch reachable from origin with the
// given movement points. Tiles for which occupied returns true are treated
// like obstacles; occupied may be nil.
func MovementTiles(ch *grid.Chunk, origin grid.TileCoordinate, points uint8, occupied func(grid.TileCoordinate) bool) []MovementTile {
	if !ch.Contains(origin) {
		return nil
	}
	steps := Reachable(origin.Local(), points, func(l grid.LocalCoordinate) bool {
		t, ok := ch.Tile(l)
		if !ok || t != grid.Ground {
			return false
		}
		return occupied == nil || !occupied(l.Absolute(ch.Coordinate))
	})
	out := make([]MovementTile, 0, len(steps))
	for _, s := range steps {
		out = append(out, MovementTile{Tile: s.Tile.Absolute(ch.Coordinate), Cost: s.Cost})
	}
	return out
}
