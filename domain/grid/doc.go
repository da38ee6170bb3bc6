// Package grid implements the brick-layout tile grid the arena is built on.
//
// Tiles are laid out in a staggered (diamond) pattern: every odd row is shifted
// by half a column. Two coordinate spaces exist and are kept apart by type:
//
// TileCoordinate: absolute tile position in the infinite world grid.
//
// LocalCoordinate: position of a tile inside its chunk, always in
// [0, SizeX) x [0, SizeZ).
//
// The world is partitioned into chunks of SizeX x SizeZ tiles, addressed by
// ChunkCoordinate. The combat arena is a single chunk snapshot.
//
// Building with the "debug" tag turns an out-of-chunk local coordinate into a
// panic. Release builds report it as a missing tile instead.
package grid
