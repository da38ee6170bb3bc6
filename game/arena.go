package game

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
)

// ArenaFunc returns the chunk at c.
type ArenaFunc func(c grid.ChunkCoordinate) *grid.Chunk

// OpenField is a world made of ground only.
func OpenField(c grid.ChunkCoordinate) *grid.Chunk {
	return grid.NewChunk(c, grid.Ground)
}

// TiledWorld repeats the chunk described by rows over the whole world.
func TiledWorld(rows []string) (ArenaFunc, error) {
	template, err := grid.ParseChunk(grid.ChunkCoordinate{}, rows)
	if err != nil {
		return nil, err
	}
	return func(c grid.ChunkCoordinate) *grid.Chunk {
		ch := *template
		ch.Coordinate = c
		return &ch
	}, nil
}

// ReadArena reads rows of tiles, one per line, and tiles them over the
// world. Lines starting with ';' are comments.
func ReadArena(r io.Reader) (ArenaFunc, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, ";") {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading arena: %w", err)
	}
	return TiledWorld(rows)
}
