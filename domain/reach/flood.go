// Package reach computes the tiles a unit can walk to inside a chunk.
package reach

import "github.com/luca-patrignani/tactical-duel/domain/grid"

// Visitor is called once for each tile discovered by Flood, with the number
// of steps needed to reach it. Returning false marks the tile as a dead end:
// it stays visited but the search does not continue through it.
type Visitor func(tile grid.LocalCoordinate, cost uint8) bool

type frontier struct {
	tile grid.LocalCoordinate
	cost uint8
}

// Flood runs a breadth-first search over the four orthogonal neighbours of
// origin, up to budget steps, without leaving the chunk. Every tile is
// reported at its minimum cost and at most once. The origin itself is never
// reported. An origin outside the chunk yields nothing.
func Flood(origin grid.LocalCoordinate, budget uint8, visit Visitor) {
	if !origin.InBounds() {
		return
	}
	var visited [grid.SizeZ][grid.SizeX]bool
	visited[origin.Z][origin.X] = true
	queue := []frontier{{tile: origin}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.cost > 0 && !visit(cur.tile, cur.cost) {
			continue
		}
		if cur.cost == budget {
			continue
		}
		for _, n := range cur.tile.Neighbours() {
			if !n.InBounds() || visited[n.Z][n.X] {
				continue
			}
			visited[n.Z][n.X] = true
			queue = append(queue, frontier{tile: n, cost: cur.cost + 1})
		}
	}
}

// Step is a reachable tile and the movement points needed to get there.
type Step struct {
	Tile grid.LocalCoordinate
	Cost uint8
}

// Reachable collects the tiles Flood reaches when only tiles accepted by
// passable can be walked on. Rejected tiles are left out of the result.
func Reachable(origin grid.LocalCoordinate, budget uint8, passable func(grid.LocalCoordinate) bool) []Step {
	var steps []Step
	Flood(origin, budget, func(tile grid.LocalCoordinate, cost uint8) bool {
		if !passable(tile) {
			return false
		}
		steps = append(steps, Step{Tile: tile, Cost: cost})
		return true
	})
	return steps
}
