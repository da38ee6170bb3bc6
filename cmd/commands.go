package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/game"
	"github.com/luca-patrignani/tactical-duel/protocol"
	"github.com/pterm/pterm"
)

var errNotReady = errors.New("still connecting")

const help = `players              list the players around
move <x> <z>         walk to a world position
duel <id>            challenge a player
accept | refuse      answer a challenge
cancel               withdraw your challenge
status               show the combat state
map                  draw the arena
spots / place <n>    list and take a starting spot
ready | unready      toggle readiness
tiles / go <n>       list and take a destination
end                  end your turn
journal              show the combat journal
quit                 leave the game`

// execute runs one command line against g and writes its output to w.
func execute(w io.Writer, g *game.Game, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]
	if cmd == "quit" || cmd == "exit" {
		return true, nil
	}
	if cmd == "help" {
		fmt.Fprintln(w, help)
		return false, nil
	}
	if g.Mode() == game.Connecting {
		return false, errNotReady
	}
	c := g.Combat()
	switch cmd {
	case "players":
		out, err := renderPlayers(g.Roster().Players())
		if err != nil {
			return false, err
		}
		fmt.Fprint(w, out)
	case "move":
		nums, err := numbers(args, 2)
		if err != nil {
			return false, err
		}
		return false, g.MoveTo(grid.Point{X: nums[0], Z: nums[1]})
	case "duel":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: duel <id>")
		}
		return false, g.Challenge(protocol.PeerID(args[0]))
	case "accept":
		return false, g.Accept()
	case "refuse":
		return false, g.Refuse()
	case "cancel":
		return false, g.Cancel()
	case "status":
		out, err := renderStatus(g)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(w, out)
	case "map":
		if c.Session() == nil {
			return false, fmt.Errorf("no arena outside of combat")
		}
		marks := map[grid.TileCoordinate]string{}
		for i, t := range c.PlacementSpots() {
			marks[t] = strconv.Itoa(i)
		}
		for i, t := range c.MovementTiles() {
			marks[t.Tile] = strconv.Itoa(i)
		}
		fmt.Fprintln(w, renderArena(c.Session(), g.Self(), marks))
	case "spots":
		spots := c.PlacementSpots()
		if len(spots) == 0 {
			return false, fmt.Errorf("no spot to pick in %v", c.Phase())
		}
		for i, t := range spots {
			fmt.Fprintf(w, "%2d  %s\n", i, t)
		}
	case "place":
		i, err := index(args, len(c.PlacementSpots()))
		if err != nil {
			return false, err
		}
		return false, c.Pick(c.PlacementSpots()[i])
	case "ready", "unready":
		return false, c.SetReady(cmd == "ready")
	case "tiles":
		tiles := c.MovementTiles()
		if len(tiles) == 0 {
			return false, fmt.Errorf("nowhere to go in %v", c.Phase())
		}
		for i, t := range tiles {
			fmt.Fprintf(w, "%2d  %s  cost %d\n", i, t.Tile, t.Cost)
		}
	case "go":
		tiles := c.MovementTiles()
		i, err := index(args, len(tiles))
		if err != nil {
			return false, err
		}
		return false, c.Pick(tiles[i].Tile)
	case "end":
		return false, c.EndTurn()
	case "journal":
		j := g.Journal()
		if j == nil {
			return false, fmt.Errorf("no combat yet")
		}
		out, err := renderJournal(j.Blocks())
		if err != nil {
			return false, err
		}
		fmt.Fprint(w, out)
		if err := j.Verify(); err != nil {
			pterm.Fprintln(w, pterm.Red("journal corrupted: "+err.Error()))
		}
	default:
		return false, fmt.Errorf("unknown command %q, type help", cmd)
	}
	return false, nil
}

func numbers(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func index(args []string, n int) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one index")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %d out of range [0, %d)", i, n)
	}
	return i, nil
}
