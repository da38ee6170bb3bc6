package main

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/luca-patrignani/tactical-duel/combat"
	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/exploration"
	"github.com/luca-patrignani/tactical-duel/game"
	"github.com/luca-patrignani/tactical-duel/ledger"
	"github.com/luca-patrignani/tactical-duel/protocol"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

func printBanner() {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("T", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("actical ", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("D", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("uel", pterm.FgDarkGray.ToStyle()),
	).Render()
}

// screen announces what changed since the previous frame.
type screen struct {
	g     *game.Game
	mode  game.Mode
	phase combat.Phase
	turn  protocol.PeerID
	duel  exploration.DuelState
	peers int
}

func newScreen(g *game.Game) *screen {
	return &screen{g: g}
}

func (s *screen) refresh() {
	g := s.g
	if g.Mode() != s.mode {
		s.mode = g.Mode()
		pterm.DefaultSection.Println(strings.ToUpper(s.mode.String()[:1]) + s.mode.String()[1:])
	}
	if g.Mode() == game.Connecting {
		return
	}
	if n := len(g.Roster().Players()); n != s.peers {
		s.peers = n
		pterm.Info.Printfln("%d players around", n)
	}
	if st := g.Duel().State(); st != s.duel {
		s.duel = st
		if st == exploration.Pending {
			pterm.Warning.Printfln("%s challenges you to a duel: accept or refuse", playerName(g, g.Duel().Peer()))
		}
	}
	c := g.Combat()
	if c.Phase() != s.phase || c.CurrentTurn() != s.turn {
		s.phase, s.turn = c.Phase(), c.CurrentTurn()
		switch s.phase {
		case combat.Preparation:
			pterm.Info.Println("Pick a spot with 'spots' and 'place', then type 'ready'")
		case combat.YourTurn:
			pterm.Success.Println("Your turn: 'tiles' lists where you can go, 'end' ends the turn")
		case combat.OthersTurn:
			pterm.Info.Printfln("Turn of %s", playerName(g, s.turn))
		}
	}
}

func playerName(g *game.Game, id protocol.PeerID) string {
	if c := g.Combat(); c != nil && c.Session() != nil {
		if p, ok := c.Session().Participant(id); ok && p.Stats.Name != "" {
			return pterm.LightCyan(p.Stats.Name)
		}
	}
	if p, ok := g.Roster().Player(id); ok && p.Name != "" {
		return pterm.LightCyan(p.Name)
	}
	return pterm.LightCyan(string(id))
}

// renderArena draws the arena with odd rows shifted by half a tile. marks
// label some tiles, for instance the spots or destinations offered.
func renderArena(s *combat.Session, self protocol.PeerID, marks map[grid.TileCoordinate]string) string {
	var b strings.Builder
	for z := 0; z < grid.SizeZ; z++ {
		var row strings.Builder
		used := false
		if z%2 == 1 {
			row.WriteString(" ")
		}
		for x := 0; x < grid.SizeX; x++ {
			t := grid.LocalCoordinate{X: x, Z: z}.Absolute(s.Arena.Coordinate)
			tile, _ := s.Arena.At(t)
			if tile != grid.Empty {
				used = true
			}
			if p, ok := s.OccupiedBy(t); ok {
				used = true
				letter := initial(p)
				if p.ID == self {
					row.WriteString(pterm.LightGreen(letter) + " ")
				} else {
					row.WriteString(pterm.LightRed(letter) + " ")
				}
				continue
			}
			if m, ok := marks[t]; ok {
				row.WriteString(pterm.LightYellow(fmt.Sprintf("%-2s", m)))
				continue
			}
			row.WriteString(pterm.Gray(string(tile.Rune())) + " ")
		}
		if used {
			b.WriteString(row.String())
			b.WriteString("\n")
		}
	}
	return pterm.DefaultBox.WithTitle(s.Arena.Coordinate.String()).WithTitleTopLeft().Sprint(strings.TrimRight(b.String(), "\n"))
}

func initial(p *combat.Participant) string {
	name := p.Stats.Name
	if name == "" {
		name = string(p.ID)
	}
	for _, r := range name {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

func renderStatus(g *game.Game) (string, error) {
	c := g.Combat()
	lines := []string{
		fmt.Sprintf("Player: %s (%s)", playerName(g, g.Self()), g.Self()),
		fmt.Sprintf("Mode: %s", g.Mode()),
	}
	if g.Mode() != game.Fighting {
		lines = append(lines, fmt.Sprintf("Position: %s", g.Position()))
		return pterm.DefaultBox.WithTitle("Status").Sprint(strings.Join(lines, "\n")), nil
	}
	lines = append(lines,
		fmt.Sprintf("Phase: %s", c.Phase()),
		fmt.Sprintf("Owner: %s", playerName(g, c.Session().Owner)),
	)
	if c.Phase() == combat.Preparation {
		ready, total := c.Session().Readiness()
		lines = append(lines, fmt.Sprintf("Ready: %d/%d", ready, total))
	}
	if p, ok := c.Session().Participant(g.Self()); ok && c.Phase() == combat.YourTurn {
		lines = append(lines, fmt.Sprintf("Action points: %d  Movement points: %d", p.ActionPoints, p.MovementPoints))
	}
	box := pterm.DefaultBox.WithTitle("Status").Sprint(strings.Join(lines, "\n"))
	if t := c.Timer(); t != nil {
		bar, err := pterm.DefaultBarChart.WithHorizontal().WithBars(pterm.Bars{
			{Label: "time left", Value: int(100 * t.Fraction())},
		}).Srender()
		if err != nil {
			return "", err
		}
		box += "\n" + bar + fmt.Sprintf("%.0fs left\n", t.Remaining().Seconds())
	}
	return box, nil
}

func renderPlayers(players []exploration.Player) (string, error) {
	data := pterm.TableData{{"ID", "Name", "X", "Z", ""}}
	for _, p := range players {
		name := p.Name
		if !p.Known {
			name = pterm.Gray("unknown")
		}
		status := ""
		if p.Fighting {
			status = pterm.Red("fighting")
		}
		data = append(data, []string{string(p.ID), name, fmt.Sprintf("%.1f", p.Position.X), fmt.Sprintf("%.1f", p.Position.Z), status})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func renderJournal(blocks []ledger.Block) (string, error) {
	data := pterm.TableData{{"#", "Kind", "Actor", "Detail", "Hash"}}
	for _, b := range blocks {
		detail := b.Event.Reason
		if b.Event.Kind == ledger.EventTransition {
			detail = b.Event.From + " -> " + b.Event.To
		}
		hash := b.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		data = append(data, []string{fmt.Sprint(b.Index), string(b.Event.Kind), string(b.Event.Actor), detail, hash})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
