package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/tactical-duel/application"
	"github.com/luca-patrignani/tactical-duel/combat"
	"github.com/luca-patrignani/tactical-duel/game"
	"github.com/luca-patrignani/tactical-duel/protocol"
)

var defaultStats = combat.Stats{MaxHealth: 50, ActionPoints: 6, MovementPoints: 3}

func main() {
	var (
		name       = flag.String("name", "", "player name, also the peer id on a mesh")
		relayURL   = flag.String("relay", "", "websocket of a relay to play through, e.g. ws://host:8080/ws")
		serveRelay = flag.String("serve-relay", "", "serve a relay on this address instead of playing")
		listen     = flag.String("listen", "localhost", "host the mesh and the discovery listen on")
		ports      = flag.String("ports", "9000-9010", "port range probed to discover the other players")
		peers      = flag.String("peers", "", "comma separated id@address list, replaces discovery")
		players    = flag.Int("players", 2, "players to wait for before starting on a mesh")
		schema     = flag.Bool("schema", false, "print the JSON schema of the messages and exit")
		arenaPath  = flag.String("arena", "", "file describing the arena chunk")
		fps        = flag.Int("fps", 30, "frames per second")
		verbose    = flag.Bool("v", false, "log debug messages")
	)
	flag.Parse()

	if *verbose {
		pterm.DefaultLogger.Level = pterm.LogLevelDebug
	}
	// Create a new slog handler with the default PTerm logger
	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if *schema {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(protocol.Schema()); err != nil {
			logger.Error("cannot write schema", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *serveRelay != "" {
		if err := runRelay(ctx, *serveRelay, logger); err != nil {
			logger.Error("relay stopped", "err", err)
			os.Exit(1)
		}
		return
	}

	printBanner()
	if *name == "" {
		*name, _ = pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your username").Show()
		pterm.Println()
	}
	*name = strings.TrimSpace(*name)
	if *name == "" {
		pterm.Error.Println("A username is required")
		os.Exit(1)
	}
	pterm.Info.Printfln("Your username: %s", *name)

	var arena game.ArenaFunc = game.OpenField
	if *arenaPath != "" {
		f, err := os.Open(*arenaPath)
		if err != nil {
			logger.Error("cannot open arena", "err", err)
			os.Exit(1)
		}
		arena, err = game.ReadArena(f)
		f.Close()
		if err != nil {
			logger.Error("invalid arena", "path", *arenaPath, "err", err)
			os.Exit(1)
		}
	}

	transport, cleanup, err := connect(ctx, setup{
		name:     *name,
		relayURL: *relayURL,
		listen:   *listen,
		ports:    *ports,
		peers:    *peers,
		players:  *players,
	}, logger)
	if err != nil {
		logger.Error("cannot connect", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	stats := defaultStats
	stats.Name = *name
	g := game.New(transport, stats,
		game.WithLogger(logger),
		game.WithArena(arena),
		game.WithCombatOptions(combat.WithTurnOrder(combat.SortedRotation)),
	)
	defer g.Close()

	ui := newScreen(g)
	loop := application.NewOrchestrator(g, *fps, application.WithRender(ui.refresh), application.WithLogger(logger))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go readCommands(ctx, cancel, os.Stdin, loop, g)

	pterm.Info.Println("Type help for the list of commands")
	if err := loop.Run(ctx); err != nil {
		logger.Error("frame loop stopped", "err", err)
	}
}

// readCommands feeds the lines of r to the frame loop until quit or the end
// of input.
func readCommands(ctx context.Context, cancel context.CancelFunc, r io.Reader, loop *application.Orchestrator, g *game.Game) {
	defer cancel()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		done := make(chan bool, 1)
		err := loop.Post(ctx, func() {
			quit, err := execute(os.Stdout, g, line)
			if err != nil {
				pterm.Error.Println(err)
			}
			done <- quit
		})
		if err != nil {
			return
		}
		select {
		case quit := <-done:
			if quit {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
