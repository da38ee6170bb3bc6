package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/luca-patrignani/tactical-duel/discovery"
	"github.com/luca-patrignani/tactical-duel/game"
	"github.com/luca-patrignani/tactical-duel/network"
	"github.com/luca-patrignani/tactical-duel/protocol"
	"github.com/luca-patrignani/tactical-duel/relay"
	"github.com/pterm/pterm"
)

type setup struct {
	name     string
	relayURL string
	listen   string
	ports    string
	peers    string
	players  int
}

// connect opens the transport chosen by the flags. The returned cleanup
// must be called once the game is over.
func connect(ctx context.Context, s setup, logger *slog.Logger) (game.Transport, func(), error) {
	nothing := func() {}
	if s.relayURL != "" {
		c, err := network.DialRelay(ctx, s.relayURL, network.WithRelayLogger(logger))
		if err != nil {
			return nil, nothing, err
		}
		pterm.Success.Printfln("Connected to relay %s", s.relayURL)
		return c, nothing, nil
	}

	l, err := net.Listen("tcp", net.JoinHostPort(s.listen, "0"))
	if err != nil {
		return nil, nothing, fmt.Errorf("failed to listen on %s: %w", s.listen, err)
	}
	pterm.Info.Println("Listening on " + l.Addr().String())
	if addr, ok := l.Addr().(*net.TCPAddr); ok {
		if subnet, err := subnetOf(addr.IP); err == nil {
			logger.Debug("reachable from subnet", "subnet", subnet.String())
		}
	}

	addresses := map[protocol.PeerID]string{protocol.PeerID(s.name): l.Addr().String()}
	cleanup := nothing
	if s.peers != "" {
		host, port, _ := net.SplitHostPort(l.Addr().String())
		local := net.ParseIP(host).To4()
		if local == nil {
			local = net.IPv4(127, 0, 0, 1).To4()
		}
		defaultPort, _ := strconv.Atoi(port)
		others, err := parsePeers(s.peers, local, defaultPort)
		if err != nil {
			l.Close()
			return nil, nothing, err
		}
		for id, addr := range others {
			addresses[id] = addr
		}
	} else {
		d, others, err := discover(ctx, s, l.Addr().String(), logger)
		if err != nil {
			l.Close()
			return nil, nothing, err
		}
		cleanup = func() { d.Close() }
		for _, e := range others {
			addresses[e.ID] = e.Address
		}
	}
	p := network.NewPeer(protocol.PeerID(s.name), addresses, l, network.WithLogger(logger))
	return p, cleanup, nil
}

// discover waits for the other players announcing themselves on the port
// range. The announcement stays up until the returned Discover is closed.
func discover(ctx context.Context, s setup, address string, logger *slog.Logger) (*discovery.Discover, []discovery.Entry, error) {
	start, end, err := parsePortRange(s.ports)
	if err != nil {
		return nil, nil, err
	}
	d, err := discovery.NewWithOptions(
		discovery.Entry{ID: protocol.PeerID(s.name), Address: address},
		discovery.WithPortRange(start, end),
		discovery.WithHost(s.listen),
		discovery.WithAttempts(60),
		discovery.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot announce on ports %s: %w", s.ports, err)
	}
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Waiting for %d other players on port %d...", s.players-1, d.Port()))
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	entries, err := d.Collect(ctx, s.players-1)
	if err != nil {
		spinner.Fail()
		d.Close()
		return nil, nil, fmt.Errorf("found %d players: %w", len(entries), err)
	}
	spinner.Success()
	for _, e := range entries {
		pterm.Info.Printfln("Found %s at %s", e.ID, e.Address)
	}
	return d, entries, nil
}

// runRelay serves a relay until ctx is done.
func runRelay(ctx context.Context, addr string, logger *slog.Logger) error {
	r := relay.NewServer(relay.WithLogger(logger))
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		r.Close()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	pterm.Info.Printfln("Relay listening on %s, clients connect to ws://%s/ws", addr, addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
