package game

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/luca-patrignani/tactical-duel/combat"
	"github.com/luca-patrignani/tactical-duel/consensus"
	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/exploration"
	"github.com/luca-patrignani/tactical-duel/ledger"
	"github.com/luca-patrignani/tactical-duel/protocol"
)

var (
	ErrNotConnected = errors.New("identifier not assigned yet")
	ErrNotExploring = errors.New("not exploring")
)

// Transport moves opaque packets between peers. Implementations buffer what
// they receive until Receive and PollPeerChanges are called.
type Transport interface {
	// Self returns the local identifier, which may be assigned late by a
	// relay.
	Self() (protocol.PeerID, bool)
	Peers() []protocol.PeerID
	Send(to protocol.PeerID, data []byte) error
	Receive() []protocol.Packet
	PollPeerChanges() []protocol.PeerChange
	Close() error
}

// Mode is what the local player is doing.
type Mode int

const (
	Connecting Mode = iota
	Exploring
	Fighting
)

func (m Mode) String() string {
	switch m {
	case Connecting:
		return "connecting"
	case Exploring:
		return "exploring"
	case Fighting:
		return "fighting"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Game is the state of the local player.
type Game struct {
	transport Transport
	stats     combat.Stats
	cfg       config
	logger    *slog.Logger

	self     protocol.PeerID
	mode     Mode
	position grid.Point

	bus     *protocol.Bus
	roster  *exploration.Roster
	duel    *exploration.Duel
	combat  *combat.Controller
	journal *ledger.Journal
}

// New creates the game of a player described by stats. Nothing happens until
// the transport knows the local identifier.
func New(t Transport, stats combat.Stats, opts ...Option) *Game {
	cfg := config{}
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.arena == nil {
		cfg.arena = OpenField
	}
	return &Game{
		transport: t,
		stats:     stats,
		cfg:       cfg,
		logger:    cfg.logger,
		position:  cfg.spawn,
	}
}

func (g *Game) start(id protocol.PeerID) {
	g.self = id
	g.logger = g.cfg.logger.With("peer", id)
	out := outbox{g}
	g.bus = protocol.NewBus(g.logger)
	g.roster = exploration.NewRoster(id, g.logger)
	g.roster.Register(g.bus)
	g.duel = exploration.NewDuel(id, out, g.startCombat, func() bool { return g.mode == Fighting }, g.logger)
	g.duel.Register(g.bus)
	opts := append([]combat.Option{
		combat.WithLogger(g.logger),
		combat.WithJournal(journal{g}),
	}, g.cfg.combatOpts...)
	g.combat = combat.NewController(id, g.stats, g.bus, out, opts...)
	g.mode = Exploring
	g.logger.Info("connected", "name", g.stats.Name)
}

// Tick runs one frame: connection changes first, then the received
// messages in arrival order, then the combat timers.
func (g *Game) Tick(delta time.Duration) {
	if g.mode == Connecting {
		id, ok := g.transport.Self()
		if !ok {
			return
		}
		g.start(id)
	}
	for _, c := range g.transport.PollPeerChanges() {
		switch c.State {
		case protocol.Connected:
			g.roster.Connected(c.Peer)
			outbox{g}.Send(g.introduction(), c.Peer)
		case protocol.Disconnected:
			g.roster.Disconnected(c.Peer)
			g.duel.PeerLeft(c.Peer)
			g.combat.ParticipantLeft(c.Peer)
		}
	}
	for _, p := range g.transport.Receive() {
		msg, err := protocol.Decode(p.Data)
		if err != nil {
			g.logger.Warn("dropping packet", "from", p.From, "err", err)
			continue
		}
		g.bus.Dispatch(p.From, msg)
	}
	g.combat.Update(delta)
	if g.mode == Fighting && g.combat.Phase() == combat.NotInCombat {
		g.mode = Exploring
		g.logger.Info("back to exploring")
		outbox{g}.Broadcast(g.introduction())
	}
}

func (g *Game) introduction() protocol.PlayerInitInfo {
	return protocol.PlayerInitInfo{
		ID:   g.self,
		Name: g.stats.Name,
		X:    float32(g.position.X),
		Z:    float32(g.position.Z),
	}
}

// startCombat is called by the duel negotiation on both sides. The arena is
// the chunk the owner stands in.
func (g *Game) startCombat(owner, opponent protocol.PeerID) {
	center := g.position
	if owner != g.self {
		if p, ok := g.roster.Player(owner); ok && p.Known {
			center = p.Position
		} else {
			g.logger.Warn("owner position unknown, fighting in the local chunk", "owner", owner)
		}
	}
	arena := g.cfg.arena(grid.ChunkFromWorld(center))
	g.journal = ledger.NewJournal(owner)
	err := g.combat.Enter(combat.Engagement{
		Owner:     owner,
		Opponents: []protocol.PeerID{opponent},
		Arena:     arena,
		Position:  g.position,
	})
	if err != nil {
		g.logger.Error("cannot enter combat", "owner", owner, "err", err)
		return
	}
	g.mode = Fighting
}

// MoveTo moves the player while exploring and tells every peer.
func (g *Game) MoveTo(p grid.Point) error {
	if g.mode != Exploring {
		return fmt.Errorf("%w: %v", ErrNotExploring, g.mode)
	}
	g.position = p
	outbox{g}.Broadcast(protocol.UpdatePlayerPosition{X: float32(p.X), Z: float32(p.Z)})
	return nil
}

func (g *Game) Challenge(peer protocol.PeerID) error {
	if g.mode != Exploring {
		return fmt.Errorf("%w: %v", ErrNotExploring, g.mode)
	}
	if _, ok := g.roster.Player(peer); !ok {
		return fmt.Errorf("challenge %s: %w", peer, exploration.ErrUnknownPlayer)
	}
	return g.duel.Challenge(peer)
}

func (g *Game) Accept() error {
	if g.mode != Exploring {
		return fmt.Errorf("%w: %v", ErrNotExploring, g.mode)
	}
	return g.duel.Accept()
}

func (g *Game) Refuse() error {
	if g.mode == Connecting {
		return ErrNotConnected
	}
	return g.duel.Refuse()
}

func (g *Game) Cancel() error {
	if g.mode == Connecting {
		return ErrNotConnected
	}
	return g.duel.Cancel()
}

// Self returns the local identifier, empty while connecting.
func (g *Game) Self() protocol.PeerID { return g.self }

func (g *Game) Mode() Mode { return g.mode }

// Position is the world position of the player while exploring.
func (g *Game) Position() grid.Point { return g.position }

func (g *Game) Roster() *exploration.Roster { return g.roster }

func (g *Game) Duel() *exploration.Duel { return g.duel }

// Combat is nil while connecting.
func (g *Game) Combat() *combat.Controller { return g.combat }

// Journal is the journal of the last combat, nil before the first one.
func (g *Game) Journal() *ledger.Journal { return g.journal }

func (g *Game) Close() error {
	return g.transport.Close()
}

// outbox encodes messages for the transport. Delivery is best effort:
// failures are logged.
type outbox struct {
	g *Game
}

func (o outbox) Broadcast(msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		o.g.logger.Error("cannot encode message", "kind", msg.Kind(), "err", err)
		return
	}
	for _, id := range o.g.transport.Peers() {
		if err := o.g.transport.Send(id, data); err != nil {
			o.g.logger.Warn("broadcast failed", "to", id, "kind", msg.Kind(), "err", err)
		}
	}
}

func (o outbox) Send(msg protocol.Message, to protocol.PeerID) {
	data, err := protocol.Encode(msg)
	if err != nil {
		o.g.logger.Error("cannot encode message", "kind", msg.Kind(), "err", err)
		return
	}
	if err := o.g.transport.Send(to, data); err != nil {
		o.g.logger.Warn("send failed", "to", to, "kind", msg.Kind(), "err", err)
	}
}

// journal writes to the journal of the running combat.
type journal struct {
	g *Game
}

func (j journal) RecordTransition(from, to string) error {
	if j.g.journal == nil {
		return nil
	}
	return j.g.journal.RecordTransition(from, to)
}

func (j journal) Record(d consensus.Decision) error {
	if j.g.journal == nil {
		return nil
	}
	return j.g.journal.Record(d)
}
