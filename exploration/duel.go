package exploration

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

var (
	ErrDuelBusy      = errors.New("a duel is already being negotiated")
	ErrNoPendingDuel = errors.New("no duel to answer")
	ErrUnknownPlayer = errors.New("unknown player")
)

// Network is the unicast side of the transport.
type Network interface {
	Send(msg protocol.Message, to protocol.PeerID)
}

// DuelState is the negotiation state of the local peer.
type DuelState int

const (
	Idle DuelState = iota
	// Demanding: the local peer challenged someone and waits for an answer.
	Demanding
	// Pending: someone challenged the local peer.
	Pending
)

func (s DuelState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Demanding:
		return "demanding"
	case Pending:
		return "pending"
	}
	return fmt.Sprintf("DuelState(%d)", int(s))
}

// StartFunc is called when both sides agreed. owner is the peer that
// challenged.
type StartFunc func(owner, opponent protocol.PeerID)

// Duel negotiates one duel at a time.
type Duel struct {
	self    protocol.PeerID
	network Network
	start   StartFunc
	busy    func() bool
	logger  *slog.Logger

	state DuelState
	peer  protocol.PeerID
}

// NewDuel creates the negotiator of peer self. busy reports whether the
// local peer is already fighting; challenges received meanwhile are refused.
func NewDuel(self protocol.PeerID, network Network, start StartFunc, busy func() bool, logger *slog.Logger) *Duel {
	if logger == nil {
		logger = slog.Default()
	}
	if busy == nil {
		busy = func() bool { return false }
	}
	return &Duel{self: self, network: network, start: start, busy: busy, logger: logger}
}

// Register installs the duel handlers on bus.
func (d *Duel) Register(bus *protocol.Bus) {
	bus.Handle(protocol.KindDuelDemand, d.onDemand)
	bus.Handle(protocol.KindDuelAccepted, d.onAccepted)
	bus.Handle(protocol.KindDuelRefused, d.onRefused)
	bus.Handle(protocol.KindDuelCancelled, d.onCancelled)
}

func (d *Duel) State() DuelState { return d.state }

// Peer is the other side of the negotiation, empty when idle.
func (d *Duel) Peer() protocol.PeerID { return d.peer }

// Challenge asks peer for a duel.
func (d *Duel) Challenge(peer protocol.PeerID) error {
	if d.state != Idle || d.busy() {
		return ErrDuelBusy
	}
	if peer == d.self {
		return fmt.Errorf("cannot challenge yourself")
	}
	d.state, d.peer = Demanding, peer
	d.network.Send(protocol.DuelDemand{}, peer)
	d.logger.Info("duel demanded", "to", peer)
	return nil
}

// Accept answers the pending challenge and starts the duel.
func (d *Duel) Accept() error {
	if d.state != Pending {
		return ErrNoPendingDuel
	}
	challenger := d.reset()
	d.network.Send(protocol.DuelAccepted{}, challenger)
	d.logger.Info("duel accepted", "from", challenger)
	d.start(challenger, challenger)
	return nil
}

// Refuse declines the pending challenge.
func (d *Duel) Refuse() error {
	if d.state != Pending {
		return ErrNoPendingDuel
	}
	challenger := d.reset()
	d.network.Send(protocol.DuelRefused{}, challenger)
	return nil
}

// Cancel withdraws the local challenge.
func (d *Duel) Cancel() error {
	if d.state != Demanding {
		return ErrNoPendingDuel
	}
	target := d.reset()
	d.network.Send(protocol.DuelCancelled{}, target)
	return nil
}

// PeerLeft drops a negotiation with a peer that disconnected.
func (d *Duel) PeerLeft(id protocol.PeerID) {
	if d.state != Idle && d.peer == id {
		d.logger.Info("duel dropped, peer left", "peer", id)
		d.reset()
	}
}

func (d *Duel) reset() protocol.PeerID {
	p := d.peer
	d.state, d.peer = Idle, ""
	return p
}

func (d *Duel) onDemand(from protocol.PeerID, _ protocol.Message) {
	if d.state != Idle || d.busy() {
		d.logger.Debug("duel demand refused, busy", "from", from)
		d.network.Send(protocol.DuelRefused{}, from)
		return
	}
	d.state, d.peer = Pending, from
	d.logger.Info("duel demand received", "from", from)
}

func (d *Duel) onAccepted(from protocol.PeerID, _ protocol.Message) {
	if d.state != Demanding || d.peer != from {
		d.logger.Debug("unexpected duel acceptance ignored", "from", from)
		return
	}
	d.reset()
	d.logger.Info("duel accepted by opponent", "opponent", from)
	d.start(d.self, from)
}

func (d *Duel) onRefused(from protocol.PeerID, _ protocol.Message) {
	if d.state == Demanding && d.peer == from {
		d.reset()
		d.logger.Info("duel refused", "by", from)
	}
}

func (d *Duel) onCancelled(from protocol.PeerID, _ protocol.Message) {
	if d.state == Pending && d.peer == from {
		d.reset()
		d.logger.Info("duel cancelled", "by", from)
	}
}
