package consensus

import (
	"log/slog"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

// Node runs the readiness consensus for one peer during one preparation phase.
// A new Node is created every time a combat enters preparation.
type Node struct {
	self  protocol.PeerID
	owner protocol.PeerID

	state   StateManager
	ledger  Ledger
	network NetworkLayer
	logger  *slog.Logger

	decided bool
}

// NewNode creates the consensus node of peer self for a combat owned by owner.
//
// Parameters:
//   - self: The local peer
//   - owner: The peer entitled to commit the decision
//   - state: Readiness flags of the participants
//   - ledger: Journal the committed decision is recorded in, may be nil
//   - network: Broadcast used to announce the start
//   - logger: Destination of diagnostics, slog.Default() when nil
func NewNode(
	self, owner protocol.PeerID,
	state StateManager,
	ledger Ledger,
	network NetworkLayer,
	logger *slog.Logger,
) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	return &Node{
		self:    self,
		owner:   owner,
		state:   state,
		ledger:  ledger,
		network: network,
		logger:  logger,
	}
}

// IsOwner reports whether this node may commit the decision.
func (n *Node) IsOwner() bool {
	return n.self == n.owner
}

func (n *Node) Owner() protocol.PeerID {
	return n.owner
}

// Decided reports whether this node already committed a decision.
func (n *Node) Decided() bool {
	return n.decided
}
