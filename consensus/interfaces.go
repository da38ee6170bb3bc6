package consensus

import "github.com/luca-patrignani/tactical-duel/protocol"

// StateManager exposes the readiness flags of the combat participants.
type StateManager interface {
	// SetReady records the readiness of peer.
	// Returns false if peer is not a participant, in which case nothing changes.
	SetReady(peer protocol.PeerID, ready bool) bool

	// Readiness returns how many participants are ready and how many there are.
	Readiness() (ready, total int)
}

// Ledger defines the interface for keeping a log of committed decisions.
type Ledger interface {
	// Record appends a committed decision.
	// Returns an error if the decision could not be stored.
	Record(d Decision) error
}

// NetworkLayer abstracts the best-effort broadcast towards every connected peer.
type NetworkLayer interface {
	// Broadcast sends msg to all peers. Delivery failures are handled by the
	// implementation and never reported back.
	Broadcast(msg protocol.Message)
}
