package ledger

import "github.com/luca-patrignani/tactical-duel/protocol"

// EventKind classifies journal entries.
type EventKind string

const (
	EventGenesis    EventKind = "genesis"
	EventTransition EventKind = "transition"
	EventDecision   EventKind = "decision"
)

// Block is one entry of the journal.
type Block struct {
	Index     int    `json:"index"`
	Timestamp int64  `json:"timestamp"`
	PrevHash  string `json:"prev_hash"`
	Hash      string `json:"hash"`
	Event     Event  `json:"event"`
}

// Event is what a block records.
type Event struct {
	Kind  EventKind       `json:"kind"`
	Actor protocol.PeerID `json:"actor,omitempty"`
	// From and To are set for transitions.
	From   string            `json:"from,omitempty"`
	To     string            `json:"to,omitempty"`
	Reason string            `json:"reason,omitempty"`
	Extra  map[string]string `json:"extra,omitempty"`
}
