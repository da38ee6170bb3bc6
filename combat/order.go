package combat

import "github.com/luca-patrignani/tactical-duel/protocol"

// TurnOrder chooses who plays a turn. Every peer evaluates it locally, so an
// implementation must only depend on its arguments.
type TurnOrder interface {
	// Next returns the participant playing turn number turn, counted from
	// zero since the combat started. ids is sorted. ok is false when no one
	// can be chosen.
	Next(ids []protocol.PeerID, turn int) (id protocol.PeerID, ok bool)
}

// TurnOrderFunc adapts a function to TurnOrder.
type TurnOrderFunc func(ids []protocol.PeerID, turn int) (protocol.PeerID, bool)

func (f TurnOrderFunc) Next(ids []protocol.PeerID, turn int) (protocol.PeerID, bool) {
	return f(ids, turn)
}

// SortedRotation gives the turns to the participants in identifier order,
// one after the other.
var SortedRotation TurnOrder = TurnOrderFunc(func(ids []protocol.PeerID, turn int) (protocol.PeerID, bool) {
	if len(ids) == 0 || turn < 0 {
		return "", false
	}
	return ids[turn%len(ids)], true
})
