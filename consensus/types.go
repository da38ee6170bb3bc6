package consensus

import (
	"fmt"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

// Trigger is the condition that made the owner commit.
type Trigger int

const (
	AllReady Trigger = iota
	TimerExpired
)

func (t Trigger) String() string {
	switch t {
	case AllReady:
		return "all-ready"
	case TimerExpired:
		return "timer-expired"
	}
	return fmt.Sprintf("Trigger(%d)", int(t))
}

// Decision is the owner's verdict that preparation is over.
type Decision struct {
	Owner   protocol.PeerID
	Trigger Trigger
	// Ready and Total are the readiness counts at the time of the decision.
	Ready int
	Total int
}
