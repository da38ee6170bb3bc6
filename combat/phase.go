package combat

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalTransition = errors.New("illegal phase transition")
	ErrWrongPhase        = errors.New("action not available in this phase")
	ErrNotInCombat       = errors.New("not in combat")
	ErrNothingSelected   = errors.New("no tile highlighted")
)

// Phase is the combat state of the local peer.
type Phase int

const (
	NotInCombat Phase = iota
	Preparation
	NextTurn
	YourTurn
	OthersTurn
	End
)

var phaseNames = [...]string{"NotInCombat", "Preparation", "NextTurn", "YourTurn", "OthersTurn", "End"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

var edges = map[Phase][]Phase{
	NotInCombat: {Preparation},
	Preparation: {NextTurn},
	NextTurn:    {YourTurn, OthersTurn, End},
	YourTurn:    {NextTurn, End},
	OthersTurn:  {NextTurn, End},
	End:         {NotInCombat},
}

// CanTransition reports whether from -> to is an edge of the phase graph.
func CanTransition(from, to Phase) bool {
	for _, p := range edges[from] {
		if p == to {
			return true
		}
	}
	return false
}

// TurnAction is the sub-state of the local turn.
type TurnAction int

const (
	NotInTurn TurnAction = iota
	WaitingNextAction
	Move
	// UseSpell is reserved for the spell system; nothing enters it yet.
	UseSpell
	EndTurn
)

var actionNames = [...]string{"NotInTurn", "WaitingNextAction", "Move", "UseSpell", "EndTurn"}

func (a TurnAction) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("TurnAction(%d)", int(a))
}
