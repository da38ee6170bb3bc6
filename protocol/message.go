package protocol

import (
	"fmt"
	"math"
)

// Kind tags a message variant on the wire.
type Kind uint32

const (
	KindPlayerInitInfo Kind = iota + 1
	KindUpdatePlayerPosition
	KindDuelDemand
	KindDuelAccepted
	KindDuelRefused
	KindDuelCancelled
	KindCombatPlayerJoined
	KindCombatStart
	KindCombatReadyStateChanged
	KindTurnEnded
)

var kindNames = map[Kind]string{
	KindPlayerInitInfo:          "PlayerInitInfo",
	KindUpdatePlayerPosition:    "UpdatePlayerPosition",
	KindDuelDemand:              "DuelDemand",
	KindDuelAccepted:            "DuelAccepted",
	KindDuelRefused:             "DuelRefused",
	KindDuelCancelled:           "DuelCancelled",
	KindCombatPlayerJoined:      "CombatPlayerJoined",
	KindCombatStart:             "CombatStart",
	KindCombatReadyStateChanged: "CombatReadyStateChanged",
	KindTurnEnded:               "TurnEnded",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// Message is implemented by every variant of the protocol.
type Message interface {
	Kind() Kind
}

// validator is implemented by messages whose fields have a narrower range
// than their wire type.
type validator interface {
	validate() error
}

// PlayerInitInfo introduces a player to a newly connected peer.
type PlayerInitInfo struct {
	ID   PeerID  `json:"id"`
	Name string  `json:"name"`
	X    float32 `json:"x"`
	Z    float32 `json:"z"`
}

// UpdatePlayerPosition carries the sender's new world position.
type UpdatePlayerPosition struct {
	X float32 `json:"x"`
	Z float32 `json:"z"`
}

// DuelDemand asks the receiver for a duel.
type DuelDemand struct{}

// DuelAccepted answers a DuelDemand positively. The demander owns the combat.
type DuelAccepted struct{}

// DuelRefused answers a DuelDemand negatively.
type DuelRefused struct{}

// DuelCancelled withdraws a pending DuelDemand.
type DuelCancelled struct{}

// PlayerStats is the wire form of a player's combat statistics.
type PlayerStats struct {
	Name           string `json:"name"`
	MaxHealth      uint32 `json:"max_health"`
	ActionPoints   uint32 `json:"action_points" jsonschema:"maximum=255"`
	MovementPoints uint32 `json:"movement_points" jsonschema:"maximum=255"`
}

// Position is a world position.
type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// CombatPlayerJoined announces the sender as a combat participant.
type CombatPlayerJoined struct {
	Stats    PlayerStats `json:"stats"`
	Position Position    `json:"position"`
}

// CombatStart is broadcast by the combat owner when preparation is over.
type CombatStart struct{}

// CombatReadyStateChanged reports the sender's readiness during preparation.
type CombatReadyStateChanged struct {
	Ready bool `json:"ready"`
}

// TurnEnded is broadcast by the active player when its turn is over.
type TurnEnded struct{}

func (PlayerInitInfo) Kind() Kind          { return KindPlayerInitInfo }
func (UpdatePlayerPosition) Kind() Kind    { return KindUpdatePlayerPosition }
func (DuelDemand) Kind() Kind              { return KindDuelDemand }
func (DuelAccepted) Kind() Kind            { return KindDuelAccepted }
func (DuelRefused) Kind() Kind             { return KindDuelRefused }
func (DuelCancelled) Kind() Kind           { return KindDuelCancelled }
func (CombatPlayerJoined) Kind() Kind      { return KindCombatPlayerJoined }
func (CombatStart) Kind() Kind             { return KindCombatStart }
func (CombatReadyStateChanged) Kind() Kind { return KindCombatReadyStateChanged }
func (TurnEnded) Kind() Kind               { return KindTurnEnded }

func (m PlayerInitInfo) validate() error {
	if m.ID == "" {
		return fmt.Errorf("empty player id")
	}
	return finite(m.X, m.Z)
}

func (m UpdatePlayerPosition) validate() error {
	return finite(m.X, m.Z)
}

func (m CombatPlayerJoined) validate() error {
	if m.Stats.ActionPoints > math.MaxUint8 || m.Stats.MovementPoints > math.MaxUint8 {
		return fmt.Errorf("points out of range: %d action, %d movement", m.Stats.ActionPoints, m.Stats.MovementPoints)
	}
	return finite(m.Position.X, m.Position.Y, m.Position.Z)
}

func finite(vs ...float32) error {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite coordinate %v", v)
		}
	}
	return nil
}
