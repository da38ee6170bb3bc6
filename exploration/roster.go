// Package exploration tracks the other players while nobody is fighting and
// negotiates duels between them.
package exploration

import (
	"log/slog"
	"sort"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/protocol"
)

// Player is a remote player as seen by the local peer.
type Player struct {
	ID   protocol.PeerID
	Name string
	// Known is false until the player introduced itself.
	Known    bool
	Position grid.Point
	// Fighting is set from the moment the player enters a combat until it
	// introduces itself again. Its position updates are combat moves
	// meanwhile and are not tracked.
	Fighting bool
}

// Roster is the set of connected remote players.
type Roster struct {
	self    protocol.PeerID
	players map[protocol.PeerID]*Player
	logger  *slog.Logger
}

func NewRoster(self protocol.PeerID, logger *slog.Logger) *Roster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Roster{self: self, players: map[protocol.PeerID]*Player{}, logger: logger}
}

// Register installs the roster handlers on bus for the lifetime of the bus.
func (r *Roster) Register(bus *protocol.Bus) {
	bus.Handle(protocol.KindPlayerInitInfo, r.onInitInfo)
	bus.Handle(protocol.KindUpdatePlayerPosition, r.onPosition)
	bus.Handle(protocol.KindCombatPlayerJoined, r.onCombatJoined)
}

// Connected records a peer that has just joined.
func (r *Roster) Connected(id protocol.PeerID) {
	if id == r.self {
		return
	}
	if _, ok := r.players[id]; !ok {
		r.players[id] = &Player{ID: id}
	}
}

// Disconnected forgets a peer.
func (r *Roster) Disconnected(id protocol.PeerID) {
	if p, ok := r.players[id]; ok {
		r.logger.Info("player left", "player", id, "name", p.Name)
		delete(r.players, id)
	}
}

func (r *Roster) Player(id protocol.PeerID) (Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Players returns the remote players sorted by identifier.
func (r *Roster) Players() []Player {
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Roster) onInitInfo(from protocol.PeerID, msg protocol.Message) {
	m := msg.(protocol.PlayerInitInfo)
	if m.ID != from {
		r.logger.Warn("player introduced itself with another id", "from", from, "id", m.ID)
		return
	}
	r.Connected(from)
	p := r.players[from]
	p.Name = m.Name
	p.Known = true
	p.Fighting = false
	p.Position = grid.Point{X: float64(m.X), Z: float64(m.Z)}
	r.logger.Info("player joined", "player", from, "name", m.Name)
}

func (r *Roster) onPosition(from protocol.PeerID, msg protocol.Message) {
	m := msg.(protocol.UpdatePlayerPosition)
	p, ok := r.players[from]
	if !ok {
		r.logger.Debug("position of unknown player ignored", "player", from)
		return
	}
	if p.Fighting {
		return
	}
	p.Position = grid.Point{X: float64(m.X), Z: float64(m.Z)}
}

func (r *Roster) onCombatJoined(from protocol.PeerID, _ protocol.Message) {
	if p, ok := r.players[from]; ok {
		p.Fighting = true
	}
}
