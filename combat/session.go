package combat

import (
	"sort"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/protocol"
)

// Stats are the combat statistics of a player.
type Stats struct {
	Name           string
	MaxHealth      uint32
	ActionPoints   uint8
	MovementPoints uint8
}

func (s Stats) wire() protocol.PlayerStats {
	return protocol.PlayerStats{
		Name:           s.Name,
		MaxHealth:      s.MaxHealth,
		ActionPoints:   uint32(s.ActionPoints),
		MovementPoints: uint32(s.MovementPoints),
	}
}

func statsFromWire(p protocol.PlayerStats) Stats {
	return Stats{
		Name:           p.Name,
		MaxHealth:      p.MaxHealth,
		ActionPoints:   uint8(p.ActionPoints),
		MovementPoints: uint8(p.MovementPoints),
	}
}

// Participant is a player taking part in the combat.
type Participant struct {
	ID       protocol.PeerID
	Stats    Stats
	Position grid.TileCoordinate
	// Placed is false until the participant's position inside the arena is
	// known.
	Placed bool
	Ready  bool
	// Points left in the current turn.
	ActionPoints   uint8
	MovementPoints uint8
}

// Session is the shared state of one combat.
type Session struct {
	Owner protocol.PeerID
	Arena *grid.Chunk

	participants map[protocol.PeerID]*Participant
}

func newSession(owner protocol.PeerID, arena *grid.Chunk) *Session {
	return &Session{Owner: owner, Arena: arena, participants: map[protocol.PeerID]*Participant{}}
}

// Join adds a participant, or refreshes the stats of an existing one.
func (s *Session) Join(id protocol.PeerID, stats Stats) *Participant {
	p, ok := s.participants[id]
	if !ok {
		p = &Participant{ID: id}
		s.participants[id] = p
	}
	p.Stats = stats
	return p
}

// Leave removes a participant and reports whether it was present.
func (s *Session) Leave(id protocol.PeerID) bool {
	if _, ok := s.participants[id]; !ok {
		return false
	}
	delete(s.participants, id)
	return true
}

func (s *Session) Participant(id protocol.PeerID) (*Participant, bool) {
	p, ok := s.participants[id]
	return p, ok
}

// IDs returns the participant identifiers sorted in ascending order.
func (s *Session) IDs() []protocol.PeerID {
	ids := make([]protocol.PeerID, 0, len(s.participants))
	for id := range s.participants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Participants returns the participants sorted by identifier.
func (s *Session) Participants() []*Participant {
	out := make([]*Participant, 0, len(s.participants))
	for _, id := range s.IDs() {
		out = append(out, s.participants[id])
	}
	return out
}

func (s *Session) Len() int {
	return len(s.participants)
}

// SetReady implements consensus.StateManager.
func (s *Session) SetReady(id protocol.PeerID, ready bool) bool {
	p, ok := s.participants[id]
	if !ok {
		return false
	}
	p.Ready = ready
	return true
}

// Readiness implements consensus.StateManager.
func (s *Session) Readiness() (ready, total int) {
	for _, p := range s.participants {
		if p.Ready {
			ready++
		}
	}
	return ready, len(s.participants)
}

// OccupiedBy returns the placed participant standing on t, if any.
func (s *Session) OccupiedBy(t grid.TileCoordinate) (*Participant, bool) {
	for _, p := range s.participants {
		if p.Placed && p.Position == t {
			return p, true
		}
	}
	return nil, false
}
