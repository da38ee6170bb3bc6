package network

import (
	"fmt"
	"sync"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

// Switchboard connects in-process endpoints. Every endpoint is connected to
// every other one.
type Switchboard struct {
	mu        sync.Mutex
	endpoints map[protocol.PeerID]*Endpoint
}

func NewSwitchboard() *Switchboard {
	return &Switchboard{endpoints: map[protocol.PeerID]*Endpoint{}}
}

// Join plugs a new endpoint in. The endpoints already present and the new
// one see each other as connected.
func (s *Switchboard) Join(id protocol.PeerID) (*Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.endpoints[id]; ok {
		return nil, fmt.Errorf("peer %s already joined", id)
	}
	e := &Endpoint{id: id, board: s, box: newMailbox()}
	for other, oe := range s.endpoints {
		oe.box.markConnected(id)
		e.box.markConnected(other)
	}
	s.endpoints[id] = e
	return e, nil
}

func (s *Switchboard) leave(id protocol.PeerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.endpoints[id]; !ok {
		return
	}
	delete(s.endpoints, id)
	for _, oe := range s.endpoints {
		oe.box.markDisconnected(id)
	}
}

// Endpoint is one peer on a Switchboard.
type Endpoint struct {
	id    protocol.PeerID
	board *Switchboard
	box   *mailbox
}

func (e *Endpoint) Self() (protocol.PeerID, bool) {
	return e.id, true
}

func (e *Endpoint) Peers() []protocol.PeerID {
	return e.box.peers()
}

func (e *Endpoint) Send(to protocol.PeerID, data []byte) error {
	e.board.mu.Lock()
	defer e.board.mu.Unlock()
	if _, ok := e.board.endpoints[e.id]; !ok {
		return ErrClosed
	}
	target, ok := e.board.endpoints[to]
	if !ok || to == e.id {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, to)
	}
	target.box.deliver(e.id, append([]byte(nil), data...))
	return nil
}

func (e *Endpoint) Receive() []protocol.Packet {
	return e.box.packets()
}

func (e *Endpoint) PollPeerChanges() []protocol.PeerChange {
	return e.box.peerChanges()
}

// Close unplugs the endpoint; the others see it disconnect.
func (e *Endpoint) Close() error {
	e.board.leave(e.id)
	return nil
}
