package network

import (
	"errors"
	"sort"
	"sync"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

var (
	ErrUnknownPeer = errors.New("unknown peer")
	ErrClosed      = errors.New("transport closed")
	ErrBacklogFull = errors.New("send backlog full")
)

// mailbox buffers what arrives from the network until the frame loop
// drains it.
type mailbox struct {
	mu        sync.Mutex
	inbox     []protocol.Packet
	changes   []protocol.PeerChange
	connected map[protocol.PeerID]bool
}

func newMailbox() *mailbox {
	return &mailbox{connected: map[protocol.PeerID]bool{}}
}

func (m *mailbox) deliver(from protocol.PeerID, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = append(m.inbox, protocol.Packet{From: from, Data: data})
}

// markConnected records id as connected and reports whether it was not.
func (m *mailbox) markConnected(id protocol.PeerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected[id] {
		return false
	}
	m.connected[id] = true
	m.changes = append(m.changes, protocol.PeerChange{Peer: id, State: protocol.Connected})
	return true
}

// markDisconnected records id as gone and reports whether it was connected.
func (m *mailbox) markDisconnected(id protocol.PeerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected[id] {
		return false
	}
	delete(m.connected, id)
	m.changes = append(m.changes, protocol.PeerChange{Peer: id, State: protocol.Disconnected})
	return true
}

func (m *mailbox) isConnected(id protocol.PeerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected[id]
}

func (m *mailbox) packets() []protocol.Packet {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.inbox
	m.inbox = nil
	return out
}

func (m *mailbox) peerChanges() []protocol.PeerChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.changes
	m.changes = nil
	return out
}

func (m *mailbox) peers() []protocol.PeerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]protocol.PeerID, 0, len(m.connected))
	for id := range m.connected {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
