package protocol

// PeerID is the opaque identifier a transport assigns to a peer.
type PeerID string

// PeerState is the connection state reported by a transport.
type PeerState int

const (
	Connected PeerState = iota
	Disconnected
)

func (s PeerState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// PeerChange notifies that a peer joined or left the session.
type PeerChange struct {
	Peer  PeerID
	State PeerState
}

// Packet is a raw payload received from a peer.
type Packet struct {
	From PeerID
	Data []byte
}
