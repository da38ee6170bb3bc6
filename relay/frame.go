// Package relay forwards packets between players that cannot reach each
// other directly. Every player keeps one websocket to the relay, which
// assigns it an identifier and tells it who else is connected.
package relay

import "github.com/luca-patrignani/tactical-duel/protocol"

type FrameType string

const (
	// FrameWelcome is the first frame a client receives: Peer is its own
	// identifier and Peers the clients already connected.
	FrameWelcome    FrameType = "welcome"
	FramePeerJoined FrameType = "peer_joined"
	FramePeerLeft   FrameType = "peer_left"
	// FrameData carries a packet. From a client Peer is the recipient, from
	// the relay it is the sender.
	FrameData FrameType = "data"
)

// Frame is the unit exchanged over the websocket, encoded as JSON.
type Frame struct {
	Type  FrameType         `json:"type"`
	Peer  protocol.PeerID   `json:"peer,omitempty"`
	Peers []protocol.PeerID `json:"peers,omitempty"`
	Data  []byte            `json:"data,omitempty"`
}
