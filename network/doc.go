// Package network moves game packets between peers.
//
// # Core Components
//
// Peer: Full-mesh transport over HTTP(S). Every peer serves an endpoint and
// knows the address of every other peer; packets are POSTed to them.
//
// RelayClient: Transport through a relay server, for players that cannot
// reach each other directly. The relay assigns the identifier.
//
// Switchboard: In-process transport connecting endpoints in the same
// program, used by tests and local play.
//
// # Delivery
//
// All transports are non-blocking towards the caller: Send queues the packet
// and returns. Packets towards one peer are delivered in the order they were
// sent. Received packets and connection changes are buffered until the
// owner drains them with Receive and PollPeerChanges, once per frame.
//
// # Timeout Support
//
// A packet the Peer cannot deliver within its timeout is dropped and the
// destination is reported as disconnected. The Peer keeps trying to reach it
// again and reports it as connected when it answers.
package network
