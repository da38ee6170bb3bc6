// Package protocol defines the messages peers exchange and how they travel.
//
// # Messages
//
// Every message is a Go struct implementing Message. The set is closed: the
// Kind of a message is its tag in the wire envelope, and receiving a tag this
// package does not know is a protocol error.
//
// # Encoding
//
// Encode wraps the protobuf encoding of the message body in an envelope that
// carries the kind. Decode reverses it and validates the body. Errors are
// wrapped around ErrUnknownKind or ErrMalformed; callers log and drop such
// packets.
//
// # Dispatch
//
// A Bus routes decoded messages to the handlers registered for their kind.
// Handlers that belong to a single game phase are registered through a Scope
// and removed together when the phase ends.
//
// # Transport types
//
// PeerID, PeerChange and Packet are shared with the transports in the network
// and relay packages.
package protocol
