// Package combat drives a duel from the moment it is accepted until it ends.
//
// A Controller owns the combat state of the local peer and moves it along a
// fixed phase graph:
//
//	NotInCombat -> Preparation -> NextTurn -> YourTurn | OthersTurn -> NextTurn
//	NextTurn | YourTurn | OthersTurn -> End -> NotInCombat
//
// Any other transition is rejected with ErrIllegalTransition. Everything a
// phase creates (message handlers, countdowns, placement spots, movement
// tiles, highlights) lives in a phase-scoped value that is dropped when the
// phase is left, so nothing leaks into the next phase.
//
// Preparation places the local participant on one of a few random ground
// tiles and collects readiness. Only the combat owner decides when
// preparation ends, see package consensus.
//
// The controller is driven by a single goroutine: Update once per frame and
// the message handlers registered on the protocol.Bus.
package combat
