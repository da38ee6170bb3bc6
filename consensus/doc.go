// Package consensus decides when a duel leaves its preparation phase.
//
// Every participant reports its readiness to every peer. Only one peer, the
// owner of the combat (the one that initiated the duel), is allowed to turn
// those reports into a decision; the others mirror the flags for display and
// wait for the owner's CombatStart broadcast.
//
// # Core Components
//
// Node: Evaluates readiness reports and the preparation deadline for a single
// peer and commits at most one decision per combat.
//
// StateManager: Interface over the participant readiness flags.
//
// Ledger: Interface for recording decisions in an append-only journal.
//
// NetworkLayer: Interface used to broadcast the start signal.
//
// # Decision Rule
//
// The owner commits as soon as one of these holds:
//  1. Every participant is ready
//  2. The preparation countdown expires
//
// Both triggers share one latch, so a decision is committed, broadcast and
// recorded exactly once even when both hold in the same frame.
package consensus
