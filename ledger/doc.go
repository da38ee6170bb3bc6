// Package ledger keeps a tamper-evident journal of what happened during a
// combat.
//
// # Core Components
//
// Journal: An append-only log of combat events with hash chaining.
//
// Block: A single event together with its position in the chain and the
// hash linking it to the previous block.
//
// # Events
//
// The combat controller records every phase transition and the readiness
// consensus records the decision that ended preparation. Comparing the
// journals of two peers shows where their views of the combat diverged.
//
// # Security Properties
//
// The journal provides:
//   - Verifiability: Verify re-checks the whole chain at any time
//   - Tamper detection: Any modification breaks the hash chain
package ledger
