// Package scoring holds the ball-by-ball scoring rules of a limited-overs
// match: ball validation, ledger tallies, per-player stat deltas, innings
// completion, result calculation and points table folding.
//
// Everything here is pure. Callers load the inning, its ledger and the
// playing XIs, call into this package, and persist the outcome inside one
// transaction.
package scoring
