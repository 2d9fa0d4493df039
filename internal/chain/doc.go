// Package chain owns the traversal chain.
//
// Ownership boundary:
// - the doubly-linked visitation order over attached stage ids
// - O(1) structural edits (insert first/last/before/after, remove)
// - single-use forward/backward walkers
//
// The chain orders stage ids; it never owns stages. Order is fully decoupled
// from the stage table's key-based storage. Structural misuse (removing an
// unlinked id, inserting against a missing anchor) panics: those operations
// exist only behind the scheduler boundary, and a miss means the table/chain
// invariant has already been violated.
package chain
