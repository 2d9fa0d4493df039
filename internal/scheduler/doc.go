// Package scheduler owns the stage lifecycle runtime.
//
// Ownership boundary:
// - the stage table (owning store of attached stages, keyed by id)
// - the traversal chain and the per-tick forward/unwind passes
// - attach/detach polling and the pending/detaching holding areas
// - attach-time dependency resolution on behalf of stages
//
// The model is single-threaded and cooperative: one tick runs to completion
// on the calling thread, no stage runs concurrently with another, and the
// table is mutated only by the scheduler. Hosts add initial stages, then call
// Tick repeatedly until it reports completion.
package scheduler
