// Package capability owns the per-tick capability registry.
//
// Ownership boundary:
// - type-keyed capability publication during a forward pass
// - prefix-scoped visibility (offers unwind in reverse contribution order)
// - shadow/restore when a later stage offers the same kind
//
// The registry does not own capabilities. It holds values contributed by
// stages below the current traversal point, valid only until the traversal
// unwinds past the offering stage. Scope boundaries are driven by the
// scheduler through Mark/Rewind; stages never unregister explicitly.
package capability
