package stage

import (
	"github.com/stagehand-run/stagehand/internal/capability"
)

// ID identifies a stage for its attached lifetime. IDs are allocated
// monotonically by the scheduler and never reused within a run.
type ID uint64

// Walker is the traversal cursor handed to enter callbacks. Calling Next
// visits the next stage in chain order; a stage that never calls it truncates
// the remainder of the pass for that tick.
type Walker interface {
	Next(caps *capability.Registry)
}

// Stage is a unit of orchestrated, attachable/detachable behavior.
//
// Embed Base to pick up the default behavior for any callback a stage does
// not care about.
type Stage interface {
	// ShouldDetach reports whether the stage wants to leave the chain, and
	// with which swap strategy. Evaluated once per tick after traversal.
	ShouldDetach() (SwapStrategy, bool)

	// Attach runs exactly once, synchronously, when the stage is added.
	// The resolver is valid only for the duration of this call. An error is
	// fatal to the enclosing add and leaves the stage unregistered.
	Attach(deps Resolver) error

	// Detach runs exactly once when the stage is removed from the chain,
	// before detach polling begins.
	Detach()

	// PollAttach reports whether the stage is ready to be attached. It is
	// re-invoked according to the swap strategy until it returns true.
	PollAttach() bool

	// PollDetach reports whether the stage is ready to be dropped.
	PollDetach() bool

	// Enter is called on the forward pass. Capabilities offered to caps are
	// visible to every stage visited after this one until the pass unwinds
	// past it. Enter must call next.Next(caps) to continue the traversal.
	Enter(caps *capability.Registry, next Walker)

	// Leave is called on the unwind pass, in reverse visitation order.
	Leave(caps *capability.View)
}

// Base supplies the default stage behavior: never detach, no-op attach and
// detach, immediately-ready polls, an enter that continues traversal, and a
// no-op leave.
type Base struct{}

func (Base) ShouldDetach() (SwapStrategy, bool) { return Synchronous, false }

func (Base) Attach(Resolver) error { return nil }

func (Base) Detach() {}

func (Base) PollAttach() bool { return true }

func (Base) PollDetach() bool { return true }

func (Base) Enter(caps *capability.Registry, next Walker) {
	next.Next(caps)
}

func (Base) Leave(*capability.View) {}
