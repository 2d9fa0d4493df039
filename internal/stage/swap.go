package stage

import "fmt"

// SwapStrategy determines how many ticks an attach or detach transition may
// span. Immutable per attach/detach event.
type SwapStrategy int

const (
	// Synchronous polls the transition to completion within the current
	// call. This can block the scheduler; it is the default for stages added
	// directly by the host and for resolver-created dependencies.
	Synchronous SwapStrategy = iota
	// Deferred polls the transition once per tick, leaving the stage parked
	// across ticks until it reports ready.
	Deferred
)

func (s SwapStrategy) String() string {
	switch s {
	case Synchronous:
		return "synchronous"
	case Deferred:
		return "deferred"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// RunAttach drives one attach-poll round for st under this strategy.
// Returns true once the attach has completed.
func (s SwapStrategy) RunAttach(st Stage) bool {
	if s == Synchronous {
		for !st.PollAttach() {
		}
		return true
	}
	return st.PollAttach()
}

// RunDetach drives one detach-poll round for st under this strategy.
// Returns true once the detach has completed.
func (s SwapStrategy) RunDetach(st Stage) bool {
	if s == Synchronous {
		for !st.PollDetach() {
		}
		return true
	}
	return st.PollDetach()
}
