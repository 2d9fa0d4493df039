package scheduler

import (
	"fmt"
	"reflect"

	"github.com/stagehand-run/stagehand/internal/stage"
)

// resolver implements stage.Resolver on behalf of one Attach call. It is a
// scheduler-internal capability: it mutates the table and chain through the
// scheduler and is never handed to callers outside the attach pipeline.
type resolver struct {
	s *Scheduler
}

// FindByType returns the attached stage whose dynamic type is typ.
func (r *resolver) FindByType(typ reflect.Type) (stage.Stage, bool) {
	for _, st := range r.s.table {
		if reflect.TypeOf(st) == typ {
			return st, true
		}
	}
	return nil, false
}

// Create builds and attaches a dependency stage through the same add
// pipeline as host-added stages, with the Synchronous strategy. The new
// stage lands in the table and at the current chain tail before Create
// returns, which places it earlier in traversal order than the stage whose
// Attach call requested it.
func (r *resolver) Create(typ reflect.Type, supplier func() stage.Stage) (stage.Stage, error) {
	if r.s.attaching[typ] {
		return nil, fmt.Errorf("%w: %s", stage.ErrDependencyCycle, typ)
	}

	st := supplier()
	if got := reflect.TypeOf(st); got != typ {
		panic(fmt.Sprintf("scheduler: dependency supplier for %s built %s", typ, got))
	}

	if err := r.s.Add(st); err != nil {
		return nil, err
	}
	return st, nil
}
