package scheduler

import (
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"

	"github.com/stagehand-run/stagehand/internal/capability"
	"github.com/stagehand-run/stagehand/internal/chain"
	"github.com/stagehand-run/stagehand/internal/logging"
	"github.com/stagehand-run/stagehand/internal/observability"
	"github.com/stagehand-run/stagehand/internal/stage"
)

// swapEntry is one stage parked in a holding area, tagged with the strategy
// governing its transition.
type swapEntry struct {
	strategy stage.SwapStrategy
	st       stage.Stage
}

// Scheduler drives the stage lifecycle: attach, traversal, detach decisions,
// and deferred polling. It exclusively owns the stage table and the chain.
type Scheduler struct {
	table     map[stage.ID]stage.Stage
	chain     *chain.Chain
	detaching []swapEntry
	pending   []swapEntry
	nextID    stage.ID

	// attaching tracks stage types whose Attach call is on the stack,
	// so cyclic or-create chains fail fast instead of recursing forever.
	attaching map[reflect.Type]bool

	log zerolog.Logger
}

func New() *Scheduler {
	return &Scheduler{
		table:     make(map[stage.ID]stage.Stage),
		chain:     chain.New(),
		attaching: make(map[reflect.Type]bool),
		log:       logging.Component("scheduler"),
	}
}

// Len reports the number of attached stages.
func (s *Scheduler) Len() int {
	return len(s.table)
}

// Attached returns the attached stage ids in traversal order.
func (s *Scheduler) Attached() []stage.ID {
	ids := make([]stage.ID, 0, s.chain.Len())
	for w := s.chain.Forward(); ; {
		id, ok := w.Next()
		if !ok {
			break
		}
		ids = append(ids, id)
	}
	return ids
}

// Lookup returns the attached stage with the given id.
func (s *Scheduler) Lookup(id stage.ID) (stage.Stage, bool) {
	st, ok := s.table[id]
	return st, ok
}

// Add attaches st synchronously: the attach callback and its poll loop run
// to completion before Add returns, and st is in the table and at the tail
// of the chain afterwards.
func (s *Scheduler) Add(st stage.Stage) error {
	return s.AddWith(st, stage.Synchronous)
}

// AddWith attaches st under the given swap strategy. The attach callback
// runs exactly once, synchronously, before any polling; dependency
// resolution happens only inside it. With Deferred, st is parked in the
// pending area and polled once per tick, excluded from traversal until its
// attach completes.
//
// Errors (an unmet required dependency, a dependency cycle) are fatal to
// this call and leave st unregistered.
func (s *Scheduler) AddWith(st stage.Stage, strategy stage.SwapStrategy) error {
	typ := reflect.TypeOf(st)
	if s.attaching[typ] {
		return fmt.Errorf("%w: %s", stage.ErrDependencyCycle, typ)
	}
	s.attaching[typ] = true
	defer delete(s.attaching, typ)

	if err := st.Attach(&resolver{s: s}); err != nil {
		return fmt.Errorf("attach %s: %w", typ, err)
	}

	if strategy == stage.Synchronous {
		strategy.RunAttach(st)
		s.insert(st)
		observability.RecordSwap("attach", strategy.String())
		return nil
	}

	s.pending = append(s.pending, swapEntry{strategy: strategy, st: st})
	s.log.Debug().Str("stage", typ.String()).Msg("stage_pending")
	return nil
}

// insert allocates an id for st and links it at the tail of the chain.
func (s *Scheduler) insert(st stage.Stage) stage.ID {
	id := s.nextID
	s.nextID++
	s.table[id] = st
	s.chain.InsertLast(id)
	s.log.Debug().
		Uint64("id", uint64(id)).
		Str("stage", reflect.TypeOf(st).String()).
		Msg("stage_attached")
	return id
}

// Tick runs one full scheduler cycle: the forward/unwind traversal over a
// fresh capability registry, the detach-decision sweep, detach polling, and
// attach polling. Returns true once the table and the pending area are both
// empty, signaling the host to stop.
func (s *Scheduler) Tick() bool {
	start := time.Now()

	// 1-3. Traversal over a fresh registry. The id snapshot is captured up
	// front; the cursor resolves through the table so stages are revisited
	// by id, never by held reference.
	reg := capability.NewRegistry()
	ids := s.Attached()
	cur := &cursor{s: s, ids: ids}
	cur.Next(reg)

	// 4. Detach decisions against the settled snapshot. No removal happens
	// until every predicate has been read.
	type decision struct {
		id       stage.ID
		strategy stage.SwapStrategy
	}
	var decided []decision
	for _, id := range ids {
		if strategy, ok := s.table[id].ShouldDetach(); ok {
			decided = append(decided, decision{id: id, strategy: strategy})
		}
	}

	// 5. Removal: out of the table and chain, detach callback, then into
	// the detaching area.
	for _, d := range decided {
		st := s.table[d.id]
		delete(s.table, d.id)
		s.chain.Remove(d.id)
		st.Detach()
		s.detaching = append(s.detaching, swapEntry{strategy: d.strategy, st: st})
		s.log.Debug().
			Uint64("id", uint64(d.id)).
			Str("strategy", d.strategy.String()).
			Msg("stage_detaching")
	}

	// 6-7. Poll the holding areas.
	s.detachPoll()
	s.attachPoll()

	done := len(s.table) == 0 && len(s.pending) == 0
	observability.RecordTick(time.Since(start), len(s.table), len(s.pending), len(s.detaching))
	return done
}

// detachPoll polls every detaching entry once (Deferred) or to completion
// (Synchronous); completed entries are dropped.
func (s *Scheduler) detachPoll() {
	i := 0
	for i < len(s.detaching) {
		entry := s.detaching[i]
		if entry.strategy.RunDetach(entry.st) {
			s.detaching = append(s.detaching[:i], s.detaching[i+1:]...)
			observability.RecordSwap("detach", entry.strategy.String())
			continue
		}
		i++
	}
}

// attachPoll mirrors detachPoll for the pending area; completed entries are
// inserted into the table and appended to the chain tail.
func (s *Scheduler) attachPoll() {
	i := 0
	for i < len(s.pending) {
		entry := s.pending[i]
		if entry.strategy.RunAttach(entry.st) {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			s.insert(entry.st)
			observability.RecordSwap("attach", entry.strategy.String())
			continue
		}
		i++
	}
}

// cursor is the explicit traversal walker handed to enter callbacks. Each
// Next visits one stage: registry scope mark, enter (which recurses through
// the cursor), leave on the way back out, scope rewind. A stage that never
// calls Next truncates the remainder of the pass.
type cursor struct {
	s   *Scheduler
	ids []stage.ID
	pos int
}

func (c *cursor) Next(caps *capability.Registry) {
	if c.pos >= len(c.ids) {
		return
	}
	id := c.ids[c.pos]
	c.pos++

	st, ok := c.s.table[id]
	if !ok {
		// The table is not mutated mid-traversal; a miss means the chain
		// and table have diverged.
		panic(fmt.Sprintf("scheduler: traversal reached unknown stage %d", id))
	}

	mark := caps.Mark()
	st.Enter(caps, c)
	st.Leave(caps.View())
	caps.Rewind(mark)
}
