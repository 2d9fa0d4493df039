package pulse

import (
	"testing"

	"github.com/stagehand-run/stagehand/internal/capability"
	"github.com/stagehand-run/stagehand/internal/scheduler"
	"github.com/stagehand-run/stagehand/internal/stage"
	"github.com/stagehand-run/stagehand/internal/testutil/testlog"
)

// probeStage records the clock it sees each pass.
type probeStage struct {
	stage.Base
	ticks []uint64
}

func (p *probeStage) Enter(caps *capability.Registry, next stage.Walker) {
	if clock, ok := capability.Get[*Clock](caps); ok {
		p.ticks = append(p.ticks, clock.Tick)
	}
	next.Next(caps)
}

func TestClockAdvancesPerTick(t *testing.T) {
	testlog.Start(t)

	s := scheduler.New()
	if err := s.Add(New()); err != nil {
		t.Fatalf("add pulse: %v", err)
	}
	probe := &probeStage{}
	if err := s.Add(probe); err != nil {
		t.Fatalf("add probe: %v", err)
	}

	for i := 0; i < 3; i++ {
		s.Tick()
	}

	if len(probe.ticks) != 3 {
		t.Fatalf("probe saw the clock %d times, want 3", len(probe.ticks))
	}
	for i, tick := range probe.ticks {
		if tick != uint64(i+1) {
			t.Fatalf("pass %d saw tick %d, want %d", i, tick, i+1)
		}
	}
}

func TestLifetimeDetachesStage(t *testing.T) {
	testlog.Start(t)

	s := scheduler.New()
	if err := s.Add(New(WithLifetime(2, stage.Synchronous))); err != nil {
		t.Fatalf("add pulse: %v", err)
	}

	if done := s.Tick(); done {
		t.Fatalf("done after tick 1, lifetime is 2")
	}
	if done := s.Tick(); !done {
		t.Fatalf("pulse stage outlived its configured lifetime")
	}
	if s.Len() != 0 {
		t.Fatalf("pulse stage still attached")
	}
}
