// Package pulse bundles the timing stage: it offers a frame clock to every
// stage later in the pass and can retire itself after a configured lifetime.
package pulse

import (
	"time"

	"github.com/stagehand-run/stagehand/internal/capability"
	"github.com/stagehand-run/stagehand/internal/stage"
)

// Clock is the capability the pulse stage offers on every forward pass.
// Borrow it during a callback; do not retain it across ticks.
type Clock struct {
	// Tick counts forward passes since the stage attached, starting at 1.
	Tick uint64
	// Start is when the stage attached.
	Start time.Time
	// Now is the wall time captured at the top of the current pass.
	Now time.Time
}

// Stage drives the Clock capability.
type Stage struct {
	stage.Base

	clock Clock

	// lifetime detaches the stage after this many ticks; 0 means never.
	lifetime int
	strategy stage.SwapStrategy
}

// Option configures a pulse stage.
type Option func(*Stage)

// WithLifetime detaches the stage after n ticks using the given strategy.
func WithLifetime(n int, strategy stage.SwapStrategy) Option {
	return func(s *Stage) {
		s.lifetime = n
		s.strategy = strategy
	}
}

func New(opts ...Option) *Stage {
	s := &Stage{strategy: stage.Synchronous}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stage) Attach(stage.Resolver) error {
	s.clock.Start = time.Now()
	return nil
}

func (s *Stage) Enter(caps *capability.Registry, next stage.Walker) {
	s.clock.Tick++
	s.clock.Now = time.Now()
	caps.Offer(&s.clock)
	next.Next(caps)
}

func (s *Stage) ShouldDetach() (stage.SwapStrategy, bool) {
	if s.lifetime > 0 && s.clock.Tick >= uint64(s.lifetime) {
		return s.strategy, true
	}
	return s.strategy, false
}
