// Package script bundles the scripting-sandbox stage: a Go snippet is
// interpreted at attach time and its exported hook decides, tick by tick,
// whether the stage stays on the chain.
package script

import (
	"fmt"
	"os"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/stagehand-run/stagehand/internal/capability"
	"github.com/stagehand-run/stagehand/internal/logging"
	"github.com/stagehand-run/stagehand/internal/stage"
)

// hookSymbol is the exported function a script must declare:
//
//	package tick
//
//	func OnTick(n uint64) bool { ... }
//
// Returning false retires the stage (synchronous detach).
const hookSymbol = "tick.OnTick"

// Stage interprets one script and runs its hook on every forward pass.
type Stage struct {
	stage.Base

	path   string
	source string

	onTick func(uint64) bool
	ticks  uint64
	done   bool
}

// New builds a stage that loads its script from path at attach time.
func New(path string) *Stage {
	return &Stage{path: path}
}

// NewFromSource builds a stage around an in-memory script.
func NewFromSource(source string) *Stage {
	return &Stage{source: source}
}

func (s *Stage) Attach(stage.Resolver) error {
	src := s.source
	if src == "" {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return fmt.Errorf("script load (%s): %w", s.path, err)
		}
		src = string(data)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("script stdlib: %w", err)
	}
	if _, err := i.Eval(src); err != nil {
		return fmt.Errorf("script eval: %w", err)
	}

	v, err := i.Eval(hookSymbol)
	if err != nil {
		return fmt.Errorf("script hook %s: %w", hookSymbol, err)
	}
	onTick, ok := v.Interface().(func(uint64) bool)
	if !ok {
		return fmt.Errorf("script hook %s has type %T, want func(uint64) bool", hookSymbol, v.Interface())
	}

	s.onTick = onTick
	lg := logging.Component("script")
	lg.Debug().Str("path", s.path).Msg("script_attached")
	return nil
}

func (s *Stage) Enter(caps *capability.Registry, next stage.Walker) {
	s.ticks++
	if !s.onTick(s.ticks) {
		s.done = true
	}
	next.Next(caps)
}

func (s *Stage) ShouldDetach() (stage.SwapStrategy, bool) {
	return stage.Synchronous, s.done
}
