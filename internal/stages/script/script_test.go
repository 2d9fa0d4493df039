package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stagehand-run/stagehand/internal/scheduler"
	"github.com/stagehand-run/stagehand/internal/testutil/testlog"
)

const countdownScript = `
package tick

func OnTick(n uint64) bool {
	return n < 3
}
`

func TestScriptHookControlsDetachment(t *testing.T) {
	testlog.Start(t)

	s := scheduler.New()
	st := NewFromSource(countdownScript)
	if err := s.Add(st); err != nil {
		t.Fatalf("add script: %v", err)
	}

	ticks := 0
	for !s.Tick() {
		ticks++
		if ticks > 10 {
			t.Fatalf("script stage never retired")
		}
	}

	// OnTick returns false on the third call; that same tick's sweep
	// removes the stage.
	if st.ticks != 3 {
		t.Fatalf("hook ran %d times, want 3", st.ticks)
	}
}

func TestScriptLoadsFromFile(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "tick.go")
	if err := os.WriteFile(path, []byte(countdownScript), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	s := scheduler.New()
	if err := s.Add(New(path)); err != nil {
		t.Fatalf("add script: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("script stage not attached")
	}
}

func TestScriptAttachErrors(t *testing.T) {
	testlog.Start(t)

	cases := []struct {
		name   string
		source string
	}{
		{"unparsable source", `package tick; func OnTick(`},
		{"missing hook", `package tick; func Other() {}`},
		{"wrong hook type", `package tick; func OnTick(s string) {}`},
	}

	for _, tc := range cases {
		s := scheduler.New()
		if err := s.Add(NewFromSource(tc.source)); err == nil {
			t.Fatalf("%s: expected attach error", tc.name)
		}
		if s.Len() != 0 {
			t.Fatalf("%s: failed attach left stages registered", tc.name)
		}
	}
}

func TestScriptMissingFileFailsAttach(t *testing.T) {
	testlog.Start(t)

	s := scheduler.New()
	if err := s.Add(New(filepath.Join(t.TempDir(), "absent.go"))); err == nil {
		t.Fatalf("expected attach error for missing script file")
	}
}
