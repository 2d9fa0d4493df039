package capability

import (
	"testing"

	"github.com/stagehand-run/stagehand/internal/testutil/testlog"
)

type clockCap struct {
	tick uint64
}

type inputCap struct {
	keys []string
}

func TestOfferAndGet(t *testing.T) {
	testlog.Start(t)

	reg := NewRegistry()
	if _, ok := Get[*clockCap](reg); ok {
		t.Fatalf("lookup on empty registry succeeded")
	}

	reg.Offer(&clockCap{tick: 3})
	got, ok := Get[*clockCap](reg)
	if !ok {
		t.Fatalf("expected clock capability")
	}
	if got.tick != 3 {
		t.Fatalf("tick = %d, want 3", got.tick)
	}

	// Offered values are borrowed, not copied: mutation through the lookup
	// is visible to later lookups.
	got.tick = 9
	again, _ := Get[*clockCap](reg)
	if again.tick != 9 {
		t.Fatalf("mutation not visible, tick = %d", again.tick)
	}

	if _, ok := Get[*inputCap](reg); ok {
		t.Fatalf("lookup of unoffered kind succeeded")
	}
}

func TestViewLookup(t *testing.T) {
	testlog.Start(t)

	reg := NewRegistry()
	reg.Offer(&inputCap{keys: []string{"esc"}})

	v := reg.View()
	got, ok := Get[*inputCap](v)
	if !ok {
		t.Fatalf("expected input capability through view")
	}
	if len(got.keys) != 1 || got.keys[0] != "esc" {
		t.Fatalf("unexpected capability value: %+v", got)
	}
}

func TestRewindRemovesScopedOffers(t *testing.T) {
	testlog.Start(t)

	reg := NewRegistry()
	reg.Offer(&clockCap{tick: 1})

	mark := reg.Mark()
	reg.Offer(&inputCap{})
	if _, ok := Get[*inputCap](reg); !ok {
		t.Fatalf("expected input capability inside scope")
	}

	reg.Rewind(mark)
	if _, ok := Get[*inputCap](reg); ok {
		t.Fatalf("input capability survived rewind")
	}
	if _, ok := Get[*clockCap](reg); !ok {
		t.Fatalf("outer-scope capability lost on rewind")
	}
}

func TestRewindRestoresShadowedOffer(t *testing.T) {
	testlog.Start(t)

	reg := NewRegistry()
	outer := &clockCap{tick: 1}
	reg.Offer(outer)

	mark := reg.Mark()
	reg.Offer(&clockCap{tick: 2})

	got, _ := Get[*clockCap](reg)
	if got.tick != 2 {
		t.Fatalf("expected shadowing offer to win, tick = %d", got.tick)
	}

	reg.Rewind(mark)
	got, ok := Get[*clockCap](reg)
	if !ok {
		t.Fatalf("shadowed offer not restored")
	}
	if got != outer {
		t.Fatalf("restored capability is not the original instance")
	}
}

func TestNestedScopesUnwindInReverseOrder(t *testing.T) {
	testlog.Start(t)

	reg := NewRegistry()

	m1 := reg.Mark()
	reg.Offer(&clockCap{tick: 1})
	m2 := reg.Mark()
	reg.Offer(&clockCap{tick: 2})
	reg.Offer(&inputCap{})

	reg.Rewind(m2)
	got, _ := Get[*clockCap](reg)
	if got.tick != 1 {
		t.Fatalf("inner rewind restored tick = %d, want 1", got.tick)
	}
	if _, ok := Get[*inputCap](reg); ok {
		t.Fatalf("inner-scope input capability survived rewind")
	}

	reg.Rewind(m1)
	if _, ok := Get[*clockCap](reg); ok {
		t.Fatalf("capability survived outer rewind")
	}
}

func TestOfferNilPanics(t *testing.T) {
	testlog.Start(t)

	defer func() {
		if recover() == nil {
			t.Fatalf("offer of nil did not panic")
		}
	}()
	NewRegistry().Offer(nil)
}
