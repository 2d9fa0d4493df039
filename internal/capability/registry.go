package capability

import (
	"fmt"
	"reflect"
)

// Source is the lookup surface shared by Registry and View.
type Source interface {
	// Lookup returns the capability registered under the given kind.
	Lookup(kind reflect.Type) (any, bool)
}

// Get looks up a capability by its static type.
func Get[T any](src Source) (T, bool) {
	var zero T
	v, ok := src.Lookup(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// undo records the entry displaced by one Offer so Rewind can restore it.
type undo struct {
	kind reflect.Type
	prev any
	had  bool
}

// Registry maps capability kinds to the value most recently offered for that
// kind. Built fresh each tick; never shared across ticks.
type Registry struct {
	entries map[reflect.Type]any
	log     []undo
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[reflect.Type]any),
	}
}

// Offer registers cap under its dynamic type for every stage visited from
// this point onward in the current forward pass. A later offer of the same
// kind shadows the earlier one until the pass unwinds past it.
func (r *Registry) Offer(cap any) {
	if cap == nil {
		panic("capability: offer of nil capability")
	}
	kind := reflect.TypeOf(cap)
	prev, had := r.entries[kind]
	r.log = append(r.log, undo{kind: kind, prev: prev, had: had})
	r.entries[kind] = cap
}

// Lookup returns the capability currently visible under kind.
func (r *Registry) Lookup(kind reflect.Type) (any, bool) {
	v, ok := r.entries[kind]
	return v, ok
}

// Mark records the current scope boundary. The scheduler calls this before a
// stage's enter callback and hands the result to Rewind once the stage has
// been left.
func (r *Registry) Mark() int {
	return len(r.log)
}

// Rewind removes every offer made since the matching Mark, restoring any
// entries they shadowed, in strict reverse contribution order.
func (r *Registry) Rewind(mark int) {
	if mark < 0 || mark > len(r.log) {
		panic(fmt.Sprintf("capability: rewind to invalid mark %d (log size %d)", mark, len(r.log)))
	}
	for i := len(r.log) - 1; i >= mark; i-- {
		u := r.log[i]
		if u.had {
			r.entries[u.kind] = u.prev
		} else {
			delete(r.entries, u.kind)
		}
	}
	r.log = r.log[:mark]
}

// View returns the read-only facade handed to leave callbacks.
func (r *Registry) View() *View {
	return &View{r: r}
}

// View exposes lookups over a Registry without the offer or scope surface.
type View struct {
	r *Registry
}

// Lookup returns the capability currently visible under kind.
func (v *View) Lookup(kind reflect.Type) (any, bool) {
	return v.r.Lookup(kind)
}
