package stage

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrStageNotFound reports an unmet required dependency. It is fatal to
	// the enclosing add: the attaching stage is left unregistered.
	ErrStageNotFound = errors.New("stage: required dependency not found")

	// ErrDependencyCycle reports an or-create chain that loops back onto a
	// stage type whose attach is still in progress.
	ErrDependencyCycle = errors.New("stage: dependency cycle detected")
)

// Resolver is the attach-time dependency surface. It is implemented by the
// scheduler and valid only for the duration of one Attach call; stages must
// not retain it.
type Resolver interface {
	// FindByType returns the attached stage whose dynamic type is typ.
	FindByType(typ reflect.Type) (Stage, bool)

	// Create registers a new stage of type typ built by supplier, attaching
	// it synchronously (dependencies recursing through the same pipeline)
	// and placing it earlier in traversal order than the stage currently
	// attaching. Returns ErrDependencyCycle if typ is already mid-attach.
	Create(typ reflect.Type, supplier func() Stage) (Stage, error)
}

// Required declares a dependency on an already-attached stage of type T.
// Absence is fatal to the attach in progress.
func Required[T Stage](deps Resolver) (T, error) {
	var zero T
	typ := reflect.TypeOf((*T)(nil)).Elem()
	st, ok := deps.FindByType(typ)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrStageNotFound, typ)
	}
	return st.(T), nil
}

// Optional declares a dependency on a stage of type T, reporting absence
// instead of failing.
func Optional[T Stage](deps Resolver) (T, bool) {
	var zero T
	st, ok := deps.FindByType(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return zero, false
	}
	return st.(T), true
}

// OrCreate declares a dependency on a stage of type T, constructing and
// attaching one via supplier if absent. The created stage is fully attached,
// including its own recursive dependencies, before OrCreate returns, and sits
// earlier in traversal order than the requester so its offered capabilities
// are visible to the requester in the same pass.
func OrCreate[T Stage](deps Resolver, supplier func() T) (T, error) {
	var zero T
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if st, ok := deps.FindByType(typ); ok {
		return st.(T), nil
	}
	st, err := deps.Create(typ, func() Stage { return supplier() })
	if err != nil {
		return zero, err
	}
	return st.(T), nil
}
