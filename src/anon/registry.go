package anon

import (
	"fmt"
	"sort"
	"sync"
)

// HandlerFactory builds the handler of one column type for one run.
type HandlerFactory func(deps HandlerDeps) ColumnHandler

type registration struct {
	factory HandlerFactory
	// stateless handlers never touch the identity generator, so their cells
	// can be processed in any order and in parallel
	stateless bool
}

// Registry maps column types to handler factories. New types can be added
// without touching this package:
//
//	reg := anon.DefaultRegistry()
//	err := reg.RegisterStateless("employee_id", NewEmployeeIdHandler)
type Registry struct {
	mu            sync.RWMutex
	registrations map[ColumnType]registration
}

func NewRegistry() *Registry {
	return &Registry{registrations: make(map[ColumnType]registration)}
}

// DefaultRegistry returns a registry with the built-in column types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.mustRegister(FIRST_NAME, NewFirstNameHandler, false)
	r.mustRegister(LAST_NAME, NewLastNameHandler, false)
	r.mustRegister(FULL_NAME, NewFullNameHandler, false)
	r.mustRegister(FULL_NAME_INVERTED, NewFullNameInvertedHandler, false)
	r.mustRegister(EMAIL, NewEmailHandler, false)
	r.mustRegister(ID, NewIdHandler, true)
	r.mustRegister(MISC, NewMiscHandler, true)
	return r
}

// Register binds t to factory. Handlers built by factory may use the identity
// generator.
func (r *Registry) Register(t ColumnType, factory HandlerFactory) error {
	return r.register(t, factory, false)
}

// RegisterStateless binds t to a factory whose handlers are pure functions of
// the hasher and normalizers.
func (r *Registry) RegisterStateless(t ColumnType, factory HandlerFactory) error {
	return r.register(t, factory, true)
}

func (r *Registry) register(t ColumnType, factory HandlerFactory, stateless bool) error {
	if t == "" {
		return fmt.Errorf("register column type: empty type name")
	}
	if factory == nil {
		return fmt.Errorf("register column type %q: nil factory", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.registrations[t]; exists {
		return fmt.Errorf("register column type %q: already registered", t)
	}
	r.registrations[t] = registration{factory: factory, stateless: stateless}
	return nil
}

func (r *Registry) mustRegister(t ColumnType, factory HandlerFactory, stateless bool) {
	if err := r.register(t, factory, stateless); err != nil {
		panic(err)
	}
}

func (r *Registry) IsRegistered(t ColumnType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.registrations[t]
	return ok
}

func (r *Registry) IsStateless(t ColumnType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registrations[t].stateless
}

// Types returns the registered column types in sorted order.
func (r *Registry) Types() []ColumnType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]ColumnType, 0, len(r.registrations))
	for t := range r.registrations {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (r *Registry) build(t ColumnType, deps HandlerDeps) (ColumnHandler, error) {
	r.mu.RLock()
	reg, ok := r.registrations[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumnType, t)
	}
	return reg.factory(deps), nil
}
