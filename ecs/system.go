package ecs

import (
	"iter"
	"reflect"
	"slices"
)

// System keeps a live list of the entities in a pool that hold every one of
// its compatible component types. The list is rebuilt from the pool on each
// pool event.
//
// User-defined systems embed *System and shadow OnUpdate (and OnDraw for
// DrawableSystem) to add per-frame behavior.
type System struct {
	pool     *EntityPool
	types    []reflect.Type
	entities []*Entity
	handles  []ListenerHandle
	onCreate func(*System)
}

// SystemOption configures a System at construction.
type SystemOption func(*System)

// WithCreateHook registers fn to run once the system has subscribed to its
// pool.
func WithCreateHook(fn func(*System)) SystemOption {
	return func(s *System) {
		s.onCreate = fn
	}
}

// NewSystem creates a system bound to pool that matches entities holding
// all of types. The same handler is subscribed to all four pool events.
func NewSystem(pool *EntityPool, types []reflect.Type, opts ...SystemOption) (*System, error) {
	if pool == nil {
		return nil, &Error{Op: "NewSystem", Err: ErrNullPool}
	}
	for _, t := range types {
		if !pool.registry.IsComponent(t) {
			return nil, &Error{Op: "NewSystem", Pool: pool, Type: t, Err: ErrInvalidComponentType}
		}
	}

	s := &System{
		pool:  pool,
		types: slices.Clone(types),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rescan()
	for kind := range eventKindCount {
		s.handles = append(s.handles, pool.observers.Subscribe(kind, s.handleEvent))
	}

	if s.onCreate != nil {
		s.onCreate(s)
	}
	return s, nil
}

// Pool returns the observed pool.
func (s *System) Pool() *EntityPool {
	return s.pool
}

// CompatibleTypes returns the required component types.
func (s *System) CompatibleTypes() []reflect.Type {
	return slices.Clone(s.types)
}

// AddCompatibleType adds t to the required types and rebuilds the entity list.
func (s *System) AddCompatibleType(t reflect.Type) error {
	if !s.pool.registry.IsComponent(t) {
		return &Error{Op: "AddCompatibleType", Pool: s.pool, Type: t, Err: ErrInvalidComponentType}
	}
	s.types = append(s.types, t)
	s.rescan()
	return nil
}

// Matches reports whether e holds every compatible type.
func (s *System) Matches(e *Entity) bool {
	return e.HasComponents(s.types...)
}

// Entities returns the compatible entities in pool order. The slice is
// replaced, never modified, when the pool changes; callers must not modify it.
func (s *System) Entities() []*Entity {
	return s.entities
}

// Iter iterates over the compatible entities as they were when Iter was called.
func (s *System) Iter() iter.Seq[*Entity] {
	return slices.Values(s.entities)
}

// Len returns the number of compatible entities.
func (s *System) Len() int {
	return len(s.entities)
}

// OnUpdate is the per-frame hook. The default does nothing.
func (s *System) OnUpdate(dt float64) {}

// Detach unsubscribes the system from its pool. The entity list is frozen
// at its current contents.
func (s *System) Detach() {
	for _, handle := range s.handles {
		s.pool.observers.Unsubscribe(handle)
	}
	s.handles = nil
}

func (s *System) handleEvent(ev Event) error {
	if ev.Pool != nil {
		s.pool = ev.Pool
	}
	s.rescan()
	return nil
}

func (s *System) rescan() {
	entities := make([]*Entity, 0, len(s.entities))
	for _, e := range s.pool.entities {
		if s.Matches(e) {
			entities = append(entities, e)
		}
	}
	s.entities = entities
}

// DrawableSystem is a System with an additional draw hook.
type DrawableSystem struct {
	*System
}

// NewDrawableSystem creates a DrawableSystem; see NewSystem.
func NewDrawableSystem(pool *EntityPool, types []reflect.Type, opts ...SystemOption) (*DrawableSystem, error) {
	s, err := NewSystem(pool, types, opts...)
	if err != nil {
		return nil, err
	}
	return &DrawableSystem{System: s}, nil
}

// OnDraw is the per-frame draw hook. The default does nothing.
func (d *DrawableSystem) OnDraw(dt float64) {}
