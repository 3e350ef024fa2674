package ecs

import (
	"iter"
	"log/slog"
	"reflect"
	"slices"

	"github.com/google/uuid"
)

// EntityPool owns a flat, ordered collection of entities. Root entities and
// children are registered side by side. The pool broadcasts entity lifecycle
// and component mutation events to its observers.
type EntityPool struct {
	id        string
	registry  *ComponentRegistry
	entities  []*Entity
	observers *Observers
	logger    *slog.Logger
}

// PoolOption configures an EntityPool.
type PoolOption func(*EntityPool)

// WithLogger sets the logger used for debug records about entity lifecycle.
// Pools log nothing by default.
func WithLogger(logger *slog.Logger) PoolOption {
	return func(p *EntityPool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewEntityPool creates a pool bound to the given component registry. An
// empty id is replaced by a random UUID; a nil registry by an empty one.
func NewEntityPool(id string, registry *ComponentRegistry, opts ...PoolOption) *EntityPool {
	if id == "" {
		id = uuid.NewString()
	}
	if registry == nil {
		registry = NewComponentRegistry()
	}

	p := &EntityPool{
		id:        id,
		registry:  registry,
		entities:  make([]*Entity, 0),
		observers: newObservers(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the pool's identifier.
func (p *EntityPool) ID() string {
	return p.id
}

// Registry returns the component registry the pool validates types against.
func (p *EntityPool) Registry() *ComponentRegistry {
	return p.registry
}

// Observers returns the pool-level observers.
func (p *EntityPool) Observers() *Observers {
	return p.observers
}

// CreateEntity creates and registers a new entity. An empty id is replaced
// by a random UUID. Ids are not checked for uniqueness.
func (p *EntityPool) CreateEntity(id string) (*Entity, error) {
	if id == "" {
		id = uuid.NewString()
	}

	e := newEntity(id, p)
	p.entities = append(p.entities, e)
	p.logger.Debug("ecs: entity created", "pool", p.id, "entity", id)

	if err := p.observers.emit(Event{Kind: EntityAdded, Pool: p, Entity: e}); err != nil {
		return e, err
	}
	return e, nil
}

// AddEntity registers an existing entity and makes p its owner. Ids are not
// checked for uniqueness. If e was built against another registry, its
// components are re-keyed; an unknown component type leaves e untouched.
// An entity still registered in another pool is rejected; use MoveTo.
func (p *EntityPool) AddEntity(e *Entity) error {
	if e == nil {
		return &Error{Op: "AddEntity", Pool: p, Err: ErrNilEntity}
	}
	if owner := e.pool; owner != nil && owner != p && owner.ContainsEntity(e) {
		return &Error{Op: "AddEntity", Pool: p, Entity: e, Err: ErrEntityRegistered}
	}
	return p.register(e)
}

func (p *EntityPool) register(e *Entity) error {
	if err := e.rekey(p, p.registry); err != nil {
		return err
	}

	e.pool = p
	p.entities = append(p.entities, e)
	p.logger.Debug("ecs: entity added", "pool", p.id, "entity", e.id)

	return p.observers.emit(Event{Kind: EntityAdded, Pool: p, Entity: e})
}

// AddEntities registers each entity in order, stopping at the first error.
func (p *EntityPool) AddEntities(entities ...*Entity) error {
	for _, e := range entities {
		if err := p.AddEntity(e); err != nil {
			return err
		}
	}
	return nil
}

// RemoveEntity unregisters the first entity equal to e. The entity keeps its
// owner reference.
func (p *EntityPool) RemoveEntity(e *Entity) error {
	idx := p.indexOf(e)
	if idx < 0 {
		return &Error{Op: "RemoveEntity", Pool: p, Entity: e, Err: ErrEntityNotFound}
	}

	removed := p.entities[idx]
	p.entities = slices.Delete(p.entities, idx, idx+1)
	p.logger.Debug("ecs: entity removed", "pool", p.id, "entity", removed.id)

	return p.observers.emit(Event{Kind: EntityRemoved, Pool: p, Entity: removed})
}

// RemoveEntities removes each entity in order. A failure leaves earlier
// removals in effect.
func (p *EntityPool) RemoveEntities(entities ...*Entity) error {
	for _, e := range entities {
		if err := p.RemoveEntity(e); err != nil {
			return err
		}
	}
	return nil
}

// DoesEntityExist reports whether an entity with the given id is
// registered. The empty id never exists.
func (p *EntityPool) DoesEntityExist(id string) bool {
	if id == "" {
		return false
	}
	return p.GetEntity(id) != nil
}

// ContainsEntity reports whether an entity equal to e is registered.
func (p *EntityPool) ContainsEntity(e *Entity) bool {
	return p.indexOf(e) >= 0
}

// GetEntity returns the first registered entity with the given id, or nil.
func (p *EntityPool) GetEntity(id string) *Entity {
	for _, e := range p.entities {
		if e.id == id {
			return e
		}
	}
	return nil
}

// WipeEntities clears the registry without emitting EntityRemoved events.
func (p *EntityPool) WipeEntities() {
	count := len(p.entities)
	clear(p.entities)
	p.entities = p.entities[:0]
	p.logger.Debug("ecs: pool wiped", "pool", p.id, "entities", count)
}

// Entities returns a snapshot of the registered entities in order.
func (p *EntityPool) Entities() []*Entity {
	return slices.Clone(p.entities)
}

// All iterates over a snapshot of the registered entities, so the pool may
// be mutated during iteration.
func (p *EntityPool) All() iter.Seq[*Entity] {
	return slices.Values(p.Entities())
}

// Len returns the number of registered entities.
func (p *EntityPool) Len() int {
	return len(p.entities)
}

func (p *EntityPool) indexOf(e *Entity) int {
	if e == nil {
		return -1
	}
	return slices.IndexFunc(p.entities, e.Equal)
}

// componentAdded re-emits an entity's component addition to pool observers.
func (p *EntityPool) componentAdded(e *Entity, compType reflect.Type, component any) error {
	return p.observers.emit(Event{
		Kind:      ComponentAdded,
		Pool:      p,
		Entity:    e,
		Type:      compType,
		Component: component,
	})
}

// componentRemoved re-emits an entity's component removal to pool observers.
func (p *EntityPool) componentRemoved(e *Entity, compType reflect.Type, component any) error {
	return p.observers.emit(Event{
		Kind:      ComponentRemoved,
		Pool:      p,
		Entity:    e,
		Type:      compType,
		Component: component,
	})
}
