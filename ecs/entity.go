package ecs

import (
	"iter"
	"reflect"
	"slices"
	"weak"

	"github.com/kamstrup/intmap"
)

// Entity is an identified container of components and child entities.
// Two entities are equal when their ids are equal.
//
// An Entity always belongs to an EntityPool while it can be mutated; it
// forwards every component change to that pool so systems observing the
// pool can refresh their membership.
type Entity struct {
	id         string
	components *intmap.Map[ComponentID, any]
	registry   *ComponentRegistry
	children   []*Entity
	parent     weak.Pointer[Entity]
	pool       *EntityPool
	observers  *Observers

	// Active is a caller-controlled flag. Systems do not consult it.
	Active bool
}

// NewEntity creates an entity owned by pool without registering it; use
// EntityPool.AddEntity to register it, or EntityPool.CreateEntity to do both.
func NewEntity(id string, pool *EntityPool) (*Entity, error) {
	if pool == nil {
		return nil, &Error{Op: "NewEntity", Err: ErrIndependentEntity}
	}
	return newEntity(id, pool), nil
}

func newEntity(id string, pool *EntityPool) *Entity {
	return &Entity{
		id:         id,
		components: intmap.New[ComponentID, any](8),
		registry:   pool.registry,
		pool:       pool,
		observers:  newObservers(),
		Active:     true,
	}
}

// ID returns the entity's identifier.
func (e *Entity) ID() string {
	return e.id
}

// Pool returns the owning pool, or nil once the entity has been reset.
func (e *Entity) Pool() *EntityPool {
	return e.pool
}

// Observers returns the entity-level observers. Only ComponentAdded and
// ComponentRemoved are emitted here.
func (e *Entity) Observers() *Observers {
	return e.observers
}

// Equal reports whether e and other carry the same id.
func (e *Entity) Equal(other *Entity) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.id == other.id
}

func (e *Entity) String() string {
	return "Entity(" + e.id + ")"
}

func (e *Entity) err(op string, t reflect.Type, err error) error {
	return &Error{Op: op, Pool: e.pool, Entity: e, Type: t, Err: err}
}

// AddComponent attaches component to the entity. Value components are
// copied into new storage; pointer components are stored as-is and shared.
// Observers on the entity are notified before the owning pool.
func (e *Entity) AddComponent(component any) error {
	compType := componentType(component)
	if e.pool == nil {
		return e.err("AddComponent", compType, ErrIndependentEntity)
	}

	id, ok := e.registry.ID(compType)
	if !ok || isNilPointer(component) {
		return e.err("AddComponent", compType, ErrInvalidComponentType)
	}
	if e.components.Has(id) {
		return e.err("AddComponent", compType, ErrDuplicateComponent)
	}

	ptr := componentPointer(component)
	e.components.Put(id, ptr)

	err := e.observers.emit(Event{
		Kind:      ComponentAdded,
		Pool:      e.pool,
		Entity:    e,
		Type:      compType,
		Component: ptr,
	})
	if err != nil {
		return err
	}
	return e.pool.componentAdded(e, compType, ptr)
}

func isNilPointer(component any) bool {
	value := reflect.ValueOf(component)
	return value.Kind() == reflect.Ptr && value.IsNil()
}

// AddComponents adds each component in order. It stops at the first error;
// components added before the failure stay on the entity.
func (e *Entity) AddComponents(components ...any) error {
	for _, component := range components {
		if err := e.AddComponent(component); err != nil {
			return err
		}
	}
	return nil
}

// RemoveComponent detaches the component of type compType.
func (e *Entity) RemoveComponent(compType reflect.Type) error {
	id, ok := e.registry.ID(compType)
	if !ok {
		return e.err("RemoveComponent", compType, ErrComponentNotFound)
	}
	component, ok := e.components.Get(id)
	if !ok {
		return e.err("RemoveComponent", compType, ErrComponentNotFound)
	}
	if e.pool == nil {
		return e.err("RemoveComponent", compType, ErrIndependentEntity)
	}

	e.components.Del(id)

	err := e.observers.emit(Event{
		Kind:      ComponentRemoved,
		Pool:      e.pool,
		Entity:    e,
		Type:      compType,
		Component: component,
	})
	if err != nil {
		return err
	}
	return e.pool.componentRemoved(e, compType, component)
}

// RemoveComponentOf detaches the component of type T from e.
func RemoveComponentOf[T any](e *Entity) error {
	return e.RemoveComponent(reflect.TypeFor[T]())
}

// RemoveComponents checks that every type is a registered component, then
// removes them in order. A missing component stops the loop; earlier
// removals are kept.
func (e *Entity) RemoveComponents(types ...reflect.Type) error {
	for _, t := range types {
		if !e.registry.IsComponent(t) {
			return e.err("RemoveComponents", t, ErrInvalidComponentType)
		}
	}
	for _, t := range types {
		if err := e.RemoveComponent(t); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAllComponents removes every component, in registration order of
// their types, notifying observers for each.
func (e *Entity) RemoveAllComponents() error {
	for _, id := range e.componentIDs() {
		t, _ := e.registry.Type(id)
		if err := e.RemoveComponent(t); err != nil {
			return err
		}
	}
	return nil
}

// GetComponent returns the stored component of type compType. The result is
// a pointer shared with the entity.
func (e *Entity) GetComponent(compType reflect.Type) (any, error) {
	id, ok := e.registry.ID(compType)
	if !ok {
		return nil, e.err("GetComponent", compType, ErrComponentNotFound)
	}
	component, ok := e.components.Get(id)
	if !ok {
		return nil, e.err("GetComponent", compType, ErrComponentNotFound)
	}
	return component, nil
}

// ReadComponent returns e's component of type T.
func ReadComponent[T any](e *Entity) (*T, error) {
	component, err := e.GetComponent(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return component.(*T), nil
}

// HasComponent reports whether e holds a component of type compType.
func (e *Entity) HasComponent(compType reflect.Type) bool {
	id, ok := e.registry.ID(compType)
	return ok && e.components.Has(id)
}

// HasComponents reports whether e holds all of the given types.
func (e *Entity) HasComponents(types ...reflect.Type) bool {
	for _, t := range types {
		if !e.HasComponent(t) {
			return false
		}
	}
	return true
}

// Components returns the held components ordered by component ID.
func (e *Entity) Components() []any {
	ids := e.componentIDs()
	components := make([]any, 0, len(ids))
	for _, id := range ids {
		component, _ := e.components.Get(id)
		components = append(components, component)
	}
	return components
}

func (e *Entity) componentIDs() []ComponentID {
	ids := make([]ComponentID, 0, e.components.Len())
	e.components.ForEach(func(id ComponentID, _ any) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)
	return ids
}

// rekey moves the component map onto another registry's IDs. Nothing is
// changed if any held type is unknown to the target registry.
func (e *Entity) rekey(pool *EntityPool, registry *ComponentRegistry) error {
	if e.registry == registry {
		return nil
	}

	components := intmap.New[ComponentID, any](max(e.components.Len(), 8))
	for _, id := range e.componentIDs() {
		t, _ := e.registry.Type(id)
		newID, ok := registry.ID(t)
		if !ok {
			return &Error{Op: "AddEntity", Pool: pool, Entity: e, Type: t, Err: ErrInvalidComponentType}
		}
		component, _ := e.components.Get(id)
		components.Put(newID, component)
	}

	e.components = components
	e.registry = registry
	return nil
}

// Reset removes all components, removes every descendant from the owning
// pool, clears the children and detaches e from its pool. A reset entity
// rejects further mutation until it is added to a pool again.
func (e *Entity) Reset() error {
	pool := e.pool
	if pool == nil {
		e.unlinkChildren()
		return nil
	}

	if err := e.RemoveAllComponents(); err != nil {
		return err
	}

	// Collect the subtree before any links are cut.
	descendants := slices.Collect(e.FamilyTree())
	for _, descendant := range descendants {
		if !pool.ContainsEntity(descendant) {
			continue
		}
		if err := pool.RemoveEntity(descendant); err != nil {
			return err
		}
	}
	e.unlinkChildren()

	if pool.ContainsEntity(e) {
		if err := pool.RemoveEntity(e); err != nil {
			return err
		}
	}
	e.pool = nil
	return nil
}

func (e *Entity) unlinkChildren() {
	for _, child := range e.children {
		if child.Parent() == e {
			child.parent = weak.Pointer[Entity]{}
		}
	}
	e.children = nil
}

// MoveTo registers e with pool and removes it from its current pool.
// Children are not moved; they stay registered where they were. Moving an
// entity that is already registered in pool does nothing.
func (e *Entity) MoveTo(pool *EntityPool) error {
	if pool == nil {
		return e.err("MoveTo", nil, ErrNullPool)
	}
	if pool == e.pool && pool.ContainsEntity(e) {
		return nil
	}

	from := e.pool
	if err := pool.register(e); err != nil {
		return err
	}
	if from != nil && from != pool && from.ContainsEntity(e) {
		if err := from.RemoveEntity(e); err != nil {
			return err
		}
	}
	e.pool = pool
	pool.logger.Debug("ecs: entity moved", "entity", e.id, "to", pool.id, "children", len(e.children))
	return nil
}

// CreateChild creates a new entity in e's pool and attaches it as a child.
// With inherit set, the child shares e's current components by reference.
func (e *Entity) CreateChild(id string, inherit bool) (*Entity, error) {
	if e.pool == nil {
		return nil, e.err("CreateChild", nil, ErrIndependentEntity)
	}

	child, err := e.pool.CreateEntity(id)
	if err != nil {
		return nil, err
	}
	child.parent = weak.Make(e)

	if inherit {
		if err := child.AddComponents(e.Components()...); err != nil {
			return nil, err
		}
	}

	e.children = append(e.children, child)
	return child, nil
}

// AddChild attaches an existing entity as a child of e. Pool registration
// is left untouched. If child already had a parent it is unlinked from it.
// Attaching an ancestor of e is ignored.
func (e *Entity) AddChild(child *Entity) {
	if child == nil {
		return
	}
	for ancestor := e; ancestor != nil; ancestor = ancestor.Parent() {
		if ancestor == child {
			return
		}
	}
	if previous := child.Parent(); previous != nil {
		previous.children = slices.DeleteFunc(previous.children, func(c *Entity) bool {
			return c == child
		})
	}
	child.parent = weak.Make(e)
	e.children = append(e.children, child)
}

// GetChild returns the first child with the given id, or nil.
func (e *Entity) GetChild(id string) *Entity {
	for _, child := range e.children {
		if child.id == id {
			return child
		}
	}
	return nil
}

// Children returns a copy of e's children in insertion order.
func (e *Entity) Children() []*Entity {
	return slices.Clone(e.children)
}

// Parent returns e's parent, or nil for a root entity.
func (e *Entity) Parent() *Entity {
	return e.parent.Value()
}

// Root follows parent links to the top of the tree.
func (e *Entity) Root() *Entity {
	root := e
	for parent := root.Parent(); parent != nil; parent = root.Parent() {
		root = parent
	}
	return root
}

// FamilyTree yields every descendant of e depth-first, visiting the most
// recently added child first. The tree must not be modified during
// iteration.
func (e *Entity) FamilyTree() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		stack := slices.Clone(e.children)
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(node) {
				return
			}
			stack = append(stack, node.children...)
		}
	}
}
