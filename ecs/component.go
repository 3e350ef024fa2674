package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// ComponentID is the dense identifier a ComponentRegistry assigns to each
// registered component type, in registration order.
type ComponentID uint32

// ComponentRegistry records which types are recognized as components.
// Each EntityPool is bound to a registry; several pools may share one.
type ComponentRegistry struct {
	ids   map[reflect.Type]ComponentID
	types *intmap.Map[ComponentID, reflect.Type]
	next  ComponentID
}

// NewComponentRegistry creates a new, empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		ids:   make(map[reflect.Type]ComponentID),
		types: intmap.New[ComponentID, reflect.Type](32),
	}
}

// RegisterComponent registers T as a component type with the given registry.
// Registering the same type twice returns the existing ID.
func RegisterComponent[T any](r *ComponentRegistry) ComponentID {
	return r.register(reflect.TypeFor[T]())
}

// TypeOf returns the component type for T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func (r *ComponentRegistry) register(t reflect.Type) ComponentID {
	// Components can be structs or primitives (int, string, etc.)
	// But not pointers, maps, channels, or functions
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic("component type " + t.String() + " cannot be a pointer, map, channel, function, or interface")
	}

	if id, ok := r.ids[t]; ok {
		return id
	}

	id := r.next
	r.next++
	r.ids[t] = id
	r.types.Put(id, t)
	return id
}

// ID returns the ComponentID registered for t.
func (r *ComponentRegistry) ID(t reflect.Type) (ComponentID, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := r.ids[t]
	return id, ok
}

// Type returns the component type registered under id.
func (r *ComponentRegistry) Type(id ComponentID) (reflect.Type, bool) {
	return r.types.Get(id)
}

// IsComponent reports whether t is a recognized component type.
func (r *ComponentRegistry) IsComponent(t reflect.Type) bool {
	_, ok := r.ID(t)
	return ok
}

// Types returns every registered component type in registration order.
func (r *ComponentRegistry) Types() []reflect.Type {
	types := make([]reflect.Type, 0, r.types.Len())
	for id := ComponentID(0); id < r.next; id++ {
		if t, ok := r.types.Get(id); ok {
			types = append(types, t)
		}
	}
	return types
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return r.types.Len()
}

// componentType returns the component type of an instance, with one level of
// pointer stripped so that Position{} and &Position{} key the same slot.
func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType == nil {
		return nil
	}
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}
	return compType
}

// componentPointer returns component as a pointer to its component type,
// copying value components into newly allocated storage.
func componentPointer(component any) any {
	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Ptr {
		return component
	}
	ptr := reflect.New(value.Type())
	ptr.Elem().Set(value)
	return ptr.Interface()
}
