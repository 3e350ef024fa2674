package ecs_test

import "github.com/plus3/poolecs/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Temperature float64

// Unregistered is never added to the test registry.
type Unregistered struct {
	Value int
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[PlayerController](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[Temperature](registry)
	return registry
}

func newTestPool(id string) *ecs.EntityPool {
	return ecs.NewEntityPool(id, newTestRegistry())
}

// eventRecorder counts events delivered to a set of observers.
type eventRecorder struct {
	events []ecs.Event
}

func (r *eventRecorder) listen(observers *ecs.Observers, kinds ...ecs.EventKind) {
	for _, kind := range kinds {
		observers.Subscribe(kind, func(ev ecs.Event) error {
			r.events = append(r.events, ev)
			return nil
		})
	}
}

func (r *eventRecorder) count(kind ecs.EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func entityIDs(entities []*ecs.Entity) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID())
	}
	return ids
}
