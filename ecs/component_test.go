package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/poolecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestComponentRegistry(t *testing.T) {
	t.Run("ids are assigned in registration order", func(t *testing.T) {
		registry := ecs.NewComponentRegistry()
		posID := ecs.RegisterComponent[Position](registry)
		velID := ecs.RegisterComponent[Velocity](registry)

		assert.Equal(t, ecs.ComponentID(0), posID)
		assert.Equal(t, ecs.ComponentID(1), velID)
		assert.Equal(t, 2, registry.Len())
	})

	t.Run("registering twice returns the same id", func(t *testing.T) {
		registry := ecs.NewComponentRegistry()
		first := ecs.RegisterComponent[Health](registry)
		second := ecs.RegisterComponent[Health](registry)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("lookup in both directions", func(t *testing.T) {
		registry := newTestRegistry()

		id, ok := registry.ID(ecs.TypeOf[Velocity]())
		assert.True(t, ok)

		typ, ok := registry.Type(id)
		assert.True(t, ok)
		assert.Equal(t, reflect.TypeOf(Velocity{}), typ)

		_, ok = registry.ID(ecs.TypeOf[Unregistered]())
		assert.False(t, ok)

		_, ok = registry.ID(nil)
		assert.False(t, ok)
	})

	t.Run("is component", func(t *testing.T) {
		registry := newTestRegistry()
		assert.True(t, registry.IsComponent(ecs.TypeOf[Score]()))
		assert.False(t, registry.IsComponent(ecs.TypeOf[Unregistered]()))
		assert.False(t, registry.IsComponent(ecs.TypeOf[*Position]()))
	})

	t.Run("types keep registration order", func(t *testing.T) {
		registry := ecs.NewComponentRegistry()
		ecs.RegisterComponent[Name](registry)
		ecs.RegisterComponent[Position](registry)

		assert.Equal(t, []reflect.Type{ecs.TypeOf[Name](), ecs.TypeOf[Position]()}, registry.Types())
	})

	t.Run("invalid kinds panic", func(t *testing.T) {
		registry := ecs.NewComponentRegistry()
		assert.Panics(t, func() { ecs.RegisterComponent[*Position](registry) })
		assert.Panics(t, func() { ecs.RegisterComponent[map[string]int](registry) })
		assert.Panics(t, func() { ecs.RegisterComponent[chan int](registry) })
		assert.Panics(t, func() { ecs.RegisterComponent[func()](registry) })
		assert.Equal(t, 0, registry.Len())
	})
}
