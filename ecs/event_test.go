package ecs_test

import (
	"testing"

	"github.com/plus3/poolecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers(t *testing.T) {
	t.Run("listeners run in subscription order", func(t *testing.T) {
		pool := newTestPool("P")
		var order []int
		for i := range 3 {
			pool.Observers().Subscribe(ecs.EntityAdded, func(ecs.Event) error {
				order = append(order, i)
				return nil
			})
		}

		_, err := pool.CreateEntity("a")
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, order)
	})

	t.Run("event kinds are independent", func(t *testing.T) {
		pool := newTestPool("P")
		rec := &eventRecorder{}
		rec.listen(pool.Observers(), ecs.EntityRemoved)

		e, _ := pool.CreateEntity("a")
		require.NoError(t, e.AddComponent(Position{}))
		assert.Empty(t, rec.events)

		require.NoError(t, pool.RemoveEntity(e))
		require.Len(t, rec.events, 1)
		assert.Equal(t, ecs.EntityRemoved, rec.events[0].Kind)
		assert.Same(t, pool, rec.events[0].Pool)
	})

	t.Run("component events carry type and instance", func(t *testing.T) {
		pool := newTestPool("P")
		rec := &eventRecorder{}
		rec.listen(pool.Observers(), ecs.ComponentAdded)

		e, _ := pool.CreateEntity("a")
		health := &Health{Current: 1}
		require.NoError(t, e.AddComponent(health))

		require.Len(t, rec.events, 1)
		assert.Equal(t, healthType, rec.events[0].Type)
		assert.Same(t, health, rec.events[0].Component)
		assert.Same(t, e, rec.events[0].Entity)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		pool := newTestPool("P")
		calls := 0
		handle := pool.Observers().Subscribe(ecs.EntityAdded, func(ecs.Event) error {
			calls++
			return nil
		})

		_, _ = pool.CreateEntity("a")
		assert.True(t, pool.Observers().Unsubscribe(handle))
		assert.False(t, pool.Observers().Unsubscribe(handle))
		_, _ = pool.CreateEntity("b")

		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, pool.Observers().Len(ecs.EntityAdded))
	})

	t.Run("changes during delivery apply to later events", func(t *testing.T) {
		pool := newTestPool("P")
		lateCalls := 0
		var first ecs.ListenerHandle
		first = pool.Observers().Subscribe(ecs.EntityAdded, func(ecs.Event) error {
			pool.Observers().Unsubscribe(first)
			pool.Observers().Subscribe(ecs.EntityAdded, func(ecs.Event) error {
				lateCalls++
				return nil
			})
			return nil
		})
		secondCalls := 0
		pool.Observers().Subscribe(ecs.EntityAdded, func(ecs.Event) error {
			secondCalls++
			return nil
		})

		_, _ = pool.CreateEntity("a")
		assert.Equal(t, 1, secondCalls)
		assert.Equal(t, 0, lateCalls)

		_, _ = pool.CreateEntity("b")
		assert.Equal(t, 2, secondCalls)
		assert.Equal(t, 1, lateCalls)
	})

	t.Run("reentrant mutation from a listener", func(t *testing.T) {
		pool := newTestPool("P")
		pool.Observers().Subscribe(ecs.EntityAdded, func(ev ecs.Event) error {
			if ev.Entity.ID() == "parent" {
				_, err := pool.CreateEntity("spawned")
				return err
			}
			return nil
		})

		_, err := pool.CreateEntity("parent")
		require.NoError(t, err)
		assert.Equal(t, []string{"parent", "spawned"}, entityIDs(pool.Entities()))
	})

	t.Run("kind names", func(t *testing.T) {
		assert.Equal(t, "EntityAdded", ecs.EntityAdded.String())
		assert.Equal(t, "ComponentRemoved", ecs.ComponentRemoved.String())
		assert.Equal(t, "EventKind(?)", ecs.EventKind(42).String())
	})

	t.Run("invalid subscriptions panic", func(t *testing.T) {
		pool := newTestPool("P")
		assert.Panics(t, func() {
			pool.Observers().Subscribe(ecs.EventKind(42), func(ecs.Event) error { return nil })
		})
		assert.Panics(t, func() {
			pool.Observers().Subscribe(ecs.EntityAdded, nil)
		})
		assert.Equal(t, 0, pool.Observers().Len(ecs.EventKind(42)))
	})
}
