package main

import (
	"math/rand"
	"reflect"

	"github.com/plus3/poolecs/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Lifetime struct {
	Remaining float64
}

func newRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Lifetime](registry)
	return registry
}

// EventCounter tallies pool events by kind.
type EventCounter struct {
	Counts map[string]int64
}

func newEventCounter(pool *ecs.EntityPool) *EventCounter {
	c := &EventCounter{Counts: make(map[string]int64)}
	for _, kind := range []ecs.EventKind{ecs.EntityAdded, ecs.EntityRemoved, ecs.ComponentAdded, ecs.ComponentRemoved} {
		name := kind.String()
		pool.Observers().Subscribe(kind, func(ecs.Event) error {
			c.Counts[name]++
			return nil
		})
	}
	return c
}

type MovementSystem struct {
	*ecs.System
}

func (s *MovementSystem) OnUpdate(dt float64) {
	for e := range s.Iter() {
		pos, _ := ecs.ReadComponent[Position](e)
		vel, _ := ecs.ReadComponent[Velocity](e)
		pos.X += vel.DX * dt
		pos.Y += vel.DY * dt
	}
}

// AgingSystem resets entities whose lifetime has run out.
type AgingSystem struct {
	*ecs.System
	Expired int64
	err     error
}

func (s *AgingSystem) OnUpdate(dt float64) {
	var expired []*ecs.Entity
	for e := range s.Iter() {
		lifetime, _ := ecs.ReadComponent[Lifetime](e)
		lifetime.Remaining -= dt
		if lifetime.Remaining <= 0 {
			expired = append(expired, e)
		}
	}

	for _, e := range expired {
		// A parent reset earlier in this loop may already have taken e out.
		if e.Pool() == nil || !e.Pool().ContainsEntity(e) {
			continue
		}
		if err := e.Reset(); err != nil && s.err == nil {
			s.err = err
		}
		s.Expired++
	}
}

// SpawnerSystem keeps the pool churning by creating entities, some with
// children that share their parent's components.
type SpawnerSystem struct {
	pool     *ecs.EntityPool
	rng      *rand.Rand
	perFrame int
	children int
	Spawned  int64
	err      error
}

func (s *SpawnerSystem) OnUpdate(dt float64) {
	for range s.perFrame {
		if err := s.spawn(); err != nil && s.err == nil {
			s.err = err
		}
	}
}

func (s *SpawnerSystem) spawn() error {
	e, err := s.pool.CreateEntity("")
	if err != nil {
		return err
	}
	s.Spawned++

	err = e.AddComponents(
		Position{X: s.rng.Float64() * 100, Y: s.rng.Float64() * 100},
		Lifetime{Remaining: 0.05 + s.rng.Float64()*0.5},
	)
	if err != nil {
		return err
	}
	if s.rng.Intn(2) == 0 {
		if err := e.AddComponent(Velocity{DX: s.rng.Float64() - 0.5, DY: s.rng.Float64() - 0.5}); err != nil {
			return err
		}
	}

	for range s.rng.Intn(s.children + 1) {
		if _, err := e.CreateChild("", true); err != nil {
			return err
		}
		s.Spawned++
	}
	return nil
}

// RenderSystem stands in for a renderer; it only counts what it would draw.
type RenderSystem struct {
	*ecs.DrawableSystem
	Drawn int64
}

func (s *RenderSystem) OnDraw(dt float64) {
	s.Drawn += int64(s.Len())
}

// Simulation bundles the pool, its systems and the scheduler driving them.
type Simulation struct {
	Pool      *ecs.EntityPool
	Scheduler *ecs.Scheduler
	Events    *EventCounter
	Movement  *MovementSystem
	Aging     *AgingSystem
	Spawner   *SpawnerSystem
	Render    *RenderSystem
}

func newSimulation(pool *ecs.EntityPool, rng *rand.Rand, churn, children int) (*Simulation, error) {
	positionType := ecs.TypeOf[Position]()

	movement, err := ecs.NewSystem(pool, []reflect.Type{positionType, ecs.TypeOf[Velocity]()})
	if err != nil {
		return nil, err
	}
	aging, err := ecs.NewSystem(pool, []reflect.Type{ecs.TypeOf[Lifetime]()})
	if err != nil {
		return nil, err
	}
	render, err := ecs.NewDrawableSystem(pool, []reflect.Type{positionType})
	if err != nil {
		return nil, err
	}

	sim := &Simulation{
		Pool:      pool,
		Scheduler: ecs.NewScheduler(),
		Events:    newEventCounter(pool),
		Movement:  &MovementSystem{System: movement},
		Aging:     &AgingSystem{System: aging},
		Spawner:   &SpawnerSystem{pool: pool, rng: rng, perFrame: churn, children: children},
		Render:    &RenderSystem{DrawableSystem: render},
	}

	sim.Scheduler.Register(sim.Spawner)
	sim.Scheduler.Register(sim.Movement)
	sim.Scheduler.Register(sim.Aging)
	sim.Scheduler.RegisterDrawer(sim.Render)
	return sim, nil
}

// Populate spawns the initial entity set.
func (s *Simulation) Populate(count int) error {
	for range count {
		if err := s.Spawner.spawn(); err != nil {
			return err
		}
	}
	return nil
}

// Frame runs one update and draw pass and reports the first system error.
func (s *Simulation) Frame(dt float64) error {
	s.Scheduler.Update(dt)
	s.Scheduler.Draw(dt)

	if s.Spawner.err != nil {
		return s.Spawner.err
	}
	return s.Aging.err
}
