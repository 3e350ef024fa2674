package ecs_test

import (
	"errors"
	"fmt"

	"github.com/plus3/poolecs/ecs"
)

// ExampleEntityPool demonstrates the basic API for managing entities and components.
// A pool owns its entities; entities own their components, at most one per type.
func ExampleEntityPool() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	pool := ecs.NewEntityPool("level-1", registry)

	player, _ := pool.CreateEntity("player")
	_ = player.AddComponents(
		Position{X: 10, Y: 20},
		Velocity{DX: 1, DY: 0},
		Health{Current: 100, Max: 100},
	)

	pos, _ := ecs.ReadComponent[Position](player)
	fmt.Printf("Player spawned at (%.0f, %.0f)\n", pos.X, pos.Y)

	pos.X = 15
	pos.Y = 25
	pos, _ = ecs.ReadComponent[Position](player)
	fmt.Printf("Player moved to (%.0f, %.0f)\n", pos.X, pos.Y)

	err := player.AddComponent(Health{Current: 1})
	fmt.Println("Second health rejected:", errors.Is(err, ecs.ErrDuplicateComponent))

	_ = pool.RemoveEntity(player)
	fmt.Println("Player registered:", pool.DoesEntityExist("player"))

	// Output:
	// Player spawned at (10, 20)
	// Player moved to (15, 25)
	// Second health rejected: true
	// Player registered: false
}

// ExampleEntity_CreateChild shows entity hierarchies. Children live in the
// same flat pool as their parent and can share the parent's components.
func ExampleEntity_CreateChild() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	pool := ecs.NewEntityPool("scene", registry)

	ship, _ := pool.CreateEntity("ship")
	_ = ship.AddComponent(&Position{X: 3, Y: 4})

	turret, _ := ship.CreateChild("turret", true)
	_, _ = ship.CreateChild("engine", false)
	_, _ = turret.CreateChild("barrel", false)

	fmt.Println("Pool:", entityIDs(pool.Entities()))
	for e := range ship.FamilyTree() {
		fmt.Printf("%s (root %s)\n", e.ID(), e.Root().ID())
	}

	shipPos, _ := ecs.ReadComponent[Position](ship)
	turretPos, _ := ecs.ReadComponent[Position](turret)
	fmt.Println("Shared position:", shipPos == turretPos)

	_ = ship.Reset()
	fmt.Println("After reset:", entityIDs(pool.Entities()))

	// Output:
	// Pool: [ship turret engine barrel]
	// engine (root ship)
	// turret (root ship)
	// barrel (root ship)
	// Shared position: true
	// After reset: []
}
