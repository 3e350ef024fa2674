package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/profile"

	"github.com/plus3/poolecs/ecs"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of root entities to create.")
	children := flag.Int("children", 2, "The maximum number of children spawned per entity.")
	churn := flag.Int("churn", 100, "The number of entities spawned every frame.")
	profileMode := flag.String("profile", "", "Profile the run: cpu or mem.")
	profilePath := flag.String("profile-path", ".", "Directory the profile is written to.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	verbose := flag.Bool("v", false, "Log pool activity at debug level.")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profilePath), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(*profilePath), profile.NoShutdownHook).Stop()
	default:
		log.Fatalf("Unknown profile mode %q", *profileMode)
	}

	logger := slog.New(slog.DiscardHandler)
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	runID := uuid.New()
	log.Printf("Starting ECS stress test %s...\n", runID)

	// 1. Setup registry, pool and systems
	registry := newRegistry()
	pool := ecs.NewEntityPool("stress-"+runID.String(), registry, ecs.WithLogger(logger))
	sim, err := newSimulation(pool, rand.New(rand.NewSource(time.Now().UnixNano())), *churn, *children)
	if err != nil {
		log.Fatalf("Failed to build simulation: %v", err)
	}

	// 2. Populate the pool with initial entities
	log.Printf("Populating pool with %d entities...\n", *entityCount)
	if err := sim.Populate(*entityCount); err != nil {
		log.Fatalf("Failed to populate pool: %v", err)
	}
	log.Printf("Population complete, pool holds %d entities.\n", pool.Len())

	// 3. Run the simulation loop
	report := &Report{
		RunID:          runID,
		Duration:       *duration,
		Entities:       *entityCount,
		Children:       *children,
		Churn:          *churn,
		Components:     registry.Len(),
		Systems:        sim.Scheduler.GetStats().SystemCount,
		GCPauseMetrics: *gcPauseMetrics,
		FrameTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalFrames int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			frameStart := time.Now()
			if err := sim.Frame(deltaTime.Seconds()); err != nil {
				log.Fatalf("Frame %d failed: %v", totalFrames, err)
			}
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
			totalFrames++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalFrames = totalFrames
	report.FrameTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Collect(sim)

	log.Println("Simulation finished.")

	// 4. Generate report to console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}
