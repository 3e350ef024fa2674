package ecs

import (
	"context"
	"reflect"
	"time"
)

// Updater is implemented by systems with per-frame logic.
type Updater interface {
	OnUpdate(dt float64)
}

// Drawer is implemented by systems with per-frame drawing.
type Drawer interface {
	OnDraw(dt float64)
}

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single hook.
type SystemStats struct {
	Name           string
	Phase          string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	phase          string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func newSystemStats(system any, phase string) *systemStatsInternal {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	return &systemStatsInternal{
		name:        systemType.Name(),
		phase:       phase,
		minDuration: time.Duration(1<<63 - 1),
	}
}

func (s *systemStatsInternal) record(duration time.Duration) {
	s.executionCount++
	s.lastDuration = duration
	s.totalDuration += duration

	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

// Scheduler dispatches OnUpdate and OnDraw to registered systems in
// registration order.
type Scheduler struct {
	updaters    []Updater
	drawers     []Drawer
	updateStats []*systemStatsInternal
	drawStats   []*systemStatsInternal
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		updaters: make([]Updater, 0),
		drawers:  make([]Drawer, 0),
	}
}

// Register adds a system to the update phase.
func (s *Scheduler) Register(system Updater) {
	s.updaters = append(s.updaters, system)
	s.updateStats = append(s.updateStats, newSystemStats(system, "update"))
}

// RegisterDrawer adds a system to the draw phase.
func (s *Scheduler) RegisterDrawer(system Drawer) {
	s.drawers = append(s.drawers, system)
	s.drawStats = append(s.drawStats, newSystemStats(system, "draw"))
}

// Update calls OnUpdate on every registered updater.
func (s *Scheduler) Update(dt float64) {
	for i, system := range s.updaters {
		start := time.Now()
		system.OnUpdate(dt)
		s.updateStats[i].record(time.Since(start))
	}
}

// Draw calls OnDraw on every registered drawer.
func (s *Scheduler) Draw(dt float64) {
	for i, system := range s.drawers {
		start := time.Now()
		system.OnDraw(dt)
		s.drawStats[i].record(time.Since(start))
	}
}

// Run updates and then draws all systems at the given interval until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Update(dt)
			s.Draw(dt)
		}
	}
}

// GetStats returns statistics about system execution, update phase first.
func (s *Scheduler) GetStats() *SchedulerStats {
	all := make([]*systemStatsInternal, 0, len(s.updateStats)+len(s.drawStats))
	all = append(all, s.updateStats...)
	all = append(all, s.drawStats...)

	stats := &SchedulerStats{
		SystemCount: len(all),
		Systems:     make([]SystemStats, len(all)),
	}

	var totalExecs int64
	for i, internal := range all {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			Phase:          internal.phase,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
