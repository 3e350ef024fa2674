package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/plus3/poolecs/ecs"
)

type Report struct {
	// Configuration
	RunID      uuid.UUID
	Duration   time.Duration
	Entities   int
	Children   int
	Churn      int
	Components int
	Systems    int

	// Results
	TotalFrames    int64
	TotalTime      time.Duration
	FrameTime      Stats
	FinalEntities  int
	Spawned        int64
	Expired        int64
	Drawn          int64
	Events         map[string]int64
	Scheduler      *ecs.SchedulerStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// Collect copies the end-of-run counters out of the simulation.
func (r *Report) Collect(sim *Simulation) {
	r.FinalEntities = sim.Pool.Len()
	r.Spawned = sim.Spawner.Spawned
	r.Expired = sim.Aging.Expired
	r.Drawn = sim.Render.Drawn
	r.Events = sim.Events.Counts
	r.Scheduler = sim.Scheduler.GetStats()
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run ID:** {{.RunID}}
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}
- **Max Children:** {{.Children}}
- **Churn Per Frame:** {{.Churn}}
- **Registered Components:** {{.Components}}
- **Systems:** {{.Systems}}

## Performance Results
- **Total Frames:** {{.TotalFrames}}
- **Total Test Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}

## Pool Activity
- **Final Entities:** {{.FinalEntities}}
- **Spawned:** {{.Spawned}}
- **Expired:** {{.Expired}}
- **Drawn:** {{.Drawn}}
{{range $kind, $count := .Events}}- {{$kind}}: {{$count}}
{{end}}
{{with .Scheduler}}
## Systems
| System | Phase | Runs | Avg | Min | Max |
|---|---|---|---|---|---|
{{range .Systems}}| {{.Name}} | {{.Phase}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MinDuration}} | {{.MaxDuration}} |
{{end}}{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Heap In Use:    {{mb .MemStatsEnd.HeapInuse}} MiB (end)
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
