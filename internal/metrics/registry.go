// Package metrics keeps in-process counters for /setup stats. Nothing is
// persisted; the usage log in storage is the durable record.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

type Registry struct {
	startTime time.Time

	buildLatency  *LatencyHistogram
	designLatency *LatencyHistogram

	builds         uint64
	reapplies      uint64
	designFailures uint64
	imports        uint64
	exports        uint64
	resets         uint64
}

func NewRegistry() *Registry {
	return &Registry{
		startTime:     time.Now(),
		buildLatency:  NewLatencyHistogram(),
		designLatency: NewLatencyHistogram(),
	}
}

// RecordBuild counts one applied blueprint. reapply distinguishes
// /setup reapply from fresh builds.
func (r *Registry) RecordBuild(d time.Duration, reapply bool) {
	if r == nil {
		return
	}
	r.buildLatency.Record(d)
	if reapply {
		atomic.AddUint64(&r.reapplies, 1)
	} else {
		atomic.AddUint64(&r.builds, 1)
	}
}

func (r *Registry) RecordDesign(d time.Duration, err error) {
	if r == nil {
		return
	}
	if err != nil {
		atomic.AddUint64(&r.designFailures, 1)
		return
	}
	r.designLatency.Record(d)
}

func (r *Registry) RecordImport() {
	if r != nil {
		atomic.AddUint64(&r.imports, 1)
	}
}

func (r *Registry) RecordExport() {
	if r != nil {
		atomic.AddUint64(&r.exports, 1)
	}
}

func (r *Registry) RecordReset() {
	if r != nil {
		atomic.AddUint64(&r.resets, 1)
	}
}

type Snapshot struct {
	Uptime         time.Duration
	Builds         uint64
	Reapplies      uint64
	Designs        uint64
	DesignFailures uint64
	Imports        uint64
	Exports        uint64
	Resets         uint64
	BuildLatency   LatencyStats
	DesignLatency  LatencyStats
}

// Snapshot copies the current values. A nil registry yields a zero snapshot.
func (r *Registry) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	design := r.designLatency.GetStats()
	return Snapshot{
		Uptime:         time.Since(r.startTime),
		Builds:         atomic.LoadUint64(&r.builds),
		Reapplies:      atomic.LoadUint64(&r.reapplies),
		Designs:        design.Count,
		DesignFailures: atomic.LoadUint64(&r.designFailures),
		Imports:        atomic.LoadUint64(&r.imports),
		Exports:        atomic.LoadUint64(&r.exports),
		Resets:         atomic.LoadUint64(&r.resets),
		BuildLatency:   r.buildLatency.GetStats(),
		DesignLatency:  design,
	}
}

// Export renders the snapshot in a plain key/value format for logs.
func (s Snapshot) Export() string {
	return fmt.Sprintf(
		"builds %d\nreapplies %d\ndesigns %d\ndesign_failures %d\nimports %d\nexports %d\nresets %d\nbuild_avg_ms %d\nbuild_max_ms %d\ndesign_avg_ms %d\n",
		s.Builds, s.Reapplies, s.Designs, s.DesignFailures, s.Imports, s.Exports, s.Resets,
		s.BuildLatency.Avg.Milliseconds(), s.BuildLatency.Max.Milliseconds(), s.DesignLatency.Avg.Milliseconds(),
	)
}

var GlobalRegistry *Registry

func InitGlobalRegistry() {
	GlobalRegistry = NewRegistry()
}

func GetRegistry() *Registry {
	if GlobalRegistry == nil {
		InitGlobalRegistry()
	}
	return GlobalRegistry
}
