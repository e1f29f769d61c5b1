// Package health reports process resource usage for the status endpoint
// and the periodic status log line.
package health

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot is a point-in-time view of the process.
type Snapshot struct {
	CPUPercent    float64 `json:"cpu_percent"`
	RSSBytes      uint64  `json:"rss_bytes"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// Monitor samples the current process.
type Monitor struct {
	proc    *process.Process
	started time.Time
}

// NewMonitor creates a monitor for the current process. A nil proc is
// tolerated; the snapshot then carries zeros for CPU and RSS.
func NewMonitor() *Monitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		proc = nil
	}
	return &Monitor{proc: proc, started: time.Now()}
}

// Snapshot returns current resource usage.
func (m *Monitor) Snapshot() Snapshot {
	snap := Snapshot{
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
	}
	if m.proc != nil {
		if cpu, err := m.proc.CPUPercent(); err == nil {
			snap.CPUPercent = cpu
		}
		if mem, err := m.proc.MemoryInfo(); err == nil && mem != nil {
			snap.RSSBytes = mem.RSS
		}
	}
	return snap
}
