package health

import "testing"

func TestSnapshot(t *testing.T) {
	m := NewMonitor()
	snap := m.Snapshot()

	if snap.Goroutines <= 0 {
		t.Errorf("goroutines = %d", snap.Goroutines)
	}
	if snap.UptimeSeconds < 0 {
		t.Errorf("uptime = %v", snap.UptimeSeconds)
	}
	if snap.CPUPercent < 0 {
		t.Errorf("cpu percent = %v", snap.CPUPercent)
	}
}
