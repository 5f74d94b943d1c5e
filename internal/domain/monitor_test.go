package domain

import (
	"testing"
	"time"
)

func TestInMaintenance(t *testing.T) {
	start := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	cases := []struct {
		name    string
		monitor Monitor
		now     time.Time
		want    bool
	}{
		{"no window", Monitor{}, start, false},
		{"only start", Monitor{MaintenanceStart: &start}, start, false},
		{"before", Monitor{MaintenanceStart: &start, MaintenanceEnd: &end}, start.Add(-time.Minute), false},
		{"at start", Monitor{MaintenanceStart: &start, MaintenanceEnd: &end}, start, true},
		{"inside", Monitor{MaintenanceStart: &start, MaintenanceEnd: &end}, start.Add(time.Hour), true},
		{"at end", Monitor{MaintenanceStart: &start, MaintenanceEnd: &end}, end, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.monitor.InMaintenance(tc.now); got != tc.want {
				t.Fatalf("InMaintenance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIntervalAndTimeoutDefaults(t *testing.T) {
	var m Monitor
	if got := m.Interval(); got != 60*time.Second {
		t.Fatalf("default interval = %v", got)
	}
	if got := m.Timeout(); got != 30*time.Second {
		t.Fatalf("default timeout = %v", got)
	}

	m = Monitor{IntervalSeconds: 300, TimeoutSeconds: 5}
	if got := m.Interval(); got != 5*time.Minute {
		t.Fatalf("interval = %v, want 5m", got)
	}
	if got := m.Timeout(); got != 5*time.Second {
		t.Fatalf("timeout = %v, want 5s", got)
	}
}
