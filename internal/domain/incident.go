package domain

import "time"

// Incident tracks a downtime period for a monitor. At most one incident per
// monitor is open (ResolvedAt nil) at any time.
type Incident struct {
	ID              string
	MonitorID       string
	StartedAt       time.Time
	ResolvedAt      *time.Time
	DurationSeconds *int64
	Cause           string
}

// Open reports whether the incident is still unresolved.
func (i Incident) Open() bool {
	return i.ResolvedAt == nil
}
