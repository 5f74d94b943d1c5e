package domain

import "time"

// TransitionEvent describes a change in a monitor's reachability between two
// consecutive heartbeats. Status carries the new state.
type TransitionEvent struct {
	Monitor        Monitor
	Status         bool
	Message        string
	ResponseTimeMS int64
	OccurredAt     time.Time
}

// StatusText renders the new state as "up" or "down".
func (e TransitionEvent) StatusText() string {
	if e.Status {
		return "up"
	}
	return "down"
}
