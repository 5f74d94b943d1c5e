package domain

import "time"

// Heartbeat records the outcome of one completed check. Rows are immutable
// once written; the retention sweep is the only deleter.
type Heartbeat struct {
	ID             string
	MonitorID      string
	Status         bool
	StatusCode     *int
	ResponseTimeMS *int64
	Message        string
	CreatedAt      time.Time
}
