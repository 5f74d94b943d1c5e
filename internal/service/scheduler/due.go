package scheduler

import (
	"time"

	"github.com/heybeacon/beacon/internal/domain"
)

// selectDue computes the monitors owed a check this tick. A monitor inside
// its maintenance window is skipped even when overdue; a monitor with no
// recorded heartbeat is always due.
func selectDue(monitors []domain.Monitor, latest map[string]domain.Heartbeat, now time.Time) []domain.Monitor {
	due := make([]domain.Monitor, 0, len(monitors))
	for _, monitor := range monitors {
		if monitor.InMaintenance(now) {
			continue
		}
		last, ok := latest[monitor.ID]
		if !ok {
			due = append(due, monitor)
			continue
		}
		if now.Sub(last.CreatedAt) >= monitor.Interval() {
			due = append(due, monitor)
		}
	}
	return due
}
