package repository

import (
	"context"
	"time"

	"github.com/heybeacon/beacon/internal/domain"
)

// MonitorRepository reads monitor configuration. Mutation belongs to the
// CRUD layer; the engine only lists and resolves monitors.
type MonitorRepository interface {
	ListActiveMonitors(ctx context.Context) ([]domain.Monitor, error)
	GetMonitorByID(ctx context.Context, id string) (*domain.Monitor, error)
}

// HeartbeatRepository persists check results.
type HeartbeatRepository interface {
	InsertHeartbeat(ctx context.Context, hb *domain.Heartbeat) error
	// LatestHeartbeats resolves the most recent heartbeat per monitor in a
	// single bulk query.
	LatestHeartbeats(ctx context.Context, monitorIDs []string) (map[string]domain.Heartbeat, error)
	ListHeartbeatsInRange(ctx context.Context, monitorIDs []string, from, to time.Time) ([]domain.Heartbeat, error)
	DeleteHeartbeatsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// IncidentRepository manages downtime records.
type IncidentRepository interface {
	CreateIncident(ctx context.Context, incident *domain.Incident) error
	// FindOpenIncident returns the unresolved incident with the latest
	// started_at, or ErrNotFound.
	FindOpenIncident(ctx context.Context, monitorID string) (*domain.Incident, error)
	CloseIncident(ctx context.Context, id string, resolvedAt time.Time, durationSeconds int64) error
	ListIncidentsByMonitor(ctx context.Context, monitorID string, limit int) ([]domain.Incident, error)
}

// StatRepository stores hourly rollups.
type StatRepository interface {
	UpsertHourlyStats(ctx context.Context, stats []domain.HourlyStat) error
	ListHourlyStats(ctx context.Context, monitorID string, from, to time.Time) ([]domain.HourlyStat, error)
}

// ChannelRepository resolves notification targets.
type ChannelRepository interface {
	// ActiveChannelsForMonitor returns active channels linked to the monitor.
	ActiveChannelsForMonitor(ctx context.Context, monitorID string) ([]domain.NotificationChannel, error)
}
