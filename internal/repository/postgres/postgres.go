package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heybeacon/beacon/internal/domain"
	"github.com/heybeacon/beacon/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.MonitorRepository   = (*Repository)(nil)
	_ repository.HeartbeatRepository = (*Repository)(nil)
	_ repository.IncidentRepository  = (*Repository)(nil)
	_ repository.StatRepository      = (*Repository)(nil)
	_ repository.ChannelRepository   = (*Repository)(nil)
)

const monitorColumns = `id, user_id, name, type, url, hostname, port, method, expected_status,
	dns_record_type, interval_seconds, timeout_seconds, retries, active,
	maintenance_start, maintenance_end, created_at, updated_at`

// ListActiveMonitors returns all monitors with active = true.
func (r *Repository) ListActiveMonitors(ctx context.Context) ([]domain.Monitor, error) {
	const query = `SELECT ` + monitorColumns + ` FROM monitors WHERE active ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	monitors := make([]domain.Monitor, 0)
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, m)
	}
	return monitors, rows.Err()
}

// GetMonitorByID fetches a single monitor.
func (r *Repository) GetMonitorByID(ctx context.Context, id string) (*domain.Monitor, error) {
	const query = `SELECT ` + monitorColumns + ` FROM monitors WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	m, err := scanMonitor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func scanMonitor(row pgx.Row) (domain.Monitor, error) {
	var (
		m                domain.Monitor
		url              sql.NullString
		hostname         sql.NullString
		port             sql.NullInt64
		method           sql.NullString
		expectedStatus   sql.NullInt64
		dnsRecordType    sql.NullString
		maintenanceStart sql.NullTime
		maintenanceEnd   sql.NullTime
	)
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Type,
		&url,
		&hostname,
		&port,
		&method,
		&expectedStatus,
		&dnsRecordType,
		&m.IntervalSeconds,
		&m.TimeoutSeconds,
		&m.Retries,
		&m.Active,
		&maintenanceStart,
		&maintenanceEnd,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return domain.Monitor{}, err
	}
	if url.Valid {
		m.URL = url.String
	}
	if hostname.Valid {
		m.Hostname = hostname.String
	}
	if port.Valid {
		m.Port = int(port.Int64)
	}
	if method.Valid {
		m.Method = method.String
	}
	if expectedStatus.Valid {
		m.ExpectedStatus = int(expectedStatus.Int64)
	}
	if dnsRecordType.Valid {
		m.DNSRecordType = dnsRecordType.String
	}
	if maintenanceStart.Valid {
		value := maintenanceStart.Time.UTC()
		m.MaintenanceStart = &value
	}
	if maintenanceEnd.Valid {
		value := maintenanceEnd.Time.UTC()
		m.MaintenanceEnd = &value
	}
	return m, nil
}

// InsertHeartbeat persists a check result.
func (r *Repository) InsertHeartbeat(ctx context.Context, hb *domain.Heartbeat) error {
	const query = `INSERT INTO heartbeats (id, monitor_id, status, status_code, response_time_ms, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		hb.ID,
		hb.MonitorID,
		hb.Status,
		intPtrToNil(hb.StatusCode),
		int64PtrToNil(hb.ResponseTimeMS),
		emptyToNil(hb.Message),
		hb.CreatedAt,
	)
	return err
}

// LatestHeartbeats resolves the newest heartbeat per monitor with one query.
func (r *Repository) LatestHeartbeats(ctx context.Context, monitorIDs []string) (map[string]domain.Heartbeat, error) {
	latest := make(map[string]domain.Heartbeat, len(monitorIDs))
	if len(monitorIDs) == 0 {
		return latest, nil
	}
	const query = `SELECT DISTINCT ON (monitor_id)
			id, monitor_id, status, status_code, response_time_ms, message, created_at
		FROM heartbeats
		WHERE monitor_id = ANY($1)
		ORDER BY monitor_id, created_at DESC`
	rows, err := r.pool.Query(ctx, query, monitorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		hb, err := scanHeartbeat(rows)
		if err != nil {
			return nil, err
		}
		latest[hb.MonitorID] = hb
	}
	return latest, rows.Err()
}

// ListHeartbeatsInRange returns heartbeats for the monitors with created_at
// in [from, to).
func (r *Repository) ListHeartbeatsInRange(ctx context.Context, monitorIDs []string, from, to time.Time) ([]domain.Heartbeat, error) {
	if len(monitorIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, monitor_id, status, status_code, response_time_ms, message, created_at
		FROM heartbeats
		WHERE monitor_id = ANY($1) AND created_at >= $2 AND created_at < $3
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, monitorIDs, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	beats := make([]domain.Heartbeat, 0)
	for rows.Next() {
		hb, err := scanHeartbeat(rows)
		if err != nil {
			return nil, err
		}
		beats = append(beats, hb)
	}
	return beats, rows.Err()
}

// DeleteHeartbeatsBefore removes heartbeats older than the cutoff.
func (r *Repository) DeleteHeartbeatsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM heartbeats WHERE created_at < $1`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanHeartbeat(row pgx.Row) (domain.Heartbeat, error) {
	var (
		hb           domain.Heartbeat
		statusCode   sql.NullInt32
		responseTime sql.NullInt64
		message      sql.NullString
	)
	if err := row.Scan(&hb.ID, &hb.MonitorID, &hb.Status, &statusCode, &responseTime, &message, &hb.CreatedAt); err != nil {
		return domain.Heartbeat{}, err
	}
	if statusCode.Valid {
		value := int(statusCode.Int32)
		hb.StatusCode = &value
	}
	if responseTime.Valid {
		value := responseTime.Int64
		hb.ResponseTimeMS = &value
	}
	if message.Valid {
		hb.Message = message.String
	}
	return hb, nil
}

// CreateIncident inserts a new open incident.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	const query = `INSERT INTO incidents (id, monitor_id, started_at, resolved_at, duration_seconds, cause)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		incident.ID,
		incident.MonitorID,
		incident.StartedAt,
		timePtrToNil(incident.ResolvedAt),
		int64PtrToNil(incident.DurationSeconds),
		emptyToNil(incident.Cause),
	)
	return err
}

// FindOpenIncident returns the monitor's unresolved incident with the latest
// started_at.
func (r *Repository) FindOpenIncident(ctx context.Context, monitorID string) (*domain.Incident, error) {
	const query = `SELECT id, monitor_id, started_at, resolved_at, duration_seconds, cause
		FROM incidents
		WHERE monitor_id = $1 AND resolved_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1`
	row := r.pool.QueryRow(ctx, query, monitorID)
	incident, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &incident, nil
}

// CloseIncident marks an incident resolved.
func (r *Repository) CloseIncident(ctx context.Context, id string, resolvedAt time.Time, durationSeconds int64) error {
	const query = `UPDATE incidents
		SET resolved_at = $2, duration_seconds = $3
		WHERE id = $1 AND resolved_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, resolvedAt, durationSeconds)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListIncidentsByMonitor fetches recent incidents, newest first.
func (r *Repository) ListIncidentsByMonitor(ctx context.Context, monitorID string, limit int) ([]domain.Incident, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, monitor_id, started_at, resolved_at, duration_seconds, cause
		FROM incidents WHERE monitor_id = $1 ORDER BY started_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, monitorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incidents := make([]domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, incident)
	}
	return incidents, rows.Err()
}

func scanIncident(row pgx.Row) (domain.Incident, error) {
	var (
		incident   domain.Incident
		resolvedAt sql.NullTime
		duration   sql.NullInt64
		cause      sql.NullString
	)
	if err := row.Scan(&incident.ID, &incident.MonitorID, &incident.StartedAt, &resolvedAt, &duration, &cause); err != nil {
		return domain.Incident{}, err
	}
	if resolvedAt.Valid {
		value := resolvedAt.Time.UTC()
		incident.ResolvedAt = &value
	}
	if duration.Valid {
		value := duration.Int64
		incident.DurationSeconds = &value
	}
	if cause.Valid {
		incident.Cause = cause.String
	}
	return incident, nil
}

// UpsertHourlyStats writes rollups for hour buckets, replacing existing rows.
func (r *Repository) UpsertHourlyStats(ctx context.Context, stats []domain.HourlyStat) error {
	if len(stats) == 0 {
		return nil
	}
	const query = `INSERT INTO hourly_stats (
		monitor_id,
		bucket_start,
		avg_response_time_ms,
		min_response_time_ms,
		max_response_time_ms,
		uptime_percent,
		check_count,
		up_count,
		down_count
	) VALUES (
		$1,$2,$3,$4,$5,$6,$7,$8,$9
	) ON CONFLICT (monitor_id, bucket_start)
	DO UPDATE SET
		avg_response_time_ms = EXCLUDED.avg_response_time_ms,
		min_response_time_ms = EXCLUDED.min_response_time_ms,
		max_response_time_ms = EXCLUDED.max_response_time_ms,
		uptime_percent = EXCLUDED.uptime_percent,
		check_count = EXCLUDED.check_count,
		up_count = EXCLUDED.up_count,
		down_count = EXCLUDED.down_count`
	batch := &pgx.Batch{}
	for _, stat := range stats {
		batch.Queue(query,
			stat.MonitorID,
			stat.BucketStart,
			int64PtrToNil(stat.AvgResponseTimeMS),
			int64PtrToNil(stat.MinResponseTimeMS),
			int64PtrToNil(stat.MaxResponseTimeMS),
			stat.UptimePercent,
			stat.CheckCount,
			stat.UpCount,
			stat.DownCount,
		)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range stats {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListHourlyStats returns rollups for a monitor with bucket_start in [from, to).
func (r *Repository) ListHourlyStats(ctx context.Context, monitorID string, from, to time.Time) ([]domain.HourlyStat, error) {
	const query = `SELECT monitor_id, bucket_start, avg_response_time_ms, min_response_time_ms,
			max_response_time_ms, uptime_percent, check_count, up_count, down_count
		FROM hourly_stats
		WHERE monitor_id = $1 AND bucket_start >= $2 AND bucket_start < $3
		ORDER BY bucket_start`
	rows, err := r.pool.Query(ctx, query, monitorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]domain.HourlyStat, 0)
	for rows.Next() {
		var (
			stat          domain.HourlyStat
			avg, min, max sql.NullInt64
		)
		if err := rows.Scan(
			&stat.MonitorID,
			&stat.BucketStart,
			&avg,
			&min,
			&max,
			&stat.UptimePercent,
			&stat.CheckCount,
			&stat.UpCount,
			&stat.DownCount,
		); err != nil {
			return nil, err
		}
		if avg.Valid {
			value := avg.Int64
			stat.AvgResponseTimeMS = &value
		}
		if min.Valid {
			value := min.Int64
			stat.MinResponseTimeMS = &value
		}
		if max.Valid {
			value := max.Int64
			stat.MaxResponseTimeMS = &value
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// ActiveChannelsForMonitor returns active channels linked to the monitor.
func (r *Repository) ActiveChannelsForMonitor(ctx context.Context, monitorID string) ([]domain.NotificationChannel, error) {
	const query = `SELECT c.id, c.user_id, c.name, c.type, c.config, c.active, c.created_at
		FROM notification_channels c
		INNER JOIN monitor_channels mc ON mc.channel_id = c.id
		WHERE mc.monitor_id = $1 AND c.active
		ORDER BY c.created_at`
	rows, err := r.pool.Query(ctx, query, monitorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := make([]domain.NotificationChannel, 0)
	for rows.Next() {
		var (
			channel domain.NotificationChannel
			config  []byte
		)
		if err := rows.Scan(&channel.ID, &channel.UserID, &channel.Name, &channel.Type, &config, &channel.Active, &channel.CreatedAt); err != nil {
			return nil, err
		}
		if len(config) > 0 {
			channel.Config = append([]byte(nil), config...)
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

func emptyToNil(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func intPtrToNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func int64PtrToNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func timePtrToNil(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}
