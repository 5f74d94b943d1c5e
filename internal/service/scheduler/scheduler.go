package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/heybeacon/beacon/internal/domain"
	"github.com/heybeacon/beacon/internal/probe"
	"github.com/heybeacon/beacon/internal/repository"
)

const (
	defaultInterval  = 60 * time.Second
	defaultRetention = 30 * 24 * time.Hour
)

// CheckRunner executes a monitor's probe with retry semantics applied.
type CheckRunner interface {
	Check(ctx context.Context, monitor domain.Monitor) probe.Result
}

// Dispatcher fans a transition out to notification channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, channels []domain.NotificationChannel, event domain.TransitionEvent)
}

// Broadcaster publishes live status payloads to stream subscribers.
type Broadcaster interface {
	Broadcast(monitorID string, payload []byte)
}

// Scheduler owns the periodic check-and-reconcile engine. One tick selects
// the due monitors, probes them concurrently, reconciles incident state,
// dispatches notifications, then rolls up the previous hour and sweeps
// expired heartbeats.
type Scheduler struct {
	monitors   repository.MonitorRepository
	heartbeats repository.HeartbeatRepository
	incidents  repository.IncidentRepository
	stats      repository.StatRepository
	channels   repository.ChannelRepository
	runner     CheckRunner
	dispatcher Dispatcher
	hub        Broadcaster
	logger     *slog.Logger

	interval  time.Duration
	retention time.Duration
	lock      TickLock
	metrics   *metrics

	now func() time.Time
}

// Options tune scheduler behaviour beyond its dependencies.
type Options struct {
	Interval      time.Duration
	RetentionDays int
	Lock          TickLock
	Hub           Broadcaster
}

// New constructs a Scheduler. It returns nil when a required dependency is
// missing.
func New(
	monitors repository.MonitorRepository,
	heartbeats repository.HeartbeatRepository,
	incidents repository.IncidentRepository,
	stats repository.StatRepository,
	channels repository.ChannelRepository,
	runner CheckRunner,
	dispatcher Dispatcher,
	logger *slog.Logger,
	opts Options,
) *Scheduler {
	if monitors == nil || heartbeats == nil || incidents == nil || stats == nil || channels == nil || runner == nil {
		return nil
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	retention := defaultRetention
	if opts.RetentionDays > 0 {
		retention = time.Duration(opts.RetentionDays) * 24 * time.Hour
	}
	lock := opts.Lock
	if lock == nil {
		lock = NewMemoryTickLock()
	}

	s := &Scheduler{
		monitors:   monitors,
		heartbeats: heartbeats,
		incidents:  incidents,
		stats:      stats,
		channels:   channels,
		runner:     runner,
		dispatcher: dispatcher,
		hub:        opts.Hub,
		logger:     logger,
		interval:   interval,
		retention:  retention,
		lock:       lock,
		metrics:    newMetrics(),
		now:        time.Now,
	}
	if s.logger != nil {
		s.logger = s.logger.With("component", "scheduler")
	}
	return s
}

// Run executes ticks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval)
	s.RunTick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunTick(ctx)
		}
	}
}

// RunTick performs one full reconciliation pass. Overlapping invocations are
// skipped via the tick lock.
func (s *Scheduler) RunTick(ctx context.Context) {
	if s == nil {
		return
	}
	release, ok := s.lock.TryLock(ctx)
	if !ok {
		s.logger.Warn("previous tick still in progress, skipping")
		return
	}
	defer release()

	started := s.now()

	monitors, err := s.monitors.ListActiveMonitors(ctx)
	if err != nil {
		s.logger.Error("failed to list active monitors", "error", err)
		return
	}
	monitorIDs := make([]string, 0, len(monitors))
	for _, monitor := range monitors {
		monitorIDs = append(monitorIDs, monitor.ID)
	}

	latest, err := s.heartbeats.LatestHeartbeats(ctx, monitorIDs)
	if err != nil {
		s.logger.Error("failed to resolve latest heartbeats", "error", err)
		return
	}

	due := selectDue(monitors, latest, started)

	var wg sync.WaitGroup
	for _, monitor := range due {
		var previous *domain.Heartbeat
		if last, ok := latest[monitor.ID]; ok {
			prev := last
			previous = &prev
		}
		wg.Add(1)
		go func(monitor domain.Monitor, previous *domain.Heartbeat) {
			defer wg.Done()
			s.reconcile(ctx, monitor, previous)
		}(monitor, previous)
	}
	wg.Wait()

	s.aggregateHour(ctx, monitorIDs, started)
	s.sweepRetention(ctx, started)

	elapsed := s.now().Sub(started)
	s.metrics.observeTick(elapsed)
	s.logger.Info("tick complete", "monitors", len(monitors), "due", len(due), "elapsed", elapsed.String())
}

// aggregateHour rolls up the previous completed hour for the given monitors.
// Failures are logged, never fatal to the tick.
func (s *Scheduler) aggregateHour(ctx context.Context, monitorIDs []string, reference time.Time) {
	if len(monitorIDs) == 0 {
		return
	}
	bucketStart := hourBucket(reference)
	beats, err := s.heartbeats.ListHeartbeatsInRange(ctx, monitorIDs, bucketStart, bucketStart.Add(time.Hour))
	if err != nil {
		s.logger.Warn("hourly aggregation failed to load heartbeats", "bucket", bucketStart, "error", err)
		return
	}
	stats := buildHourlyStats(beats, bucketStart)
	if len(stats) == 0 {
		return
	}
	if err := s.stats.UpsertHourlyStats(ctx, stats); err != nil {
		s.logger.Warn("hourly aggregation failed to upsert", "bucket", bucketStart, "error", err)
		return
	}
	s.logger.Info("hourly stats aggregated", "bucket", bucketStart, "monitors", len(stats))
}

// sweepRetention deletes heartbeats older than the retention horizon.
func (s *Scheduler) sweepRetention(ctx context.Context, now time.Time) {
	cutoff := now.Add(-s.retention)
	deleted, err := s.heartbeats.DeleteHeartbeatsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Warn("retention sweep failed", "cutoff", cutoff, "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("expired heartbeats deleted", "count", deleted, "cutoff", cutoff)
	}
}

// Close releases the tick lock resources.
func (s *Scheduler) Close() {
	if s == nil || s.lock == nil {
		return
	}
	s.lock.Close()
}
