package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/heybeacon/beacon/internal/domain"
	"github.com/heybeacon/beacon/internal/probe"
	"github.com/heybeacon/beacon/internal/repository"
)

type fakeMonitorRepo struct {
	monitors []domain.Monitor
}

func (r *fakeMonitorRepo) ListActiveMonitors(ctx context.Context) ([]domain.Monitor, error) {
	return r.monitors, nil
}

func (r *fakeMonitorRepo) GetMonitorByID(ctx context.Context, id string) (*domain.Monitor, error) {
	for _, monitor := range r.monitors {
		if monitor.ID == id {
			m := monitor
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeHeartbeatRepo struct {
	mu       sync.Mutex
	latest   map[string]domain.Heartbeat
	inserted []domain.Heartbeat
	inRange  []domain.Heartbeat
	deleted  int64
	cutoffs  []time.Time
}

func (r *fakeHeartbeatRepo) InsertHeartbeat(ctx context.Context, hb *domain.Heartbeat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserted = append(r.inserted, *hb)
	return nil
}

func (r *fakeHeartbeatRepo) LatestHeartbeats(ctx context.Context, monitorIDs []string) (map[string]domain.Heartbeat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]domain.Heartbeat, len(r.latest))
	for id, hb := range r.latest {
		out[id] = hb
	}
	return out, nil
}

func (r *fakeHeartbeatRepo) ListHeartbeatsInRange(ctx context.Context, monitorIDs []string, from, to time.Time) ([]domain.Heartbeat, error) {
	return r.inRange, nil
}

func (r *fakeHeartbeatRepo) DeleteHeartbeatsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffs = append(r.cutoffs, cutoff)
	return r.deleted, nil
}

func (r *fakeHeartbeatRepo) insertedBeats() []domain.Heartbeat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Heartbeat(nil), r.inserted...)
}

type closedIncident struct {
	id              string
	resolvedAt      time.Time
	durationSeconds int64
}

type fakeIncidentRepo struct {
	mu      sync.Mutex
	open    map[string]domain.Incident
	created []domain.Incident
	closed  []closedIncident
}

func (r *fakeIncidentRepo) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *incident)
	return nil
}

func (r *fakeIncidentRepo) FindOpenIncident(ctx context.Context, monitorID string) (*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	incident, ok := r.open[monitorID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := incident
	return &out, nil
}

func (r *fakeIncidentRepo) CloseIncident(ctx context.Context, id string, resolvedAt time.Time, durationSeconds int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, closedIncident{id: id, resolvedAt: resolvedAt, durationSeconds: durationSeconds})
	return nil
}

func (r *fakeIncidentRepo) ListIncidentsByMonitor(ctx context.Context, monitorID string, limit int) ([]domain.Incident, error) {
	return nil, nil
}

type fakeStatRepo struct {
	mu       sync.Mutex
	upserted [][]domain.HourlyStat
}

func (r *fakeStatRepo) UpsertHourlyStats(ctx context.Context, stats []domain.HourlyStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, stats)
	return nil
}

func (r *fakeStatRepo) ListHourlyStats(ctx context.Context, monitorID string, from, to time.Time) ([]domain.HourlyStat, error) {
	return nil, nil
}

type fakeChannelRepo struct {
	channels []domain.NotificationChannel
}

func (r *fakeChannelRepo) ActiveChannelsForMonitor(ctx context.Context, monitorID string) ([]domain.NotificationChannel, error) {
	return r.channels, nil
}

type fakeRunner struct {
	mu      sync.Mutex
	results map[string]probe.Result
	checked []string
}

func (r *fakeRunner) Check(ctx context.Context, monitor domain.Monitor) probe.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checked = append(r.checked, monitor.ID)
	if result, ok := r.results[monitor.ID]; ok {
		return result
	}
	return probe.Result{Status: true, ResponseTimeMS: 10, Message: "OK"}
}

type recordedDispatch struct {
	channels []domain.NotificationChannel
	event    domain.TransitionEvent
}

type fakeDispatcher struct {
	mu         sync.Mutex
	dispatches []recordedDispatch
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, channels []domain.NotificationChannel, event domain.TransitionEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatches = append(d.dispatches, recordedDispatch{channels: channels, event: event})
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dispatches)
}

type schedulerFixture struct {
	monitors   *fakeMonitorRepo
	heartbeats *fakeHeartbeatRepo
	incidents  *fakeIncidentRepo
	stats      *fakeStatRepo
	channels   *fakeChannelRepo
	runner     *fakeRunner
	dispatcher *fakeDispatcher
	sched      *Scheduler
}

func newFixture(t *testing.T, now time.Time) *schedulerFixture {
	t.Helper()
	f := &schedulerFixture{
		monitors:   &fakeMonitorRepo{},
		heartbeats: &fakeHeartbeatRepo{latest: map[string]domain.Heartbeat{}},
		incidents:  &fakeIncidentRepo{open: map[string]domain.Incident{}},
		stats:      &fakeStatRepo{},
		channels:   &fakeChannelRepo{},
		runner:     &fakeRunner{results: map[string]probe.Result{}},
		dispatcher: &fakeDispatcher{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.sched = New(f.monitors, f.heartbeats, f.incidents, f.stats, f.channels, f.runner, f.dispatcher, logger, Options{})
	if f.sched == nil {
		t.Fatal("scheduler construction failed")
	}
	f.sched.now = func() time.Time { return now }
	return f
}
