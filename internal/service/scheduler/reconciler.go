package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/heybeacon/beacon/internal/domain"
	"github.com/heybeacon/beacon/internal/probe"
	"github.com/heybeacon/beacon/internal/repository"
)

// reconcile runs one monitor's pipeline: probe, persist, detect a status
// transition against the previous heartbeat, reconcile incident state, and
// dispatch notifications. Each failure aborts only the remaining steps for
// this monitor.
func (s *Scheduler) reconcile(ctx context.Context, monitor domain.Monitor, previous *domain.Heartbeat) {
	result := s.runner.Check(ctx, monitor)
	now := s.now()
	s.metrics.observeCheck(monitor.Type, result)

	elapsed := result.ResponseTimeMS
	hb := &domain.Heartbeat{
		ID:             uuid.NewString(),
		MonitorID:      monitor.ID,
		Status:         result.Status,
		StatusCode:     result.StatusCode,
		ResponseTimeMS: &elapsed,
		Message:        result.Message,
		CreatedAt:      now,
	}
	if err := s.heartbeats.InsertHeartbeat(ctx, hb); err != nil {
		s.logger.Error("failed to persist heartbeat", "monitor_id", monitor.ID, "error", err)
		return
	}
	s.publish(monitor, "heartbeat", result, now)

	// A first-ever result only transitions when it is down: there is no
	// prior up state to recover from, but an initial outage must open an
	// incident.
	transition := false
	if previous != nil {
		transition = previous.Status != result.Status
	} else if !result.Status {
		transition = true
	}
	if !transition {
		return
	}

	s.metrics.observeTransition(result.Status)
	s.logger.Info("monitor status changed", "monitor_id", monitor.ID, "name", monitor.Name, "status", statusText(result.Status), "message", result.Message)

	if result.Status {
		s.resolveIncident(ctx, monitor, now)
	} else {
		s.openIncident(ctx, monitor, result, now)
	}
	s.publish(monitor, "transition", result, now)

	if monitor.InMaintenance(now) {
		s.logger.Info("notifications suppressed during maintenance", "monitor_id", monitor.ID)
		return
	}

	channels, err := s.channels.ActiveChannelsForMonitor(ctx, monitor.ID)
	if err != nil {
		s.logger.Error("failed to resolve notification channels", "monitor_id", monitor.ID, "error", err)
		return
	}
	if s.dispatcher == nil || len(channels) == 0 {
		return
	}
	s.dispatcher.Dispatch(ctx, channels, domain.TransitionEvent{
		Monitor:        monitor,
		Status:         result.Status,
		Message:        result.Message,
		ResponseTimeMS: result.ResponseTimeMS,
		OccurredAt:     now,
	})
}

// openIncident records the start of an outage. The cause falls back to a
// generic message when the probe produced none.
func (s *Scheduler) openIncident(ctx context.Context, monitor domain.Monitor, result probe.Result, now time.Time) {
	cause := result.Message
	if cause == "" {
		cause = "Monitor is down"
	}
	incident := &domain.Incident{
		ID:        uuid.NewString(),
		MonitorID: monitor.ID,
		StartedAt: now,
		Cause:     cause,
	}
	if err := s.incidents.CreateIncident(ctx, incident); err != nil {
		s.logger.Error("failed to open incident", "monitor_id", monitor.ID, "error", err)
		return
	}
	s.logger.Info("incident opened", "monitor_id", monitor.ID, "incident_id", incident.ID, "cause", cause)
}

// resolveIncident closes the monitor's open incident. A missing open
// incident is tolerated as a no-op.
func (s *Scheduler) resolveIncident(ctx context.Context, monitor domain.Monitor, now time.Time) {
	incident, err := s.incidents.FindOpenIncident(ctx, monitor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return
		}
		s.logger.Error("failed to find open incident", "monitor_id", monitor.ID, "error", err)
		return
	}
	duration := int64(now.Sub(incident.StartedAt).Seconds())
	if err := s.incidents.CloseIncident(ctx, incident.ID, now, duration); err != nil {
		s.logger.Error("failed to close incident", "monitor_id", monitor.ID, "incident_id", incident.ID, "error", err)
		return
	}
	s.logger.Info("incident resolved", "monitor_id", monitor.ID, "incident_id", incident.ID, "duration_seconds", duration)
}

// publish broadcasts a live status payload to stream subscribers.
func (s *Scheduler) publish(monitor domain.Monitor, kind string, result probe.Result, at time.Time) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"type":         kind,
		"monitorId":    monitor.ID,
		"monitorName":  monitor.Name,
		"status":       statusText(result.Status),
		"message":      result.Message,
		"responseTime": result.ResponseTimeMS,
		"timestamp":    at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	s.hub.Broadcast(monitor.ID, payload)
}

func statusText(up bool) string {
	if up {
		return "up"
	}
	return "down"
}
