package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/heybeacon/beacon/internal/domain"
	"github.com/heybeacon/beacon/pkg/config"
)

const defaultSendTimeout = 10 * time.Second

// Payload carries the transition details rendered by each sender.
type Payload struct {
	MonitorName    string
	Status         bool
	Message        string
	ResponseTimeMS int64
	URL            string
	Timestamp      time.Time
}

// StatusText renders the payload state as "up" or "down".
func (p Payload) StatusText() string {
	if p.Status {
		return "up"
	}
	return "down"
}

// Dispatcher fans a transition event out to its notification channels. Sends
// run concurrently and fail independently; a channel error never surfaces to
// the caller.
type Dispatcher struct {
	client      *http.Client
	logger      *slog.Logger
	timeout     time.Duration
	telegramAPI string
	emailAPIURL string
	emailAPIKey string
	emailFrom   string

	metricsOnce sync.Once
	sendsTotal  *prometheus.CounterVec
}

// NewDispatcher constructs a Dispatcher from service configuration.
func NewDispatcher(logger *slog.Logger, cfg config.Config) *Dispatcher {
	timeout := cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	d := &Dispatcher{
		client:      &http.Client{},
		logger:      logger.With("component", "notify"),
		timeout:     timeout,
		telegramAPI: "https://api.telegram.org",
		emailAPIURL: cfg.EmailAPIURL,
		emailAPIKey: cfg.EmailAPIKey,
		emailFrom:   cfg.EmailFrom,
	}
	d.initMetrics()
	return d
}

func (d *Dispatcher) initMetrics() {
	d.metricsOnce.Do(func() {
		d.sendsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beacon",
			Subsystem: "notify",
			Name:      "sends_total",
			Help:      "Count of notification send attempts by channel and outcome",
		}, []string{"channel", "outcome"})
		if err := prometheus.Register(d.sendsTotal); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
					d.sendsTotal = existing
				}
			}
		}
	})
}

// Dispatch sends the event to every channel, one goroutine per channel, and
// waits for all sends to settle.
func (d *Dispatcher) Dispatch(ctx context.Context, channels []domain.NotificationChannel, event domain.TransitionEvent) {
	if len(channels) == 0 {
		return
	}

	message := event.Message
	if message == "" {
		if event.Status {
			message = "Monitor is up"
		} else {
			message = "Monitor is down"
		}
	}
	payload := Payload{
		MonitorName:    event.Monitor.Name,
		Status:         event.Status,
		Message:        message,
		ResponseTimeMS: event.ResponseTimeMS,
		URL:            event.Monitor.URL,
		Timestamp:      event.OccurredAt,
	}

	var wg sync.WaitGroup
	for _, channel := range channels {
		wg.Add(1)
		go func(channel domain.NotificationChannel) {
			defer wg.Done()
			d.send(ctx, channel, payload)
		}(channel)
	}
	wg.Wait()
}

func (d *Dispatcher) send(ctx context.Context, channel domain.NotificationChannel, payload Payload) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cfg, err := channel.DecodeConfig()
	if err != nil {
		d.logger.Warn("invalid channel config", "channel_id", channel.ID, "type", channel.Type, "error", err)
		d.record(channel.Type, "invalid_config")
		return
	}

	switch typed := cfg.(type) {
	case domain.WebhookConfig:
		err = d.sendWebhook(sendCtx, typed, payload)
	case domain.DiscordConfig:
		err = d.sendDiscord(sendCtx, typed, payload)
	case domain.SlackConfig:
		err = d.sendSlack(sendCtx, typed, payload)
	case domain.TelegramConfig:
		err = d.sendTelegram(sendCtx, typed, payload)
	case domain.EmailConfig:
		err = d.sendEmail(sendCtx, typed, payload)
	}
	if err != nil {
		d.logger.Warn("notification send failed", "channel_id", channel.ID, "type", channel.Type, "monitor", payload.MonitorName, "error", err)
		d.record(channel.Type, "error")
		return
	}
	d.logger.Info("notification sent", "channel_id", channel.ID, "type", channel.Type, "monitor", payload.MonitorName, "status", payload.StatusText())
	d.record(channel.Type, "ok")
}

func (d *Dispatcher) record(channel domain.ChannelType, outcome string) {
	if d.sendsTotal == nil {
		return
	}
	d.sendsTotal.With(prometheus.Labels{"channel": string(channel), "outcome": outcome}).Inc()
}
