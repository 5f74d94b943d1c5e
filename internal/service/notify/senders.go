package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/heybeacon/beacon/internal/domain"
)

func (d *Dispatcher) sendWebhook(ctx context.Context, cfg domain.WebhookConfig, payload Payload) error {
	body := map[string]any{
		"monitor":      payload.MonitorName,
		"status":       payload.StatusText(),
		"message":      payload.Message,
		"responseTime": payload.ResponseTimeMS,
		"timestamp":    payload.Timestamp.UTC().Format(time.RFC3339),
	}
	return d.postJSON(ctx, cfg.URL, nil, body)
}

func (d *Dispatcher) sendDiscord(ctx context.Context, cfg domain.DiscordConfig, payload Payload) error {
	color := 0xff0000
	if payload.Status {
		color = 0x00ff00
	}

	fields := make([]map[string]any, 0, 2)
	if payload.ResponseTimeMS > 0 {
		fields = append(fields, map[string]any{
			"name":   "Response Time",
			"value":  fmt.Sprintf("%dms", payload.ResponseTimeMS),
			"inline": true,
		})
	}
	if payload.URL != "" {
		fields = append(fields, map[string]any{
			"name":   "URL",
			"value":  payload.URL,
			"inline": true,
		})
	}

	body := map[string]any{
		"embeds": []map[string]any{{
			"title":       fmt.Sprintf("[%s] %s", strings.ToUpper(payload.StatusText()), payload.MonitorName),
			"description": payload.Message,
			"color":       color,
			"fields":      fields,
			"timestamp":   payload.Timestamp.UTC().Format(time.RFC3339),
			"footer":      map[string]any{"text": "Beacon Uptime"},
		}},
	}
	return d.postJSON(ctx, cfg.WebhookURL, nil, body)
}

func (d *Dispatcher) sendSlack(ctx context.Context, cfg domain.SlackConfig, payload Payload) error {
	emoji := ":red_circle:"
	if payload.Status {
		emoji = ":white_check_mark:"
	}

	blocks := []map[string]any{
		{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("%s *[%s] %s*", emoji, strings.ToUpper(payload.StatusText()), payload.MonitorName),
			},
		},
		{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": payload.Message},
		},
	}
	elements := make([]map[string]any, 0, 2)
	if payload.ResponseTimeMS > 0 {
		elements = append(elements, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Response Time:* %dms", payload.ResponseTimeMS),
		})
	}
	if payload.URL != "" {
		elements = append(elements, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*URL:* %s", payload.URL),
		})
	}
	if len(elements) > 0 {
		blocks = append(blocks, map[string]any{"type": "context", "elements": elements})
	}

	return d.postJSON(ctx, cfg.WebhookURL, nil, map[string]any{"blocks": blocks})
}

func (d *Dispatcher) sendTelegram(ctx context.Context, cfg domain.TelegramConfig, payload Payload) error {
	emoji := "\U0001F534"
	if payload.Status {
		emoji = "✅"
	}

	lines := []string{
		fmt.Sprintf("%s <b>[%s] %s</b>", emoji, strings.ToUpper(payload.StatusText()), payload.MonitorName),
		"",
		payload.Message,
	}
	if payload.ResponseTimeMS > 0 {
		lines = append(lines, fmt.Sprintf("Response Time: %dms", payload.ResponseTimeMS))
	}
	if payload.URL != "" {
		lines = append(lines, fmt.Sprintf("URL: %s", payload.URL))
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", d.telegramAPI, cfg.BotToken)
	body := map[string]any{
		"chat_id":    cfg.ChatID,
		"text":       strings.Join(lines, "\n"),
		"parse_mode": "HTML",
	}
	return d.postJSON(ctx, endpoint, nil, body)
}

func (d *Dispatcher) sendEmail(ctx context.Context, cfg domain.EmailConfig, payload Payload) error {
	if d.emailAPIKey == "" || d.emailFrom == "" {
		return fmt.Errorf("email sender is not configured")
	}

	text := fmt.Sprintf("%s is %s.\n\n%s", payload.MonitorName, strings.ToUpper(payload.StatusText()), payload.Message)
	if payload.ResponseTimeMS > 0 {
		text += fmt.Sprintf("\nResponse Time: %dms", payload.ResponseTimeMS)
	}
	if payload.URL != "" {
		text += fmt.Sprintf("\nURL: %s", payload.URL)
	}

	body := map[string]any{
		"from":    d.emailFrom,
		"to":      []string{cfg.To},
		"subject": fmt.Sprintf("[%s] %s", strings.ToUpper(payload.StatusText()), payload.MonitorName),
		"text":    text,
	}
	headers := map[string]string{"Authorization": "Bearer " + d.emailAPIKey}
	return d.postJSON(ctx, d.emailAPIURL, headers, body)
}

func (d *Dispatcher) postJSON(ctx context.Context, endpoint string, headers map[string]string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
