package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ChannelType enumerates supported notification transports.
type ChannelType string

const (
	ChannelWebhook  ChannelType = "webhook"
	ChannelDiscord  ChannelType = "discord"
	ChannelTelegram ChannelType = "telegram"
	ChannelSlack    ChannelType = "slack"
	ChannelEmail    ChannelType = "email"
)

// NotificationChannel is a configured delivery target. Config holds the raw
// JSON document from the store; DecodeConfig turns it into the typed config
// for the channel's type.
type NotificationChannel struct {
	ID        string
	UserID    string
	Name      string
	Type      ChannelType
	Config    []byte
	Active    bool
	CreatedAt time.Time
}

// WebhookConfig targets a plain JSON POST endpoint.
type WebhookConfig struct {
	URL string `json:"url"`
}

// Validate checks required fields.
func (c WebhookConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("webhook url is required")
	}
	return nil
}

// DiscordConfig targets a Discord incoming webhook.
type DiscordConfig struct {
	WebhookURL string `json:"webhookUrl"`
}

// Validate checks required fields.
func (c DiscordConfig) Validate() error {
	if strings.TrimSpace(c.WebhookURL) == "" {
		return errors.New("discord webhook url is required")
	}
	return nil
}

// SlackConfig targets a Slack incoming webhook.
type SlackConfig struct {
	WebhookURL string `json:"webhookUrl"`
}

// Validate checks required fields.
func (c SlackConfig) Validate() error {
	if strings.TrimSpace(c.WebhookURL) == "" {
		return errors.New("slack webhook url is required")
	}
	return nil
}

// TelegramConfig targets the Telegram bot API.
type TelegramConfig struct {
	BotToken string `json:"botToken"`
	ChatID   string `json:"chatId"`
}

// Validate checks required fields.
func (c TelegramConfig) Validate() error {
	if strings.TrimSpace(c.BotToken) == "" || strings.TrimSpace(c.ChatID) == "" {
		return errors.New("telegram bot token and chat id are required")
	}
	return nil
}

// EmailConfig targets a transactional email recipient.
type EmailConfig struct {
	To string `json:"to"`
}

// Validate checks required fields.
func (c EmailConfig) Validate() error {
	if strings.TrimSpace(c.To) == "" {
		return errors.New("email recipient is required")
	}
	return nil
}

// DecodeConfig parses the raw channel config into the typed variant for the
// channel's type and validates it.
func (n NotificationChannel) DecodeConfig() (any, error) {
	if len(n.Config) == 0 {
		return nil, errors.New("channel config is missing")
	}
	switch n.Type {
	case ChannelWebhook:
		var cfg WebhookConfig
		if err := json.Unmarshal(n.Config, &cfg); err != nil {
			return nil, fmt.Errorf("decode webhook config: %w", err)
		}
		return cfg, cfg.Validate()
	case ChannelDiscord:
		var cfg DiscordConfig
		if err := json.Unmarshal(n.Config, &cfg); err != nil {
			return nil, fmt.Errorf("decode discord config: %w", err)
		}
		return cfg, cfg.Validate()
	case ChannelSlack:
		var cfg SlackConfig
		if err := json.Unmarshal(n.Config, &cfg); err != nil {
			return nil, fmt.Errorf("decode slack config: %w", err)
		}
		return cfg, cfg.Validate()
	case ChannelTelegram:
		var cfg TelegramConfig
		if err := json.Unmarshal(n.Config, &cfg); err != nil {
			return nil, fmt.Errorf("decode telegram config: %w", err)
		}
		return cfg, cfg.Validate()
	case ChannelEmail:
		var cfg EmailConfig
		if err := json.Unmarshal(n.Config, &cfg); err != nil {
			return nil, fmt.Errorf("decode email config: %w", err)
		}
		return cfg, cfg.Validate()
	default:
		return nil, fmt.Errorf("unknown channel type: %s", n.Type)
	}
}
