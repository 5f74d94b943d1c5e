package config

import "time"

// Config holds runtime configuration for the beacon service.
type Config struct {
	Environment       string
	Addr              string
	DatabaseURL       string
	MigrationsDir     string
	TickInterval      time.Duration
	TickLockTTL       time.Duration
	TickLockRedisAddr string
	TickLockRedisPass string
	TickLockRedisDB   int
	RetentionDays     int
	DoHEndpoint       string
	NotifyTimeout     time.Duration
	EmailAPIURL       string
	EmailAPIKey       string
	EmailFrom         string
}

// Load constructs a Config from environment variables.
func Load() Config {
	return Config{
		Environment:       GetString("APP_ENV", "development"),
		Addr:              GetString("BEACON_ADDR", ":4800"),
		DatabaseURL:       GetString("DATABASE_URL", "postgres://beacon:beacon@db:5432/beacon?sslmode=disable"),
		MigrationsDir:     GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		TickInterval:      time.Duration(GetInt("TICK_INTERVAL_SECONDS", 60)) * time.Second,
		TickLockTTL:       time.Duration(GetInt("TICK_LOCK_TTL_SECONDS", 55)) * time.Second,
		TickLockRedisAddr: GetString("TICK_LOCK_REDIS_ADDR", ""),
		TickLockRedisPass: GetString("TICK_LOCK_REDIS_PASSWORD", ""),
		TickLockRedisDB:   GetInt("TICK_LOCK_REDIS_DB", 0),
		RetentionDays:     GetInt("HEARTBEAT_RETENTION_DAYS", 30),
		DoHEndpoint:       GetString("DOH_ENDPOINT", "https://cloudflare-dns.com/dns-query"),
		NotifyTimeout:     time.Duration(GetInt("NOTIFY_TIMEOUT_SECONDS", 10)) * time.Second,
		EmailAPIURL:       GetString("EMAIL_API_URL", "https://api.resend.com/emails"),
		EmailAPIKey:       GetString("EMAIL_API_KEY", ""),
		EmailFrom:         GetString("EMAIL_FROM", ""),
	}
}
