package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heybeacon/beacon/internal/app/migrate"
	httpx "github.com/heybeacon/beacon/internal/http"
	"github.com/heybeacon/beacon/internal/probe"
	"github.com/heybeacon/beacon/internal/repository/postgres"
	"github.com/heybeacon/beacon/internal/service/notify"
	"github.com/heybeacon/beacon/internal/service/scheduler"
	"github.com/heybeacon/beacon/internal/ws"
	"github.com/heybeacon/beacon/pkg/config"
	"github.com/heybeacon/beacon/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New("beacon", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	statusHub := ws.NewHub()
	dispatcher := notify.NewDispatcher(log, cfg)
	checks := probe.NewRunner(cfg.DoHEndpoint)

	lock := scheduler.NewMemoryTickLock()
	if addr := strings.TrimSpace(cfg.TickLockRedisAddr); addr != "" {
		redisLock, err := scheduler.NewRedisTickLock(addr, cfg.TickLockRedisPass, cfg.TickLockRedisDB, cfg.TickLockTTL, log)
		if err != nil {
			log.Warn("redis tick lock unavailable, using in-process guard", "error", err)
		} else {
			lock = redisLock
		}
	}

	sched := scheduler.New(repo, repo, repo, repo, repo, checks, dispatcher, log, scheduler.Options{
		Interval:      cfg.TickInterval,
		RetentionDays: cfg.RetentionDays,
		Lock:          lock,
		Hub:           statusHub,
	})
	if sched == nil {
		log.Error("failed to construct scheduler")
		os.Exit(1)
	}
	defer sched.Close()
	go sched.Run(ctx)

	router := httpx.NewRouter(log, statusHub, pool.Ping)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("ops server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("beacon stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
