package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// TickLock guards against overlapping tick executions.
type TickLock interface {
	// TryLock attempts to take the lock. When ok, the returned release
	// function must be called once the tick finishes.
	TryLock(ctx context.Context) (release func(), ok bool)
	Close()
}

// memoryTickLock is the in-process guard used when no Redis address is
// configured.
type memoryTickLock struct {
	busy atomic.Bool
}

// NewMemoryTickLock returns a process-local tick lock.
func NewMemoryTickLock() TickLock {
	return &memoryTickLock{}
}

func (l *memoryTickLock) TryLock(context.Context) (func(), bool) {
	if !l.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	return func() { l.busy.Store(false) }, true
}

func (l *memoryTickLock) Close() {}

// releaseScript deletes the lock key only when it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

type redisTickLock struct {
	client  *redis.Client
	logger  *slog.Logger
	key     string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisTickLock constructs a Redis backed advisory tick lock. The TTL
// bounds how long a crashed holder can block subsequent ticks.
func NewRedisTickLock(addr, password string, db int, ttl time.Duration, logger *slog.Logger) (TickLock, error) {
	opts := &redis.Options{Addr: addr, Password: password, DB: db}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisTickLock{
		client:  client,
		logger:  logger,
		key:     "beacon:tick:lock",
		ttl:     ttl,
		timeout: 250 * time.Millisecond,
	}, nil
}

func (l *redisTickLock) TryLock(ctx context.Context) (func(), bool) {
	opCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	token := uuid.NewString()
	acquired, err := l.client.SetNX(opCtx, l.key, token, l.ttl).Result()
	if err != nil {
		// Fail open: a lost lock round-trip should not stall monitoring.
		l.logError("setnx", err)
		return func() {}, true
	}
	if !acquired {
		return nil, false
	}
	return func() {
		relCtx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		if err := l.client.Eval(relCtx, releaseScript, []string{l.key}, token).Err(); err != nil {
			l.logError("release", err)
		}
	}, true
}

func (l *redisTickLock) Close() {
	if l.client != nil {
		_ = l.client.Close()
	}
}

func (l *redisTickLock) logError(op string, err error) {
	if l.logger == nil {
		return
	}
	l.logger.Error("redis tick lock error", "op", op, "error", err)
}
