package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/redis"
)

var ErrLockAcquireFailed = errors.New("failed to acquire digest lock")

type LockConfig struct {
	// LockTTL bounds how long a crashed run can block the next one.
	LockTTL time.Duration
	// SentTTL keeps the sent marker past the end of the report day.
	SentTTL time.Duration

	LockKeyPrefix string
	SentKeyPrefix string
}

func DefaultLockConfig() LockConfig {
	return LockConfig{
		LockTTL:       10 * time.Minute,
		SentTTL:       48 * time.Hour,
		LockKeyPrefix: "digest:lock:",
		SentKeyPrefix: "digest:sent:",
	}
}

// RunLock serialises digest runs across instances through redis.
type RunLock struct {
	redis  redis.RedisAdapter
	config LockConfig
}

func NewRunLock(adapter redis.RedisAdapter, config LockConfig) *RunLock {
	def := DefaultLockConfig()
	if config.LockTTL <= 0 {
		config.LockTTL = def.LockTTL
	}
	if config.SentTTL <= 0 {
		config.SentTTL = def.SentTTL
	}
	if config.LockKeyPrefix == "" {
		config.LockKeyPrefix = def.LockKeyPrefix
	}
	if config.SentKeyPrefix == "" {
		config.SentKeyPrefix = def.SentKeyPrefix
	}
	return &RunLock{redis: adapter, config: config}
}

// Lease is a held lock. Only its holder can release it.
type Lease struct {
	Date     string
	token    []byte
	acquired bool
}

func (l *RunLock) Acquire(ctx context.Context, date string) (*Lease, error) {
	token := []byte(uuid.NewString())

	acquired, err := l.redis.SetNX(ctx, l.config.LockKeyPrefix+date, token, l.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrRunInProgress
	}

	logger.Debug("digest lock acquired", "date", date, "ttl", l.config.LockTTL)
	return &Lease{Date: date, token: token, acquired: true}, nil
}

// IsSent reports the fast-path marker. The database row stays authoritative.
func (l *RunLock) IsSent(ctx context.Context, date string) (bool, error) {
	n, err := l.redis.Exist(ctx, l.config.SentKeyPrefix+date)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RunLock) MarkSent(ctx context.Context, date string) error {
	return l.redis.Set(ctx, l.config.SentKeyPrefix+date, []byte("1"), l.config.SentTTL)
}

func (l *RunLock) Release(ctx context.Context, lease *Lease) error {
	if lease == nil || !lease.acquired {
		return nil
	}

	released, err := l.redis.CompareAndDelete(ctx, l.config.LockKeyPrefix+lease.Date, lease.token)
	if err != nil {
		logger.Warn("failed to release digest lock", "date", lease.Date, "error", err)
		return err
	}
	if !released {
		logger.Warn("digest lock expired before release", "date", lease.Date)
	}
	lease.acquired = false
	return nil
}
