package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Minute

// Lock hands out at most one live Lease across all worker replicas.
type Lock interface {
	// TryAcquire returns a nil Lease without error when another replica holds the lock.
	TryAcquire(ctx context.Context) (Lease, error)
}

// Lease is a held lock. Release is idempotent.
type Lease interface {
	Release(ctx context.Context) error
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}

// RedisLock is a SET NX key whose value is a per-lease token. The TTL frees
// the key if the holder dies mid-run.
type RedisLock struct {
	client redisStore
	key    string
	ttl    time.Duration
}

func NewRedisLock(client redisStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

func (l *RedisLock) TryAcquire(ctx context.Context) (Lease, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return nil, nil
	}
	return &redisLease{lock: l, token: token}, nil
}

type redisLease struct {
	lock  *RedisLock
	token string
}

// Release deletes the key only if it still carries this lease's token, so an
// expired lease never frees a newer holder's lock.
func (l *redisLease) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""
	if _, err := l.lock.client.CompareAndDelete(ctx, l.lock.key, token); err != nil {
		return fmt.Errorf("release %s: %w", l.lock.key, err)
	}
	return nil
}
