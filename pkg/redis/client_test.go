package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thouesa/thouesa-backend/pkg/config"
)

func TestFixedWindowAllowCountsPerScope(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	client := &Client{store: fake}

	for i := 1; i <= 2; i++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "ip:public:10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.EqualValues(t, i, count)
	}
	allowed, count, err := client.FixedWindowAllow(ctx, "ip:public:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.EqualValues(t, 3, count)

	allowed, _, err = client.FixedWindowAllow(ctx, "ip:public:10.0.0.2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.Equal(t, []int64{60000, 60000}, fake.expiries, "expiry armed once per window key")
}

func TestFixedWindowRejectsZeroWindow(t *testing.T) {
	client := &Client{store: newFakeBackend()}
	_, _, err := client.FixedWindowAllow(context.Background(), "scope", 1, 0)
	require.Error(t, err)
}

func TestCompareAndDeleteOnlyRemovesOwnedValue(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newFakeBackend()}
	key := client.LockKey("cron-worker")

	ok, err := client.SetNX(ctx, key, "owner-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	removed, err := client.CompareAndDelete(ctx, key, "owner-2")
	require.NoError(t, err)
	assert.False(t, removed)

	value, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", value)

	removed, err = client.CompareAndDelete(ctx, key, "owner-1")
	require.NoError(t, err)
	assert.True(t, removed)
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestSetOverwritesClaim(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newFakeBackend()}
	key := client.IdempotencyKey("user|POST|/api/v1/orders", "k1")

	ok, err := client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, client.Set(ctx, key, "done", time.Hour))

	value, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "done", value)
}

func TestKeysAreNamespaced(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "th:idempotency:user|POST|/api/v1/orders:k1", client.IdempotencyKey("user|POST|/api/v1/orders", "k1"))
	assert.Equal(t, "th:rate_limit:ip:public:1.2.3.4", client.RateLimitKey("ip:public:1.2.3.4"))
	assert.Equal(t, "th:lock:cron-worker", client.LockKey(" cron-worker "))
	assert.Equal(t, "th:idempotency:scope", client.IdempotencyKey("scope", ""))
}

func TestBuildOptionsPrefersURL(t *testing.T) {
	opts, err := buildOptions(config.RedisConfig{
		URL:      "redis://:secret@cache:6380/3",
		Address:  "ignored:6379",
		PoolSize: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 12, opts.PoolSize)

	opts, err = buildOptions(config.RedisConfig{Address: "localhost:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = buildOptions(config.RedisConfig{})
	require.Error(t, err)
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	require.Error(t, client.Ping(context.Background()))
	_, err := client.Get(context.Background(), "k")
	require.Error(t, err)
	require.NoError(t, client.Close())
}

// fakeBackend interprets the two scripts the client sends.
type fakeBackend struct {
	data     map[string]string
	counters map[string]int64
	expiries []int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: map[string]string{}, counters: map[string]int64{}}
}

func (f *fakeBackend) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeBackend) Get(_ context.Context, key string) *redis.StringCmd {
	value, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeBackend) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeBackend) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeBackend) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeBackend) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	cmd := redis.NewCmd(context.Background())
	switch script {
	case fixedWindowScript:
		f.counters[keys[0]]++
		if f.counters[keys[0]] == 1 {
			f.expiries = append(f.expiries, args[0].(int64))
		}
		cmd.SetVal(f.counters[keys[0]])
	case compareAndDeleteScript:
		if f.data[keys[0]] == args[0] {
			delete(f.data, keys[0])
			cmd.SetVal(int64(1))
		} else {
			cmd.SetVal(int64(0))
		}
	default:
		cmd.SetErr(fmt.Errorf("unexpected script"))
	}
	return cmd
}
