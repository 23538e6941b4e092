package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore mimics the few redis commands the limiter issues.
type memStore struct {
	mu      sync.Mutex
	vals    map[string]int64
	ttls    map[string]time.Duration
	failGet  bool
	failExec bool
}

func newMemStore() *memStore {
	return &memStore{vals: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return redis.NewStringResult("", errors.New("conn refused"))
	}
	v, ok := m.vals[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(strconv.FormatInt(v, 10), nil)
}

// TxPipelined applies the queued commands all at once, or none of them when
// failExec is set.
func (m *memStore) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	pipe := &memPipe{}
	if err := fn(pipe); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failExec {
		return nil, errors.New("conn refused")
	}
	for _, op := range pipe.ops {
		op(m)
	}
	return pipe.cmds, nil
}

// memPipe queues the commands the limiter sends inside a transaction.
// Anything else panics on the nil embedded Pipeliner.
type memPipe struct {
	redis.Pipeliner
	ops  []func(*memStore)
	cmds []redis.Cmder
}

func (p *memPipe) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incr", key)
	p.cmds = append(p.cmds, cmd)
	p.ops = append(p.ops, func(m *memStore) {
		m.vals[key]++
		cmd.SetVal(m.vals[key])
	})
	return cmd
}

func (p *memPipe) ExpireNX(ctx context.Context, key string, d time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx, "expire", key, int64(d/time.Second), "nx")
	p.cmds = append(p.cmds, cmd)
	p.ops = append(p.ops, func(m *memStore) {
		_, ok := m.ttls[key]
		if !ok {
			m.ttls[key] = d
		}
		cmd.SetVal(!ok)
	})
	return cmd
}

func (m *memStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.vals, k)
		delete(m.ttls, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisLimiter_BlocksAfterLimit(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	l := NewRedisLimiter(st, "login", 3, time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "b@x.com"))
		require.NoError(t, l.Fail(ctx, "b@x.com"))
	}

	assert.ErrorIs(t, l.Allow(ctx, "b@x.com"), common.ErrTooManyAttempts)
	assert.NoError(t, l.Allow(ctx, "s@x.com"), "other accounts are unaffected")
	assert.Equal(t, time.Minute, st.ttls["login:b@x.com"], "window is set on first failure")

	require.NoError(t, l.Reset(ctx, "b@x.com"))
	assert.NoError(t, l.Allow(ctx, "b@x.com"))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	st.failGet = true
	l := NewRedisLimiter(st, "login", 1, time.Minute)

	assert.NoError(t, l.Allow(ctx, "b@x.com"))

	st.failExec = true
	assert.Error(t, l.Fail(ctx, "b@x.com"))
}

func TestRedisLimiter_FailSetsExpiryAtomically(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	l := NewRedisLimiter(st, "login", 1, time.Minute)

	st.failExec = true
	require.Error(t, l.Fail(ctx, "b@x.com"))
	_, counted := st.vals["login:b@x.com"]
	assert.False(t, counted, "a failed transaction leaves no counter behind")

	st.failExec = false
	require.NoError(t, l.Fail(ctx, "b@x.com"))
	assert.Equal(t, time.Minute, st.ttls["login:b@x.com"])
	assert.ErrorIs(t, l.Allow(ctx, "b@x.com"), common.ErrTooManyAttempts)
}

func TestRedisLimiter_FailHealsCounterWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	st.vals["login:b@x.com"] = 7
	l := NewRedisLimiter(st, "login", 3, time.Minute)

	require.NoError(t, l.Fail(ctx, "b@x.com"))
	assert.Equal(t, int64(8), st.vals["login:b@x.com"])
	assert.Equal(t, time.Minute, st.ttls["login:b@x.com"])
}

func TestNoop(t *testing.T) {
	var l Limiter = Noop{}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Fail(ctx, "k"))
	}
	assert.NoError(t, l.Allow(ctx, "k"))
	assert.NoError(t, l.Reset(ctx, "k"))
}

func TestNewFromConfig(t *testing.T) {
	l, closeFn := NewFromConfig("", 5, time.Minute)
	assert.IsType(t, Noop{}, l)
	assert.NoError(t, closeFn())

	l, closeFn = NewFromConfig("localhost:6379", 5, time.Minute)
	assert.IsType(t, &RedisLimiter{}, l)
	assert.NoError(t, closeFn())
}
