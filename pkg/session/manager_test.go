package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/actiflow/actiflow/pkg/adapters/memory"
	"github.com/actiflow/actiflow/pkg/domain"
	"github.com/actiflow/actiflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	return NewManager(memory.NewInstanceStore(), opts...)
}

func TestLoadOrStartCreatesInstance(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	state, created, err := m.LoadOrStart(ctx, "inst-1", "A")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "A", state.CurrentNodeID)

	// The instance is persisted, so the second call loads it instead.
	state, created, err = m.LoadOrStart(ctx, "inst-1", "Z")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "A", state.CurrentNodeID)
}

func TestCurrentNodeRoundTrip(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, _, err := m.LoadOrStart(ctx, "inst-1", "A")
	require.NoError(t, err)

	require.NoError(t, m.SetCurrentNode(ctx, "inst-1", "B"))

	node, err := m.CurrentNode(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "B", node)
}

func TestCurrentNodeUnknownInstance(t *testing.T) {
	m := newManager(t)
	_, err := m.CurrentNode(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrInstanceNotFound)
}

func TestVariables(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, _, err := m.LoadOrStart(ctx, "inst-1", "A")
	require.NoError(t, err)

	require.NoError(t, m.SetVariable(ctx, "inst-1", "userId", "42"))

	value, err := m.Variable(ctx, "inst-1", "userId")
	require.NoError(t, err)
	assert.Equal(t, "42", value)

	// Missing variables resolve to empty, not an error.
	value, err = m.Variable(ctx, "inst-1", "missing")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestApplyUpdatesBatch(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, _, err := m.LoadOrStart(ctx, "inst-1", "A")
	require.NoError(t, err)
	require.NoError(t, m.SetVariable(ctx, "inst-1", "keep", "old"))

	require.NoError(t, m.ApplyUpdates(ctx, "inst-1", map[string]string{
		"a": "1",
		"b": "2",
	}))

	state, err := m.Snapshot(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "old", state.Variables["keep"])
	assert.Equal(t, "1", state.Variables["a"])
	assert.Equal(t, "2", state.Variables["b"])
}

func TestApplyUpdatesEmptyIsNoop(t *testing.T) {
	m := newManager(t)
	// No instance exists; an empty batch must not even touch the store.
	require.NoError(t, m.ApplyUpdates(context.Background(), "ghost", nil))
}

func TestDelete(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, _, err := m.LoadOrStart(ctx, "inst-1", "A")
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, "inst-1"))

	_, err = m.CurrentNode(ctx, "inst-1")
	require.ErrorIs(t, err, domain.ErrInstanceNotFound)
}

func TestConcurrentUpdatesSameInstance(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, _, err := m.LoadOrStart(ctx, "inst-1", "A")
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "k" + strconv.Itoa(i)
			assert.NoError(t, m.SetVariable(ctx, "inst-1", key, strconv.Itoa(i)))
		}(i)
	}
	wg.Wait()

	state, err := m.Snapshot(ctx, "inst-1")
	require.NoError(t, err)
	require.Len(t, state.Variables, writers)
	for i := 0; i < writers; i++ {
		assert.Equal(t, strconv.Itoa(i), state.Variables["k"+strconv.Itoa(i)])
	}
}

func TestDistinctInstancesDoNotBlock(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = m.WithLock(ctx, "slow", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	done := make(chan error, 1)
	go func() {
		done <- m.WithLock(ctx, "fast", func(context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("lock on a different instance blocked")
	}
}

func TestLockEntriesGarbageCollected(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.WithLock(ctx, "inst-1", func(context.Context) error { return nil }))

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks)
}

type stubLocker struct {
	mu       sync.Mutex
	locked   int
	unlocked int
	fail     bool
}

func (l *stubLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return nil, errors.New("lock held elsewhere")
	}
	l.locked++
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked++
		return nil
	}, nil
}

func TestDistributedLockerInvoked(t *testing.T) {
	locker := &stubLocker{}
	m := newManager(t, WithLocker(locker))

	require.NoError(t, m.WithLock(context.Background(), "inst-1", func(context.Context) error { return nil }))
	assert.Equal(t, 1, locker.locked)
	assert.Equal(t, 1, locker.unlocked)
}

func TestDistributedLockerFailureSurfaces(t *testing.T) {
	locker := &stubLocker{fail: true}
	m := newManager(t, WithLocker(locker))

	err := m.WithLock(context.Background(), "inst-1", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distributed lock")
}

func TestWithLockPropagatesFnError(t *testing.T) {
	m := newManager(t)
	want := fmt.Errorf("boom")
	err := m.WithLock(context.Background(), "inst-1", func(context.Context) error { return want })
	require.ErrorIs(t, err, want)
}
