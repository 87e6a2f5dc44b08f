package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/screengraph/pkg/adapters/memory"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/ports"
	"github.com/aretw0/screengraph/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore simulates IO latency to provoke races if locking is missing.
type slowStore struct {
	*memory.Store
	inFlight atomic.Int32
	overlap  atomic.Bool
}

func (s *slowStore) Save(ctx context.Context, id string, snap domain.Snapshot) error {
	if s.inFlight.Add(1) > 1 {
		s.overlap.Store(true)
	}
	defer s.inFlight.Add(-1)
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, id, snap)
}

func TestManager_SerialisesWrites(t *testing.T) {
	store := &slowStore{Store: memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, manager.Save(ctx, id, domain.Snapshot{SessionID: id, Current: "Home"}))
		}()
	}
	wg.Wait()

	assert.False(t, store.overlap.Load(), "writes to one session must not overlap")
}

func TestManager_LoadOrInit(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	id := "atomic-init"

	var inits atomic.Int32
	init := func() domain.Snapshot {
		inits.Add(1)
		return domain.Snapshot{SessionID: id, Current: "Home", Status: domain.StatusAt}
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, _, err := manager.LoadOrInit(ctx, id, init)
			assert.NoError(t, err)
			assert.Equal(t, "Home", snap.Current)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), inits.Load())

	_, found, err := manager.LoadOrInit(ctx, id, init)
	require.NoError(t, err)
	assert.True(t, found)

	snap, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Home", snap.Current)
}

func TestManager_DeleteAndList(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "a", domain.Snapshot{SessionID: "a"}))
	require.NoError(t, manager.Save(ctx, "b", domain.Snapshot{SessionID: "b"}))
	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, manager.Delete(ctx, "a"))
	_, err = manager.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	ttl      time.Duration
	err      error
}

func (l *fakeLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = append(l.locked, key)
	l.ttl = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked = append(l.unlocked, key)
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	ctx := context.Background()
	locker := &fakeLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))

	err := manager.WithLock(ctx, "s1", func(context.Context) error {
		assert.Equal(t, []string{"s1"}, locker.locked)
		assert.Empty(t, locker.unlocked, "held while fn runs")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, locker.unlocked)
	assert.Equal(t, 5*time.Second, locker.ttl)

	locker.err = errors.New("redis down")
	called := false
	err = manager.WithLock(ctx, "s1", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "redis down")
	assert.False(t, called)
}
