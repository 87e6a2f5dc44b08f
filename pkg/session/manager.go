package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/screengraph/internal/logging"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed runner can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serialises access to navigator sessions. Local locks are reference
// counted so idle sessions do not leak; a DistributedLocker extends the
// guarantee across processes.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager backed by store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, then call release after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves a stored snapshot.
func (m *Manager) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// LoadOrInit loads a snapshot, or persists the one returned by init when the
// session does not exist yet. found reports which branch was taken.
func (m *Manager) LoadOrInit(ctx context.Context, sessionID string, init func() domain.Snapshot) (snap domain.Snapshot, found bool, err error) {
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var loadErr error
		snap, loadErr = m.store.Load(ctx, sessionID)
		if loadErr == nil {
			found = true
			return nil
		}
		if !errors.Is(loadErr, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", loadErr)
		}

		snap = init()
		if err := m.store.Save(ctx, sessionID, snap); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return snap, found, err
}

// Save persists a snapshot.
func (m *Manager) Save(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, snap)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock runs fn while holding the session's local lock and, when
// configured, its distributed lock. fn must not call back into the manager for
// the same session; use Store directly inside it.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// A cancelled ctx must not prevent the release.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock, it will expire via ttl",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
