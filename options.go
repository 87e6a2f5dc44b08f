package screengraph

import (
	"log/slog"
	"time"

	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/metrics"
	"github.com/aretw0/screengraph/pkg/ports"
)

// Option configures a Navigator.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	driver        automation.Driver
	verifyTimeout *time.Duration
	pollInterval  time.Duration
	sessionID     string
	store         ports.SnapshotStore
	locker        ports.DistributedLocker
	lockTTL       time.Duration
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Hooks from several calls
// are chained.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithMetrics feeds a Prometheus collector from the lifecycle hooks.
func WithMetrics(c *metrics.Collector) Option {
	return WithLifecycleHooks(c.Hooks())
}

// WithDriver overrides the driver the graph was built with.
func WithDriver(d automation.Driver) Option {
	return func(o *options) {
		o.driver = d
	}
}

// WithVerifyTimeout bounds on-enter verification (default 5s).
func WithVerifyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.verifyTimeout = &d
	}
}

// WithPollInterval sets the pause between two checks (default 100ms).
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithSessionID sets the session ID instead of generating one.
func WithSessionID(id string) Option {
	return func(o *options) {
		o.sessionID = id
	}
}

// WithStore persists a snapshot after every operation.
func WithStore(store ports.SnapshotStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLocker serialises operations on the session across processes, e.g. to
// share one device between runners. It requires WithStore.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(o *options) {
		o.locker = locker
		o.lockTTL = ttl
	}
}
