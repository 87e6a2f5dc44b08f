package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/domain"
)

const (
	// DefaultVerifyTimeout bounds on-enter verification and re-synchronisation.
	DefaultVerifyTimeout = 5 * time.Second
	// DefaultPollInterval is the pause between two checks of a condition.
	DefaultPollInterval = 100 * time.Millisecond
)

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the structured logger. Transitions are logged at Debug and
// recoveries at Warn.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(n *Navigator) {
		n.hooks = hooks
	}
}

// WithDriver overrides the driver the graph was built with.
func WithDriver(d automation.Driver) Option {
	return func(n *Navigator) {
		n.driver = d
	}
}

// WithVerifyTimeout bounds on-enter polling. Zero means a single check.
func WithVerifyTimeout(d time.Duration) Option {
	return func(n *Navigator) {
		n.verifyTimeout = d
	}
}

// WithPollInterval sets the pause between two checks.
func WithPollInterval(d time.Duration) Option {
	return func(n *Navigator) {
		if d > 0 {
			n.pollInterval = d
		}
	}
}

// WithSessionID tags events and log lines.
func WithSessionID(id string) Option {
	return func(n *Navigator) {
		n.sessionID = id
	}
}

// WithUserState uses an existing state instead of a fresh copy of the graph's.
func WithUserState(s *domain.UserState) Option {
	return func(n *Navigator) {
		if s != nil {
			n.state = s
		}
	}
}
