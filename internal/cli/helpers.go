package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/screengraph/internal/logging"
	"github.com/aretw0/screengraph/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it lets the caller retrieve the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger. It writes to Stderr so that
// command output on Stdout stays machine readable.
func NewLogger(level slog.Level) *slog.Logger {
	return logging.New(level)
}

// createDebugHooks logs every navigation event at debug level.
func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "enter node", "node", e.Node)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "leave node", "node", e.Node)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			if e.Err != nil {
				logger.DebugContext(ctx, "transition failed", "from", e.From, "to", e.To, "kind", e.Kind, "error", e.Err)
				return
			}
			logger.DebugContext(ctx, "transition", "from", e.From, "to", e.To, "kind", e.Kind, "action", e.Action, "duration", e.Duration)
		},
		OnRecovery: func(ctx context.Context, e *domain.RecoveryEvent) {
			logger.DebugContext(ctx, "recovery", "trigger", e.Trigger, "back_from", e.BackFrom, "resynced", e.Resynced, "error", e.Err)
		},
	}
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// ParseSet turns name=value pairs into a map. Later pairs win.
func ParseSet(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q (want name=value)", pair)
		}
		out[name] = value
	}
	return out, nil
}

// ParseParams is like ParseSet for action parameters, which are untyped.
func ParseParams(pairs []string) (map[string]any, error) {
	set, err := ParseSet(pairs)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out, nil
}
