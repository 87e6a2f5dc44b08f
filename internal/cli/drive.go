package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/screengraph"
	"github.com/aretw0/screengraph/internal/config"
	"github.com/aretw0/screengraph/pkg/adapters/process"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
)

// DriveOptions configures Drive.
type DriveOptions struct {
	GraphPath  string
	DriverPath string
	// SessionID resumes a stored session when one exists, or names the new one.
	SessionID string
	// Fresh discards a stored session instead of resuming it.
	Fresh bool
	// End deletes the session once the operations are done.
	End bool
	// Relaunch restarts the app before navigating.
	Relaunch bool
	Set      map[string]string
	To       string
	Action   string
	Params   map[string]any
}

// Drive navigates a real application through the commands of a driver file.
// The session is persisted in the configured store after every operation.
func Drive(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger, opts DriveOptions) error {
	driverCfg, err := process.LoadConfig(opts.DriverPath)
	if err != nil {
		return err
	}
	driver := process.NewDriver(driverCfg, process.WithLogger(logger))

	g, err := LoadGraph(opts.GraphPath, driver)
	if err != nil {
		return err
	}

	persistence, err := OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := persistence.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	navOpts := []screengraph.Option{
		screengraph.WithLogger(logger),
		screengraph.WithVerifyTimeout(cfg.VerifyTimeout),
		screengraph.WithPollInterval(cfg.PollInterval),
		screengraph.WithStore(persistence.Store),
	}
	if cfg.Level() <= slog.LevelDebug {
		navOpts = append(navOpts, screengraph.WithLifecycleHooks(createDebugHooks(logger)))
	}
	if persistence.Locker != nil {
		navOpts = append(navOpts, screengraph.WithLocker(persistence.Locker, cfg.LockTTL))
	}

	nav, resumed, err := openSession(ctx, g, opts, navOpts)
	if err != nil {
		return err
	}
	if resumed {
		logger.Info("session resumed", "session_id", nav.SessionID(), "node", nav.Position().Node)
		printSystemMessage(w, "Resuming session %q at '%s'.", nav.SessionID(), nav.Position().Node)
	} else {
		logger.Info("session created", "session_id", nav.SessionID())
		printSystemMessage(w, "Session %q started at '%s'.", nav.SessionID(), nav.Position().Node)
	}

	for name, raw := range opts.Set {
		if err := nav.UserState().SetString(name, raw); err != nil {
			return err
		}
	}

	runErr := drive(ctx, nav, opts)
	pos := nav.Position()
	if runErr != nil {
		printSystemMessage(w, "Failed (%s at '%s'): %v", pos.Status, pos.Node, runErr)
		return runErr
	}
	printSystemMessage(w, "Finished at '%s'.", pos.Node)

	if opts.End {
		return nav.End(ctx)
	}
	return nil
}

func openSession(ctx context.Context, g *graph.Graph, opts DriveOptions, navOpts []screengraph.Option) (*screengraph.Navigator, bool, error) {
	if opts.SessionID == "" {
		nav, err := screengraph.New(g, navOpts...)
		return nav, false, err
	}
	if !opts.Fresh {
		nav, err := screengraph.Resume(ctx, g, opts.SessionID, navOpts...)
		if err == nil {
			return nav, true, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, false, fmt.Errorf("failed to resume session: %w", err)
		}
	}
	nav, err := screengraph.New(g, append(navOpts, screengraph.WithSessionID(opts.SessionID))...)
	return nav, false, err
}

func drive(ctx context.Context, nav *screengraph.Navigator, opts DriveOptions) error {
	if opts.Relaunch {
		if err := nav.Relaunch(ctx); err != nil {
			return err
		}
	}
	if opts.To != "" {
		if err := nav.Goto(ctx, opts.To); err != nil {
			return err
		}
	}
	if opts.Action != "" {
		return nav.PerformAction(ctx, opts.Action, opts.Params)
	}
	return nil
}
