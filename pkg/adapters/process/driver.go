// Package process drives the application under test through external
// commands, e.g. wrappers around adb, xcrun or a device farm CLI.
//
// Every call runs the command bound to the operation. Inputs are passed as
// SCREENGRAPH_* environment variables, never as arguments, so locators cannot
// inject flags:
//
//	SCREENGRAPH_LOCATOR      element locator
//	SCREENGRAPH_GESTURE      tap, long_press, swipe_left, ..., type_text
//	SCREENGRAPH_DURATION_MS  long press duration, when set
//	SCREENGRAPH_TEXT         text to type
//	SCREENGRAPH_ARGS         relaunch arguments, space separated
//
// exists prints true or false. value prints the element value. A command
// exiting with status 2 reports that the element was not found.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/aretw0/screengraph/internal/logging"
	"github.com/aretw0/screengraph/pkg/automation"
)

// ExitNotFound is the exit status meaning the locator matched nothing.
const ExitNotFound = 2

// Driver implements the automation capabilities with external commands.
type Driver struct {
	cfg    *ConfigFile
	logger *slog.Logger
}

var (
	_ automation.Driver        = (*Driver)(nil)
	_ automation.ValueReader   = (*Driver)(nil)
	_ automation.DeviceControl = (*Driver)(nil)
)

// DriverOption configures the driver.
type DriverOption func(*Driver)

// WithLogger logs every command at Debug.
func WithLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDriver creates a driver from a loaded config.
func NewDriver(cfg *ConfigFile, opts ...DriverOption) *Driver {
	d := &Driver{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Exists(ctx context.Context, loc automation.Locator) (bool, error) {
	out, err := d.run(ctx, OpExists, map[string]string{"LOCATOR": string(loc)})
	if errors.Is(err, automation.ErrElementNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	ok, err := strconv.ParseBool(out)
	if err != nil {
		return false, fmt.Errorf("exists %s: unexpected output %q", loc, out)
	}
	return ok, nil
}

func (d *Driver) Perform(ctx context.Context, loc automation.Locator, g automation.Gesture) error {
	env := map[string]string{
		"LOCATOR": string(loc),
		"GESTURE": string(g.Kind),
	}
	if g.Duration > 0 {
		env["DURATION_MS"] = strconv.FormatInt(g.Duration.Milliseconds(), 10)
	}
	if g.Kind == automation.GestureTypeText {
		env["TEXT"] = g.Text
	}
	_, err := d.run(ctx, OpPerform, env)
	return err
}

func (d *Driver) Value(ctx context.Context, loc automation.Locator) (string, error) {
	return d.run(ctx, OpValue, map[string]string{"LOCATOR": string(loc)})
}

func (d *Driver) Home(ctx context.Context) error {
	_, err := d.run(ctx, OpHome, nil)
	return err
}

func (d *Driver) Relaunch(ctx context.Context, args ...string) error {
	_, err := d.run(ctx, OpRelaunch, map[string]string{"ARGS": strings.Join(args, " ")})
	return err
}

// run executes the command bound to op and returns its trimmed stdout.
func (d *Driver) run(ctx context.Context, op string, vars map[string]string) (string, error) {
	c, ok := d.cfg.Commands[op]
	if !ok || c.Command == "" {
		return "", fmt.Errorf("driver has no command for %q", op)
	}

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Dir = d.cfg.Dir
	cmd.Env = cmd.Environ()
	for k, v := range c.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	for k, v := range vars {
		cmd.Env = append(cmd.Env, "SCREENGRAPH_"+k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	d.logger.DebugContext(ctx, "driver command", "op", op, "locator", vars["LOCATOR"], "error", err)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == ExitNotFound {
			return "", fmt.Errorf("%w: %s", automation.ErrElementNotFound, vars["LOCATOR"])
		}
		return "", fmt.Errorf("%s failed: %w: %s", op, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
